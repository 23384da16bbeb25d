package domain

import "sort"

// LineSegment maps a contiguous run of lines in a concatenated unit to one source file.
type LineSegment struct {
	// Start is the first line of the segment in the concatenated unit (1-based).
	Start int `json:"start"`
	// Count is the number of lines in the segment.
	Count int `json:"count"`
	// File is the original source file.
	File string `json:"file"`
	// FileLine is the line in File that corresponds to Start.
	FileLine int `json:"file_line"`
}

// LineMap maps lines of a concatenated compile unit back to their original files.
type LineMap struct {
	// Unit is the file name of the concatenated unit as seen by the compiler.
	Unit     string        `json:"unit"`
	Segments []LineSegment `json:"segments"`
}

// Add appends a segment. Segments must be added in ascending Start order.
func (m *LineMap) Add(start, count int, file string, fileLine int) {
	if count <= 0 {
		return
	}
	m.Segments = append(m.Segments, LineSegment{Start: start, Count: count, File: file, FileLine: fileLine})
}

// Resolve maps a line of the concatenated unit to its original file and line.
// It returns false for lines outside every segment, such as generated header lines.
func (m *LineMap) Resolve(line int) (string, int, bool) {
	if m == nil {
		return "", 0, false
	}
	i := sort.Search(len(m.Segments), func(i int) bool {
		return m.Segments[i].Start+m.Segments[i].Count > line
	})
	if i == len(m.Segments) {
		return "", 0, false
	}
	seg := m.Segments[i]
	if line < seg.Start {
		return "", 0, false
	}
	return seg.File, seg.FileLine + (line - seg.Start), true
}

// Remap rewrites diagnostics that point into the concatenated unit so they point at the original file.
func (m *LineMap) Remap(ds Diagnostics) Diagnostics {
	if m == nil {
		return ds
	}
	out := make(Diagnostics, len(ds))
	for i, d := range ds {
		if d.File == m.Unit && d.Line > 0 {
			if file, line, ok := m.Resolve(d.Line); ok {
				d.File = file
				d.Line = line
			}
		}
		out[i] = d
	}
	return out
}
