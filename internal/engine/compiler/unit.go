package compiler

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
)

// EntryAlias is the exported function through which a library unit exposes the
// entry script's main function.
const EntryAlias = "ScriptMain"

// UnitOptions controls how a request is concatenated.
type UnitOptions struct {
	// Package is the package clause of the generated unit.
	Package string
	// FileName is the name the compiler sees for the generated unit.
	FileName string
	// AliasEntry adds EntryAlias when the entry script declares main.
	AliasEntry bool
	// RenameEntry renames the entry script's main to EntryAlias instead, so the unit
	// declares no main function at all.
	RenameEntry bool
}

// Unit is the single Go file produced from a compile request.
type Unit struct {
	Source []byte
	Lines  *domain.LineMap
	// Entry names the function that runs the entry script, or "" if it has none.
	Entry string
}

type importLine struct {
	name string
	path string
}

type edit struct {
	offset int
	length int
	text   string
}

// Concatenate merges the units of req into one file. Imports are merged, each unit body is
// preceded by a //line directive, imported main functions are renamed unless preserved,
// and edge rename maps are applied to the imported unit. Syntax errors are returned as
// diagnostics against the original files.
func Concatenate(req *domain.CompileRequest, opts UnitOptions) (*Unit, domain.Diagnostics) {
	var (
		imports []importLine
		bodies  bytes.Buffer
		diags   domain.Diagnostics
		hasMain bool
	)
	lines := &domain.LineMap{Unit: opts.FileName}

	type segment struct {
		start, count, fileLine int
		file                   string
	}
	var segments []segment
	bodyLine := 0

	for i, u := range req.Units {
		if u.Missing {
			continue
		}
		fset := token.NewFileSet()
		f, err := parser.ParseFile(fset, u.Path, u.Text, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			diags = append(diags, syntaxDiagnostics(err, u.Path)...)
			continue
		}
		tf := fset.File(f.Pos())

		end := f.Name.End()
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.IMPORT {
				continue
			}
			end = max(end, gd.End())
			for _, spec := range gd.Specs {
				is := spec.(*ast.ImportSpec)
				line := importLine{path: is.Path.Value}
				if is.Name != nil {
					line.name = is.Name.Name
				}
				if !slices.Contains(imports, line) {
					imports = append(imports, line)
				}
			}
		}

		edits := unitEdits(f, tf, req, i, opts)
		if i == 0 && declaresMain(f) {
			hasMain = true
		}

		startLine := tf.Line(end)
		lineStart := tf.Offset(tf.LineStart(startLine))
		bodyStart := tf.Offset(end)

		src := []byte(u.Text)
		for _, e := range slices.Backward(edits) {
			if e.offset < bodyStart {
				continue
			}
			src = slices.Concat(src[:e.offset], []byte(e.text), src[e.offset+e.length:])
		}
		for k := lineStart; k < bodyStart; k++ {
			if src[k] != '\t' {
				src[k] = ' '
			}
		}
		body := src[lineStart:]
		if len(body) == 0 || body[len(body)-1] != '\n' {
			body = append(body, '\n')
		}

		bodies.WriteString(lineDirective(u.Path, startLine))
		bodyLine++
		count := bytes.Count(body, []byte{'\n'})
		segments = append(segments, segment{start: bodyLine + 1, count: count, file: u.Path, fileLine: startLine})
		bodies.Write(body)
		bodyLine += count
	}

	if len(diags) > 0 {
		return nil, diags
	}

	var header bytes.Buffer
	header.WriteString(lineDirective(opts.FileName, 2))
	header.WriteString("// Code generated by gscript. DO NOT EDIT.\n\n")
	header.WriteString("package " + opts.Package + "\n\n")
	if len(imports) > 0 {
		header.WriteString("import (\n")
		for _, imp := range imports {
			header.WriteString("\t")
			if imp.name != "" {
				header.WriteString(imp.name + " ")
			}
			header.WriteString(imp.path + "\n")
		}
		header.WriteString(")\n\n")
	}
	headerLines := bytes.Count(header.Bytes(), []byte{'\n'})

	for _, s := range segments {
		lines.Add(headerLines+s.start, s.count, s.file, s.fileLine)
	}

	var out bytes.Buffer
	out.Write(header.Bytes())
	out.Write(bodies.Bytes())

	unit := &Unit{Lines: lines}
	switch {
	case hasMain && opts.RenameEntry:
		unit.Entry = EntryAlias
	case hasMain && opts.AliasEntry:
		footerLine := headerLines + bodyLine + 2
		out.WriteString(lineDirective(opts.FileName, footerLine))
		out.WriteString("func " + EntryAlias + "() { main() }\n")
		unit.Entry = EntryAlias
	case hasMain:
		unit.Entry = "main"
	}
	unit.Source = out.Bytes()
	return unit, nil
}

// lineDirective positions the next line at file:line, column 1. A directive without a
// column leaves columns unknown until the next directive.
func lineDirective(file string, line int) string {
	return "//line " + file + ":" + strconv.Itoa(line) + ":1\n"
}

// unitEdits returns the identifier rewrites for the unit at index i, in offset order.
func unitEdits(f *ast.File, tf *token.File, req *domain.CompileRequest, i int, opts UnitOptions) []edit {
	u := req.Units[i]
	renames := make(map[string]string)
	for _, e := range req.Edges {
		if e.To != u.Path {
			continue
		}
		for from, to := range e.RenameMap {
			renames[from] = to
		}
	}

	var mainName string
	switch {
	case i == 0 && opts.RenameEntry:
		mainName = EntryAlias
	case i > 0 && !req.PreserveMain(u.Path):
		mainName = "main_" + strconv.Itoa(i)
	}

	var edits []edit
	if mainName != "" {
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if ok && fd.Recv == nil && fd.Name.Name == "main" {
				edits = append(edits, edit{
					offset: tf.Offset(fd.Name.Pos()),
					length: len("main"),
					text:   mainName,
				})
			}
		}
	}

	if len(renames) > 0 {
		var visit func(ast.Node) bool
		visit = func(n ast.Node) bool {
			switch x := n.(type) {
			case *ast.SelectorExpr:
				ast.Inspect(x.X, visit)
				return false
			case *ast.Ident:
				if to, ok := renames[x.Name]; ok {
					edits = append(edits, edit{offset: tf.Offset(x.Pos()), length: len(x.Name), text: to})
				}
			}
			return true
		}
		for _, decl := range f.Decls {
			ast.Inspect(decl, visit)
		}
	}

	slices.SortFunc(edits, func(a, b edit) int { return a.offset - b.offset })
	return slices.CompactFunc(edits, func(a, b edit) bool { return a.offset == b.offset })
}

func declaresMain(f *ast.File) bool {
	for _, decl := range f.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Recv == nil && fd.Name.Name == "main" {
			return true
		}
	}
	return false
}

func syntaxDiagnostics(err error, path string) domain.Diagnostics {
	var list scanner.ErrorList
	if !errors.As(err, &list) {
		return domain.Diagnostics{{File: path, Message: err.Error()}}
	}
	out := make(domain.Diagnostics, 0, len(list))
	for _, e := range list {
		out = append(out, domain.Diagnostic{
			File:    e.Pos.Filename,
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
			Message: e.Msg,
		})
	}
	return out
}

// Diagnose converts a compiler error into diagnostics mapped through lines.
func Diagnose(err error, lines *domain.LineMap) domain.Diagnostics {
	var list scanner.ErrorList
	if errors.As(err, &list) {
		return Remap(syntaxDiagnostics(list, ""), lines)
	}
	msg := strings.TrimSpace(err.Error())
	return ParseDiagnostics(msg, lines)
}
