package gotool

import (
	"strings"
)

// Placeholders recognized in configured argument templates.
const (
	PlaceholderOutput     = "{output}"
	PlaceholderSources    = "{sources}"
	PlaceholderReferences = "{references}"
	PlaceholderFlags      = "{flags}"
	PlaceholderResources  = "{resources}"
)

// ExpandArgs substitutes placeholders in templates. A template that is exactly one
// placeholder expands to one argument per value, or to none; a placeholder embedded in a
// longer template is replaced by its values joined with spaces.
func ExpandArgs(templates []string, values map[string][]string) []string {
	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		if vals, ok := values[tmpl]; ok {
			out = append(out, vals...)
			continue
		}
		arg := tmpl
		for key, vals := range values {
			arg = strings.ReplaceAll(arg, key, strings.Join(vals, " "))
		}
		out = append(out, arg)
	}
	return out
}
