package css

import (
	"fmt"
	"strconv"
	"strings"
)

type treeWriter struct {
	w *strings.Builder
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw treeWriter) text(depth int, label, value string) {
	for range depth {
		tw.w.WriteString("  ")
	}
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	if value != "" {
		value = strconv.Quote(value)
	}
	tw.w.WriteString(value)
	tw.w.WriteByte('\n')
}

// Dump renders parsed tree as indented text, one construct per line.
func (s *Stylesheet) Dump() string {
	tw := treeWriter{w: &strings.Builder{}}
	if s == nil {
		tw.line(0, "stylesheet <nil>")
		return tw.w.String()
	}
	tw.line(0, "stylesheet %s: %d rules", strconv.Quote(s.Source), len(s.Rules))
	tw.rules(1, s.Rules)
	return tw.w.String()
}

func (tw treeWriter) rules(depth int, rules []Rule) {
	for i, r := range rules {
		tw.line(depth, "#%d %s", i, r.Kind)
		switch r.Kind {
		case KindComment:
			tw.text(depth+1, "text", r.Comment)
		case KindAtRule:
			tw.text(depth+1, "name", r.Name)
			tw.text(depth+1, "prelude", r.Prelude)
		case KindRule:
			for _, sel := range r.Selectors {
				tw.text(depth+1, "selector", sel)
			}
		}
		for _, d := range r.Declarations {
			tw.text(depth+1, d.Property, d.Value)
		}
		tw.rules(depth+1, r.Rules)
	}
}
