package css

import (
	"fmt"
	"strings"
)

// Kind tells what construct a Rule was parsed from.
type Kind int

const (
	KindRule    Kind = iota // selector list with declaration block
	KindComment             // /* ... */
	KindAtRule              // @media, @import, @font-face, etc.
)

func (k Kind) String() string {
	switch k {
	case KindRule:
		return "rule"
	case KindComment:
		return "comment"
	case KindAtRule:
		return "at-rule"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Declaration is a single property: value pair.
type Declaration struct {
	Property string // Property name as reported by the tokenizer
	Value    string // Value tokens joined with single spaces (e.g., "url(a.png) no-repeat")
}

// Rule represents one stylesheet construct.
type Rule struct {
	Kind         Kind
	Selectors    []string      // KindRule only, comma separated parts, trimmed
	Declarations []Declaration // KindRule and block at-rules like @font-face
	Name         string        // KindAtRule: at-keyword including '@'
	Prelude      string        // KindAtRule: text between name and block or ';'
	Comment      string        // KindComment: full comment text
	Rules        []Rule        // KindAtRule: nested rules (e.g., @media contents)
}

// Stylesheet is the parsed tree. Rules is nil when the input has no
// top-level constructs at all.
type Stylesheet struct {
	Source string
	Rules  []Rule
}

// ParseError describes why stylesheet could not be parsed.
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Reason  string
	Context string // offending source line, may be empty
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteByte(':')
	}
	fmt.Fprintf(&sb, "%d:%d: %s", e.Line, e.Column, e.Reason)
	if e.Context != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Context)
	}
	return sb.String()
}
