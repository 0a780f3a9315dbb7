package css

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into rule trees. It keeps no state between
// calls and may be shared by goroutines.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Source identifies what is being
// parsed and is used in error messages.
func (p *Parser) Parse(data []byte, source string) (*Stylesheet, error) {
	p.log.Debug("Parsing CSS", zap.String("source", source), zap.Int("bytes", len(data)))

	input := parse.NewInput(bytes.NewReader(data))
	t := &treeBuilder{
		parser:    css.NewParser(input, false),
		input:     input,
		data:      data,
		source:    source,
		lastClose: -1,
	}

	rules, _, err := t.readRules(false)
	if err != nil {
		p.log.Debug("CSS parse error", zap.String("source", source), zap.Error(err))
		return nil, err
	}
	return &Stylesheet{Source: source, Rules: rules}, nil
}

// treeBuilder turns the flat grammar stream into nested rules.
type treeBuilder struct {
	parser *css.Parser
	input  *parse.Input
	data   []byte
	source string

	mark      int // input offset before the last grammar event
	lastClose int // offset of the last '}' which closed a block
}

func (t *treeBuilder) next() (css.GrammarType, css.TokenType, []byte) {
	t.mark = t.input.Offset()
	return t.parser.Next()
}

// closed reports if block end came from a '}' in the input. Parser also ends
// all open blocks when input is exhausted, such ends have no '}' of their own.
func (t *treeBuilder) closed(tt css.TokenType) bool {
	if tt == css.ErrorToken {
		return false
	}
	end := len(bytes.TrimRight(t.data[:min(t.input.Offset(), len(t.data))], " \t\r\n\f")) - 1
	if end <= t.lastClose || t.data[end] != '}' {
		return false
	}
	t.lastClose = end
	return true
}

// property returns declaration name as written in the input, parser reports
// it lowercased.
func (t *treeBuilder) property(data []byte) string {
	rest := t.data[min(t.mark, len(t.data)):]
	for {
		trimmed := bytes.TrimLeft(rest, " \t\r\n\f;")
		if !bytes.HasPrefix(trimmed, []byte("/*")) {
			rest = trimmed
			break
		}
		_, after, ok := bytes.Cut(trimmed[2:], []byte("*/"))
		if !ok {
			return string(data)
		}
		rest = after
	}
	if len(rest) >= len(data) && bytes.EqualFold(rest[:len(data)], data) {
		return string(rest[:len(data)])
	}
	return string(data)
}

// readRules collects rules until end of input (top level) or end of the
// enclosing at-rule block (nested). Declarations met directly inside a block
// (@font-face, @page) are returned separately.
func (t *treeBuilder) readRules(nested bool) ([]Rule, []Declaration, error) {
	var (
		rules     []Rule
		decls     []Declaration
		selectors []string
	)

	for {
		gt, tt, data := t.next()

		switch gt {
		case css.ErrorGrammar:
			if err := t.parser.Err(); err != io.EOF {
				return nil, nil, t.fail(err, data)
			}
			if nested {
				return nil, nil, t.failAtEnd("missing '}'")
			}
			return rules, decls, nil

		case css.CommentGrammar:
			if !isClosedComment(data) {
				return nil, nil, t.failAtEnd("end of comment missing")
			}
			rules = append(rules, Rule{Kind: KindComment, Comment: string(data)})

		case css.AtRuleGrammar:
			rules = append(rules, Rule{
				Kind:    KindAtRule,
				Name:    string(data),
				Prelude: joinTokens(t.parser.Values()),
			})

		case css.BeginAtRuleGrammar:
			rule := Rule{
				Kind:    KindAtRule,
				Name:    string(data),
				Prelude: joinTokens(t.parser.Values()),
			}
			children, inner, err := t.readRules(true)
			if err != nil {
				return nil, nil, err
			}
			rule.Rules, rule.Declarations = children, inner
			rules = append(rules, rule)

		case css.EndAtRuleGrammar:
			if !nested {
				continue
			}
			if !t.closed(tt) {
				return nil, nil, t.failAtEnd("missing '}'")
			}
			return rules, decls, nil

		case css.QualifiedRuleGrammar:
			// part of a selector list followed by a comma
			selectors = append(selectors, splitSelectors(data, t.parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors = append(selectors, splitSelectors(data, t.parser.Values())...)
			inner, err := t.readDeclarations()
			if err != nil {
				return nil, nil, err
			}
			rules = append(rules, Rule{Kind: KindRule, Selectors: selectors, Declarations: inner})
			selectors = nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, Declaration{Property: t.property(data), Value: joinTokens(t.parser.Values())})
		}
	}
}

// readDeclarations collects declarations until the end of the current ruleset.
// Nested blocks are consumed but not kept.
func (t *treeBuilder) readDeclarations() ([]Declaration, error) {
	var decls []Declaration

	for {
		gt, tt, data := t.next()

		switch gt {
		case css.ErrorGrammar:
			if err := t.parser.Err(); err != io.EOF {
				return nil, t.fail(err, data)
			}
			return nil, t.failAtEnd("missing '}'")

		case css.EndRulesetGrammar:
			if !t.closed(tt) {
				return nil, t.failAtEnd("missing '}'")
			}
			return decls, nil

		case css.CommentGrammar:
			if !isClosedComment(data) {
				return nil, t.failAtEnd("end of comment missing")
			}

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, Declaration{Property: t.property(data), Value: joinTokens(t.parser.Values())})

		case css.BeginRulesetGrammar:
			if _, err := t.readDeclarations(); err != nil {
				return nil, err
			}

		case css.BeginAtRuleGrammar:
			if _, _, err := t.readRules(true); err != nil {
				return nil, err
			}
		}
	}
}

// fail converts grammar error into ParseError. Err is nil when parser
// recovered from unexpected token, data then holds the token.
func (t *treeBuilder) fail(err error, data []byte) error {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return &ParseError{
			Source:  t.source,
			Line:    perr.Line,
			Column:  perr.Column,
			Reason:  perr.Message,
			Context: strings.TrimRight(perr.Context, "\n"),
		}
	}
	reason := "unexpected " + strconv.Quote(string(data))
	if err != nil {
		reason = err.Error()
	}
	line, col, context := parse.Position(bytes.NewReader(t.data), t.input.Offset())
	return &ParseError{Source: t.source, Line: line, Column: col, Reason: reason, Context: strings.TrimRight(context, "\n")}
}

func (t *treeBuilder) failAtEnd(reason string) error {
	line, col, _ := parse.Position(bytes.NewReader(t.data), len(t.data))
	return &ParseError{Source: t.source, Line: line, Column: col, Reason: reason}
}

func isClosedComment(data []byte) bool {
	return len(data) >= 4 && bytes.HasSuffix(data, []byte("*/"))
}

// joinTokens rebuilds source text from tokens collapsing whitespace runs and
// dropping comments.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	writeTokens(&sb, tokens)
	return strings.TrimSpace(sb.String())
}

func writeTokens(sb *strings.Builder, tokens []css.Token) {
	space := false
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			space = true
		case css.CommentToken:
		default:
			if space {
				sb.WriteByte(' ')
				space = false
			}
			sb.Write(t.Data)
		}
	}
	if space {
		sb.WriteByte(' ')
	}
}

// splitSelectors splits selector text by top level commas, commas inside
// brackets, parentheses and strings are kept.
func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	writeTokens(&sb, values)
	text := sb.String()

	var (
		selectors []string
		depth     int
		quote     rune
		start     int
	)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	for i, r := range text {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			add(text[start:i])
			start = i + 1
		}
	}
	add(text[start:])
	return selectors
}
