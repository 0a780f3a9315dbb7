package stats

import (
	"regexp"
	"slices"
	"strings"

	"cssstat/css"
)

var (
	reBackgroundSelector = regexp.MustCompile(`(?i)color-\d-background`)
	reColorSelector      = regexp.MustCompile(`(?i)color-\d[^-]`)
)

// IsBackgroundSelector reports whether selector refers to a background color class.
func IsBackgroundSelector(selector string) bool {
	return reBackgroundSelector.MatchString(selector)
}

// IsColorSelector reports whether selector refers to a color class. A digit
// followed by '-' does not count, so most background selectors are not color
// selectors, but a rule may still match both.
func IsColorSelector(selector string) bool {
	return reColorSelector.MatchString(selector)
}

// IsBackgroundImageDeclaration reports whether declaration sets a background
// to an image.
func IsBackgroundImageDeclaration(d css.Declaration) bool {
	return strings.HasPrefix(d.Property, "background") && strings.HasPrefix(d.Value, "url")
}

// Extract folds top-level rules of the sheet into a copy of base.
func Extract(base Record, sheet *css.Stylesheet) Record {
	if sheet == nil || len(sheet.Rules) == 0 {
		base.EmptyStylesheet = 1
		return base
	}

	stat := base
	for _, rule := range sheet.Rules {
		if slices.ContainsFunc(rule.Selectors, IsBackgroundSelector) {
			stat.BackgroundSelectors++
			if slices.ContainsFunc(rule.Declarations, IsBackgroundImageDeclaration) {
				stat.BackgroundIsOverriddenWithImage++
			}
		}
		if slices.ContainsFunc(rule.Selectors, IsColorSelector) {
			stat.ColorSelectors++
		}
	}
	return stat
}
