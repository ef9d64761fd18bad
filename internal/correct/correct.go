// Package correct repairs systematic OCR misreads in item names.
//
// The rules are narrow rewrites tuned to how Tesseract confuses I, l and 1 (and
// O and 0) in the item vocabulary. They are not a spell checker.
package correct

import "regexp"

// maxPasses bounds the fixpoint loop. Every rule removes a confusable character,
// so real inputs settle in two or three passes.
const maxPasses = 8

// Rule is a single named rewrite
type Rule struct {
	Name  string
	Apply func(string) string
}

func replace(pattern, repl string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(s string) string {
		return re.ReplaceAllString(s, repl)
	}
}

// DefaultRules returns the rewrite chain in application order. Plate codes must
// run before digit-dot repair or 68I3 would become 68.3.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "m4a1", Apply: replace(`(?i)M4A[Il]`, "M4A1")},
		{Name: "m4a1-short", Apply: replace(`(?i)\bM4[Il]\b`, "M4A1")},
		{Name: "ak-10x", Apply: replace(`(?i)\bAK[Il](0\d)\b`, "AK1${1}")},
		{Name: "ak-7x-full", Apply: replace(`(?i)\bAK[Il](7\d)`, "AK${1}")},
		{Name: "ak-7x", Apply: replace(`(?i)\bAK[Il](\d)([a-z]*)\b`, "AK7${1}${2}")},
		{Name: "6b13", Apply: replace(`(?i)6[B8][Il]3`, "6B13")},
		{Name: "6b13-digits", Apply: replace(`(?i)6813`, "6B13")},
		{Name: "adar", Apply: replace(`(?i)A[O0]AR`, "ADAR")},
		{Name: "reap-ir", Apply: replace(`(?i)REAP[- ]?[Il]R`, "REAP-IR")},
		{Name: "mpx-1", Apply: replace(`(?i)MPX[- ]?[Il]\b`, "MPX-1")},
		{Name: "gen4", Apply: replace(`(?i)Gen[Il]\b`, "Gen4")},
		{Name: "digit-dot", Apply: replace(`(\d)[Il](\d)`, "${1}.${2}")},
		{Name: "leading-dot", Apply: replace(`\b[Il]\.(\d)`, "1.${1}")},
	}
}

// Corrector applies rules in a fixed order until the text stops changing
type Corrector struct {
	rules []Rule
}

// New creates a corrector with the given rules, or DefaultRules when none are given
func New(rules ...Rule) *Corrector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Corrector{rules: rules}
}

// Correct returns the repaired text. Text no rule matches is returned unchanged.
// The chain repeats until a fixpoint, so Correct(Correct(s)) == Correct(s).
func (c *Corrector) Correct(text string) string {
	for i := 0; i < maxPasses; i++ {
		next := c.once(text)
		if next == text {
			return text
		}
		text = next
	}
	return text
}

func (c *Corrector) once(text string) string {
	for _, r := range c.rules {
		text = r.Apply(text)
	}
	return text
}

// Rules returns the configured rules in order
func (c *Corrector) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
