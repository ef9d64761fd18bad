package correct

import "testing"

func TestCorrect(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"m4a1 trailing I", "M4AI", "M4A1"},
		{"m4a1 trailing l", "M4Al", "M4A1"},
		{"m4a1 lowercase", "m4ai", "M4A1"},
		{"m4a1 missing A", "Colt M4I assault rifle", "Colt M4A1 assault rifle"},
		{"ak74", "AKI4", "AK74"},
		{"ak74 with suffix", "AKI4N", "AK74N"},
		{"ak102", "AKI02", "AK102"},
		{"ak74 read in full", "AKI74", "AK74"},
		{"ak74 in full with suffix", "AKI74N", "AK74N"},
		{"ak74 in full lowercase l", "Kalashnikov AKl74M", "Kalashnikov AK74M"},
		{"plate BI", "6BI3", "6B13"},
		{"plate digits", "6813 plate", "6B13 plate"},
		{"plate 8I", "68I3", "6B13"},
		{"adar letter O", "AOAR", "ADAR"},
		{"adar zero", "A0AR", "ADAR"},
		{"reap-ir space", "Trijicon REAP IR", "Trijicon REAP-IR"},
		{"reap-ir glued", "REAPlR", "REAP-IR"},
		{"mpx-1 space", "MPX I", "MPX-1"},
		{"mpx-1 hyphen", "MPX-l", "MPX-1"},
		{"gen4", "GenI", "Gen4"},
		{"digit dot", "5I45x39", "5.45x39"},
		{"digit dot repeated", "1I2I3", "1.2.3"},
		{"leading dot", "I.56", "1.56"},
		{"no match", "Salewa first aid kit", "Salewa first aid kit"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Correct(tt.in); got != tt.want {
				t.Errorf("Correct(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCorrectIsIdempotent(t *testing.T) {
	c := New()

	inputs := []string{
		"M4AI", "M4I", "AKI4", "AKI74", "AKI74N", "AKI02", "6BI3", "6813", "68I3", "AOAR",
		"REAP IR", "MPX I", "GenI", "5I45", "1I2I3I4I5", "I.56", "Il.I1",
		"lllIIIlll", "AKIAKI4", "M4AIM4I", "6813813", "Salewa", "",
	}
	for _, in := range inputs {
		once := c.Correct(in)
		twice := c.Correct(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestRulesIndividually(t *testing.T) {
	byName := map[string]Rule{}
	for _, r := range DefaultRules() {
		byName[r.Name] = r
	}

	tests := []struct {
		rule string
		in   string
		want string
	}{
		{"m4a1", "M4AI", "M4A1"},
		{"ak-7x", "AKI4", "AK74"},
		{"ak-7x-full", "AKI74N", "AK74N"},
		{"6b13", "6BI3", "6B13"},
		{"digit-dot", "68I3", "68.3"},
		{"leading-dot", "I.5", "1.5"},
	}

	for _, tt := range tests {
		r, ok := byName[tt.rule]
		if !ok {
			t.Fatalf("rule %q not found", tt.rule)
		}
		if got := r.Apply(tt.in); got != tt.want {
			t.Errorf("%s(%q) = %q, want %q", tt.rule, tt.in, got, tt.want)
		}
	}
}

func TestCustomRules(t *testing.T) {
	var gen Rule
	for _, r := range DefaultRules() {
		if r.Name == "gen4" {
			gen = r
		}
	}
	c := New(Rule{Name: "only-gen", Apply: gen.Apply})

	if got := c.Correct("M4AI GenI"); got != "M4AI Gen4" {
		t.Errorf("expected only the custom rule applied, got %q", got)
	}
	if n := len(c.Rules()); n != 1 {
		t.Errorf("expected 1 rule, got %d", n)
	}
}
