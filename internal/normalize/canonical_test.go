// internal/normalize/canonical_test.go
package normalize

import "testing"

func testAliases() map[string]string {
	return map[string]string{
		"cruzeiro":         "Cruzeiro",
		"cruzeiro ec":      "Cruzeiro",
		"atletico-mg":      "Atletico-MG",
		"atletico mineiro": "Atletico-MG",
		"galo":             "Atletico-MG",
		"america-mg":       "America-MG",
		"america mineiro":  "America-MG",
		"coelho":           "America-MG",
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "cruzeiro", "cruzeiro"},
		{"diacritics stripped", "Atlético-MG", "atleticomg"},
		{"punctuation removed", "América - MG", "americamg"},
		{"digits kept", "Sub-20", "sub20"},
		{"empty", "", ""},
		{"only punctuation", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.in); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	canon := NewCanonicalizer(testAliases())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact", "Cruzeiro", "Cruzeiro"},
		{"accented spelling", "Atlético-MG", "Atletico-MG"},
		{"full name", "Atletico Mineiro", "Atletico-MG"},
		{"nickname", "galo", "Atletico-MG"},
		{"nickname other club", "Coelho", "America-MG"},
		{"suffixed variant", "Cruzeiro EC Sub-20", "Cruzeiro"},
		{"whitespace trimmed", "  Cruzeiro  ", "Cruzeiro"},
		{"fuzzy typo", "Cruzero", "Cruzeiro"},
		{"unknown passes through", "Villa Nova", "Villa Nova"},
		{"unknown trimmed", "  Villa Nova ", "Villa Nova"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canon.Canonicalize(tt.in); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	canon := NewCanonicalizer(testAliases())
	inputs := []string{"Atlético Mineiro", "galo", "Cruzeiro", "Villa Nova"}

	for _, in := range inputs {
		once := canon.Canonicalize(in)
		twice := canon.Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCanonicalizeAliasesAgree(t *testing.T) {
	canon := NewCanonicalizer(testAliases())
	spellings := []string{"Atlético-MG", "atletico mineiro", "galo"}

	want := canon.Canonicalize(spellings[0])
	for _, spelling := range spellings[1:] {
		if got := canon.Canonicalize(spelling); got != want {
			t.Errorf("Canonicalize(%q) = %q, want %q", spelling, got, want)
		}
	}
}

func TestKey(t *testing.T) {
	canon := NewCanonicalizer(testAliases())

	if got := canon.Key("Atlético Mineiro"); got != "atleticomg" {
		t.Errorf("Key(Atlético Mineiro) = %q, want atleticomg", got)
	}
	if canon.Key("galo") != canon.Key("Atletico-MG") {
		t.Errorf("alias and canonical name must share a key")
	}
}

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"cruzeiro", "cruzeiro", 1.0, 1.0},
		{"cruzero", "cruzeiro", FuzzyThreshold, 1.0},
		{"flamengo", "cruzeiro", 0, FuzzyThreshold},
		{"", "cruzeiro", 0, 0},
	}

	for _, tt := range tests {
		got := similarityRatio(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("similarityRatio(%q, %q) = %.3f, want within [%.3f, %.3f]",
				tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}
