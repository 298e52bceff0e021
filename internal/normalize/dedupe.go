// internal/normalize/dedupe.go
package normalize

// Dedupe collapses fixtures sharing an external id. For a repeated id the
// record processed last wins on content, but output position follows the
// first occurrence of the id. Downstream consumers depend on both halves of
// that behavior, so it is preserved exactly and pinned by tests.
func Dedupe(fixtures []Fixture) []Fixture {
	index := make(map[string]int, len(fixtures))
	out := make([]Fixture, 0, len(fixtures))
	for _, fixture := range fixtures {
		if at, ok := index[fixture.ExternalID]; ok {
			out[at] = fixture
			continue
		}
		index[fixture.ExternalID] = len(out)
		out = append(out, fixture)
	}
	return out
}
