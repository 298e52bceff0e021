// internal/normalize/dedupe_test.go
package normalize

import "testing"

func TestDedupe(t *testing.T) {
	fixtures := []Fixture{
		{ExternalID: "a", Venue: "Mineirão"},
		{ExternalID: "b", Venue: "Arena MRV"},
		{ExternalID: "a", Venue: "Independência"},
		{ExternalID: "c", Venue: "Kleber Andrade"},
	}

	got := Dedupe(fixtures)

	if len(got) != 3 {
		t.Fatalf("expected 3 fixtures, got %d", len(got))
	}

	// Last occurrence wins on content.
	if got[0].ExternalID != "a" || got[0].Venue != "Independência" {
		t.Errorf("got[0] = %+v, want id a with the later venue", got[0])
	}
	// Position follows first occurrence.
	if got[1].ExternalID != "b" || got[2].ExternalID != "c" {
		t.Errorf("order = [%s %s %s], want [a b c]",
			got[0].ExternalID, got[1].ExternalID, got[2].ExternalID)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	fixtures := []Fixture{
		{ExternalID: "a"},
		{ExternalID: "b"},
		{ExternalID: "a"},
	}

	once := Dedupe(fixtures)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ExternalID != twice[i].ExternalID {
			t.Errorf("second pass changed order at %d", i)
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Dedupe(nil) = %v, want empty", got)
	}
}
