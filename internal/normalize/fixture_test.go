// internal/normalize/fixture_test.go
package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/bhzfoot/fixturebot/internal/extract"
)

func testNormalizer(t *testing.T) (*Normalizer, Window) {
	t.Helper()
	loc := saoPaulo(t)
	canon := NewCanonicalizer(testAliases())
	resolver := NewDateTimeResolver(loc)
	win := NewWindow(
		time.Date(2026, time.March, 1, 0, 0, 0, 0, loc),
		time.Date(2026, time.August, 1, 0, 0, 0, 0, loc),
		loc,
	)
	return NewNormalizer(canon, resolver, nil), win
}

func TestNormalize(t *testing.T) {
	n, win := testNormalizer(t)
	src := SourceInfo{Tag: "scoreboard", Label: "ge.globo.com", Competition: "Campeonato Mineiro"}

	fixture, err := n.Normalize(extract.RawEvent{
		Home:      "Cruzeiro EC",
		Away:      "Atlético Mineiro",
		DateToken: "15/03",
		TimeToken: "16:00",
		Venue:     "Mineirão",
	}, src, win)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if fixture.HomeTeam != "Cruzeiro" || fixture.AwayTeam != "Atletico-MG" {
		t.Errorf("teams = %s x %s, want Cruzeiro x Atletico-MG", fixture.HomeTeam, fixture.AwayTeam)
	}
	if fixture.MatchDatetime != "2026-03-15 16:00:00" {
		t.Errorf("datetime = %s, want 2026-03-15 16:00:00", fixture.MatchDatetime)
	}
	if fixture.Competition != "Campeonato Mineiro" {
		t.Errorf("competition = %s, want the source fallback", fixture.Competition)
	}
	if fixture.Status != "scheduled" {
		t.Errorf("status = %s, want scheduled default", fixture.Status)
	}
	if fixture.Source != "ge.globo.com" {
		t.Errorf("source = %s, want ge.globo.com", fixture.Source)
	}
	if len(fixture.ExternalID) != 40 {
		t.Errorf("derived external id should be a sha1 hex digest, got %q", fixture.ExternalID)
	}
}

func TestNormalizeStableIdentity(t *testing.T) {
	n, win := testNormalizer(t)
	src := SourceInfo{Tag: "scoreboard", Label: "ge.globo.com", Competition: "Campeonato Mineiro"}

	// Different spellings of the same match must hash to the same id.
	first, err := n.Normalize(extract.RawEvent{
		Home: "Cruzeiro", Away: "Atlético-MG", DateToken: "15/03", TimeToken: "16:00",
	}, src, win)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := n.Normalize(extract.RawEvent{
		Home: "Cruzeiro EC", Away: "Atletico Mineiro", DateToken: "15/03", TimeToken: "16:00",
	}, src, win)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if first.ExternalID != second.ExternalID {
		t.Errorf("spelling variants produced different ids: %s vs %s",
			first.ExternalID, second.ExternalID)
	}
}

func TestNormalizeNativeID(t *testing.T) {
	n, win := testNormalizer(t)
	src := SourceInfo{Tag: "eventsapi", Label: "api.example.com", Competition: "Série A"}

	fixture, err := n.Normalize(extract.RawEvent{
		Home:      "Cruzeiro",
		Away:      "America-MG",
		Timestamp: "2026-03-15T19:00:00Z",
		EventID:   "12345",
	}, src, win)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if fixture.ExternalID != "eventsapi|12345" {
		t.Errorf("external id = %s, want eventsapi|12345", fixture.ExternalID)
	}
}

func TestNormalizeIncomplete(t *testing.T) {
	n, win := testNormalizer(t)
	src := SourceInfo{Tag: "scoreboard"}

	tests := []struct {
		name string
		ev   extract.RawEvent
	}{
		{"missing away", extract.RawEvent{Home: "Cruzeiro", DateToken: "15/03"}},
		{"missing home", extract.RawEvent{Away: "Cruzeiro", DateToken: "15/03"}},
		{"no date at all", extract.RawEvent{Home: "Cruzeiro", Away: "Galo"}},
		{"bad timestamp", extract.RawEvent{Home: "Cruzeiro", Away: "Galo", Timestamp: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := n.Normalize(tt.ev, src, win); err == nil {
				t.Errorf("Normalize(%+v) succeeded, want error", tt.ev)
			}
		})
	}
}

func TestNormalizeTimestampMidnightFlagged(t *testing.T) {
	n, win := testNormalizer(t)
	src := SourceInfo{Tag: "eventsapi"}

	fixture, err := n.Normalize(extract.RawEvent{
		Home: "Cruzeiro", Away: "Galo",
		Timestamp: "2026-03-15 00:00:00", EventID: "1",
	}, src, win)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if fixture.Inference&TimeDefaulted == 0 {
		t.Errorf("midnight timestamp should be flagged TimeDefaulted")
	}
}

func TestBuildExternalID(t *testing.T) {
	a := BuildExternalID("scoreboard", "Mineiro", "Cruzeiro", "Galo", "2026-03-15 16:00:00", "Mineirão")
	b := BuildExternalID("scoreboard", "mineiro", "CRUZEIRO", "galo", "2026-03-15 16:00:00", "mineirão")
	if a != b {
		t.Errorf("id derivation must be case-insensitive: %s vs %s", a, b)
	}

	c := BuildExternalID("scoreboard", "Mineiro", "Cruzeiro", "Galo", "2026-03-22 16:00:00", "Mineirão")
	if a == c {
		t.Errorf("different datetimes must produce different ids")
	}

	if !isHex(a) || len(a) != 40 {
		t.Errorf("id %q is not a sha1 hex digest", a)
	}
}

func isHex(s string) bool {
	return strings.Trim(s, "0123456789abcdef") == ""
}
