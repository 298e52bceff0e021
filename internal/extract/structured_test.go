// internal/extract/structured_test.go
package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing test HTML: %v", err)
	}
	return doc
}

func TestStructuredExtractLDJSON(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {
      "@type": "SportsEvent",
      "name": "Cruzeiro x Atlético-MG",
      "startDate": "2026-03-15T16:00:00-03:00",
      "homeTeam": {"name": "Cruzeiro"},
      "awayTeam": {"name": "Atlético-MG"},
      "location": {"name": "Mineirão"}
    },
    {
      "@type": "SportsEvent",
      "startDate": "2026-03-22T18:30:00-03:00",
      "homeTeam": "América-MG",
      "awayTeam": "Tombense"
    }
  ]
}
</script>
</head><body></body></html>`

	events := NewStructuredStrategy().Extract(parseHTML(t, html))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.Home != "Cruzeiro" || first.Away != "Atlético-MG" {
		t.Errorf("teams = %s x %s", first.Home, first.Away)
	}
	if first.Timestamp != "2026-03-15T16:00:00-03:00" {
		t.Errorf("timestamp = %s", first.Timestamp)
	}
	if first.Venue != "Mineirão" {
		t.Errorf("venue = %s", first.Venue)
	}

	second := events[1]
	if second.Home != "América-MG" || second.Away != "Tombense" {
		t.Errorf("string-shaped teams = %s x %s", second.Home, second.Away)
	}
}

func TestStructuredExtractTeamsFromName(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
{"@type": "Event", "name": "Cruzeiro x Galo", "startDate": "2026-03-15T16:00:00"}
</script></head><body></body></html>`

	events := NewStructuredStrategy().Extract(parseHTML(t, html))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Home != "Cruzeiro" || events[0].Away != "Galo" {
		t.Errorf("teams from name = %s x %s", events[0].Home, events[0].Away)
	}
}

func TestStructuredExtractNextData(t *testing.T) {
	html := `<html><body>
<script>window.__NEXT_DATA__ = {"props":{"events":[
  {"@type":"SportsEvent","startDate":"2026-04-02T19:00:00","homeTeam":{"name":"Cruzeiro"},"awayTeam":{"name":"Flamengo"}}
]}};</script>
</body></html>`

	events := NewStructuredStrategy().Extract(parseHTML(t, html))
	if len(events) != 1 {
		t.Fatalf("expected 1 event from __NEXT_DATA__, got %d", len(events))
	}
	if events[0].Away != "Flamengo" {
		t.Errorf("away = %s, want Flamengo", events[0].Away)
	}
}

func TestStructuredExtractSkipsIncomplete(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
{"@graph": [
  {"@type": "SportsEvent", "homeTeam": {"name": "Cruzeiro"}, "startDate": "2026-03-15T16:00:00"},
  {"@type": "SportsEvent", "homeTeam": {"name": "Cruzeiro"}, "awayTeam": {"name": "Galo"}},
  {"@type": "Article", "name": "Cruzeiro x Galo preview"}
]}
</script></head><body></body></html>`

	// Missing away, missing timestamp, wrong @type: all dropped.
	if events := NewStructuredStrategy().Extract(parseHTML(t, html)); len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestStructuredExtractMalformedJSON(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">{not json at all</script>
<script type="application/ld+json">
{"@type":"SportsEvent","startDate":"2026-03-15T16:00:00","homeTeam":"A","awayTeam":"B"}
</script>
</head><body></body></html>`

	events := NewStructuredStrategy().Extract(parseHTML(t, html))
	if len(events) != 1 {
		t.Fatalf("malformed block must be skipped, got %d events", len(events))
	}
}

func TestConsumeBraced(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"balanced", `{"a":{"b":1}}`, `{"a":{"b":1}}`},
		{"trailing junk", `{"a":1};more`, `{"a":1}`},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`},
		{"escaped quote", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"never closes", `{"a":1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := consumeBraced(tt.in, 0); got != tt.want {
				t.Errorf("consumeBraced(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
