// internal/extract/structured.go
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var scriptAssignPattern = regexp.MustCompile(`(?s)=\s*(\{.*\})\s*;`)

// StructuredStrategy extracts machine-readable event objects embedded in a
// page: JSON-LD blocks first, then JSON payloads inlined in plain scripts
// (__NEXT_DATA__ bootstraps, `var x = {...};` assignments). Malformed
// fragments are skipped, never fatal.
type StructuredStrategy struct{}

// NewStructuredStrategy creates the structured-data extraction strategy.
func NewStructuredStrategy() *StructuredStrategy {
	return &StructuredStrategy{}
}

func (s *StructuredStrategy) Name() string { return "structured" }

// Extract collects every SportsEvent/Event object in the page's embedded JSON,
// regardless of nesting depth.
func (s *StructuredStrategy) Extract(doc *goquery.Document) []RawEvent {
	var events []RawEvent

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		events = append(events, collectFromJSONText(sel.Text())...)
	})
	if len(events) > 0 {
		return events
	}

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		payload := extractJSONPayload(text)
		if payload == "" {
			return
		}
		events = append(events, collectFromJSONText(payload)...)
	})

	return events
}

// extractJSONPayload pulls the JSON fragment out of a script body, if any.
func extractJSONPayload(text string) string {
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}
	if idx := strings.Index(text, "__NEXT_DATA__"); idx != -1 {
		if start := strings.Index(text[idx:], "{"); start != -1 {
			return consumeBraced(text, idx+start)
		}
	}
	if m := scriptAssignPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// consumeBraced returns the balanced {...} fragment starting at start, or ""
// when the braces never close.
func consumeBraced(text string, start int) string {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func collectFromJSONText(text string) []RawEvent {
	var payload interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return nil
	}

	var events []RawEvent
	for _, obj := range collectEventObjects(payload) {
		if ev, ok := projectEvent(obj); ok {
			events = append(events, ev)
		}
	}
	return events
}

// collectEventObjects walks the whole payload, gathering every object whose
// @type discriminator marks it as an event. Sources bury the event list at
// arbitrary depths (@graph, itemListElement, framework bootstrap props), so
// the walk descends through every container.
func collectEventObjects(payload interface{}) []map[string]interface{} {
	var collected []map[string]interface{}

	switch v := payload.(type) {
	case []interface{}:
		for _, item := range v {
			collected = append(collected, collectEventObjects(item)...)
		}
	case map[string]interface{}:
		if t, _ := v["@type"].(string); t == "SportsEvent" || t == "Event" {
			collected = append(collected, v)
			return collected
		}
		for _, inner := range v {
			collected = append(collected, collectEventObjects(inner)...)
		}
	}

	return collected
}

// projectEvent maps one structured event object onto the fixed RawEvent shape.
// Home and away are attempted independently; losing either drops the record.
func projectEvent(obj map[string]interface{}) (RawEvent, bool) {
	ev := RawEvent{
		Home:   participantName(obj["homeTeam"]),
		Away:   participantName(obj["awayTeam"]),
		Venue:  venueName(obj["location"], obj["venue"]),
		Status: stringField(obj, "eventStatus", "status"),
	}
	ev.Timestamp = stringField(obj, "startDate", "startTime", "start_date")
	if name, ok := obj["name"].(string); ok && !ev.Complete() {
		if home, away, split := splitVersus(name); split {
			ev.Home, ev.Away = home, away
		}
	}
	if comp, ok := obj["superEvent"].(map[string]interface{}); ok {
		ev.Competition, _ = comp["name"].(string)
	}
	if !ev.Complete() || ev.Timestamp == "" {
		return RawEvent{}, false
	}
	return ev, true
}

// participantName digs a team name out of the shapes sources use: a plain
// string, an object with name/alternateName, or a list of such objects.
func participantName(data interface{}) string {
	switch v := data.(type) {
	case string:
		return v
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok && name != "" {
			return name
		}
		if name, ok := v["alternateName"].(string); ok {
			return name
		}
	case []interface{}:
		for _, item := range v {
			if name := participantName(item); name != "" {
				return name
			}
		}
	}
	return ""
}

func venueName(candidates ...interface{}) string {
	for _, data := range candidates {
		switch v := data.(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			if name, ok := v["name"].(string); ok && name != "" {
				return name
			}
			if addr, ok := v["address"].(string); ok && addr != "" {
				return addr
			}
		}
	}
	return ""
}

func stringField(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := obj[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

func splitVersus(name string) (home, away string, ok bool) {
	for _, sep := range []string{" x ", " × ", " vs ", " vs. ", " v "} {
		if parts := strings.SplitN(name, sep, 2); len(parts) == 2 {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
		}
	}
	return "", "", false
}
