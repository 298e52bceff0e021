// internal/extract/textual.go
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextConfig names the section markers the flat-text scan anchors on.
type TextConfig struct {
	// SectionMarkers open the upcoming-matches block.
	SectionMarkers []string
	// EndMarkers terminate it; end of text otherwise.
	EndMarkers []string
	// TeamSeparators split a candidate item into home and away, tried in order.
	TeamSeparators []string
}

// DefaultTextConfig returns the markers the supported sources render.
func DefaultTextConfig() TextConfig {
	return TextConfig{
		SectionMarkers: []string{"Upcoming matches:", "Próximas partidas:"},
		EndMarkers:     []string{"Show more", "Mostrar mais", "See more", "Ver mais"},
		TeamSeparators: []string{" v ", " x ", " - "},
	}
}

// TextStrategy is the last-resort extractor: it flattens the whole page to
// text, locates a known section marker, and splits the section into
// comma-delimited candidate match strings. Items without a recognizable date
// or a clean two-way team split are discarded.
type TextStrategy struct {
	cfg TextConfig
}

// NewTextStrategy creates the free-text fallback strategy.
func NewTextStrategy(cfg TextConfig) *TextStrategy {
	if len(cfg.SectionMarkers) == 0 {
		cfg = DefaultTextConfig()
	}
	return &TextStrategy{cfg: cfg}
}

func (t *TextStrategy) Name() string { return "text" }

func (t *TextStrategy) Extract(doc *goquery.Document) []RawEvent {
	return t.ExtractText(flattenText(doc.Selection))
}

// ExtractText runs the scan over an already-flattened text blob.
func (t *TextStrategy) ExtractText(text string) []RawEvent {
	section := t.section(text)
	if section == "" {
		return nil
	}

	var events []RawEvent
	for _, item := range strings.Split(section, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if ev, ok := t.parseItem(item); ok {
			events = append(events, ev)
		}
	}
	return events
}

// section cuts the text between the first section marker found and the nearest
// end marker after it.
func (t *TextStrategy) section(text string) string {
	for _, marker := range t.cfg.SectionMarkers {
		start := strings.Index(text, marker)
		if start == -1 {
			continue
		}
		start += len(marker)
		end := len(text)
		for _, endMarker := range t.cfg.EndMarkers {
			if idx := strings.Index(text[start:], endMarker); idx != -1 && start+idx < end {
				end = start + idx
			}
		}
		return strings.TrimSpace(text[start:end])
	}
	return ""
}

// parseItem extracts a day/month token and a two-way team split from one
// candidate item, e.g. "15.03. Cruzeiro v Atletico-MG".
func (t *TextStrategy) parseItem(item string) (RawEvent, bool) {
	loc := datePattern.FindStringIndex(item)
	if loc == nil {
		return RawEvent{}, false
	}
	dateToken := item[loc[0]:loc[1]]
	rest := strings.Trim(item[loc[1]:], " .-–•")

	for _, sep := range t.cfg.TeamSeparators {
		parts := strings.SplitN(rest, sep, 2)
		if len(parts) != 2 {
			continue
		}
		home := strings.TrimSpace(parts[0])
		away := strings.TrimSpace(parts[1])
		if home == "" || away == "" {
			continue
		}
		return RawEvent{Home: home, Away: away, DateToken: dateToken}, true
	}
	return RawEvent{}, false
}
