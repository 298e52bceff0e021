// internal/extract/heuristic.go
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	versusPattern = regexp.MustCompile(`\s+[x×]\s+|\s+vs\.?\s+`)
	datePattern   = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})\b`)
	timePattern   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	trailingDecor = regexp.MustCompile(`\s+[•\-(].*$`)
	containsDigit = regexp.MustCompile(`\d`)
)

// HeuristicConfig carries the layout knowledge the DOM scan relies on. It is
// injected at construction and never mutated afterwards.
type HeuristicConfig struct {
	// SectionKeywords select round/games sections by heading text.
	SectionKeywords []string
	// ParticipantSelectors are tried in order against a card before falling
	// back to splitting the card text on the versus separator.
	HomeSelectors []string
	AwaySelectors []string
	// VenueMarkers are known stadium-name substrings, lower case.
	VenueMarkers []string
	// DateAttributes and TimeAttributes are data attributes preferred over
	// visible text when present on a card.
	DateAttributes []string
	TimeAttributes []string
}

// DefaultHeuristicConfig returns the layout knowledge for the supported
// Brazilian football sources.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		SectionKeywords: []string{"jogos", "rodada", "games", "round"},
		HomeSelectors: []string{
			".event__participant--home .event__participant__name",
			".event__participant--home",
		},
		AwaySelectors: []string{
			".event__participant--away .event__participant__name",
			".event__participant--away",
		},
		VenueMarkers: []string{
			"mineirão", "mineirao", "arena", "independência", "independencia",
			"estádio", "estadio", "soares", "itacolomi", "castelão", "castelao",
		},
		DateAttributes: []string{"data-event-date", "data-date"},
		TimeAttributes: []string{"data-event-time", "data-time"},
	}
}

// HeuristicStrategy scans DOM card/section structures for team-name pairs,
// date and time tokens, and venue hints. It is the fallback when a page embeds
// no structured data. First selector or split that yields non-empty text wins;
// there is no scoring across alternatives.
type HeuristicStrategy struct {
	cfg HeuristicConfig
}

// NewHeuristicStrategy creates the DOM-heuristic extraction strategy.
func NewHeuristicStrategy(cfg HeuristicConfig) *HeuristicStrategy {
	if len(cfg.SectionKeywords) == 0 {
		cfg = DefaultHeuristicConfig()
	}
	return &HeuristicStrategy{cfg: cfg}
}

func (h *HeuristicStrategy) Name() string { return "heuristic" }

// Extract walks candidate sections and parses every card that yields both team
// names. Returns an empty slice when no card does.
func (h *HeuristicStrategy) Extract(doc *goquery.Document) []RawEvent {
	var events []RawEvent
	for _, section := range h.locateSections(doc) {
		section.Find("article, li, div").Each(func(_ int, card *goquery.Selection) {
			// Skip containers that merely wrap a candidate card, otherwise
			// the same match is reported once per ancestor.
			if card.Find("article, li").Length() > 0 {
				return
			}
			if ev, ok := h.parseCard(card); ok {
				events = append(events, ev)
			}
		})
	}
	return dedupeRawEvents(events)
}

// locateSections finds round/games containers by heading text, falling back to
// a class-based selector and finally the whole document.
func (h *HeuristicStrategy) locateSections(doc *goquery.Document) []*goquery.Selection {
	var sections []*goquery.Selection
	seen := map[*html.Node]bool{}

	doc.Find("h2, h3, h4, h5").Each(func(_ int, header *goquery.Selection) {
		title := strings.ToLower(strings.TrimSpace(header.Text()))
		if !containsAny(title, h.cfg.SectionKeywords) {
			return
		}
		container := header.Closest("section, div")
		if container.Length() == 0 {
			container = header.Parent()
		}
		if container.Length() == 0 || seen[container.Get(0)] {
			return
		}
		seen[container.Get(0)] = true
		sections = append(sections, container)
	})

	if len(sections) == 0 {
		if fallback := doc.Find(`section[class*="jogos"]`).First(); fallback.Length() > 0 {
			sections = append(sections, fallback)
		} else {
			sections = append(sections, doc.Selection)
		}
	}
	return sections
}

// parseCard extracts one raw event from a candidate card element. Dedicated
// participant elements win when the layout has them; otherwise the card text
// must carry a versus separator to split on.
func (h *HeuristicStrategy) parseCard(card *goquery.Selection) (RawEvent, bool) {
	text := flattenText(card)
	home := firstSelectorText(card, h.cfg.HomeSelectors)
	away := firstSelectorText(card, h.cfg.AwaySelectors)
	if home == "" || away == "" {
		if !versusPattern.MatchString(text) {
			return RawEvent{}, false
		}
		lines := textLines(card)
		home, away = splitTeamsLine(findTeamsLine(lines, text))
	}
	if home == "" || away == "" {
		return RawEvent{}, false
	}

	ev := RawEvent{
		Home:      home,
		Away:      away,
		DateToken: h.dateToken(card, text),
		TimeToken: h.timeToken(card, text),
		Venue:     h.venue(textLines(card), text),
	}
	return ev, true
}

func (h *HeuristicStrategy) dateToken(card *goquery.Selection, text string) string {
	for _, attr := range h.cfg.DateAttributes {
		if value, ok := card.Attr(attr); ok && value != "" {
			return value
		}
	}
	if m := datePattern.FindString(text); m != "" {
		return m
	}
	return ""
}

func (h *HeuristicStrategy) timeToken(card *goquery.Selection, text string) string {
	for _, attr := range h.cfg.TimeAttributes {
		if value, ok := card.Attr(attr); ok && value != "" {
			return value
		}
	}
	if m := timePattern.FindString(text); m != "" {
		return m
	}
	return ""
}

// venue keyword-matches known stadium substrings against card lines, skipping
// lines with digits (those are scores or dates, not venue labels).
func (h *HeuristicStrategy) venue(lines []string, text string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if containsAny(lower, h.cfg.VenueMarkers) && !containsDigit.MatchString(line) {
			return line
		}
	}
	lower := strings.ToLower(text)
	for _, marker := range h.cfg.VenueMarkers {
		if idx := strings.Index(lower, marker); idx != -1 {
			return strings.TrimSpace(text[idx : idx+len(marker)])
		}
	}
	return ""
}

// findTeamsLine prefers the first individual line carrying a versus separator,
// falling back to the whole flattened text.
func findTeamsLine(lines []string, text string) string {
	for _, line := range lines {
		if versusPattern.MatchString(line) {
			return line
		}
	}
	return text
}

// splitTeamsLine cuts a "Home x Away" line into its two names. Date and time
// tokens bleed into the halves when the card renders everything on one line
// ("15/03 16:00 Cruzeiro x Galo Mineirão"), so the home side keeps only what
// follows the last schedule token and the away side is cut at the first.
func splitTeamsLine(line string) (string, string) {
	parts := versusPattern.Split(line, 2)
	if len(parts) != 2 {
		return "", ""
	}
	home := strings.TrimRight(strings.TrimSpace(afterScheduleTokens(parts[0])), "•-– ")
	away := beforeScheduleTokens(parts[1])
	away = strings.TrimSpace(trailingDecor.ReplaceAllString(away, ""))
	return home, away
}

func afterScheduleTokens(s string) string {
	cut := 0
	for _, pattern := range []*regexp.Regexp{datePattern, timePattern} {
		for _, loc := range pattern.FindAllStringIndex(s, -1) {
			if loc[1] > cut {
				cut = loc[1]
			}
		}
	}
	return s[cut:]
}

func beforeScheduleTokens(s string) string {
	cut := len(s)
	for _, pattern := range []*regexp.Regexp{datePattern, timePattern} {
		if loc := pattern.FindStringIndex(s); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return s[:cut]
}

func firstSelectorText(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(card.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// textLines collects the stripped text fragments of every text node under the
// selection, in document order.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return lines
}

// flattenText joins a selection's text fragments with single spaces, the
// equivalent of reading the rendered card left to right.
func flattenText(sel *goquery.Selection) string {
	return strings.Join(textLines(sel), " ")
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// dedupeRawEvents collapses cards that resolved to the same home/away pair,
// which happens when nested wrappers around one match all look like cards.
// The fullest record wins, since an outer wrapper often carries the date and
// venue lines its inner element lacks. Cards with the same pairing but
// different dates stay separate; a rescheduled fixture can share a page with
// the original.
func dedupeRawEvents(events []RawEvent) []RawEvent {
	index := make(map[string][]int, len(events))
	var out []RawEvent
	for _, ev := range events {
		pair := strings.ToLower(ev.Home + "|" + ev.Away)
		merged := false
		for _, at := range index[pair] {
			if !sameFixtureDate(ev, out[at]) {
				continue
			}
			if fieldCount(ev) > fieldCount(out[at]) {
				out[at] = ev
			}
			merged = true
			break
		}
		if merged {
			continue
		}
		index[pair] = append(index[pair], len(out))
		out = append(out, ev)
	}
	return out
}

// sameFixtureDate reports whether two cards can describe the same fixture:
// equal dates, or one card missing its date entirely.
func sameFixtureDate(a, b RawEvent) bool {
	da, db := eventDate(a), eventDate(b)
	return da == "" || db == "" || da == db
}

func eventDate(ev RawEvent) string {
	if ev.DateToken != "" {
		return ev.DateToken
	}
	return ev.Timestamp
}

func fieldCount(ev RawEvent) int {
	count := 0
	for _, field := range []string{ev.Timestamp, ev.DateToken, ev.TimeToken, ev.Venue, ev.Status, ev.Competition} {
		if field != "" {
			count++
		}
	}
	return count
}
