// internal/normalize/fixture.go
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bhzfoot/fixturebot/internal/extract"
	"github.com/bhzfoot/fixturebot/internal/utils"
)

// Fixture is the canonical output unit: one scheduled or completed match,
// normalized to the fixed schema the ingestion endpoint accepts.
type Fixture struct {
	ExternalID    string `json:"external_id"`
	Competition   string `json:"competition"`
	MatchDatetime string `json:"match_datetime"`
	HomeTeam      string `json:"home_team"`
	AwayTeam      string `json:"away_team"`
	Venue         string `json:"venue"`
	Status        string `json:"status"`
	Source        string `json:"source"`

	Season    string `json:"season,omitempty"`
	Round     string `json:"round,omitempty"`
	HomeGoals *int   `json:"home_goals,omitempty"`
	AwayGoals *int   `json:"away_goals,omitempty"`

	// Kickoff is the resolved instant behind MatchDatetime, kept for window
	// checks. Not part of the wire format.
	Kickoff time.Time `json:"-"`
	// Inference records what the resolver had to fill in.
	Inference Resolution `json:"-"`
}

// SourceInfo tags fixtures with their origin.
type SourceInfo struct {
	// Tag prefixes derived external ids, e.g. "scoreboard".
	Tag string
	// Label is the human-readable source field, e.g. "ge.globo.com".
	Label string
	// Competition is the fallback label when the source reports none.
	Competition string
}

// BuildExternalID derives the stable content identity of a fixture as seen
// from one extraction pass: the same logical event hashes to the same id.
func BuildExternalID(tag, competition, home, away, datetime, venue string) string {
	base := strings.ToLower(strings.Join([]string{tag, competition, home, away, datetime, venue}, "|"))
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}

// NativeExternalID wraps a source's own event identifier.
func NativeExternalID(tag, eventID string) string {
	return strings.ToLower(tag + "|" + eventID)
}

// Normalizer projects raw extracted events into Fixtures, applying team
// canonicalization and timestamp resolution.
type Normalizer struct {
	canon    *Canonicalizer
	resolver *DateTimeResolver
	logger   utils.Logger
}

// NewNormalizer wires the canonicalizer and resolver a pipeline run shares.
func NewNormalizer(canon *Canonicalizer, resolver *DateTimeResolver, logger utils.Logger) *Normalizer {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &Normalizer{canon: canon, resolver: resolver, logger: logger}
}

// Resolver exposes the shared timestamp resolver.
func (n *Normalizer) Resolver() *DateTimeResolver { return n.resolver }

// Canonicalizer exposes the shared team canonicalizer.
func (n *Normalizer) Canonicalizer() *Canonicalizer { return n.canon }

// Normalize converts one raw event into a Fixture. Records missing a team name
// or an interpretable timestamp are errors; the caller drops them and moves on.
func (n *Normalizer) Normalize(ev extract.RawEvent, src SourceInfo, win Window) (Fixture, error) {
	if !ev.Complete() {
		return Fixture{}, fmt.Errorf("event missing a team name (home=%q away=%q)", ev.Home, ev.Away)
	}

	kickoff, inference, err := n.resolveKickoff(ev, win)
	if err != nil {
		return Fixture{}, fmt.Errorf("event %s x %s: %w", ev.Home, ev.Away, err)
	}
	if inference&YearInferred != 0 {
		n.logger.Warnf("year not confirmed for %s x %s, assuming %d", ev.Home, ev.Away, kickoff.Year())
	}
	if inference&TimeDefaulted != 0 {
		n.logger.Warnf("kickoff time unknown for %s x %s, assuming 00:00:00", ev.Home, ev.Away)
	}

	datetime := n.resolver.Format(kickoff)
	home := n.canon.Canonicalize(ev.Home)
	away := n.canon.Canonicalize(ev.Away)

	competition := strings.TrimSpace(ev.Competition)
	if competition == "" {
		competition = src.Competition
	}
	status := strings.TrimSpace(ev.Status)
	if status == "" {
		status = "scheduled"
	}

	fixture := Fixture{
		Competition:   competition,
		MatchDatetime: datetime,
		HomeTeam:      home,
		AwayTeam:      away,
		Venue:         strings.TrimSpace(ev.Venue),
		Status:        status,
		Source:        src.Label,
		Round:         strings.TrimSpace(ev.Round),
		Kickoff:       kickoff,
		Inference:     inference,
	}
	if ev.EventID != "" {
		fixture.ExternalID = NativeExternalID(src.Tag, ev.EventID)
	} else {
		fixture.ExternalID = BuildExternalID(src.Tag, competition, home, away, datetime, fixture.Venue)
	}
	return fixture, nil
}

func (n *Normalizer) resolveKickoff(ev extract.RawEvent, win Window) (time.Time, Resolution, error) {
	if ev.Timestamp != "" {
		t, err := n.resolver.ResolveTimestamp(ev.Timestamp)
		if err != nil {
			return time.Time{}, 0, err
		}
		var res Resolution
		if t.Hour() == 0 && t.Minute() == 0 {
			res |= TimeDefaulted
		}
		return t, res, nil
	}
	if ev.DateToken == "" {
		return time.Time{}, 0, fmt.Errorf("no timestamp or date token")
	}
	return n.resolver.ResolveTokens(ev.DateToken, ev.TimeToken, win)
}
