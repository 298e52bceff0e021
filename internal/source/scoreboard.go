// internal/source/scoreboard.go
package source

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/bhzfoot/fixturebot/internal/extract"
	"github.com/bhzfoot/fixturebot/internal/fetch"
	"github.com/bhzfoot/fixturebot/internal/normalize"
	"github.com/bhzfoot/fixturebot/internal/utils"
)

// Scoreboard scrapes a competition page that lists every round's games on one
// URL. The page is fetched and extracted once per run and the events are
// served to every team from that snapshot; per-team filtering happens in the
// pipeline.
type Scoreboard struct {
	url    string
	info   normalize.SourceInfo
	client *fetch.Client
	chain  *extract.Chain
	logger utils.Logger

	cached   []extract.RawEvent
	fetched  bool
	strategy string
}

// NewScoreboard builds the competition-page source.
func NewScoreboard(url, competition string, client *fetch.Client, chain *extract.Chain, logger utils.Logger) *Scoreboard {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &Scoreboard{
		url: url,
		info: normalize.SourceInfo{
			Tag:         "scoreboard",
			Label:       hostLabel(url),
			Competition: competition,
		},
		client: client,
		chain:  chain,
		logger: logger,
	}
}

func (s *Scoreboard) Info() normalize.SourceInfo { return s.info }

// Resolve is a no-op: a scoreboard page has no per-team identity.
func (s *Scoreboard) Resolve(ctx context.Context, team string) error { return nil }

func (s *Scoreboard) Fetch(ctx context.Context, team string) ([]extract.RawEvent, error) {
	if s.fetched {
		return s.cached, nil
	}

	doc, err := s.client.GetDocument(ctx, s.url)
	if err != nil {
		return nil, err
	}
	s.logRoundCounts(doc)

	events, strategy := s.chain.Extract(doc)
	s.cached = events
	s.strategy = strategy
	s.fetched = true
	if len(events) == 0 {
		s.logger.Warnf("%s yielded no events; the page layout may have changed", s.info.Label)
	} else {
		s.logger.Infof("%s: %d raw events via %s", s.info.Label, len(events), strategy)
	}
	return s.cached, nil
}

// logRoundCounts reports how many games each round section lists, a cheap
// signal that the page structure is still what we expect.
func (s *Scoreboard) logRoundCounts(doc *goquery.Document) {
	found := false
	doc.Find("h2, h3, h4").Each(func(_ int, header *goquery.Selection) {
		title := header.Text()
		if !containsFold(title, "rodada") && !containsFold(title, "round") {
			return
		}
		container := header.Parent()
		if container.Length() == 0 {
			return
		}
		games := container.Find("li, article").Length()
		if games > 0 {
			s.logger.Infof("%s: %d games listed", title, games)
			found = true
		}
	})
	if !found {
		s.logger.Warnf("could not identify round sections on %s", s.info.Label)
	}
}
