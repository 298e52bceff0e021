// internal/source/teampage.go
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bhzfoot/fixturebot/internal/extract"
	"github.com/bhzfoot/fixturebot/internal/fetch"
	"github.com/bhzfoot/fixturebot/internal/normalize"
	"github.com/bhzfoot/fixturebot/internal/utils"
)

// TeamPages scrapes per-team fixtures pages. Identity resolution is a
// configured map from canonical team name to page URL; a team without a page
// is unresolvable for this source.
type TeamPages struct {
	pages    map[string]string
	info     normalize.SourceInfo
	client   *fetch.Client
	renderer *fetch.Renderer // nil unless the source needs client-side rendering
	chain    *extract.Chain
	text     *extract.TextStrategy
	logger   utils.Logger
}

// NewTeamPages builds the per-team fixtures source. renderer may be nil for
// pages whose fixture lists are present in the raw HTML.
func NewTeamPages(pages map[string]string, competition string, client *fetch.Client, renderer *fetch.Renderer, chain *extract.Chain, logger utils.Logger) *TeamPages {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	label := ""
	for _, url := range pages {
		label = hostLabel(url)
		break
	}
	return &TeamPages{
		pages: pages,
		info: normalize.SourceInfo{
			Tag:         "teampage",
			Label:       label,
			Competition: competition,
		},
		client:   client,
		renderer: renderer,
		chain:    chain,
		text:     extract.NewTextStrategy(extract.DefaultTextConfig()),
		logger:   logger,
	}
}

func (t *TeamPages) Info() normalize.SourceInfo { return t.info }

// Resolve checks the configured page map.
func (t *TeamPages) Resolve(ctx context.Context, team string) error {
	if _, ok := t.pages[team]; !ok {
		return fmt.Errorf("no fixtures page configured for %s: %w", team, ErrUnresolvableIdentity)
	}
	return nil
}

func (t *TeamPages) Fetch(ctx context.Context, team string) ([]extract.RawEvent, error) {
	base, ok := t.pages[team]
	if !ok {
		return nil, fmt.Errorf("no fixtures page configured for %s: %w", team, ErrUnresolvableIdentity)
	}
	fixturesURL := strings.TrimRight(base, "/") + "/fixtures/"

	doc, err := t.load(ctx, fixturesURL)
	if err != nil {
		return nil, err
	}

	events, strategy := t.chain.Extract(doc)
	if len(events) == 0 {
		t.logger.Infof("%s: no DOM cards for %s, trying static text", t.info.Label, team)
		events = t.text.Extract(doc)
		strategy = t.text.Name()
	}
	if len(events) > 0 {
		t.logger.Infof("%s: %d raw events for %s via %s", t.info.Label, len(events), team, strategy)
	}
	return events, nil
}

func (t *TeamPages) load(ctx context.Context, url string) (*goquery.Document, error) {
	if t.renderer != nil {
		return t.renderer.RenderDocument(ctx, url)
	}
	return t.client.GetDocument(ctx, url)
}
