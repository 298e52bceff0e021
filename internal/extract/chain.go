// internal/extract/chain.go
package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/bhzfoot/fixturebot/internal/utils"
)

// Strategy is one way of pulling raw events out of a parsed page. The contract
// is uniform: a non-empty slice means success, an empty slice means "nothing
// here, try the next strategy". Strategies never return errors; a page they
// cannot read is simply a page they found nothing on.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) []RawEvent
}

// Chain evaluates strategies in priority order and stops at the first one that
// yields events. A lower-priority strategy is never attempted once a higher
// one succeeds, and never skipped while all above it come up empty.
type Chain struct {
	strategies []Strategy
	logger     utils.Logger
}

// NewChain builds an extraction chain. Order is priority order.
func NewChain(logger utils.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &Chain{strategies: strategies, logger: logger}
}

// Extract runs the chain over a document. It returns the winning strategy's
// events and its name, or an empty slice when every strategy came up empty.
func (c *Chain) Extract(doc *goquery.Document) ([]RawEvent, string) {
	for _, s := range c.strategies {
		events := s.Extract(doc)
		if len(events) > 0 {
			c.logger.Debugf("extraction strategy %s produced %d events", s.Name(), len(events))
			return events, s.Name()
		}
		c.logger.Debugf("extraction strategy %s found nothing, falling through", s.Name())
	}
	return nil, ""
}
