// internal/source/source.go

// Package source implements the upstream fixture providers. Each source owns
// its fetch and extraction strategy and hands loosely-typed raw events to the
// pipeline, which owns normalization and filtering.
package source

import (
	"context"
	"errors"

	"github.com/bhzfoot/fixturebot/internal/extract"
	"github.com/bhzfoot/fixturebot/internal/normalize"
)

// ErrUnresolvableIdentity signals that a team could not be mapped to this
// source's identifier space. The team is skipped for the source; the run
// continues.
var ErrUnresolvableIdentity = errors.New("team identity unresolvable")

// Source is one upstream fixture provider.
type Source interface {
	// Info tags the source's output.
	Info() normalize.SourceInfo
	// Resolve maps a canonical team name to this source's identity space.
	// Page-based sources resolve from configuration; API sources may hit a
	// search endpoint. Returns ErrUnresolvableIdentity when the team cannot
	// be mapped after all fallbacks.
	Resolve(ctx context.Context, team string) error
	// Fetch returns the raw events visible for the team. An empty slice is
	// not an error; it means the source currently lists nothing.
	Fetch(ctx context.Context, team string) ([]extract.RawEvent, error)
}
