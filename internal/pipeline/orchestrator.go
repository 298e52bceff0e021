// internal/pipeline/orchestrator.go

// Package pipeline drives the aggregation run: for every monitored team it
// walks each configured source through resolve, fetch, extract, normalize and
// filter phases, then deduplicates the combined result. Teams are processed
// sequentially on purpose; the upstream sites throttle aggressively and the
// fixture volume never justifies fan-out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bhzfoot/fixturebot/internal/fetch"
	"github.com/bhzfoot/fixturebot/internal/monitoring"
	"github.com/bhzfoot/fixturebot/internal/normalize"
	"github.com/bhzfoot/fixturebot/internal/source"
	"github.com/bhzfoot/fixturebot/internal/utils"
)

// State tracks where a team iteration is in its lifecycle.
type State int

const (
	StateResolving State = iota
	StateFetching
	StateExtracting
	StateNormalizing
	StateFiltering
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateFetching:
		return "fetching"
	case StateExtracting:
		return "extracting"
	case StateNormalizing:
		return "normalizing"
	case StateFiltering:
		return "filtering"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TeamReport summarizes one team's pass over one source.
type TeamReport struct {
	Team     string
	Source   string
	State    State
	Raw      int
	Kept     int
	Dropped  int
	Err      error
	Duration time.Duration
}

// Summary is the outcome of a full run.
type Summary struct {
	Reports  []TeamReport
	Fixtures []normalize.Fixture
	Started  time.Time
	Finished time.Time
}

// Errored reports whether any team iteration ended in a recoverable error.
func (s *Summary) Errored() bool {
	for _, r := range s.Reports {
		if r.State == StateErrored {
			return true
		}
	}
	return false
}

// Orchestrator owns one run of the pipeline.
type Orchestrator struct {
	sources    []source.Source
	teams      []string
	normalizer *normalize.Normalizer
	window     normalize.Window
	pause      time.Duration
	logger     utils.Logger
	metrics    *monitoring.Metrics

	targets map[string]struct{}
}

// Options configures an Orchestrator.
type Options struct {
	Sources    []source.Source
	Teams      []string
	Normalizer *normalize.Normalizer
	Window     normalize.Window
	// Pause separates network-bound team iterations.
	Pause   time.Duration
	Logger  utils.Logger
	Metrics *monitoring.Metrics
}

// New builds an Orchestrator. The target set is keyed on the canonical form of
// the configured team names so source spellings and aliases all match.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NopLogger{}
	}
	canon := opts.Normalizer.Canonicalizer()
	targets := make(map[string]struct{}, len(opts.Teams))
	for _, team := range opts.Teams {
		targets[canon.Key(canon.Canonicalize(team))] = struct{}{}
	}
	return &Orchestrator{
		sources:    opts.Sources,
		teams:      opts.Teams,
		normalizer: opts.Normalizer,
		window:     opts.Window,
		pause:      opts.Pause,
		logger:     logger,
		metrics:    opts.Metrics,
		targets:    targets,
	}
}

// Run executes one full pass. A forbidden response from any source aborts the
// whole run with nothing emitted; every other per-team failure is recoverable
// and recorded in the summary while the remaining teams proceed.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Started: time.Now()}
	var collected []normalize.Fixture

	first := true
	for _, team := range o.teams {
		for _, src := range o.sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !first && o.pause > 0 {
				select {
				case <-time.After(o.pause):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			first = false

			report, fixtures, err := o.runTeam(ctx, src, team)
			summary.Reports = append(summary.Reports, report)
			if err != nil {
				// Blocked by the upstream: continuing would dig the hole
				// deeper, and partial output must not reach the sink.
				return nil, err
			}
			collected = append(collected, fixtures...)
		}
	}

	summary.Fixtures = normalize.Dedupe(collected)
	summary.Finished = time.Now()
	if o.metrics != nil {
		o.metrics.FixturesEmitted.Add(float64(len(summary.Fixtures)))
		o.metrics.RunDuration.Observe(summary.Finished.Sub(summary.Started).Seconds())
	}
	o.logger.Infof("run finished: %d fixtures from %d raw, %d team passes",
		len(summary.Fixtures), len(collected), len(summary.Reports))
	return summary, nil
}

// runTeam walks one team through one source. The returned error is non-nil
// only for the fatal forbidden case; recoverable failures land in the report.
func (o *Orchestrator) runTeam(ctx context.Context, src source.Source, team string) (TeamReport, []normalize.Fixture, error) {
	info := src.Info()
	report := TeamReport{Team: team, Source: info.Label}
	started := time.Now()
	log := o.logger.WithField("team", team).WithField("source", info.Label)

	fail := func(err error) (TeamReport, []normalize.Fixture, error) {
		report.Err = err
		report.Duration = time.Since(started)
		if errors.Is(err, fetch.ErrForbidden) {
			log.Errorf("blocked by upstream, aborting run: %v", err)
			return report, nil, err
		}
		report.State = StateErrored
		if o.metrics != nil {
			o.metrics.TeamsErrored.Inc()
		}
		log.Warnf("skipping team on this source: %v", err)
		return report, nil, nil
	}

	report.State = StateResolving
	if err := src.Resolve(ctx, team); err != nil {
		return fail(err)
	}

	report.State = StateFetching
	events, err := src.Fetch(ctx, team)
	if err != nil {
		return fail(err)
	}

	report.State = StateExtracting
	report.Raw = len(events)
	if o.metrics != nil {
		o.metrics.EventsExtracted.WithLabelValues(info.Label).Add(float64(len(events)))
	}
	if len(events) == 0 {
		// A page that yields nothing usually means the upstream layout
		// changed, not that the calendar is empty. Surface it.
		return fail(errors.New("no events extracted"))
	}
	log.Infof("%d raw events", len(events))

	report.State = StateNormalizing
	var fixtures []normalize.Fixture
	for _, ev := range events {
		fixture, err := o.normalizer.Normalize(ev, info, o.window)
		if err != nil {
			report.Dropped++
			log.Debugf("dropping event: %v", err)
			continue
		}
		fixtures = append(fixtures, fixture)
	}

	report.State = StateFiltering
	kept := fixtures[:0]
	for _, fixture := range fixtures {
		if !o.window.Contains(fixture.Kickoff) {
			report.Dropped++
			log.Debugf("outside window: %s x %s at %s",
				fixture.HomeTeam, fixture.AwayTeam, fixture.MatchDatetime)
			continue
		}
		if !o.involvesTarget(fixture) {
			report.Dropped++
			continue
		}
		kept = append(kept, fixture)
	}

	report.State = StateDone
	report.Kept = len(kept)
	report.Duration = time.Since(started)
	log.Infof("kept %d of %d", report.Kept, report.Raw)
	return report, kept, nil
}

// involvesTarget reports whether either side of the fixture is a monitored
// team. Scoreboard-style sources return whole rounds; this is where the
// other clubs' matches fall away.
func (o *Orchestrator) involvesTarget(fixture normalize.Fixture) bool {
	canon := o.normalizer.Canonicalizer()
	if _, ok := o.targets[canon.Key(fixture.HomeTeam)]; ok {
		return true
	}
	_, ok := o.targets[canon.Key(fixture.AwayTeam)]
	return ok
}
