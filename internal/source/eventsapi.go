// internal/source/eventsapi.go
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bhzfoot/fixturebot/internal/extract"
	"github.com/bhzfoot/fixturebot/internal/fetch"
	"github.com/bhzfoot/fixturebot/internal/normalize"
	"github.com/bhzfoot/fixturebot/internal/utils"
)

// EventsAPI pulls upcoming fixtures from a JSON sports-data API. Team identity
// comes from a configured id map first; teams missing there are resolved
// through the API's team-search endpoint. A 404 during resolution or fetch is
// recoverable: the fallback is tried, then the team is skipped.
type EventsAPI struct {
	info    normalize.SourceInfo
	client  *fetch.Client
	teamIDs map[string]int
	logger  utils.Logger

	resolved map[string]int
}

// NewEventsAPI builds the JSON API source rooted at baseURL.
func NewEventsAPI(baseURL, competition string, teamIDs map[string]int, client *fetch.Client, logger utils.Logger) *EventsAPI {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	ids := make(map[string]int, len(teamIDs))
	for team, id := range teamIDs {
		ids[team] = id
	}
	return &EventsAPI{
		info: normalize.SourceInfo{
			Tag:         "eventsapi",
			Label:       hostLabel(baseURL),
			Competition: competition,
		},
		client:   client,
		teamIDs:  ids,
		logger:   logger,
		resolved: make(map[string]int),
	}
}

func (e *EventsAPI) Info() normalize.SourceInfo { return e.info }

// Resolve maps the team to an API id: configured map first, search endpoint
// as the fallback identity source.
func (e *EventsAPI) Resolve(ctx context.Context, team string) error {
	_, err := e.teamID(ctx, team)
	return err
}

func (e *EventsAPI) teamID(ctx context.Context, team string) (int, error) {
	if id, ok := e.resolved[team]; ok {
		return id, nil
	}
	if id, ok := e.teamIDs[team]; ok {
		e.resolved[team] = id
		return id, nil
	}
	id, err := e.searchTeam(ctx, team)
	if err != nil {
		return 0, err
	}
	e.resolved[team] = id
	return id, nil
}

// searchTeam resolves a team id through the API's search endpoint.
func (e *EventsAPI) searchTeam(ctx context.Context, team string) (int, error) {
	var result struct {
		Teams []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"teams"`
	}
	params := url.Values{"q": {team}}
	if err := e.client.GetJSON(ctx, "/search/teams", params, &result); err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return 0, fmt.Errorf("search for %s: %w", team, ErrUnresolvableIdentity)
		}
		return 0, err
	}

	want := normalize.NormalizeKey(team)
	for _, candidate := range result.Teams {
		if normalize.NormalizeKey(candidate.Name) == want {
			e.logger.Infof("%s: resolved %s to id %d via search", e.info.Label, team, candidate.ID)
			return candidate.ID, nil
		}
	}
	return 0, fmt.Errorf("no search result matches %s: %w", team, ErrUnresolvableIdentity)
}

// Fetch lists the team's next events. When the configured id 404s (stale
// mapping), identity is re-resolved through search once before giving up on
// the team.
func (e *EventsAPI) Fetch(ctx context.Context, team string) ([]extract.RawEvent, error) {
	id, err := e.teamID(ctx, team)
	if err != nil {
		return nil, err
	}

	events, err := e.fetchEvents(ctx, id)
	if errors.Is(err, fetch.ErrNotFound) {
		e.logger.Warnf("%s: id %d for %s not found, re-resolving via search", e.info.Label, id, team)
		delete(e.resolved, team)
		delete(e.teamIDs, team)
		id, rerr := e.teamID(ctx, team)
		if rerr != nil {
			return nil, rerr
		}
		events, err = e.fetchEvents(ctx, id)
		if errors.Is(err, fetch.ErrNotFound) {
			return nil, fmt.Errorf("events for %s: %w", team, ErrUnresolvableIdentity)
		}
	}
	if err != nil {
		return nil, err
	}

	raw := make([]extract.RawEvent, 0, len(events))
	for _, ev := range events {
		converted, ok := convertAPIEvent(ev)
		if !ok {
			continue
		}
		raw = append(raw, converted)
	}
	e.logger.Infof("%s: %d events loaded for %s", e.info.Label, len(raw), team)
	return raw, nil
}

func (e *EventsAPI) fetchEvents(ctx context.Context, teamID int) ([]apiEvent, error) {
	var result struct {
		Events  []apiEvent `json:"events"`
		Matches []apiEvent `json:"matches"`
	}
	path := "/team/" + strconv.Itoa(teamID) + "/events/next/0"
	if err := e.client.GetJSON(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Events) > 0 {
		return result.Events, nil
	}
	return result.Matches, nil
}

type apiEvent struct {
	ID             int64   `json:"id"`
	StartTimestamp int64   `json:"startTimestamp"`
	HomeTeam       apiTeam `json:"homeTeam"`
	AwayTeam       apiTeam `json:"awayTeam"`
	Venue          struct {
		Name string `json:"name"`
	} `json:"venue"`
	Tournament struct {
		Name string `json:"name"`
	} `json:"tournament"`
	Status struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"status"`
}

type apiTeam struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

func (t apiTeam) displayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ShortName
}

// convertAPIEvent projects one API event onto the RawEvent shape. Events
// without an id, a start timestamp, or both team names are malformed and
// skipped.
func convertAPIEvent(ev apiEvent) (extract.RawEvent, bool) {
	if ev.ID == 0 || ev.StartTimestamp == 0 {
		return extract.RawEvent{}, false
	}
	home := ev.HomeTeam.displayName()
	away := ev.AwayTeam.displayName()
	if home == "" || away == "" {
		return extract.RawEvent{}, false
	}

	status := ev.Status.Description
	if status == "" {
		status = ev.Status.Type
	}

	return extract.RawEvent{
		Home:        home,
		Away:        away,
		Timestamp:   time.Unix(ev.StartTimestamp, 0).UTC().Format(time.RFC3339),
		Venue:       ev.Venue.Name,
		Status:      status,
		Competition: ev.Tournament.Name,
		EventID:     strconv.FormatInt(ev.ID, 10),
	}, true
}
