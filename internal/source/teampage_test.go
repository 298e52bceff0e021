// internal/source/teampage_test.go
package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTeamPagesResolve(t *testing.T) {
	tp := NewTeamPages(map[string]string{"Cruzeiro": "https://example.com/team/cruzeiro"},
		"", nil, nil, testChain(), nil)

	if err := tp.Resolve(context.Background(), "Cruzeiro"); err != nil {
		t.Errorf("Resolve(Cruzeiro): %v", err)
	}
	err := tp.Resolve(context.Background(), "Villa Nova")
	if !errors.Is(err, ErrUnresolvableIdentity) {
		t.Errorf("Resolve(Villa Nova) = %v, want ErrUnresolvableIdentity", err)
	}
}

func TestTeamPagesFetchDOMCards(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`<html><body>
<section><h2>Round 8</h2>
  <div class="event" data-event-date="15.03." data-event-time="16:00">
    <span class="event__participant--home">Cruzeiro</span>
    <span class="event__participant--away">Galo</span>
  </div>
</section>
</body></html>`))
	}))
	defer server.Close()

	tp := NewTeamPages(map[string]string{"Cruzeiro": server.URL + "/team/cruzeiro"},
		"", apiClient(server.URL), nil, testChain(), nil)

	events, err := tp.Fetch(context.Background(), "Cruzeiro")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/team/cruzeiro/fixtures/" {
		t.Errorf("path = %q, want the fixtures subpage", gotPath)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].DateToken != "15.03." || events[0].TimeToken != "16:00" {
		t.Errorf("tokens = %q %q", events[0].DateToken, events[0].TimeToken)
	}
}

func TestTeamPagesFetchTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// No cards, no structured data: only a flat text section.
		w.Write([]byte(`<html><body>
<p>Upcoming matches: 15.03. Cruzeiro v Atletico-MG, 22.03. Fluminense v Cruzeiro</p>
<p>Show more</p>
</body></html>`))
	}))
	defer server.Close()

	tp := NewTeamPages(map[string]string{"Cruzeiro": server.URL + "/team/cruzeiro"},
		"", apiClient(server.URL), nil, testChain(), nil)

	events, err := tp.Fetch(context.Background(), "Cruzeiro")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events from the text fallback, got %d: %+v", len(events), events)
	}
	if events[0].Home != "Cruzeiro" || events[0].Away != "Atletico-MG" {
		t.Errorf("teams = %q x %q", events[0].Home, events[0].Away)
	}
}

func TestTeamPagesFetchUnknownTeam(t *testing.T) {
	tp := NewTeamPages(map[string]string{}, "", nil, nil, testChain(), nil)
	_, err := tp.Fetch(context.Background(), "Cruzeiro")
	if !errors.Is(err, ErrUnresolvableIdentity) {
		t.Errorf("err = %v, want ErrUnresolvableIdentity", err)
	}
}
