// internal/sink/client_test.go
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bhzfoot/fixturebot/internal/normalize"
)

func testResolver(t *testing.T) *normalize.DateTimeResolver {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	return normalize.NewDateTimeResolver(loc)
}

func testFixtures() []normalize.Fixture {
	return []normalize.Fixture{
		{
			ExternalID:    "abc",
			Competition:   "Campeonato Mineiro",
			MatchDatetime: "2026-03-15 16:00:00",
			HomeTeam:      "Cruzeiro",
			AwayTeam:      "Atletico-MG",
			Status:        "scheduled",
			Source:        "ge.globo.com",
		},
	}
}

func TestSubmit(t *testing.T) {
	var gotAuth, gotContentType, gotPath string
	var gotBatch Batch

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBatch)
		w.Write([]byte(`{"created":1,"updated":0,"skipped":0}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, Token: "secret", Source: "fixturebot"}, testResolver(t), nil)

	resp, err := client.Submit(context.Background(), testFixtures())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("authorization = %q, want Bearer secret", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotPath != "/bhz/football/api/matches" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBatch.Source != "fixturebot" || len(gotBatch.Matches) != 1 {
		t.Errorf("batch = %+v", gotBatch)
	}
	if gotBatch.Matches[0].ExternalID != "abc" {
		t.Errorf("match external_id = %q", gotBatch.Matches[0].ExternalID)
	}
	if resp.Created != 1 {
		t.Errorf("created = %d, want 1", resp.Created)
	}
}

func TestSubmitDatetimeRejectionResubmitsOnce(t *testing.T) {
	var calls int
	var lastDatetime string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var batch Batch
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &batch)
		lastDatetime = batch.Matches[0].MatchDatetime
		if calls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`time data '2026-03-15T16:00:00' does not match format`))
			return
		}
		w.Write([]byte(`{"created":1}`))
	}))
	defer server.Close()

	fixtures := testFixtures()
	fixtures[0].MatchDatetime = "2026-03-15T16:00:00"

	client := NewClient(Config{URL: server.URL, Token: "secret"}, testResolver(t), nil)
	if _, err := client.Submit(context.Background(), fixtures); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if calls != 2 {
		t.Fatalf("expected exactly one resubmission, got %d calls", calls)
	}
	if lastDatetime != "2026-03-15 16:00:00" {
		t.Errorf("resubmitted datetime = %q, want the canonical form", lastDatetime)
	}
	if fixtures[0].MatchDatetime != "2026-03-15T16:00:00" {
		t.Errorf("caller's slice must not be mutated")
	}
}

func TestSubmitDatetimeRejectionOnlyOnce(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Time Data still wrong"))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, Token: "secret"}, testResolver(t), nil)
	_, err := client.Submit(context.Background(), testFixtures())
	if err == nil {
		t.Fatalf("Submit should fail when the resubmission is rejected too")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestSubmitOtherRejectionNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid token"))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, Token: "wrong"}, testResolver(t), nil)
	_, err := client.Submit(context.Background(), testFixtures())

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("err = %v, want SubmitError", err)
	}
	if submitErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", submitErr.StatusCode)
	}
	if calls != 1 {
		t.Errorf("non-datetime rejection must not be resubmitted, got %d calls", calls)
	}
}

func TestSubmitEmptyBatch(t *testing.T) {
	var gotBatch Batch
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBatch)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, Token: "secret"}, testResolver(t), nil)
	if _, err := client.Submit(context.Background(), nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if gotBatch.Matches == nil {
		t.Errorf("matches must serialize as an empty array, not null")
	}
}
