// internal/sink/client.go

// Package sink submits the deduplicated fixture set to the downstream
// ingestion API.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bhzfoot/fixturebot/internal/normalize"
	"github.com/bhzfoot/fixturebot/internal/utils"
)

const ingestPath = "/bhz/football/api/matches"

// Batch is the wire envelope the ingestion endpoint accepts.
type Batch struct {
	Source  string              `json:"source,omitempty"`
	Matches []normalize.Fixture `json:"matches"`
}

// Response is the acknowledgment returned on success.
type Response struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// SubmitError carries the endpoint's rejection.
type SubmitError struct {
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("sink returned %d: %s", e.StatusCode, e.Body)
}

// datetimeRejection reports whether the endpoint's error text blames a
// malformed datetime, the one rejection class we can repair locally.
func (e *SubmitError) datetimeRejection() bool {
	return strings.Contains(strings.ToLower(e.Body), "time data")
}

// Client posts fixture batches with bearer authentication.
type Client struct {
	baseURL  string
	token    string
	source   string
	http     *http.Client
	resolver *normalize.DateTimeResolver
	logger   utils.Logger
}

// Config parameterizes the sink client.
type Config struct {
	URL     string
	Token   string
	Source  string
	Timeout time.Duration
}

// NewClient builds a sink client. The resolver is used to re-normalize
// datetimes when the endpoint rejects a batch over their format.
func NewClient(cfg Config, resolver *normalize.DateTimeResolver, logger utils.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		token:    cfg.Token,
		source:   cfg.Source,
		http:     &http.Client{Timeout: cfg.Timeout},
		resolver: resolver,
		logger:   logger,
	}
}

// Submit posts the fixtures in one batch. When the endpoint rejects the batch
// over a malformed datetime, every fixture's datetime is re-normalized and the
// batch resubmitted exactly once; any other rejection is returned as is.
func (c *Client) Submit(ctx context.Context, fixtures []normalize.Fixture) (*Response, error) {
	resp, err := c.post(ctx, fixtures)
	if err == nil {
		return resp, nil
	}

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) || !submitErr.datetimeRejection() {
		return nil, err
	}

	c.logger.Warnf("sink rejected batch over datetime format, re-normalizing and resubmitting")
	repaired := make([]normalize.Fixture, len(fixtures))
	copy(repaired, fixtures)
	for i := range repaired {
		fixed, rerr := c.resolver.Renormalize(repaired[i].MatchDatetime)
		if rerr != nil {
			c.logger.Warnf("cannot re-normalize %q for %s x %s: %v",
				repaired[i].MatchDatetime, repaired[i].HomeTeam, repaired[i].AwayTeam, rerr)
			continue
		}
		repaired[i].MatchDatetime = fixed
	}
	return c.post(ctx, repaired)
}

func (c *Client) post(ctx context.Context, fixtures []normalize.Fixture) (*Response, error) {
	if fixtures == nil {
		// The endpoint expects "matches" to be an array, never null.
		fixtures = []normalize.Fixture{}
	}
	payload, err := json.Marshal(Batch{Source: c.source, Matches: fixtures})
	if err != nil {
		return nil, fmt.Errorf("encoding batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ingestPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting batch: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if res.StatusCode >= 400 {
		return nil, &SubmitError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	response := &Response{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, response); err != nil {
			c.logger.Debugf("sink response not decodable: %v", err)
		}
	}
	c.logger.Infof("submitted %d fixtures: created=%d updated=%d skipped=%d",
		len(fixtures), response.Created, response.Updated, response.Skipped)
	return response, nil
}
