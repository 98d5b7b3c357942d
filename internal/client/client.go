package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// #region wire-types

// Game statuses reported by the service.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Constraint is one per-attribute minimum count for a game.
type Constraint struct {
	Attribute string `json:"attribute"`
	MinCount  int    `json:"minCount"`
}

// AttributeStatistics carries the population-level statistics supplied
// once at game start.
type AttributeStatistics struct {
	RelativeFrequencies map[string]float64            `json:"relativeFrequencies"`
	Correlations        map[string]map[string]float64 `json:"correlations"`
}

// NewGameResponse is the payload of a successful new-game call.
type NewGameResponse struct {
	GameID              string              `json:"gameId"`
	Constraints         []Constraint        `json:"constraints"`
	AttributeStatistics AttributeStatistics `json:"attributeStatistics"`
}

// Person is one arriving candidate.
type Person struct {
	PersonIndex int             `json:"personIndex"`
	Attributes  map[string]bool `json:"attributes"`
}

// DecideResponse is the payload of a decide-and-next call.
type DecideResponse struct {
	Status        string  `json:"status"`
	NextPerson    *Person `json:"nextPerson,omitempty"`
	RejectedCount int     `json:"rejectedCount,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// #endregion wire-types

// #region client-struct

// Doer is the subset of http.Client the game client needs. Injected in
// tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps the HTTP connection to the external game service. One
// request is in flight at a time; the limiter paces round trips.
type Client struct {
	baseURL string
	http    Doer
	limiter *rate.Limiter
}

// #endregion client-struct

// #region constructor

// NewClient creates a client for the service at baseURL. rps limits
// outgoing requests per second; 0 disables pacing.
func NewClient(baseURL string, rps float64) *Client {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

// NewClientWithDoer creates a Client with an injected HTTP transport.
// Used for testing without a real connection.
func NewClientWithDoer(baseURL string, doer Doer) *Client {
	return &Client{baseURL: baseURL, http: doer}
}

// #endregion constructor

// #region new-game

// NewGame starts a game for the given scenario and player and returns
// the game id, the constraint list, and the attribute statistics.
func (c *Client) NewGame(ctx context.Context, scenario int, playerID string) (NewGameResponse, error) {
	q := url.Values{}
	q.Set("scenario", strconv.Itoa(scenario))
	q.Set("playerId", playerID)

	var resp NewGameResponse
	if err := c.getJSON(ctx, "/new-game", q, &resp); err != nil {
		return NewGameResponse{}, fmt.Errorf("new game: %w", err)
	}
	if resp.GameID == "" {
		return NewGameResponse{}, fmt.Errorf("new game: response missing gameId")
	}
	return resp, nil
}

// #endregion new-game

// #region decide-and-next

// DecideAndNext reports the decision for the candidate at personIndex
// and fetches the next candidate in the same round trip. accept is nil
// only on the very first call, which has no prior decision to report.
func (c *Client) DecideAndNext(ctx context.Context, gameID string, personIndex int, accept *bool) (DecideResponse, error) {
	q := url.Values{}
	q.Set("gameId", gameID)
	q.Set("personIndex", strconv.Itoa(personIndex))
	if accept != nil {
		q.Set("accept", strconv.FormatBool(*accept))
	}

	var resp DecideResponse
	if err := c.getJSON(ctx, "/decide-and-next", q, &resp); err != nil {
		return DecideResponse{}, fmt.Errorf("decide and next: %w", err)
	}
	if resp.Status == "" {
		return DecideResponse{}, fmt.Errorf("decide and next: response missing status")
	}
	return resp, nil
}

// #endregion decide-and-next

// #region transport

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// #endregion transport
