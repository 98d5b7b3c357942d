package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewGameSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/new-game" {
			t.Errorf("path = %q, want /new-game", r.URL.Path)
		}
		if got := r.URL.Query().Get("scenario"); got != "1" {
			t.Errorf("scenario = %q, want 1", got)
		}
		if got := r.URL.Query().Get("playerId"); got != "player-1" {
			t.Errorf("playerId = %q, want player-1", got)
		}
		w.Write([]byte(`{
			"gameId": "game-abc",
			"constraints": [{"attribute": "local", "minCount": 400}],
			"attributeStatistics": {
				"relativeFrequencies": {"local": 0.4},
				"correlations": {"local": {"local": 1}}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	resp, err := c.NewGame(context.Background(), 1, "player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.GameID != "game-abc" {
		t.Errorf("gameId = %q, want game-abc", resp.GameID)
	}
	if len(resp.Constraints) != 1 || resp.Constraints[0].MinCount != 400 {
		t.Errorf("constraints = %+v", resp.Constraints)
	}
	if resp.AttributeStatistics.RelativeFrequencies["local"] != 0.4 {
		t.Errorf("marginals = %+v", resp.AttributeStatistics.RelativeFrequencies)
	}
}

func TestNewGameMissingGameID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	if _, err := c.NewGame(context.Background(), 1, "player-1"); err == nil {
		t.Fatal("expected error for response without gameId")
	}
}

func TestDecideAndNextFirstCallOmitsAccept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("accept") {
			t.Error("first call must not carry an accept parameter")
		}
		if got := r.URL.Query().Get("personIndex"); got != "0" {
			t.Errorf("personIndex = %q, want 0", got)
		}
		w.Write([]byte(`{
			"status": "running",
			"nextPerson": {"personIndex": 0, "attributes": {"local": true}}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	resp, err := c.DecideAndNext(context.Background(), "game-abc", 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != StatusRunning {
		t.Errorf("status = %q, want running", resp.Status)
	}
	if resp.NextPerson == nil || !resp.NextPerson.Attributes["local"] {
		t.Errorf("nextPerson = %+v", resp.NextPerson)
	}
}

func TestDecideAndNextReportsDecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("accept"); got != "true" {
			t.Errorf("accept = %q, want true", got)
		}
		if got := r.URL.Query().Get("gameId"); got != "game-abc" {
			t.Errorf("gameId = %q, want game-abc", got)
		}
		w.Write([]byte(`{"status": "completed", "rejectedCount": 312}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	accept := true
	resp, err := c.DecideAndNext(context.Background(), "game-abc", 41, &accept)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", resp.Status)
	}
	if resp.RejectedCount != 312 {
		t.Errorf("rejectedCount = %d, want 312", resp.RejectedCount)
	}
}

func TestDecideAndNextNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "game not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	accept := false
	if _, err := c.DecideAndNext(context.Background(), "nope", 1, &accept); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}

func TestDecideAndNextMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": `))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	if _, err := c.DecideAndNext(context.Background(), "game-abc", 0, nil); err == nil {
		t.Fatal("expected error for malformed JSON body")
	}
}

func TestClientWithInjectedDoer(t *testing.T) {
	c := NewClientWithDoer("http://example.test", roundTripFunc(func(req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		rec.Write([]byte(`{"status": "failed", "reason": "constraints not met"}`))
		return rec.Result(), nil
	}))

	resp, err := c.DecideAndNext(context.Background(), "game-abc", 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != StatusFailed || resp.Reason != "constraints not met" {
		t.Errorf("resp = %+v", resp)
	}
}

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}
