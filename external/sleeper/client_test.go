package sleeper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/fantasy-sync/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL + "/v1/",
	})
}

func TestClientFetchMatchups_ParsesParticipants(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/league/1180/matchups/3" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"roster_id": 1, "matchup_id": 2, "points": 121.34, "players": ["4034", "6794"], "starters": ["4034"]},
			{"roster_id": 2, "matchup_id": null, "points": 0, "players": null}
		]`))
	})

	got, err := client.FetchMatchups(context.Background(), "1180", 3)
	if err != nil {
		t.Fatalf("fetch matchups: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(got))
	}
	if got[0].MatchupID != 2 || got[0].RosterID != 1 || got[0].Points != 121.34 {
		t.Fatalf("unexpected first participant: %+v", got[0])
	}
	if len(got[0].Players) != 2 || got[0].Players[1] != "6794" {
		t.Fatalf("unexpected players: %+v", got[0].Players)
	}
	if got[1].MatchupID != 0 || got[1].Players != nil {
		t.Fatalf("null matchup id should map to a bye: %+v", got[1])
	}
}

func TestClientFetchRosters_ParsesSettings(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/league/1180/rosters" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{
				"roster_id": 4,
				"owner_id": "7310",
				"players": ["4034", "6794", "8150"],
				"settings": {"wins": 9, "losses": 5, "ties": 0, "fpts": 1650, "fpts_decimal": 8, "fpts_against": 1502, "fpts_against_decimal": 44, "ppts": 1911, "ppts_decimal": 72}
			},
			{"roster_id": 5, "owner_id": null, "players": [], "settings": {}}
		]`))
	})

	got, err := client.FetchRosters(context.Background(), "1180")
	if err != nil {
		t.Fatalf("fetch rosters: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rosters, got %d", len(got))
	}

	first := got[0]
	if first.OwnerID != "7310" || first.RosterID != 4 || len(first.Players) != 3 {
		t.Fatalf("unexpected roster identity: %+v", first)
	}
	if first.Wins != 9 || first.Losses != 5 || first.Ties != 0 {
		t.Fatalf("unexpected record: %+v", first)
	}
	if first.MaxPointsWhole != 1911 || first.MaxPointsHundredths != 72 {
		t.Fatalf("unexpected max points: %+v", first)
	}
	if first.PointsFor != 1650.08 {
		t.Fatalf("unexpected points for: %v", first.PointsFor)
	}
	if got[1].OwnerID != "" {
		t.Fatalf("orphan roster should have empty owner, got %q", got[1].OwnerID)
	}
}

func TestClientFetchState(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/state/nfl" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"week": 7, "season": "2025", "season_type": "regular", "leg": 7}`))
	})

	got, err := client.FetchState(context.Background())
	if err != nil {
		t.Fatalf("fetch state: %v", err)
	}
	if got.Week != 7 || got.Season != "2025" || got.SeasonType != "regular" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: usecase.ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, wantErr: usecase.ErrDependencyUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls int
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls++
				http.Error(w, "nope", tc.status)
			})

			_, err := client.FetchRosters(context.Background(), "1180")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if calls != 1 {
				t.Fatalf("expected a single request without retries, got %d", calls)
			}
		})
	}
}

func TestClient_RejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	})

	if _, err := client.FetchMatchups(context.Background(), "1180", 1); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClient_ValidatesInput(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})

	if _, err := client.FetchMatchups(context.Background(), " ", 1); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty league, got %v", err)
	}
	if _, err := client.FetchMatchups(context.Background(), "1180", 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for week 0, got %v", err)
	}
	if _, err := client.FetchRosters(context.Background(), ""); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty league, got %v", err)
	}
}
