package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"

	"github.com/pugstats/pugstats/pkg/match"
	"github.com/pugstats/pugstats/pkg/pipeline"
	"github.com/pugstats/pugstats/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProcessor struct {
	called bool
	opts   pipeline.Options
	err    error
}

func (f *fakeProcessor) Run(_ context.Context, _ *match.MatchEndEvent, opts pipeline.Options) error {
	f.called = true
	f.opts = opts
	return f.err
}

type fakeDeduper struct {
	marked map[string]bool
	err    error
	events []string
}

func (f *fakeDeduper) MarkMatchProcessed(matchID string) (bool, error) {
	if f.marked == nil {
		f.marked = make(map[string]bool)
	}
	if f.marked[matchID] {
		return false, f.err
	}
	f.marked[matchID] = true
	return true, f.err
}

func (f *fakeDeduper) UnmarkMatchProcessed(matchID string) error {
	delete(f.marked, matchID)
	return nil
}

func (f *fakeDeduper) LockMatchProcessing(_ string) *redislock.Lock { return nil }

func (f *fakeDeduper) RecordPipelineEvent(eventType string) {
	f.events = append(f.events, eventType)
}

type fakeStatsProvider struct {
	stats    []*storage.AggregateStats
	err      error
	lastCall string
}

func (f *fakeStatsProvider) GetPlayerStatistics(_ context.Context, _, _ string) ([]*storage.AggregateStats, error) {
	f.lastCall = "single"
	return f.stats, f.err
}

func (f *fakeStatsProvider) GetTopTenPlayers(_ context.Context, _ string, _ int) ([]*storage.AggregateStats, error) {
	f.lastCall = "top10"
	return f.stats, f.err
}

func (f *fakeStatsProvider) GetTopTenPlayersMonthRange(_ context.Context, _ int, _ string, _ int) ([]*storage.AggregateStats, error) {
	f.lastCall = "top10Range"
	return f.stats, f.err
}

func (f *fakeStatsProvider) GetMonthRangeStats(_ context.Context, _ string, months int, _ string) ([]*storage.AggregateStats, error) {
	f.lastCall = "range"
	if months <= 0 {
		return nil, nil
	}
	return f.stats, f.err
}

func (f *fakeStatsProvider) GetTopMaps(_ context.Context, _ string) ([]*storage.AggregateStats, error) {
	f.lastCall = "maps"
	return f.stats, f.err
}

func (f *fakeStatsProvider) GetTopMapsMonthRange(_ context.Context, _ string, _ int) ([]*storage.AggregateStats, error) {
	f.lastCall = "mapsRange"
	return f.stats, f.err
}

func (f *fakeStatsProvider) GetPlayerStats(_ context.Context, _ string, _ []string) ([]*storage.AggregateStats, error) {
	f.lastCall = "players"
	return f.stats, f.err
}

func (f *fakeStatsProvider) GetPlayerStatsMonthRange(_ context.Context, _ string, _ []string, _ int) ([]*storage.AggregateStats, error) {
	f.lastCall = "playersRange"
	return f.stats, f.err
}

func testAPI() (*Api, *fakeProcessor, *fakeDeduper, *fakeStatsProvider) {
	processor := &fakeProcessor{}
	deduper := &fakeDeduper{}
	stats := &fakeStatsProvider{stats: []*storage.AggregateStats{}}
	return NewApi("http://localhost", "stats", "secret", processor, deduper, stats), processor, deduper, stats
}

func testEventBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	event := match.MatchEndEvent{
		ID:           "match-1",
		GameServerID: "server-1",
		Finished:     true,
		PlayerStats: []match.PlayerStat{
			{SteamID: "STEAM_0:1:1", Kills: 20, Assists: 4, Deaths: 10},
		},
		Team1Stats:    match.TeamStats{Score: 16},
		Team1SteamIDs: []string{"STEAM_0:1:1"},
		Team2Stats:    match.TeamStats{Score: 9},
	}
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(body)
}

func doRequest(api *Api, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	api.router().ServeHTTP(w, req)
	return w
}

func TestMatchEndRejectsBadCredentials(t *testing.T) {
	api, processor, _, _ := testAPI()

	req := httptest.NewRequest(http.MethodPost, "/api/match-end", testEventBody(t))
	req.SetBasicAuth("stats", "wrong")
	w := doRequest(api, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if processor.called {
		t.Error("pipeline ran without valid credentials")
	}
}

func TestMatchEndProcessesMatch(t *testing.T) {
	api, processor, _, _ := testAPI()

	req := httptest.NewRequest(http.MethodPost, "/api/match-end", testEventBody(t))
	req.SetBasicAuth("stats", "secret")
	w := doRequest(api, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !processor.called {
		t.Fatal("pipeline did not run")
	}
	if !processor.opts.Delay || !processor.opts.Upload {
		t.Errorf("options = %+v, want delay and upload defaulted on", processor.opts)
	}
}

func TestMatchEndQueryOptions(t *testing.T) {
	api, processor, _, _ := testAPI()

	req := httptest.NewRequest(http.MethodPost, "/api/match-end?delay=false&upload=false", testEventBody(t))
	req.SetBasicAuth("stats", "secret")
	w := doRequest(api, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if processor.opts.Delay || processor.opts.Upload {
		t.Errorf("options = %+v, want delay and upload off", processor.opts)
	}
}

func TestMatchEndRejectsEmptyPlayerStats(t *testing.T) {
	api, processor, _, _ := testAPI()

	body, _ := json.Marshal(match.MatchEndEvent{ID: "match-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/match-end", bytes.NewBuffer(body))
	req.SetBasicAuth("stats", "secret")
	w := doRequest(api, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if processor.called {
		t.Error("pipeline ran for an invalid payload")
	}
}

func TestMatchEndIgnoresDuplicateDelivery(t *testing.T) {
	api, processor, deduper, _ := testAPI()
	deduper.marked = map[string]bool{"match-1": true}

	req := httptest.NewRequest(http.MethodPost, "/api/match-end", testEventBody(t))
	req.SetBasicAuth("stats", "secret")
	w := doRequest(api, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if processor.called {
		t.Error("pipeline re-ran for a duplicate delivery")
	}
	found := false
	for _, e := range deduper.events {
		if e == "duplicate_delivery" {
			found = true
		}
	}
	if !found {
		t.Error("duplicate_delivery not recorded")
	}
}

func TestMatchEndPipelineFailure(t *testing.T) {
	api, processor, _, _ := testAPI()
	processor.err = match.ExternalServiceError{Service: "demostats", Err: errors.New("boom")}

	req := httptest.NewRequest(http.MethodPost, "/api/match-end", testEventBody(t))
	req.SetBasicAuth("stats", "secret")
	w := doRequest(api, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestMatchEndFailureAllowsRetry(t *testing.T) {
	api, processor, deduper, _ := testAPI()
	processor.err = match.ExternalServiceError{Service: "demostats", Err: errors.New("boom")}

	req := httptest.NewRequest(http.MethodPost, "/api/match-end", testEventBody(t))
	req.SetBasicAuth("stats", "secret")
	w := doRequest(api, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if deduper.marked["match-1"] {
		t.Fatal("failed delivery left the match marked processed")
	}

	// the host retries a 500; the retry must run the pipeline again
	processor.err = nil
	processor.called = false
	req = httptest.NewRequest(http.MethodPost, "/api/match-end", testEventBody(t))
	req.SetBasicAuth("stats", "secret")
	w = doRequest(api, req)
	if w.Code != http.StatusOK {
		t.Fatalf("retry status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !processor.called {
		t.Error("retry after a failed run was dropped as a duplicate")
	}
}

func TestStatsRouting(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		wantCall string
	}{
		{"single", "steamid=STEAM_1:1:1", "single"},
		{"top10", "option=top10", "top10"},
		{"top10 windowed", "option=top10&length=3", "top10Range"},
		{"range", "option=range&steamid=STEAM_1:1:1&length=3", "range"},
		{"maps", "option=maps&steamid=STEAM_1:1:1", "maps"},
		{"maps windowed", "option=maps&steamid=STEAM_1:1:1&length=6", "mapsRange"},
		{"players", "option=players&steamids=STEAM_1:1:1,STEAM_1:1:3", "players"},
		{"players windowed", "option=players&steamids=STEAM_1:1:1&length=1", "playersRange"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api, _, _, stats := testAPI()

			req := httptest.NewRequest(http.MethodGet, "/api/stats?"+tc.query, nil)
			req.SetBasicAuth("stats", "secret")
			w := doRequest(api, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
			}
			if stats.lastCall != tc.wantCall {
				t.Errorf("routed to %q, want %q", stats.lastCall, tc.wantCall)
			}
		})
	}
}

func TestStatsMissingParams(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"single without steamid", ""},
		{"range without steamid", "option=range&length=3"},
		{"maps without steamid", "option=maps"},
		{"players without steamids", "option=players"},
		{"range without window", "option=range&steamid=STEAM_1:1:1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api, _, _, _ := testAPI()

			req := httptest.NewRequest(http.MethodGet, "/api/stats?"+tc.query, nil)
			req.SetBasicAuth("stats", "secret")
			w := doRequest(api, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d: %s", w.Code, http.StatusBadRequest, w.Body.String())
			}
		})
	}
}

func TestStatsQueryError(t *testing.T) {
	api, _, _, stats := testAPI()
	stats.err = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodGet, "/api/stats?steamid=STEAM_1:1:1", nil)
	req.SetBasicAuth("stats", "secret")
	w := doRequest(api, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
