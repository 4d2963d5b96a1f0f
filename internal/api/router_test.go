package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wonny/gamedash/internal/aggregate"
	"github.com/wonny/gamedash/internal/api/handlers"
	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/internal/dashboard"
	"github.com/wonny/gamedash/internal/presets"
	"github.com/wonny/gamedash/internal/snapshot"
	"github.com/wonny/gamedash/pkg/logger"
)

type memoryStore struct {
	mu        sync.Mutex
	snapshots []snapshot.Snapshot
}

func (m *memoryStore) Save(ctx context.Context, s *snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, *s)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snapshots {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, snapshot.ErrNotFound
}

func (m *memoryStore) List(ctx context.Context, limit int) ([]snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]snapshot.Snapshot(nil), m.snapshots...), nil
}

func testDataset() *contracts.Dataset {
	return contracts.NewDataset([]contracts.Record{
		{Name: "Alpha", Platform: "PS4", Genre: "Action", YearOfRelease: 2010, UserScore: 7.0, CriticScore: 80.0},
		{Name: "Beta", Platform: "PC", Genre: "Action", YearOfRelease: 2010, UserScore: 9.0, CriticScore: 90.0},
		{Name: "Pi", Platform: "PC", Genre: "Action,Adventure", YearOfRelease: 1999, UserScore: 5.0, CriticScore: 50.0},
	}, contracts.DatasetMeta{ID: "test", Source: "games.csv"})
}

func newTestRouter(t *testing.T, limiter *rate.Limiter, store handlers.SnapshotStore) http.Handler {
	t.Helper()

	log := logger.Nop()
	svc := aggregate.NewService(testDataset(), nil, time.Minute, log)

	set, err := presets.Parse([]byte("presets:\n  - name: pc-only\n    selection:\n      platforms: [PC]\n"))
	require.NoError(t, err)

	return NewRouter(Handlers{
		Dashboard: handlers.NewDashboardHandler(svc, nil, log),
		Presets:   handlers.NewPresetHandler(set, svc, log),
		Snapshots: handlers.NewSnapshotHandler(store, svc, log),
		Live:      handlers.NewLiveHandler(svc, log),
	}, limiter, log)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, nil), "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetAggregate(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, nil), "GET", "/api/aggregate?platform=PS4&platform=PC&from=2000&to=2022", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.AggregateResult
	decode(t, rec, &result)

	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, contracts.Defined(8.0), result.MeanUserScore)
	assert.Equal(t, map[contracts.YearPlatform]int{
		{Year: 2010, Platform: "PS4"}: 1,
		{Year: 2010, Platform: "PC"}:  1,
	}, result.PerYearPlatformCounts)
	assert.Equal(t, map[string]float64{"Action": 8.0}, result.PerGenreMeanUserScore)
}

func TestGetAggregate_RepeatedParams(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, nil), "GET", "/api/aggregate?genre=Action&genre=RPG&platform=PC&platform=", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.AggregateResult
	decode(t, rec, &result)
	assert.Equal(t, []string{"PC"}, result.Selection.Platforms)
	assert.Equal(t, []string{"Action", "RPG"}, result.Selection.Genres)
	assert.Equal(t, 1, result.TotalCount)
}

func TestGetAggregate_CommaInValue(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := do(t, router, "GET", "/api/aggregate?from=1990&genre="+url.QueryEscape("Action,Adventure"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.AggregateResult
	decode(t, rec, &result)
	assert.Equal(t, []string{"Action,Adventure"}, result.Selection.Genres)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "Pi", result.FilteredRecords[0].Name)
}

func TestGetAggregate_InvalidSelection(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	for _, target := range []string{
		"/api/aggregate?from=2015&to=2010",
		"/api/aggregate?from=abc",
		"/api/aggregate?to=2010.5",
	} {
		t.Run(target, func(t *testing.T) {
			rec := do(t, router, "GET", target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			decode(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPostAggregate(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := do(t, router, "POST", "/api/aggregate", `{"platforms":["PC"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.AggregateResult
	decode(t, rec, &result)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, contracts.NormalizationWindow, result.Selection.Years)

	rec = do(t, router, "POST", "/api/aggregate", `{"platfroms":["PC"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, "POST", "/api/aggregate", `{"years":{"min":2020,"max":2000}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDashboard_Empty(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, nil), "GET", "/api/dashboard?from=1990&to=1995", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view dashboard.View
	decode(t, rec, &view)
	assert.True(t, view.Empty)
	assert.Equal(t, "Total games: 0", view.Totals.Label)
	assert.Equal(t, "Average user score: N/A", view.UserScore.Label)
}

func TestGetChart(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := do(t, router, "GET", "/api/charts/area.svg?platform=PC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(t, router, "GET", "/api/charts/pie.svg", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOptionsAndDataset(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := do(t, router, "GET", "/api/options", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts dashboard.Options
	decode(t, rec, &opts)
	assert.Len(t, opts.Platforms, 2)
	assert.Equal(t, "PS4", opts.Platforms[0].Value)
	assert.Len(t, opts.Marks, 23)

	rec = do(t, router, "GET", "/api/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var meta map[string]interface{}
	decode(t, rec, &meta)
	assert.Equal(t, "test", meta["id"])
	assert.Equal(t, float64(3), meta["records"])
}

func TestPresets(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := do(t, router, "GET", "/api/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pc-only")

	rec = do(t, router, "GET", "/api/presets/pc-only", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Preset    presets.Preset            `json:"preset"`
		Aggregate contracts.AggregateResult `json:"aggregate"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "pc-only", body.Preset.Name)
	assert.Equal(t, 1, body.Aggregate.TotalCount)

	rec = do(t, router, "GET", "/api/presets/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshots_Disabled(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, "POST", "/api/snapshots", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, "GET", "/api/snapshots", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, router, "GET", "/api/snapshots/abc", "").Code)
}

func TestSnapshots(t *testing.T) {
	router := newTestRouter(t, nil, &memoryStore{})

	rec := do(t, router, "POST", "/api/snapshots", `{"platforms":["PS4"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created snapshot.Snapshot
	decode(t, rec, &created)
	assert.Equal(t, 1, created.TotalCount)
	assert.Equal(t, contracts.Defined(7.0), created.MeanUserScore)

	rec = do(t, router, "GET", "/api/snapshots/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, "GET", "/api/snapshots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []snapshot.Snapshot
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNotFound, do(t, router, "GET", "/api/snapshots/missing", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, "GET", "/api/snapshots?limit=-1", "").Code)
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, rate.NewLimiter(0, 1), nil)

	assert.Equal(t, http.StatusOK, do(t, router, "GET", "/api/options", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, router, "GET", "/api/options", "").Code)

	// Health is not throttled
	assert.Equal(t, http.StatusOK, do(t, router, "GET", "/health", "").Code)
}

func TestLiveDashboard(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t, nil, nil))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial dashboard.View
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, 2, int(initial.Totals.Value))

	require.NoError(t, conn.WriteJSON(contracts.FilterSelection{Platforms: []string{"PC"}}))
	var filtered dashboard.View
	require.NoError(t, conn.ReadJSON(&filtered))
	assert.Equal(t, "Total games: 1", filtered.Totals.Label)
	assert.Equal(t, "Average user score: 9.0", filtered.UserScore.Label)

	require.NoError(t, conn.WriteJSON(contracts.FilterSelection{Years: contracts.YearRange{Min: 2020, Max: 2010}}))
	var errMsg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Contains(t, errMsg["error"], "invalid selection")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errMsg = nil
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Contains(t, errMsg["error"], "invalid selection")
}
