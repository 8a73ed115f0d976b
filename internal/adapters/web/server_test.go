package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// fakeStore implements ports.RunStore over a map.
type fakeStore struct {
	runs map[string]*ports.RunRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[string]*ports.RunRecord)}
}

func (f *fakeStore) SaveRun(rec *ports.RunRecord) error {
	f.runs[rec.ID] = rec
	return nil
}

func (f *fakeStore) LoadRun(id string) (*ports.RunRecord, error) {
	rec, ok := f.runs[id]
	if !ok {
		return nil, ports.ErrRunNotFound
	}
	return rec, nil
}

func (f *fakeStore) ListRuns() ([]ports.RunSummary, error) {
	var out []ports.RunSummary
	for _, rec := range f.runs {
		out = append(out, ports.RunSummary{
			ID:         rec.ID,
			FinishedAt: rec.FinishedAt,
			Reads:      rec.Reads,
			Recovered:  rec.Recovered,
			Policy:     rec.Policy,
			AlignerCmd: rec.AlignerCmd,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.After(out[j].FinishedAt) })
	return out, nil
}

func (f *fakeStore) DeleteRun(id string) error {
	delete(f.runs, id)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func testRun(id string, finished time.Time) *ports.RunRecord {
	return &ports.RunRecord{
		ID:         id,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
		Policy:     "score",
		Seed:       7,
		AlignerCmd: "bowtie2 -x lambda --reorder --sam-no-qname-trunc -f -U -",
		ByScore: []ports.ScoreCounts{
			{Score: -6, Correct: 2, Incorrect: 1},
			{Score: -2, Correct: 0, Incorrect: 1},
			{Score: 0, Correct: 1, Incorrect: 0},
		},
		ByScoreLen: []ports.ScoreLenCounts{
			{Score: -6, Length: 100, Correct: 2, Incorrect: 1},
		},
		Reads:     5,
		Recovered: 3,
		Failed:    2,
	}
}

func setupTestServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	ts := httptest.NewServer(NewServer(store).Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func TestHealthEndpoint(t *testing.T) {
	ts, store := setupTestServer(t)
	require.NoError(t, store.SaveRun(testRun("r1", time.Now())))

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 1, health["runs"])
}

func TestListRuns(t *testing.T) {
	ts, store := setupTestServer(t)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(testRun("older", base)))
	require.NoError(t, store.SaveRun(testRun("newer", base.Add(time.Hour))))

	resp, body := get(t, ts.URL+"/api/runs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var runs []ports.RunSummary
	require.NoError(t, json.Unmarshal([]byte(body), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].ID)
	assert.Equal(t, "older", runs[1].ID)
}

func TestListRuns_EmptyIsArray(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp, body := get(t, ts.URL+"/api/runs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", body)
}

func TestGetRun(t *testing.T) {
	ts, store := setupTestServer(t)
	rec := testRun("r1", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveRun(rec))

	resp, body := get(t, ts.URL+"/api/runs/r1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got ports.RunRecord
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.ByScore, got.ByScore)
	assert.Equal(t, rec.AlignerCmd, got.AlignerCmd)
}

func TestGetRun_NotFound(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp, _ := get(t, ts.URL+"/api/runs/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunTable_Flat(t *testing.T) {
	ts, store := setupTestServer(t)
	require.NoError(t, store.SaveRun(testRun("r1", time.Now())))

	resp, body := get(t, ts.URL+"/api/runs/r1/table")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "-6\t2\t1\n-2\t0\t1\n0\t1\t0\n", body)
}

func TestRunTable_Cumulative(t *testing.T) {
	ts, store := setupTestServer(t)
	require.NoError(t, store.SaveRun(testRun("r1", time.Now())))

	_, body := get(t, ts.URL+"/api/runs/r1/table?mode=cumulative")
	assert.Equal(t,
		"0\t0\t0\n"+
			"-1\t1\t0\n"+
			"-2\t1\t0\n"+
			"-3\t1\t1\n"+
			"-4\t1\t1\n"+
			"-5\t1\t1\n"+
			"-6\t1\t1\n",
		body)
}

func TestRunTable_BadMode(t *testing.T) {
	ts, store := setupTestServer(t)
	require.NoError(t, store.SaveRun(testRun("r1", time.Now())))

	resp, _ := get(t, ts.URL+"/api/runs/r1/table?mode=sideways")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunTable_NotFound(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp, _ := get(t, ts.URL+"/api/runs/missing/table")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StartStop(t *testing.T) {
	store := newFakeStore()
	srv := NewServer(store)

	require.NoError(t, srv.Start("127.0.0.1:0"))
	defer srv.Stop()
	assert.NotZero(t, srv.Port())

	resp, body := get(t, srv.URL()+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	srv.Stop()
	srv.Stop()
}
