package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"datadigest/internal/config"
	"datadigest/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const regionCSV = "region,sales\nEast,100\nEast,50\nWest,30\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.GinMode = "test"
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))
	return NewServer(cfg, reg, nil)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func uploadCSV(t *testing.T, s *Server, name, content string) datasetResponse {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(t, s, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp datasetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
}

func TestUploadAndSummarize(t *testing.T) {
	s := newTestServer(t)
	ds := uploadCSV(t, s, "regions.csv", regionCSV)

	assert.Equal(t, "regions", ds.Name)
	assert.Equal(t, "csv", ds.Format)
	assert.Equal(t, 3, ds.RowCount)
	assert.Equal(t, []string{"region", "sales"}, ds.Columns)

	w := get(t, s, "/api/datasets/current")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ds.ID.String())

	w = get(t, s, "/api/datasets/"+ds.ID.String()+"/summary")
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		RowCount                int                        `json:"rowCount"`
		PrecomputedAggregations []map[string]interface{}   `json:"precomputedAggregations"`
		ColumnStats             map[string]json.RawMessage `json:"columnStats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.RowCount)
	assert.Len(t, summary.PrecomputedAggregations, 5)
	assert.Contains(t, summary.ColumnStats, "sales")

	w = get(t, s, "/api/datasets/"+ds.ID.String()+"/summary/text")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), `Dataset "regions": 3 rows, 2 columns.`)
}

func TestRelevantAggregation(t *testing.T) {
	s := newTestServer(t)
	ds := uploadCSV(t, s, "regions.csv", regionCSV)
	base := "/api/datasets/" + ds.ID.String() + "/aggregations/relevant?q="

	w := get(t, s, base+"Which+region+has+the+highest+sales%3F")
	require.Equal(t, http.StatusOK, w.Code)
	var agg struct {
		Operation string `json:"operation"`
		GroupBy   string `json:"groupBy"`
		Metric    string `json:"metric"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agg))
	assert.Equal(t, "max", agg.Operation)
	assert.Equal(t, "region", agg.GroupBy)
	assert.Equal(t, "sales", agg.Metric)

	w = get(t, s, base+"weather")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestJSONUpload(t *testing.T) {
	s := newTestServer(t)
	body := `{"name":"inline","columns":["team","score"],"columnTypes":{"score":"number"},
		"rows":[{"team":"a","score":1},{"team":"b","score":"2"},{"team":"a","score":null}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := do(t, s, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp datasetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "json", resp.Format)
	assert.Equal(t, "number", string(resp.ColumnTypes["score"]))
	assert.Equal(t, "string", string(resp.ColumnTypes["team"]))
}

func TestUploadRejects(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("hello"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_FORMAT")

	req = httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader(`{"columns":["a","a"]}`))
	req.Header.Set("Content-Type", "application/json")
	w = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownDataset(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/api/datasets/current")
	assert.Equal(t, http.StatusNotFound, w.Code)

	uploadCSV(t, s, "regions.csv", regionCSV)
	for _, id := range []string{"not-a-uuid", "0190c1a2-7b3c-7d4e-8f90-123456789abc"} {
		w = get(t, s, "/api/datasets/"+id+"/summary")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	}
}

func TestContextReportAndDashboard(t *testing.T) {
	s := newTestServer(t)
	ds := uploadCSV(t, s, "regions.csv", regionCSV)
	base := "/api/datasets/" + ds.ID.String()

	w := get(t, s, base+"/context?q=total+sales")
	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		RowCount            int                      `json:"rowCount"`
		Rows                []map[string]interface{} `json:"rows"`
		RelevantAggregation map[string]interface{}   `json:"relevantAggregation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Len(t, payload.Rows, 3)
	assert.Equal(t, "sum", payload.RelevantAggregation["operation"])

	w = get(t, s, base+"/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")

	w = get(t, s, base+"/report?format=markdown")
	assert.Contains(t, w.Body.String(), "## Columns")

	req := httptest.NewRequest(http.MethodPost, base+"/dashboard", strings.NewReader(`{"request":"sales by region"}`))
	req.Header.Set("Content-Type", "application/json")
	w = do(t, s, req)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard struct {
		Components  []map[string]interface{} `json:"components"`
		Explanation string                   `json:"explanation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Contains(t, w.Body.String(), `"name":"BarChart"`)
	assert.Contains(t, dashboard.Explanation, fmt.Sprintf("with %d components", len(dashboard.Components)))
	assert.Contains(t, dashboard.Explanation, `"regions"`)
}

func TestSummaryWithHugeValues(t *testing.T) {
	s := newTestServer(t)
	ds := uploadCSV(t, s, "huge.csv", "region,sales,other\nEast,1e308,1\nEast,1e308,2\nWest,1,3\n")

	w := get(t, s, "/api/datasets/"+ds.ID.String()+"/summary")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotZero(t, w.Body.Len())
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.EqualValues(t, 3, summary["rowCount"])
}

func TestReportEscapesUploadedMarkup(t *testing.T) {
	s := newTestServer(t)
	ds := uploadCSV(t, s, "markup.csv", "<script>alert(1)</script>,sales\n<img src=x onerror=alert(2)>,10\nplain,5\n")

	w := get(t, s, "/api/datasets/"+ds.ID.String()+"/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.NotContains(t, w.Body.String(), "<script")
	assert.NotContains(t, w.Body.String(), "<img")
	assert.Contains(t, w.Body.String(), "<table>")
}

func TestClearCurrentDataset(t *testing.T) {
	s := newTestServer(t)
	ds := uploadCSV(t, s, "regions.csv", regionCSV)

	w := do(t, s, httptest.NewRequest(http.MethodDelete, "/api/datasets/current", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/datasets/current").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/datasets/"+ds.ID.String()+"/summary").Code)
}

func TestDashboardOnEmptyDataset(t *testing.T) {
	s := newTestServer(t)
	ds := uploadCSV(t, s, "empty.csv", "a,b\n")

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+ds.ID.String()+"/dashboard", strings.NewReader(`{"request":"anything"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(t, s, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Could not generate charts from this data")
}

func TestWidgetsHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/api/widgets")
	require.Equal(t, http.StatusOK, w.Code)
	var specs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &specs))
	assert.Len(t, specs, 8)

	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)

	uploadCSV(t, s, "regions.csv", regionCSV)
	w = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "datadigest_datasets_ingested_total")
}
