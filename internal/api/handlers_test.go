package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/analytics"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/catalog"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/config"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/testutil"
)

// newTestServer stands up the API over a populated data directory:
// one school's environment CSV and a per-school growth workbook.
func newTestServer(t *testing.T, mode string) (*echo.Echo, *Handler, string) {
	t.Helper()
	dir := t.TempDir()

	testutil.WriteFile(t, dir, "송도고_환경데이터.csv", []byte(testutil.EnvCSV))
	sheets := []string{"송도고", "하늘고"}
	if mode == config.SheetModeCombined {
		sheets = []string{"Sheet1"}
	}
	rows := map[string][][]string{}
	for _, s := range sheets {
		rows[s] = testutil.GrowthRows()
	}
	testutil.WriteWorkbook(t, dir, "4개교_생육결과데이터.xlsx", sheets, rows)

	exp := config.DefaultExperiment()
	exp.GrowthSheetMode = mode

	h := NewHandler(catalog.New(dir, exp), "test", analytics.Options{})
	t.Cleanup(h.Close)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, h)
	return e, h, dir
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHandleHealth(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["snapshot"])
}

func TestHandleEnvTable(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/env/송도고?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Table models.Table `json:"table"`
		Total int          `json:"total"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, 2, len(body.Table.Rows))
	assert.Equal(t, 3, body.Total)
	// Rows come back time-sorted; the earliest reading leads.
	assert.Equal(t, "17.5", body.Table.Rows[0][1])
}

func TestHandleEnvTable_NotFound(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/env/동산고")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var apiErr APIError
	decodeJSON(t, rec, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Contains(t, apiErr.Message, "동산고")
}

func TestHandleEnvTable_Undecodable(t *testing.T) {
	e, _, dir := newTestServer(t, config.SheetModePerSchool)
	testutil.WriteFile(t, dir, "아라고_환경데이터.csv", []byte{0xFF, 0xFE, 0xFF, 0xFF, 0xFF})

	rec := doRequest(e, http.MethodGet, "/api/env/아라고")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var apiErr APIError
	decodeJSON(t, rec, &apiErr)
	assert.Equal(t, "UNPROCESSABLE", apiErr.Code)
}

func TestHandleEnvReadingsMsgpack(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/env/송도고/readings.msgpack")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))

	var readings []models.EnvReading
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &readings))
	require.Len(t, readings, 3)
	require.NotNil(t, readings[0].Temperature)
	assert.Equal(t, 17.5, *readings[0].Temperature)
}

func TestHandleEnvSeries(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/env/송도고/series?metric=ec")
	require.Equal(t, http.StatusOK, rec.Code)

	var series []models.SeriesPoint
	decodeJSON(t, rec, &series)
	require.Len(t, series, 3)
	assert.Equal(t, 1.9, series[0].Value)

	rec = doRequest(e, http.MethodGet, "/api/env/송도고/series?metric=co2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEnvDownload(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/env/송도고/download")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "filename*=UTF-8''")
	assert.Contains(t, rec.Body.String(), "time,temperature,humidity,ph,ec")
}

func TestHandleGrowthTable_PerSchool(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/growth")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Table models.Table `json:"table"`
		Mode  string       `json:"mode"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, config.SheetModePerSchool, body.Mode)
	assert.Equal(t, 6, len(body.Table.Rows))

	rec = doRequest(e, http.MethodGet, "/api/growth?school=하늘고")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &body)
	assert.Equal(t, 3, len(body.Table.Rows))
}

func TestHandleGrowthTable_CombinedRejectsSchoolFilter(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModeCombined)

	rec := doRequest(e, http.MethodGet, "/api/growth?school=송도고")
	require.Equal(t, http.StatusConflict, rec.Code)

	var apiErr APIError
	decodeJSON(t, rec, &apiErr)
	assert.Equal(t, "CONFLICT", apiErr.Code)
}

func TestHandleGrowthSummary(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/growth/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var blocks []models.StatBlock
	decodeJSON(t, rec, &blocks)
	require.Len(t, blocks, len(models.GrowthMetricColumns))
	for _, b := range blocks {
		assert.Equal(t, 6, b.Count, b.Column)
	}
}

func TestHandleGrowthHistogram(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/growth/histogram?metric=fresh_weight&bins=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var buckets []models.HistogramBucket
	decodeJSON(t, rec, &buckets)
	require.Len(t, buckets, 5)

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 6, total)

	rec = doRequest(e, http.MethodGet, "/api/growth/histogram")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/growth/histogram?metric=키")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGrowthScatter(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/growth/scatter?x=shoot_length&y=fresh_weight")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Points      []models.ScatterPoint `json:"points"`
		Correlation *float64              `json:"correlation"`
	}
	decodeJSON(t, rec, &body)
	assert.Len(t, body.Points, 6)
}

func TestHandleWeightByEC(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/growth/weight-by-ec")
	require.Equal(t, http.StatusOK, rec.Code)

	var groups []models.ECGroupMean
	decodeJSON(t, rec, &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, 1.0, groups[0].TargetEC)
}

func TestHandleOptimalEC_NoData(t *testing.T) {
	dir := t.TempDir()
	exp := config.DefaultExperiment()
	h := NewHandler(catalog.New(dir, exp), "test", analytics.Options{})
	t.Cleanup(h.Close)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, h)

	rec := doRequest(e, http.MethodGet, "/api/growth/optimal-ec")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleOverviewAndSchoolMeans(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.OverviewStats
	decodeJSON(t, rec, &stats)
	assert.Equal(t, 3, stats.TotalMeasurements)
	assert.Equal(t, 6, stats.TotalIndividuals)

	rec = doRequest(e, http.MethodGet, "/api/overview/school-means")
	require.Equal(t, http.StatusOK, rec.Code)

	var means []models.SchoolMeans
	decodeJSON(t, rec, &means)
	require.Len(t, means, 4)
	assert.NotNil(t, means[0].Temperature)
	assert.Nil(t, means[2].Temperature)
}

func TestHandleRefresh_PicksUpNewFiles(t *testing.T) {
	e, _, dir := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/env/동산고")
	require.Equal(t, http.StatusNotFound, rec.Code)

	testutil.WriteFile(t, dir, "동산고_환경데이터.csv", []byte(testutil.EnvCSV))

	// Still cached as missing until an explicit refresh.
	rec = doRequest(e, http.MethodGet, "/api/env/동산고")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/env/동산고")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWarnings(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/warnings")
	require.Equal(t, http.StatusOK, rec.Code)

	var warns []models.Warning
	decodeJSON(t, rec, &warns)

	// Three schools have no environment file in the fixture.
	missing := 0
	for _, w := range warns {
		for _, name := range []string{"하늘고", "아라고", "동산고"} {
			if w.Dataset == name {
				missing++
			}
		}
	}
	assert.Equal(t, 3, missing)
}

func TestHandleExperiment(t *testing.T) {
	e, _, _ := newTestServer(t, config.SheetModePerSchool)

	rec := doRequest(e, http.MethodGet, "/api/experiment")
	require.Equal(t, http.StatusOK, rec.Code)

	var exp config.Experiment
	decodeJSON(t, rec, &exp)
	assert.Len(t, exp.Schools, 4)
	assert.Equal(t, "송도고", exp.Schools[0].Name)
}
