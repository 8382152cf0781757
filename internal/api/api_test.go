package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/asrun/internal/asrun/asruntest"
	"github.com/stwalsh4118/asrun/internal/catalog"
	"github.com/stwalsh4118/asrun/internal/db"
	"github.com/stwalsh4118/asrun/internal/ingest"
	"github.com/stwalsh4118/asrun/internal/models"
	"github.com/stwalsh4118/asrun/internal/region"
	"github.com/stwalsh4118/asrun/internal/storage"
)

type testAPI struct {
	router *gin.Engine
	root   string
}

// setupAPI creates a router over a migrated temporary database and a local
// object store with an "asrun" bucket
func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(sqlDB))

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "asrun"), 0o755))
	store, err := storage.NewLocalStore(root)
	require.NoError(t, err)

	repos := db.NewRepositories(database)
	catalogService := catalog.NewService(repos)
	opts := ingest.DefaultOptions()
	opts.DefaultBucket = "asrun"
	ingestService := ingest.NewService(database, repos, store, region.MustDefault(), nil, opts)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	apiGroup := router.Group("/api")
	SetupHealthRoutes(apiGroup, database, region.MustDefault().Codes())
	SetupProgramRoutes(apiGroup, catalogService)
	SetupIngestRoutes(apiGroup, ingestService, catalogService)

	return &testAPI{router: router, root: root}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) putObject(t *testing.T, key string, text []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(a.root, "asrun", key), text, 0o644))
}

func (a *testAPI) createProgram(t *testing.T, name, keyword string) *models.Program {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/programs", CreateProgramRequest{Name: name, Keyword: keyword, Year: 2026})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var program models.Program
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &program))
	return &program
}

func unitedCupLog() []byte {
	return asruntest.File(
		asruntest.Program("20260104 06:00:00:00", "UNITED CUP DAY 4"),
		asruntest.Interstitial("20260104 06:05:00:00", "OB UNITED CUP"),
		asruntest.Program("20260104 06:40:00:00", "NEWS"),
	)
}

type failingPinger struct{}

func (failingPinger) Health(context.Context) error { return errors.New("database is closed") }

func TestHealth(t *testing.T) {
	api := setupAPI(t)

	w := api.do(t, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "healthy", response.Database)
}

func TestHealth_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupHealthRoutes(router.Group("/api"), failingPinger{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database is closed")
}

func TestPrograms_CRUD(t *testing.T) {
	api := setupAPI(t)

	program := api.createProgram(t, "United Cup", "UNITED CUP")
	assert.Equal(t, "UNITED CUP", program.Keyword)

	w := api.do(t, http.MethodPost, "/api/programs", CreateProgramRequest{Name: "united cup", Keyword: "CUP"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPost, "/api/programs", map[string]any{"name": "No Keyword"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/programs", CreateProgramRequest{Name: "Old", Keyword: "OLD", Year: 1066})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/programs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ProgramListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Programs, 1)
	assert.Equal(t, program.ID, list.Programs[0].ID)

	w = api.do(t, http.MethodGet, "/api/programs/"+program.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/programs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodDelete, "/api/programs/"+program.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodDelete, "/api/programs/"+program.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngest_EndToEnd(t *testing.T) {
	api := setupAPI(t)
	program := api.createProgram(t, "United Cup", "UNITED CUP")
	api.putObject(t, "20260104_BNE-TEN.LOG", unitedCupLog())

	w := api.do(t, http.MethodPost, "/api/ingest", IngestRequest{Files: []ingest.FileRef{{Key: "20260104_BNE-TEN.LOG"}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary ingest.BatchSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.BroadcastsCreated)

	w = api.do(t, http.MethodGet, "/api/programs/"+program.ID.String()+"/days", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var days DayListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &days))
	require.Len(t, days.Days, 1)
	assert.Equal(t, "2026-01-03", days.Days[0].Date)

	w = api.do(t, http.MethodGet, "/api/days/"+days.Days[0].ID.String()+"/broadcasts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var broadcasts BroadcastListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &broadcasts))
	require.Len(t, broadcasts.Broadcasts, 1)
	assert.Equal(t, "20:00", broadcasts.Broadcasts[0].StartTime.UTC().Format("15:04"))
	assert.Equal(t, "20:40", broadcasts.Broadcasts[0].EndTime.UTC().Format("15:04"))

	w = api.do(t, http.MethodGet, "/api/days/"+uuid.NewString()+"/broadcasts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Second submission is skipped
	w = api.do(t, http.MethodPost, "/api/ingest", IngestRequest{Files: []ingest.FileRef{{Key: "20260104_BNE-TEN.LOG"}}})
	require.Equal(t, http.StatusOK, w.Code)
	var second ingest.BatchSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, 1, second.Skipped)
	require.Len(t, second.Files, 1)
	assert.Equal(t, ingest.ReasonAlreadyProcessed, second.Files[0].Reason)
}

func TestIngest_InvalidBatch(t *testing.T) {
	api := setupAPI(t)

	w := api.do(t, http.MethodPost, "/api/ingest", IngestRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/ingest", map[string]any{"files": []map[string]string{{"bucket": "asrun"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupBroadcast(t *testing.T) {
	api := setupAPI(t)
	program := api.createProgram(t, "United Cup", "UNITED CUP")
	api.putObject(t, "20260104_BNE-TEN.LOG", unitedCupLog())
	w := api.do(t, http.MethodPost, "/api/ingest", IngestRequest{Files: []ingest.FileRef{{Key: "20260104_BNE-TEN.LOG"}}})
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"inside", "program_id=" + program.ID.String() + "&at=2026-01-03T20:10:00Z", http.StatusOK},
		{"local offset", "program_id=" + program.ID.String() + "&at=2026-01-04T06:30:00%2B10:00", http.StatusOK},
		{"after end", "program_id=" + program.ID.String() + "&at=2026-01-03T20:40:00Z", http.StatusNotFound},
		{"unknown program", "program_id=" + uuid.NewString() + "&at=2026-01-03T20:10:00Z", http.StatusNotFound},
		{"bad id", "program_id=x&at=2026-01-03T20:10:00Z", http.StatusBadRequest},
		{"bad time", "program_id=" + program.ID.String() + "&at=yesterday", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodGet, "/api/broadcasts/lookup?"+tt.query, nil)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestBillboards(t *testing.T) {
	api := setupAPI(t)
	program := api.createProgram(t, "United Cup", "UNITED CUP")
	api.putObject(t, "20260104_BNE-TEN.LOG", unitedCupLog())

	w := api.do(t, http.MethodPost, "/api/billboards", BillboardRequest{Key: "20260104_BNE-TEN.LOG", ProgramID: program.ID.String()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response BillboardListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "UNITED CUP", response.Keyword)
	require.Len(t, response.Billboards, 1)
	assert.Equal(t, "open", response.Billboards[0].Kind)
	assert.Equal(t, "06:05:00", response.Billboards[0].Time)
	assert.Equal(t, 2, response.Billboards[0].LineNumber)

	tests := []struct {
		name     string
		req      BillboardRequest
		wantCode int
	}{
		{"keyword only", BillboardRequest{Key: "20260104_BNE-TEN.LOG", Keyword: "news"}, http.StatusOK},
		{"no keyword", BillboardRequest{Key: "20260104_BNE-TEN.LOG"}, http.StatusBadRequest},
		{"unknown program", BillboardRequest{Key: "20260104_BNE-TEN.LOG", ProgramID: uuid.NewString()}, http.StatusNotFound},
		{"missing file", BillboardRequest{Key: "20260105_BNE-TEN.LOG", Keyword: "news"}, http.StatusNotFound},
		{"bad filename", BillboardRequest{Key: "readme.txt", Keyword: "news"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/api/billboards", tt.req)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}
