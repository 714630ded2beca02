package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"imobiliaria-portal/internal/database"
	"imobiliaria-portal/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	result *sync.Result
	batch  *sync.BatchResult
	err    error

	deleteCalls []uint
	syncCalls   []uint
}

func (f *fakeSyncer) SyncImovel(id uint) (*sync.Result, error) {
	f.syncCalls = append(f.syncCalls, id)
	return f.result, f.err
}

func (f *fakeSyncer) DeleteImovel(id uint) (*sync.Result, error) {
	f.deleteCalls = append(f.deleteCalls, id)
	return f.result, f.err
}

func (f *fakeSyncer) SyncAll() (*sync.BatchResult, error) {
	return f.batch, f.err
}

func setupSyncRouter(svc Syncer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSyncHandler(svc)
	r.POST("/api/sync-imoveis", h.SyncAll)
	r.POST("/api/sync-imoveis/:id", h.SyncOne)
	return r
}

func TestSyncOneCreate(t *testing.T) {
	svc := &fakeSyncer{result: &sync.Result{Operation: "create", Data: json.RawMessage(`{"id":1}`)}}
	r := setupSyncRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync-imoveis/42", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{42}, svc.syncCalls)
	assert.Empty(t, svc.deleteCalls)

	var body struct {
		Success   bool   `json:"success"`
		Operation string `json:"operation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "create", body.Operation)
}

func TestSyncOneDeleteAction(t *testing.T) {
	svc := &fakeSyncer{result: &sync.Result{Operation: "delete"}}
	r := setupSyncRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync-imoveis/42?action=delete", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{42}, svc.deleteCalls)
	assert.Empty(t, svc.syncCalls)
}

func TestSyncOneNotFound(t *testing.T) {
	r := setupSyncRouter(&fakeSyncer{err: database.ErrNotFound})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync-imoveis/42", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestSyncOneTimeout(t *testing.T) {
	r := setupSyncRouter(&fakeSyncer{err: sync.ErrTimeout})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync-imoveis/42", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestSyncOneUpstreamError(t *testing.T) {
	r := setupSyncRouter(&fakeSyncer{err: &sync.UpstreamError{StatusCode: 400, Body: `{"error":"bad payload"}`}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync-imoveis/42", nil))

	require.Equal(t, http.StatusBadGateway, w.Code)

	var body struct {
		UpstreamStatus int    `json:"upstream_status"`
		UpstreamBody   string `json:"upstream_body"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 400, body.UpstreamStatus)
	assert.Contains(t, body.UpstreamBody, "bad payload")
}

func TestSyncOneInvalidID(t *testing.T) {
	r := setupSyncRouter(&fakeSyncer{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync-imoveis/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncAllReportsTally(t *testing.T) {
	r := setupSyncRouter(&fakeSyncer{batch: &sync.BatchResult{
		Total:        3,
		SuccessCount: 2,
		ErrorCount:   1,
		Errors:       []sync.BatchError{{ImovelID: 2, Error: "cms unavailable"}},
	}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sync-imoveis", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success      bool `json:"success"`
		Total        int  `json:"total"`
		SuccessCount int  `json:"successCount"`
		ErrorCount   int  `json:"errorCount"`
		Errors       []struct {
			ImovelID uint   `json:"imovel_id"`
			Error    string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 2, body.SuccessCount)
	assert.Equal(t, 1, body.ErrorCount)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, uint(2), body.Errors[0].ImovelID)
}
