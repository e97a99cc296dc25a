package trainlog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/gymplan/internal/plan"
	"github.com/2beens/gymplan/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlerSetup(t *testing.T) (*mux.Router, *memStore, *AutoSaver) {
	t.Helper()
	store := newMemStore()
	store.files[testLogPath] = testLogContent

	repo := NewRepo(store, testLogPath)
	analyzer := NewAnalyzer(repo)
	saver := NewAutoSaver(repo, 1200*time.Millisecond, metrics.NewTestManager())
	handler := NewHandler(repo, analyzer, saver)

	router := mux.NewRouter()
	router.HandleFunc("/log/auto", handler.HandleAutoSave).Methods("POST")
	router.HandleFunc("/log", handler.HandleAdd).Methods("POST")
	router.HandleFunc("/log/history", handler.HandleHistory).Methods("GET")
	router.HandleFunc("/log/lastweight", handler.HandleLastWeight).Methods("GET")
	router.HandleFunc("/log/lastvariant", handler.HandleLastVariant).Methods("GET")
	return router, store, saver
}

func TestHandler_AutoSave(t *testing.T) {
	router, store, saver := newTestHandlerSetup(t)

	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	saver.Now = func() time.Time { return now }

	body := `{"user":"Amor","day":"Segunda","exercise":"Supino reto","weightKg":45,"done":true}`

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/log/auto", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)

	var autoSaveResp AutoSaveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &autoSaveResp))
	assert.True(t, autoSaveResp.Saved)
	assert.Contains(t, store.files[testLogPath], "45.0")

	// immediate repeat gets debounced
	writesBefore := store.writes
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/log/auto", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &autoSaveResp))
	assert.False(t, autoSaveResp.Saved)
	assert.Equal(t, writesBefore, store.writes)
}

func TestHandler_Add(t *testing.T) {
	router, store, _ := newTestHandlerSetup(t)

	body := `{"user":"Benfica","day":"Sexta","exercise":"Agachamento","weightKg":62.5,"done":true}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/log", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)

	// timestamp got stamped server-side
	var entry Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entry))
	assert.NotEmpty(t, entry.Timestamp)
	assert.Contains(t, store.files[testLogPath], "Benfica,Sexta,,Agachamento,,62.5,1")
}

func TestHandler_Add_CanonicalizesWeekday(t *testing.T) {
	router, store, _ := newTestHandlerSetup(t)

	body := `{"user":"Benfica","day":"sexta","exercise":"Agachamento","weightKg":62.5,"done":true}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/log", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)

	// both the echoed entry and the file carry the canonical day
	var entry Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entry))
	assert.Equal(t, plan.Sexta, entry.Day)
	assert.Contains(t, store.files[testLogPath], "Benfica,Sexta,,Agachamento,,62.5,1")
}

func TestHandler_Add_Invalid(t *testing.T) {
	router, store, _ := newTestHandlerSetup(t)

	testCases := []struct {
		name string
		body string
	}{
		{name: "EmptyUser", body: `{"user":"","day":"Sexta","exercise":"Agachamento"}`},
		{name: "EmptyExercise", body: `{"user":"Amor","day":"Sexta","exercise":""}`},
		{name: "BadWeekday", body: `{"user":"Amor","day":"Domingo","exercise":"Agachamento"}`},
		{name: "Garbage", body: `not json`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest("POST", "/log", strings.NewReader(tc.body)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	assert.Equal(t, 0, store.writes)
}

func TestHandler_History(t *testing.T) {
	router, _, _ := newTestHandlerSetup(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/log/history?user=Amor", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var historyResp HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &historyResp))
	assert.Equal(t, 2, historyResp.Total)
	// newest first
	assert.Equal(t, "2024-05-08T10:05:00Z", historyResp.Entries[0].Timestamp)

	// missing user is a bad request
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/log/history", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_LastWeight(t *testing.T) {
	router, _, _ := newTestHandlerSetup(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(
		"GET", "/log/lastweight?user=Amor&day=Segunda&exercise=Supino+reto", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var weightResp LastWeightResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &weightResp))
	assert.Equal(t, 42.5, weightResp.WeightKg)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/log/lastweight?user=Amor&day=Segunda", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_LastVariant(t *testing.T) {
	router, _, _ := newTestHandlerSetup(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(
		"GET", "/log/lastvariant?user=Amor&day=Segunda&candidates=Crucifixo,Supino+reto", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var variantResp LastVariantResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &variantResp))
	// Supino reto logged last on Segunda
	assert.Equal(t, "Supino reto", variantResp.Choice)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/log/lastvariant?user=Amor&day=Segunda", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/log/lastvariant?user=Amor&day=Niet&candidates=a", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
