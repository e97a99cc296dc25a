package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *memStore) {
	t.Helper()
	repo, store := newTestRepo(t)
	handler := NewHandler(repo)

	router := mux.NewRouter()
	router.HandleFunc("/catalog", handler.HandleList).Methods("GET")
	router.HandleFunc("/catalog", handler.HandleAdd).Methods("POST")
	router.HandleFunc("/catalog", handler.HandleUpdate).Methods("PUT")
	router.HandleFunc("/catalog/{name}", handler.HandleGet).Methods("GET")
	router.HandleFunc("/catalog/{name}", handler.HandleDelete).Methods("DELETE")
	return router, store
}

func TestHandler_List(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/catalog", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var entries []Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	// sorted by muscle group
	assert.Equal(t, "Remada curvada", entries[0].Name)
	assert.Equal(t, "Supino reto", entries[1].Name)
}

func TestHandler_List_Filtered(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/catalog?q=supino&group=Peito", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var entries []Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Supino reto", entries[0].Name)
}

func TestHandler_Get(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/catalog/Supino%20reto", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var entry Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entry))
	assert.Equal(t, "supino", entry.GifKey)
}

func TestHandler_Get_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/catalog/Levantamento%20terra", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Add(t *testing.T) {
	router, store := newTestRouter(t)

	body := `{"name":"Agachamento","muscleGroup":"Pernas","gifUrl":"https://gifs.example.com/agachamento.gif"}`
	req := httptest.NewRequest("POST", "/catalog", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, store.writes)
	assert.Contains(t, store.files[testCatalogPath], "Agachamento,Pernas")
}

func TestHandler_Add_Invalid(t *testing.T) {
	router, store := newTestRouter(t)

	testCases := []struct {
		name               string
		body               string
		expectedStatusCode int
	}{
		{
			name:               "EmptyName",
			body:               `{"name":"","muscleGroup":"Pernas"}`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "DuplicateNameDifferentCase",
			body:               `{"name":"supino RETO","muscleGroup":"Peito"}`,
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:               "Garbage",
			body:               `{{{`,
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/catalog", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tc.expectedStatusCode, rr.Code)
		})
	}

	assert.Equal(t, 0, store.writes)
}

func TestHandler_Update_Rename(t *testing.T) {
	router, store := newTestRouter(t)

	body := `{"oldName":"Remada curvada","name":"Remada baixa","muscleGroup":"Costas"}`
	req := httptest.NewRequest("PUT", "/catalog", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, store.files[testCatalogPath], "Remada curvada")
	assert.Contains(t, store.files[testCatalogPath], "Remada baixa")
}

func TestHandler_Delete(t *testing.T) {
	router, store := newTestRouter(t)

	req := httptest.NewRequest("DELETE", "/catalog/Remada%20curvada", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var deleteResp DeleteEntryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &deleteResp))
	assert.Equal(t, "Remada curvada", deleteResp.Deleted)
	assert.NotContains(t, store.files[testCatalogPath], "Remada curvada")
}
