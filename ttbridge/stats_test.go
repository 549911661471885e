package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRoute(t *testing.T) {
	useTempDataDir(t)

	_, err := saveEntitySnapshot("candidates", []byte(`[{"id":1},{"id":2},{"id":3}]`), 3)
	require.NoError(t, err)
	_, err = saveEntitySnapshot("users", []byte(`[{"id":1}]`), 1)
	require.NoError(t, err)

	router := newTestRouter()
	registerStatsRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/stats", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Counts []FileStat `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Counts, 2)

	byFile := map[string]FileStat{}
	for _, stat := range resp.Counts {
		byFile[stat.File] = stat
	}
	assert.Equal(t, 3, byFile["candidates.json"].Records)
	assert.Equal(t, 1, byFile["users.json"].Records)
}

func TestStatsRouteNoDataDir(t *testing.T) {
	old := dataDir
	dataDir = "/nonexistent/ttbridge-test"
	t.Cleanup(func() { dataDir = old })

	router := newTestRouter()
	registerStatsRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "counts")
}
