package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRootRoute(t *testing.T) {
	router := newTestRouter()
	registerRootRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ttbridge")
}

func TestGHProxyPassthroughAndCache(t *testing.T) {
	var calls int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[{"id":1}]`)
	}))
	defer server.Close()

	cash.Flush()
	swapGHClient(t, server)

	router := newTestRouter()
	registerProxyRoutes(router)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/candidates?per_page=5", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":1}]`, w.Body.String())
	}

	// second hit comes from cache
	assert.EqualValues(t, 1, calls)
}

func TestGHProxyDropsUnknownParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "", r.URL.Query().Get("api_key"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("updated_after"))
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	cash.Flush()
	swapGHClient(t, server)

	router := newTestRouter()
	registerProxyRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/jobs?updated_after=2024-01-01T00:00:00Z&api_key=sneaky", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetadataProxyWhitelist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata/sources", r.URL.Path)
		fmt.Fprint(w, `[{"id":1,"name":"LinkedIn"}]`)
	}))
	defer server.Close()

	cash.Flush()
	swapGHClient(t, server)

	router := newTestRouter()
	registerProxyRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metadata/sources", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metadata/payroll", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGHProxyUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"bad key"}`)
	}))
	defer server.Close()

	cash.Flush()
	swapGHClient(t, server)

	router := newTestRouter()
	registerProxyRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/offers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestTTProxyPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"id":"1","type":"users"}]}`)
	}))
	defer server.Close()

	cash.Flush()
	swapTTClient(t, server)

	router := newTestRouter()
	registerTTProxyRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/tt/users", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.api+json", w.Header().Get("Content-Type"))
}

func TestAdminGate(t *testing.T) {
	passwords.ADMIN_KEY = "test-admin-key"

	router := newTestRouter()
	registerTagRoutes(router)

	// catalog is open
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/tags/catalog", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// mutations need the key
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/tags/bulk", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/tags/bulk", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
