package main

import (
	"net/http/httptest"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	env = &Env{}
	initLogger()
	initCache()

	os.Exit(m.Run())
}

func newTestGHClient(server *httptest.Server) *GHClient {
	return &GHClient{
		baseURL: server.URL,
		apiKey:  "test-key",
		http:    server.Client(),
		delay:   0,
	}
}

func newTestTTClient(server *httptest.Server) *TTClient {
	return &TTClient{
		baseURL:    server.URL,
		token:      "test-token",
		apiVersion: ttAPIVersion,
		http:       server.Client(),
		delay:      0,
	}
}

// swapTTClient points the package global at a test server for the code
// paths that reach for it directly.
func swapTTClient(t *testing.T, server *httptest.Server) {
	t.Helper()

	old := ttClient
	ttClient = newTestTTClient(server)
	t.Cleanup(func() {
		ttClient = old
		cash.Flush()
	})
}

func swapGHClient(t *testing.T, server *httptest.Server) {
	t.Helper()

	old := ghClient
	ghClient = newTestGHClient(server)
	t.Cleanup(func() {
		ghClient = old
		cash.Flush()
	})
}
