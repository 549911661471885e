package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTRequestHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token token=test-token", r.Header.Get("Authorization"))
		assert.Equal(t, ttAPIVersion, r.Header.Get("X-Api-Version"))
		assert.Equal(t, ttContentType, r.Header.Get("Content-Type"))
		assert.Equal(t, ttContentType, r.Header.Get("Accept"))

		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	client := newTestTTClient(server)

	resp, err := client.get("/users", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestTTRateLimitRetry(t *testing.T) {
	var calls int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	client := newTestTTClient(server)

	resp, err := client.get("/candidates", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, calls)
	assert.EqualValues(t, 1, atomic.LoadInt64(&client.rateLimitHits))
}

func TestTTGetAllPagesFollowsNext(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page[number]") == "2" {
			fmt.Fprint(w, `{"data":[{"id":"3","type":"candidates"}],"links":{}}`)
			return
		}
		fmt.Fprintf(w, `{"data":[{"id":"1","type":"candidates"},{"id":"2","type":"candidates"}],"links":{"next":"%s/candidates?page[number]=2"}}`, server.URL)
	}))
	defer server.Close()

	client := newTestTTClient(server)

	resources, err := client.getAllPages("/candidates", nil)
	require.NoError(t, err)
	require.Len(t, resources, 3)
	assert.Equal(t, "1", resources[0].ID)
	assert.Equal(t, "3", resources[2].ID)
}

func TestTTRecordCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page[size]"))
		fmt.Fprint(w, `{"data":[{"id":"1","type":"users"}],"meta":{"record-count":742,"page-count":742}}`)
	}))
	defer server.Close()

	client := newTestTTClient(server)

	count, err := client.recordCount("/users")
	require.NoError(t, err)
	assert.Equal(t, 742, count)
}

func TestTTFindByExternalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter[external-id]") == "gh-candidates-55" {
			fmt.Fprint(w, `{"data":[{"id":"901","type":"candidates"}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	client := newTestTTClient(server)

	id, err := client.findByExternalID("/candidates", "gh-candidates-55")
	require.NoError(t, err)
	assert.Equal(t, "901", id)

	id, err = client.findByExternalID("/candidates", "gh-candidates-56")
	require.NoError(t, err)
	assert.Equal(t, "", id)

	// blank external-id never hits the API
	id, err = client.findByExternalID("/candidates", "")
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestTTExistingUserEmailsCaches(t *testing.T) {
	var calls int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		fmt.Fprint(w, `{"data":[{"id":"10","type":"users","attributes":{"email":"Jane@Example.com"}},{"id":"11","type":"users","attributes":{"email":"sam@example.com"}}],"links":{}}`)
	}))
	defer server.Close()

	cash.Flush()
	defer cash.Flush()

	client := newTestTTClient(server)

	byEmail, err := client.existingUserEmails()
	require.NoError(t, err)
	assert.Equal(t, "10", byEmail["jane@example.com"])
	assert.Equal(t, "11", byEmail["sam@example.com"])

	_, err = client.existingUserEmails()
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
}

func TestDecodeTTErrors(t *testing.T) {
	body := []byte(`{"errors":[{"status":"422","title":"Invalid attribute","detail":"email has already been taken"},{"status":"422","title":"Missing field"}]}`)
	assert.Equal(t, "Invalid attribute: email has already been taken; Missing field", decodeTTErrors(body))

	plain := []byte(`not json at all`)
	assert.Equal(t, "not json at all", decodeTTErrors(plain))
}

func TestIsAbsoluteURL(t *testing.T) {
	assert.True(t, isAbsoluteURL("https://api.na.teamtailor.com/v1/candidates?page[number]=2"))
	assert.False(t, isAbsoluteURL("/candidates"))
}
