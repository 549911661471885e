package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationOrderCoversAllMigrators(t *testing.T) {
	assert.Len(t, migrationOrder, len(entityMigrators))
	for _, entity := range migrationOrder {
		assert.Contains(t, entityMigrators, entity)
	}

	// relationships require these to land before applications
	appIdx := indexOfString(migrationOrder, "applications")
	assert.Greater(t, appIdx, indexOfString(migrationOrder, "users"))
	assert.Greater(t, appIdx, indexOfString(migrationOrder, "jobs"))
	assert.Greater(t, appIdx, indexOfString(migrationOrder, "candidates"))
	assert.Greater(t, indexOfString(migrationOrder, "scheduled_interviews"), appIdx)
	assert.Greater(t, indexOfString(migrationOrder, "offers"), appIdx)

	// notes and tags need the candidate id map filled in first
	assert.Greater(t, indexOfString(migrationOrder, "comments"), indexOfString(migrationOrder, "offers"))
	assert.Greater(t, indexOfString(migrationOrder, "tags"), indexOfString(migrationOrder, "candidates"))
}

func indexOfString(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestGHExternalID(t *testing.T) {
	assert.Equal(t, "gh-candidates-12345", ghExternalID("candidates", 12345))
	assert.Equal(t, "gh-users-1", ghExternalID("users", 1))
}

func TestWantsRecord(t *testing.T) {
	opts := MigrateOptions{}
	assert.True(t, opts.wantsRecord("users", "5"))

	opts.onlyGHIDs = map[string]map[string]bool{
		"users": {"5": true},
	}
	assert.True(t, opts.wantsRecord("users", "5"))
	assert.False(t, opts.wantsRecord("users", "6"))

	// entities without a filter still migrate everything
	assert.True(t, opts.wantsRecord("jobs", "99"))
}

func TestNewIdempotencyKeyUnique(t *testing.T) {
	a := newIdempotencyKey()
	b := newIdempotencyKey()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestTTCreateOrUpdateCreates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)

		payload := TTPayload{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "candidates", payload.Data.Type)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"id":"300","type":"candidates"}}`)
	}))
	defer server.Close()

	swapTTClient(t, server)

	payload := TTPayload{Data: TTResource{
		Type:       "candidates",
		Attributes: map[string]interface{}{"first-name": "Ada"},
	}}

	ttID, created, err := ttCreateOrUpdate("/candidates", "gh-candidates-1", payload)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "300", ttID)
}

func TestTTCreateOrUpdateFallsBackToPatch(t *testing.T) {
	var patched bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST":
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"errors":[{"title":"Invalid attribute","detail":"external-id has already been taken"}]}`)
		case r.Method == "GET":
			assert.Equal(t, "gh-candidates-2", r.URL.Query().Get("filter[external-id]"))
			fmt.Fprint(w, `{"data":[{"id":"42","type":"candidates"}]}`)
		case r.Method == "PATCH":
			patched = true
			assert.Equal(t, "/candidates/42", r.URL.Path)

			payload := TTPayload{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "42", payload.Data.ID)

			fmt.Fprint(w, `{"data":{"id":"42","type":"candidates"}}`)
		}
	}))
	defer server.Close()

	swapTTClient(t, server)

	payload := TTPayload{Data: TTResource{
		Type:       "candidates",
		Attributes: map[string]interface{}{"first-name": "Ada"},
	}}

	ttID, created, err := ttCreateOrUpdate("/candidates", "gh-candidates-2", payload)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "42", ttID)
	assert.True(t, patched)
}

func TestTTCreateOrUpdateRejectedNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"errors":[{"title":"Invalid attribute","detail":"email is invalid"}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	swapTTClient(t, server)

	payload := TTPayload{Data: TTResource{Type: "candidates"}}

	_, _, err := ttCreateOrUpdate("/candidates", "gh-candidates-3", payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is invalid")
}

func TestVerifyMigrationCoversPushedEntities(t *testing.T) {
	useTempDataDir(t)

	destCounts := map[string]int{
		"/users":            2,
		"/jobs":             1,
		"/candidates":       3,
		"/job-applications": 3,
		"/interviews":       1,
		"/offers":           1,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[],"meta":{"record-count":%d}}`, destCounts[r.URL.Path])
	}))
	defer server.Close()

	swapTTClient(t, server)

	snapshots := map[string]string{
		"users":                `[{"id":1},{"id":2}]`,
		"jobs":                 `[{"id":1}]`,
		"candidates":           `[{"id":1},{"id":2},{"id":3}]`,
		"applications":         `[{"id":1},{"id":2},{"id":3}]`,
		"scheduled_interviews": `[{"id":1}]`,
		"offers":               `[{"id":1},{"id":2}]`,
	}
	for entity, raw := range snapshots {
		_, err := saveEntitySnapshot(entity, []byte(raw), 0)
		require.NoError(t, err)
	}

	results, err := verifyMigration()
	require.NoError(t, err)
	require.Len(t, results, 6)

	byEntity := map[string]VerifyResult{}
	for _, result := range results {
		byEntity[result.Entity] = result
	}

	assert.True(t, byEntity["users"].Matches)
	assert.True(t, byEntity["scheduled_interviews"].Matches)

	assert.False(t, byEntity["offers"].Matches)
	assert.Equal(t, 2, byEntity["offers"].SourceCount)
	assert.Equal(t, 1, byEntity["offers"].DestCount)
}

func TestContainsString(t *testing.T) {
	assert.True(t, containsString([]string{"a", "b"}, "b"))
	assert.False(t, containsString([]string{"a", "b"}, "c"))
	assert.False(t, containsString(nil, "a"))
}
