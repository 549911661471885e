package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDataDir(t *testing.T) {
	t.Helper()

	old := dataDir
	t.Setenv("DATA_DIR", t.TempDir())
	initStorage()
	t.Cleanup(func() { dataDir = old })
}

func TestSnapshotRoundTrip(t *testing.T) {
	useTempDataDir(t)

	raw := []byte(`[{"id":1,"first_name":"Ada"},{"id":2,"first_name":"Sam"}]`)

	info, err := saveEntitySnapshot("candidates", raw, 2)
	require.NoError(t, err)
	assert.Equal(t, "candidates", info.Entity)
	assert.Equal(t, 2, info.Count)
	require.Len(t, info.Files, 1)

	candidates := []GHCandidate{}
	require.NoError(t, loadSnapshotInto("candidates", &candidates))
	require.Len(t, candidates, 2)
	assert.Equal(t, "Ada", candidates[0].FirstName)

	count, err := snapshotCount("candidates")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLoadMissingSnapshot(t *testing.T) {
	useTempDataDir(t)

	_, err := loadEntitySnapshot("offers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run the export first")
}

func TestEntityCSVRoundTrip(t *testing.T) {
	useTempDataDir(t)

	users := []GHUser{
		{ID: 1, Name: "Jane Smith", FirstName: "Jane", LastName: "Smith", PrimaryEmailAddress: "jane@example.com", SiteAdmin: true},
		{ID: 2, Name: "Sam Lee", FirstName: "Sam", LastName: "Lee", PrimaryEmailAddress: "sam@example.com"},
	}

	csvPath, err := saveEntityCSV("users", &users)
	require.NoError(t, err)

	loaded, err := loadUsersCSV(csvPath)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "jane@example.com", loaded[0].PrimaryEmailAddress)
	assert.True(t, loaded[0].SiteAdmin)
	assert.EqualValues(t, 2, loaded[1].ID)
}
