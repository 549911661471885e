package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareUsers(t *testing.T) {
	useTempDataDir(t)

	backup := []GHUser{
		{ID: 1, FirstName: "Jane", LastName: "Smith", PrimaryEmailAddress: "jane@example.com"},
		{ID: 2, FirstName: "Sam", LastName: "Lee", PrimaryEmailAddress: "sam@example.com"},
		{ID: 3, FirstName: "Old", LastName: "Account", PrimaryEmailAddress: "old@example.com", Disabled: true},
	}
	csvPath, err := saveEntityCSV("users", &backup)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"10","type":"users","attributes":{"email":"jane@example.com"}},{"id":"11","type":"users","attributes":{"email":"stranger@example.com"}}],"links":{}}`)
	}))
	defer server.Close()

	cash.Flush()
	swapTTClient(t, server)

	comparison, err := compareUsers(csvPath)
	require.NoError(t, err)

	require.Len(t, comparison.Existing, 1)
	assert.Equal(t, "jane@example.com", comparison.Existing[0].PrimaryEmailAddress)

	require.Len(t, comparison.Missing, 1)
	assert.Equal(t, "sam@example.com", comparison.Missing[0].PrimaryEmailAddress)

	// disabled backup rows are neither missing nor existing, but their email
	// still keeps them out of extras
	assert.Equal(t, []string{"stranger@example.com"}, comparison.Extra)
}

func TestLoadUsersCSVDropsJunkRows(t *testing.T) {
	useTempDataDir(t)

	users := []GHUser{
		{ID: 1, FirstName: "Jane", PrimaryEmailAddress: "jane@example.com"},
		{ID: 2, FirstName: "", PrimaryEmailAddress: "noname@example.com"},
		{ID: 3, FirstName: "NoEmail", PrimaryEmailAddress: ""},
	}
	csvPath, err := saveEntityCSV("users", &users)
	require.NoError(t, err)

	loaded, err := loadUsersCSV(csvPath)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "jane@example.com", loaded[0].PrimaryEmailAddress)
}

func TestWriteComparisonCSV(t *testing.T) {
	useTempDataDir(t)

	comparison := UserComparison{
		Missing:  []GHUser{{FirstName: "Sam", LastName: "Lee", PrimaryEmailAddress: "sam@example.com"}},
		Existing: []GHUser{{FirstName: "Jane", LastName: "Smith", PrimaryEmailAddress: "jane@example.com", SiteAdmin: true}},
		Extra:    []string{"stranger@example.com"},
	}

	csvPath, err := writeComparisonCSV(comparison)
	require.NoError(t, err)
	assert.Equal(t, snapshotCSVPath("user_comparison"), csvPath)
}
