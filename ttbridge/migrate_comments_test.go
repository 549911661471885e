package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateNotes(t *testing.T) {
	feed := json.RawMessage(`{"notes":[
		{"id":1,"body":"Strong phone screen","created_at":"2024-01-10T10:00:00.000Z","user":{"id":5,"name":"Pat Jones"}},
		{"id":2,"body":"","created_at":"2024-01-11T10:00:00.000Z"},
		{"id":3,"body":"Comp expectations","private":true},
		{"id":4,"body":"Sent take-home"}
	]}`)

	notes := candidateNotes(GHCandidate{ID: 55, ActivityFeed: feed})
	require.Len(t, notes, 2)
	assert.EqualValues(t, 1, notes[0].ID)
	assert.EqualValues(t, 4, notes[1].ID)
}

func TestCandidateNotesMissingOrBadFeed(t *testing.T) {
	assert.Nil(t, candidateNotes(GHCandidate{ID: 1}))
	assert.Nil(t, candidateNotes(GHCandidate{ID: 2, ActivityFeed: json.RawMessage(`not json`)}))
	assert.Empty(t, candidateNotes(GHCandidate{ID: 3, ActivityFeed: json.RawMessage(`{"notes":[]}`)}))
}

func TestCommentPayload(t *testing.T) {
	payload := commentPayload(ghActivityNote{
		ID:        10,
		Body:      "Strong phone screen",
		CreatedAt: "2024-01-10T10:00:00.000Z",
		User:      &GHIDName{ID: 5, Name: "Pat Jones"},
	}, "cand-9")

	assert.Equal(t, "notes", payload.Data.Type)
	assert.Equal(t, "Pat Jones: Strong phone screen", payload.Data.Attributes["note"])
	assert.Equal(t, "gh-comments-10", payload.Data.Attributes["external-id"])
	assert.Equal(t, "2024-01-10T10:00:00.000Z", payload.Data.Attributes["created-at"])

	require.Contains(t, payload.Data.Relationships, "candidate")
	assert.Equal(t, "cand-9", payload.Data.Relationships["candidate"].Data.ID)
}

func TestCommentPayloadNoAuthor(t *testing.T) {
	payload := commentPayload(ghActivityNote{ID: 11, Body: "Sent take-home"}, "cand-9")

	assert.Equal(t, "Sent take-home", payload.Data.Attributes["note"])
	assert.NotContains(t, payload.Data.Attributes, "created-at")
}
