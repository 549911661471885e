package main

import "encoding/json"

// Greenhouse keeps recruiter notes inside the candidate activity feed; they
// move over as notes attached to the mapped destination candidate.

type ghActivityFeed struct {
	Notes []ghActivityNote `json:"notes"`
}

type ghActivityNote struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	CreatedAt string    `json:"created_at"`
	Private   bool      `json:"private"`
	User      *GHIDName `json:"user"`
}

// candidateNotes pulls the migratable notes out of a candidate's activity
// feed snapshot. Private and empty notes stay behind.
func candidateNotes(candidate GHCandidate) []ghActivityNote {
	if len(candidate.ActivityFeed) == 0 {
		return nil
	}

	feed := ghActivityFeed{}
	if err := json.Unmarshal(candidate.ActivityFeed, &feed); err != nil {
		return nil
	}

	notes := make([]ghActivityNote, 0, len(feed.Notes))
	for _, note := range feed.Notes {
		if note.Body == "" || note.Private {
			continue
		}
		notes = append(notes, note)
	}

	return notes
}

func migrateComments(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "comments"}

	candidates := []GHCandidate{}
	if err := loadSnapshotInto("candidates", &candidates); err != nil {
		ErrorLog.Println("candidates snapshot err: ", err)
		summary.Failed++
		return summary
	}

	for _, candidate := range candidates {
		notes := candidateNotes(candidate)
		if len(notes) == 0 {
			continue
		}

		candidateTTID, err := mappedTTID("candidates", formatInt64(candidate.ID))
		if err != nil {
			continue
		}

		for _, note := range notes {
			if opts.Limit > 0 && summary.Total >= opts.Limit {
				return summary
			}

			ghID := formatInt64(note.ID)
			if !opts.wantsRecord("comments", ghID) {
				continue
			}
			summary.Total++

			if opts.DryRun {
				summary.Created++
				continue
			}

			idemKey := newIdempotencyKey()
			payload := commentPayload(note, candidateTTID)

			ttID, created, err := ttCreateOrUpdate("/notes", ghExternalID("comments", note.ID), payload)
			if err != nil {
				ErrorLog.Println("comment migrate err for ", ghID, ": ", err)
				summary.Failed++
				recordMigration(run, "comments", ghID, "", MIG_FAILED, err.Error(), idemKey)
				continue
			}

			if created {
				summary.Created++
				recordMigration(run, "comments", ghID, ttID, MIG_CREATED, "", idemKey)
			} else {
				summary.Updated++
				recordMigration(run, "comments", ghID, ttID, MIG_UPDATED, "", idemKey)
			}
		}
	}

	return summary
}

func commentPayload(note ghActivityNote, candidateTTID string) TTPayload {
	body := note.Body
	// the destination has no author field, the original writer goes in the text
	if note.User != nil && note.User.Name != "" {
		body = note.User.Name + ": " + body
	}

	attrs := map[string]interface{}{
		"note":        body,
		"external-id": ghExternalID("comments", note.ID),
	}
	if note.CreatedAt != "" {
		attrs["created-at"] = note.CreatedAt
	}

	return TTPayload{
		Data: TTResource{
			Type:       "notes",
			Attributes: attrs,
			Relationships: map[string]TTRelationship{
				"candidate": {Data: &TTRef{Type: "candidates", ID: candidateTTID}},
			},
		},
	}
}
