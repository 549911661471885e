package main

func migrateInterviews(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "scheduled_interviews"}

	interviews := []GHScheduledInterview{}
	if err := loadSnapshotInto("scheduled_interviews", &interviews); err != nil {
		ErrorLog.Println("interviews snapshot err: ", err)
		summary.Failed++
		return summary
	}

	for _, interview := range interviews {
		if opts.Limit > 0 && summary.Total >= opts.Limit {
			break
		}

		ghID := formatInt64(interview.ID)
		if !opts.wantsRecord("scheduled_interviews", ghID) {
			continue
		}
		summary.Total++

		appTTID, err := mappedTTID("applications", formatInt64(interview.ApplicationID))
		if err != nil {
			summary.Skipped++
			recordMigration(run, "scheduled_interviews", ghID, "", MIG_SKIPPED, "application not migrated", "")
			continue
		}

		if opts.DryRun {
			summary.Created++
			continue
		}

		idemKey := newIdempotencyKey()
		payload := interviewPayload(interview, appTTID)

		ttID, created, err := ttCreateOrUpdate("/interviews", ghExternalID("scheduled_interviews", interview.ID), payload)
		if err != nil {
			ErrorLog.Println("interview migrate err for ", ghID, ": ", err)
			summary.Failed++
			recordMigration(run, "scheduled_interviews", ghID, "", MIG_FAILED, err.Error(), idemKey)
			continue
		}

		if created {
			summary.Created++
			recordMigration(run, "scheduled_interviews", ghID, ttID, MIG_CREATED, "", idemKey)
		} else {
			summary.Updated++
			recordMigration(run, "scheduled_interviews", ghID, ttID, MIG_UPDATED, "", idemKey)
		}
	}

	return summary
}

func interviewPayload(interview GHScheduledInterview, appTTID string) TTPayload {
	attrs := map[string]interface{}{
		"external-id": ghExternalID("scheduled_interviews", interview.ID),
		"starts-at":   interview.Start.DateTime,
		"ends-at":     interview.End.DateTime,
	}

	if interview.Interview != nil {
		attrs["title"] = interview.Interview.Name
	}
	if interview.Location != "" {
		attrs["location"] = interview.Location
	}

	names := []string{}
	for _, interviewer := range interview.Interviewers {
		names = append(names, interviewer.Name)
	}
	if len(names) > 0 {
		attrs["interviewers"] = names
	}

	return TTPayload{
		Data: TTResource{
			Type:       "interviews",
			Attributes: attrs,
			Relationships: map[string]TTRelationship{
				"job-application": {Data: &TTRef{Type: "job-applications", ID: appTTID}},
			},
		},
	}
}
