package main

func migrateApplications(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "applications"}

	applications := []GHApplication{}
	if err := loadSnapshotInto("applications", &applications); err != nil {
		ErrorLog.Println("applications snapshot err: ", err)
		summary.Failed++
		return summary
	}

	for _, app := range applications {
		if opts.Limit > 0 && summary.Total >= opts.Limit {
			break
		}

		ghID := formatInt64(app.ID)
		if !opts.wantsRecord("applications", ghID) {
			continue
		}
		summary.Total++

		if app.Prospect || len(app.Jobs) == 0 {
			summary.Skipped++
			recordMigration(run, "applications", ghID, "", MIG_SKIPPED, "prospect or no job", "")
			continue
		}

		candidateTTID, err := mappedTTID("candidates", formatInt64(app.CandidateID))
		if err != nil {
			summary.Skipped++
			recordMigration(run, "applications", ghID, "", MIG_SKIPPED, "candidate not migrated", "")
			continue
		}

		jobTTID, err := mappedTTID("jobs", formatInt64(app.Jobs[0].ID))
		if err != nil {
			summary.Skipped++
			recordMigration(run, "applications", ghID, "", MIG_SKIPPED, "job not migrated", "")
			continue
		}

		if opts.DryRun {
			summary.Created++
			continue
		}

		idemKey := newIdempotencyKey()
		payload := applicationPayload(app, candidateTTID, jobTTID)

		ttID, created, err := ttCreateOrUpdate("/job-applications", ghExternalID("applications", app.ID), payload)
		if err != nil {
			ErrorLog.Println("application migrate err for ", ghID, ": ", err)
			summary.Failed++
			recordMigration(run, "applications", ghID, "", MIG_FAILED, err.Error(), idemKey)
			continue
		}

		if created {
			summary.Created++
			recordMigration(run, "applications", ghID, ttID, MIG_CREATED, "", idemKey)
		} else {
			summary.Updated++
			recordMigration(run, "applications", ghID, ttID, MIG_UPDATED, "", idemKey)
		}
	}

	return summary
}

func applicationPayload(app GHApplication, candidateTTID, jobTTID string) TTPayload {
	attrs := map[string]interface{}{
		"external-id": ghExternalID("applications", app.ID),
	}

	if app.AppliedAt != "" {
		attrs["created-at"] = app.AppliedAt
	}
	if app.Status == "rejected" && app.RejectedAt != "" {
		attrs["rejected-at"] = app.RejectedAt
	}
	if app.Source != nil && app.Source.PublicName != "" {
		attrs["sourced"] = true
	}

	return TTPayload{
		Data: TTResource{
			Type:       "job-applications",
			Attributes: attrs,
			Relationships: map[string]TTRelationship{
				"candidate": {Data: &TTRef{Type: "candidates", ID: candidateTTID}},
				"job":       {Data: &TTRef{Type: "jobs", ID: jobTTID}},
			},
		},
	}
}
