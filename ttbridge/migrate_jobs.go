package main

func migrateJobs(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "jobs"}

	jobs := []GHJob{}
	if err := loadSnapshotInto("jobs", &jobs); err != nil {
		ErrorLog.Println("jobs snapshot err: ", err)
		summary.Failed++
		return summary
	}

	for _, job := range jobs {
		if opts.Limit > 0 && summary.Total >= opts.Limit {
			break
		}

		ghID := formatInt64(job.ID)
		if !opts.wantsRecord("jobs", ghID) {
			continue
		}
		summary.Total++

		if job.Status == "draft" {
			summary.Skipped++
			recordMigration(run, "jobs", ghID, "", MIG_SKIPPED, "draft job", "")
			continue
		}

		if opts.DryRun {
			summary.Created++
			continue
		}

		idemKey := newIdempotencyKey()
		payload := jobPayload(job)

		ttID, created, err := ttCreateOrUpdate("/jobs", ghExternalID("jobs", job.ID), payload)
		if err != nil {
			ErrorLog.Println("job migrate err for ", job.Name, ": ", err)
			summary.Failed++
			recordMigration(run, "jobs", ghID, "", MIG_FAILED, err.Error(), idemKey)
			continue
		}

		if created {
			summary.Created++
			recordMigration(run, "jobs", ghID, ttID, MIG_CREATED, "", idemKey)
		} else {
			summary.Updated++
			recordMigration(run, "jobs", ghID, ttID, MIG_UPDATED, "", idemKey)
		}
	}

	return summary
}

func jobPayload(job GHJob) TTPayload {
	attrs := map[string]interface{}{
		"title":       job.Name,
		"status":      jobStatusToTT(job.Status),
		"external-id": ghExternalID("jobs", job.ID),
	}

	if job.Notes != "" {
		attrs["body"] = job.Notes
	}
	if len(job.Departments) > 0 {
		attrs["tags"] = []string{job.Departments[0].Name}
	}

	return TTPayload{
		Data: TTResource{
			Type:       "jobs",
			Attributes: attrs,
		},
	}
}

// Greenhouse statuses are open/closed/draft; TeamTailor wants
// open/archived/draft.
func jobStatusToTT(status string) string {
	switch status {
	case "open":
		return "open"
	case "closed":
		return "archived"
	default:
		return "draft"
	}
}
