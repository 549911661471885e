package main

func migrateCandidates(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "candidates"}

	candidates := []GHCandidate{}
	if err := loadSnapshotInto("candidates", &candidates); err != nil {
		ErrorLog.Println("candidates snapshot err: ", err)
		summary.Failed++
		return summary
	}

	for _, candidate := range candidates {
		if opts.Limit > 0 && summary.Total >= opts.Limit {
			break
		}

		ghID := formatInt64(candidate.ID)
		if !opts.wantsRecord("candidates", ghID) {
			continue
		}
		summary.Total++

		if candidate.IsPrivate {
			summary.Skipped++
			recordMigration(run, "candidates", ghID, "", MIG_SKIPPED, "private candidate", "")
			continue
		}

		if opts.DryRun {
			summary.Created++
			continue
		}

		idemKey := newIdempotencyKey()
		payload := candidatePayload(candidate)

		ttID, created, err := ttCreateOrUpdate("/candidates", ghExternalID("candidates", candidate.ID), payload)
		if err != nil {
			ErrorLog.Println("candidate migrate err for ", candidate.FirstName, " ", candidate.LastName, ": ", err)
			summary.Failed++
			recordMigration(run, "candidates", ghID, "", MIG_FAILED, err.Error(), idemKey)
			continue
		}

		if created {
			summary.Created++
			recordMigration(run, "candidates", ghID, ttID, MIG_CREATED, "", idemKey)
		} else {
			summary.Updated++
			recordMigration(run, "candidates", ghID, ttID, MIG_UPDATED, "", idemKey)
		}
	}

	return summary
}

func candidatePayload(candidate GHCandidate) TTPayload {
	attrs := map[string]interface{}{
		"first-name":  candidate.FirstName,
		"last-name":   candidate.LastName,
		"external-id": ghExternalID("candidates", candidate.ID),
		// migrated candidates count as sourced, they did not apply through
		// a TeamTailor posting
		"sourced": true,
	}

	if email := primaryContactValue(candidate.EmailAddresses); email != "" {
		attrs["email"] = email
	}
	if phone := primaryContactValue(candidate.PhoneNumbers); phone != "" {
		attrs["phone"] = phone
	}
	if len(candidate.Tags) > 0 {
		attrs["tags"] = candidate.Tags
	}
	switch {
	case candidate.Title != "" && candidate.Company != "":
		attrs["pitch"] = candidate.Title + " @ " + candidate.Company
	case candidate.Title != "":
		attrs["pitch"] = candidate.Title
	case candidate.Company != "":
		attrs["pitch"] = candidate.Company
	}

	return TTPayload{
		Data: TTResource{
			Type:       "candidates",
			Attributes: attrs,
		},
	}
}

// primaryContactValue picks the "personal" entry when there is one,
// otherwise the first non-empty value.
func primaryContactValue(contacts []GHContactInfo) string {
	for _, c := range contacts {
		if c.Type == "personal" && c.Value != "" {
			return c.Value
		}
	}
	for _, c := range contacts {
		if c.Value != "" {
			return c.Value
		}
	}
	return ""
}
