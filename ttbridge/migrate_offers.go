package main

func migrateOffers(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "offers"}

	offers := []GHOffer{}
	if err := loadSnapshotInto("offers", &offers); err != nil {
		ErrorLog.Println("offers snapshot err: ", err)
		summary.Failed++
		return summary
	}

	// only the latest version of an offer per application moves over
	latest := map[int64]GHOffer{}
	for _, offer := range offers {
		if existing, ok := latest[offer.ApplicationID]; !ok || offer.Version > existing.Version {
			latest[offer.ApplicationID] = offer
		}
	}

	for _, offer := range offers {
		if opts.Limit > 0 && summary.Total >= opts.Limit {
			break
		}

		ghID := formatInt64(offer.ID)
		if !opts.wantsRecord("offers", ghID) {
			continue
		}
		summary.Total++

		if latest[offer.ApplicationID].ID != offer.ID {
			summary.Skipped++
			recordMigration(run, "offers", ghID, "", MIG_SKIPPED, "superseded offer version", "")
			continue
		}

		appTTID, err := mappedTTID("applications", formatInt64(offer.ApplicationID))
		if err != nil {
			summary.Skipped++
			recordMigration(run, "offers", ghID, "", MIG_SKIPPED, "application not migrated", "")
			continue
		}

		if opts.DryRun {
			summary.Created++
			continue
		}

		idemKey := newIdempotencyKey()
		payload := offerPayload(offer, appTTID)

		ttID, created, err := ttCreateOrUpdate("/offers", ghExternalID("offers", offer.ID), payload)
		if err != nil {
			ErrorLog.Println("offer migrate err for ", ghID, ": ", err)
			summary.Failed++
			recordMigration(run, "offers", ghID, "", MIG_FAILED, err.Error(), idemKey)
			continue
		}

		if created {
			summary.Created++
			recordMigration(run, "offers", ghID, ttID, MIG_CREATED, "", idemKey)
		} else {
			summary.Updated++
			recordMigration(run, "offers", ghID, ttID, MIG_UPDATED, "", idemKey)
		}
	}

	return summary
}

func offerPayload(offer GHOffer, appTTID string) TTPayload {
	attrs := map[string]interface{}{
		"external-id": ghExternalID("offers", offer.ID),
		"status":      offer.Status,
	}

	if offer.SentAt != "" {
		attrs["sent-at"] = offer.SentAt
	}
	if offer.StartsAt != "" {
		attrs["starts-at"] = offer.StartsAt
	}

	return TTPayload{
		Data: TTResource{
			Type:       "offers",
			Attributes: attrs,
			Relationships: map[string]TTRelationship{
				"job-application": {Data: &TTRef{Type: "job-applications", ID: appTTID}},
			},
		},
	}
}
