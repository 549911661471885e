package main

import (
	"encoding/json"
	"net/url"
	"time"
)

// Each processor drains one Harvest endpoint and snapshots it. A failed
// sub-fetch (activity feeds, stages) never kills the batch, matching how
// flaky those endpoints are in practice.

type exportProcessor struct {
	entity string
	fetch  func(incremental bool) ([]json.RawMessage, error)
}

var exportProcessors = []exportProcessor{
	{entity: "users", fetch: fetchUsers},
	{entity: "jobs", fetch: fetchJobs},
	{entity: "candidates", fetch: fetchCandidates},
	{entity: "applications", fetch: fetchApplications},
	{entity: "scheduled_interviews", fetch: fetchScheduledInterviews},
	{entity: "scorecards", fetch: fetchScorecards},
	{entity: "offers", fetch: fetchOffers},
	{entity: "sources", fetch: fetchMetadataProcessor("metadata/sources")},
	{entity: "rejection_reasons", fetch: fetchMetadataProcessor("metadata/rejection_reasons")},
	{entity: "close_reasons", fetch: fetchMetadataProcessor("metadata/close_reasons")},
	{entity: "degrees", fetch: fetchMetadataProcessor("metadata/degrees")},
	{entity: "departments", fetch: fetchMetadataProcessor("departments")},
	{entity: "offices", fetch: fetchMetadataProcessor("offices")},
}

func runAllExports(incremental bool) []SnapshotInfo {
	summary := []SnapshotInfo{}

	for _, proc := range exportProcessors {
		info, err := runExport(proc, incremental)
		if err != nil {
			ErrorLog.Println("export ", proc.entity, " err: ", err)
			continue
		}
		summary = append(summary, info)
	}

	return summary
}

func runExport(proc exportProcessor, incremental bool) (SnapshotInfo, error) {
	InfoLog.Println("exporting ", proc.entity)

	info, cursor, err := collectExport(proc, incremental)
	if err != nil {
		return SnapshotInfo{}, err
	}

	advanceSyncCursor(proc.entity, cursor)

	InfoLog.Println("exported ", proc.entity, ": ", info.Count, " records")

	return info, nil
}

// collectExport drains the processor and snapshots the result. The returned
// cursor is the time the drain started, not finished: records that change
// while pages are still coming in land after the cursor and get pulled again
// on the next incremental run.
func collectExport(proc exportProcessor, incremental bool) (SnapshotInfo, string, error) {
	cursor := time.Now().UTC().Format(time.RFC3339)

	raws, err := proc.fetch(incremental)
	if err != nil {
		return SnapshotInfo{}, "", err
	}

	raw, err := rawsToJSON(raws)
	if err != nil {
		return SnapshotInfo{}, "", err
	}

	info, err := saveEntitySnapshot(proc.entity, raw, len(raws))
	if err != nil {
		return SnapshotInfo{}, "", err
	}

	return info, cursor, nil
}

func exportEntityByName(entity string, incremental bool) (SnapshotInfo, error) {
	for _, proc := range exportProcessors {
		if proc.entity == entity {
			return runExport(proc, incremental)
		}
	}
	return SnapshotInfo{}, errUnknownEntity(entity)
}

func fetchUsers(incremental bool) ([]json.RawMessage, error) {
	raws, err := ghClient.fetchAll("users", incrementalParams("users", incremental))
	if err != nil {
		return nil, err
	}

	// keep the flat CSV backup current, the user tooling reads it
	users := []GHUser{}
	if joined, err := rawsToJSON(raws); err == nil {
		if err := json.Unmarshal(joined, &users); err == nil {
			if _, err := saveEntityCSV("users", &users); err != nil {
				ErrorLog.Println("users csv write err: ", err)
			}
		}
	}

	return raws, nil
}

func fetchJobs(incremental bool) ([]json.RawMessage, error) {
	raws, err := ghClient.fetchAll("jobs", incrementalParams("jobs", incremental))
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(raws))
	for _, raw := range raws {
		job := map[string]interface{}{}
		if err := json.Unmarshal(raw, &job); err != nil {
			out = append(out, raw)
			continue
		}

		id, ok := jsonNumberToID(job["id"])
		if ok {
			stages := []json.RawMessage{}
			if err := ghClient.getJSON("jobs/"+id+"/stages", nil, &stages); err != nil {
				ErrorLog.Println("job stages fetch err for ", id, ": ", err)
			} else {
				job["stages"] = stages
			}
		}

		merged, err := json.Marshal(job)
		if err != nil {
			out = append(out, raw)
			continue
		}
		out = append(out, merged)
	}

	return out, nil
}

func fetchCandidates(incremental bool) ([]json.RawMessage, error) {
	raws, err := ghClient.fetchAll("candidates", incrementalParams("candidates", incremental))
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(raws))
	for _, raw := range raws {
		candidate := map[string]interface{}{}
		if err := json.Unmarshal(raw, &candidate); err != nil {
			out = append(out, raw)
			continue
		}

		id, ok := jsonNumberToID(candidate["id"])
		if ok {
			feed := json.RawMessage{}
			if err := ghClient.getJSON("candidates/"+id+"/activity_feed", nil, &feed); err != nil {
				ErrorLog.Println("activity feed fetch err for ", id, ": ", err)
			} else {
				candidate["activity_feed"] = feed
			}
		}

		merged, err := json.Marshal(candidate)
		if err != nil {
			out = append(out, raw)
			continue
		}
		out = append(out, merged)
	}

	return out, nil
}

func fetchApplications(incremental bool) ([]json.RawMessage, error) {
	return ghClient.fetchAll("applications", incrementalParams("applications", incremental))
}

func fetchScheduledInterviews(incremental bool) ([]json.RawMessage, error) {
	return ghClient.fetchAll("scheduled_interviews", incrementalParams("scheduled_interviews", incremental))
}

func fetchScorecards(incremental bool) ([]json.RawMessage, error) {
	return ghClient.fetchAll("scorecards", incrementalParams("scorecards", incremental))
}

func fetchOffers(incremental bool) ([]json.RawMessage, error) {
	return ghClient.fetchAll("offers", incrementalParams("offers", incremental))
}

func fetchMetadataProcessor(path string) func(bool) ([]json.RawMessage, error) {
	return func(incremental bool) ([]json.RawMessage, error) {
		// metadata endpoints are small, always full pulls
		return ghClient.fetchAll(path, nil)
	}
}

// SyncCursor remembers where the last export of an entity left off so the
// half-hourly cron only pulls what changed.
type SyncCursor struct {
	ID           int64  `db:"id, primarykey, autoincrement"`
	Entity       string `db:"entity"`
	UpdatedAfter string `db:"updated_after"`
	Updated      int64  `db:"updated"`
}

func incrementalParams(entity string, incremental bool) url.Values {
	if !incremental {
		return nil
	}

	cursor := SyncCursor{}
	err := dbmap.SelectOne(&cursor, "SELECT * FROM sync_cursors WHERE entity = ?", entity)
	if err != nil || cursor.UpdatedAfter == "" {
		return nil
	}

	params := url.Values{}
	params.Set("updated_after", cursor.UpdatedAfter)
	return params
}

func advanceSyncCursor(entity, updatedAfter string) {
	cursor := SyncCursor{}
	err := dbmap.SelectOne(&cursor, "SELECT * FROM sync_cursors WHERE entity = ?", entity)
	if err != nil {
		cursor = SyncCursor{Entity: entity, UpdatedAfter: updatedAfter, Updated: time.Now().Unix()}
		if err := dbmap.Insert(&cursor); err != nil {
			ErrorLog.Println("cursor insert err: ", err)
		}
		return
	}

	cursor.UpdatedAfter = updatedAfter
	cursor.Updated = time.Now().Unix()
	if _, err := dbmap.Update(&cursor); err != nil {
		ErrorLog.Println("cursor update err: ", err)
	}
}

func jsonNumberToID(v interface{}) (string, bool) {
	f, ok := v.(float64)
	if !ok {
		return "", false
	}
	return formatInt64(int64(f)), true
}
