package main

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

// Entities migrate in dependency order: a job application cannot link a
// candidate or a job that is not there yet. One entity finishes before the
// next starts, sequential within an entity.
var migrationOrder = []string{
	"users",
	"jobs",
	"candidates",
	"applications",
	"scheduled_interviews",
	"offers",
	"comments",
	"tags",
}

const (
	RUN_RUNNING  = "running"
	RUN_FINISHED = "finished"
	RUN_FAILED   = "failed"

	MIG_CREATED = "created"
	MIG_UPDATED = "updated"
	MIG_SKIPPED = "skipped"
	MIG_FAILED  = "failed"
)

type MigrationRun struct {
	ID       int64  `db:"id, primarykey, autoincrement" json:"id"`
	Entities string `db:"entities" json:"entities"`
	Status   string `db:"status" json:"status"`
	DryRun   bool   `db:"dry_run" json:"dry_run"`
	Created  int64  `db:"created" json:"created"`
	Finished int64  `db:"finished" json:"finished"`
	Summary  string `db:"summary" json:"summary"`
}

type EntityMigration struct {
	ID             int64  `db:"id, primarykey, autoincrement" json:"id"`
	RunID          int64  `db:"run_id" json:"run_id"`
	Entity         string `db:"entity" json:"entity"`
	GHID           string `db:"gh_id" json:"gh_id"`
	TTID           string `db:"tt_id" json:"tt_id"`
	Status         string `db:"status" json:"status"`
	Error          string `db:"error" json:"error,omitempty"`
	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	Created        int64  `db:"created" json:"created"`
}

type EntitySummary struct {
	Entity  string `json:"entity"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Total   int    `json:"total"`
}

type MigrateOptions struct {
	Entities []string `json:"entities"`
	Limit    int      `json:"limit"`
	DryRun   bool     `json:"dry_run"`

	// set by retryFailed to re-drive specific records only
	onlyGHIDs map[string]map[string]bool
}

func (o MigrateOptions) wantsRecord(entity, ghID string) bool {
	if o.onlyGHIDs == nil {
		return true
	}
	ids := o.onlyGHIDs[entity]
	if ids == nil {
		return true
	}
	return ids[ghID]
}

type entityMigrator func(run *MigrationRun, opts MigrateOptions) EntitySummary

var entityMigrators = map[string]entityMigrator{
	"users":                migrateUsers,
	"jobs":                 migrateJobs,
	"candidates":           migrateCandidates,
	"applications":         migrateApplications,
	"scheduled_interviews": migrateInterviews,
	"offers":               migrateOffers,
	"comments":             migrateComments,
	"tags":                 migrateTags,
}

func runMigration(opts MigrateOptions) (*MigrationRun, error) {
	wanted := opts.Entities
	if len(wanted) == 0 {
		wanted = migrationOrder
	}

	for _, entity := range wanted {
		if _, ok := entityMigrators[entity]; !ok {
			return nil, errUnknownEntity(entity)
		}
	}

	run := &MigrationRun{
		Entities: strings.Join(wanted, ","),
		Status:   RUN_RUNNING,
		DryRun:   opts.DryRun,
		Created:  time.Now().Unix(),
	}
	if err := dbmap.Insert(run); err != nil {
		ErrorLog.Println("couldnt insert migration run: ", err)
		return nil, errors.New("could not record migration run")
	}

	InfoLog.Println("migration run ", run.ID, " started: ", run.Entities)

	summaries := []EntitySummary{}
	anyFailed := false

	// walk the fixed order, not the request order
	for _, entity := range migrationOrder {
		if !containsString(wanted, entity) {
			continue
		}

		summary := entityMigrators[entity](run, opts)
		summaries = append(summaries, summary)

		if summary.Failed > 0 {
			anyFailed = true
		}
	}

	run.Status = RUN_FINISHED
	if anyFailed {
		run.Status = RUN_FAILED
	}
	run.Finished = time.Now().Unix()

	summaryJSON, err := json.Marshal(summaries)
	if err == nil {
		run.Summary = string(summaryJSON)
	}

	if _, err := dbmap.Update(run); err != nil {
		ErrorLog.Println("couldnt update migration run: ", err)
	}

	if !opts.DryRun {
		sendMigrationSummaryEmail(run, summaries)
	}

	InfoLog.Println("migration run ", run.ID, " ", run.Status)

	return run, nil
}

// recordMigration writes one id-map row. Reruns read these rows to resolve
// relationships and to skip work already done.
func recordMigration(run *MigrationRun, entity, ghID, ttID, status, errMsg, idemKey string) {
	row := &EntityMigration{
		RunID:          run.ID,
		Entity:         entity,
		GHID:           ghID,
		TTID:           ttID,
		Status:         status,
		Error:          errMsg,
		IdempotencyKey: idemKey,
		Created:        time.Now().Unix(),
	}

	if err := dbmap.Insert(row); err != nil {
		ErrorLog.Println("couldnt insert entity migration row: ", err)
	}
}

// mappedTTID resolves a greenhouse id to the destination id from any prior
// successful migration of that record.
func mappedTTID(entity, ghID string) (string, error) {
	row := EntityMigration{}
	err := dbmap.SelectOne(&row,
		"SELECT * FROM entity_migrations WHERE entity = ? AND gh_id = ? AND status IN ('created','updated') ORDER BY id DESC LIMIT 1",
		entity, ghID)
	if err != nil {
		return "", err
	}

	return row.TTID, nil
}

// ttCreateOrUpdate is the idempotent destination write: POST first, and when
// the record already exists (409/422) find it by external-id and PATCH.
func ttCreateOrUpdate(path, externalID string, payload TTPayload) (ttID string, created bool, err error) {
	resp, err := ttClient.post(path, payload)
	if err != nil {
		return "", false, err
	}

	if resp.StatusCode == 200 || resp.StatusCode == 201 {
		doc := TTSingleDocument{}
		if err := json.Unmarshal(resp.Body, &doc); err != nil {
			return "", false, err
		}
		if doc.Data.ID == "" {
			return "", false, errors.New("teamtailor create response had no id")
		}
		return doc.Data.ID, true, nil
	}

	if resp.StatusCode != 409 && resp.StatusCode != 422 {
		return "", false, errors.New("teamtailor create failed: " + decodeTTErrors(resp.Body))
	}

	existingID, err := ttClient.findByExternalID(path, externalID)
	if err != nil {
		return "", false, err
	}
	if existingID == "" {
		return "", false, errors.New("teamtailor rejected create and no record matches external-id " + externalID + ": " + decodeTTErrors(resp.Body))
	}

	if err := ttClient.updateResource(path, existingID, payload); err != nil {
		return "", false, err
	}

	return existingID, false, nil
}

// ghExternalID is the external-id stamped on every record the migration
// creates, so reruns converge on the same destination records.
func ghExternalID(entity string, ghID int64) string {
	return "gh-" + entity + "-" + formatInt64(ghID)
}

func newIdempotencyKey() string {
	return uuid.NewV4().String()
}

// retryFailed re-drives only the rows that failed, newest attempt per record.
func retryFailed(entity string) (*MigrationRun, error) {
	failed := []EntityMigration{}
	query := "SELECT * FROM entity_migrations em WHERE status = 'failed' AND NOT EXISTS (SELECT 1 FROM entity_migrations ok WHERE ok.entity = em.entity AND ok.gh_id = em.gh_id AND ok.status IN ('created','updated'))"
	args := []interface{}{}
	if entity != "" {
		query = query + " AND em.entity = ?"
		args = append(args, entity)
	}

	if _, err := dbmap.Select(&failed, query, args...); err != nil {
		ErrorLog.Println("couldnt select failed migrations: ", err)
		return nil, errors.New("could not load failed migrations")
	}

	if len(failed) == 0 {
		return nil, errors.New("nothing to retry")
	}

	retryIDs := map[string]map[string]bool{}
	entities := []string{}
	for _, row := range failed {
		if retryIDs[row.Entity] == nil {
			retryIDs[row.Entity] = map[string]bool{}
			entities = append(entities, row.Entity)
		}
		retryIDs[row.Entity][row.GHID] = true
	}

	InfoLog.Println("retrying ", len(failed), " failed records across ", len(entities), " entities")

	opts := MigrateOptions{Entities: entities}
	opts.onlyGHIDs = retryIDs

	return runMigration(opts)
}

type VerifyResult struct {
	Entity      string `json:"entity"`
	SourceCount int    `json:"source_count"`
	DestCount   int    `json:"dest_count"`
	Matches     bool   `json:"matches"`
}

// verifyMigration compares snapshot counts against what the destination
// reports, per entity.
func verifyMigration() ([]VerifyResult, error) {
	checks := []struct {
		entity string
		ttPath string
	}{
		{"users", "/users"},
		{"jobs", "/jobs"},
		{"candidates", "/candidates"},
		{"applications", "/job-applications"},
		{"scheduled_interviews", "/interviews"},
		{"offers", "/offers"},
	}

	results := []VerifyResult{}
	for _, check := range checks {
		srcCount, err := snapshotCount(check.entity)
		if err != nil {
			ErrorLog.Println("verify source count err: ", err)
			srcCount = -1
		}

		destCount, err := ttClient.recordCount(check.ttPath)
		if err != nil {
			ErrorLog.Println("verify dest count err: ", err)
			return nil, err
		}

		results = append(results, VerifyResult{
			Entity:      check.entity,
			SourceCount: srcCount,
			DestCount:   destCount,
			Matches:     srcCount >= 0 && srcCount == destCount,
		})
	}

	return results, nil
}

func errUnknownEntity(entity string) error {
	return errors.New("unknown entity: " + entity)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}
