package main

import (
	"net/url"
	"sort"
	"time"
)

// Analytics over the destination: what the dashboard charts and the
// completion emails summarize.

type PipelineReport struct {
	PeriodDays           int            `json:"period_days"`
	TotalApplications    int            `json:"total_applications"`
	ApplicationsByStatus map[string]int `json:"applications_by_status"`
	ApplicationsByJob    map[string]int `json:"applications_by_job"`
	AveragePerDay        float64        `json:"average_applications_per_day"`
	TopJobs              []JobCount     `json:"top_jobs"`
}

type JobCount struct {
	JobID string `json:"job_id"`
	Count int    `json:"count"`
}

func pipelineReport(days int) (PipelineReport, error) {
	report := PipelineReport{
		PeriodDays:           days,
		ApplicationsByStatus: map[string]int{},
		ApplicationsByJob:    map[string]int{},
	}

	params := url.Values{}
	since := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)
	params.Set("filter[created-at][gte]", since)

	apps, err := ttClient.getAllPages("/job-applications", params)
	if err != nil {
		return report, err
	}

	report.TotalApplications = len(apps)

	for _, app := range apps {
		status := app.stringAttr("status")
		if status == "" {
			status = "unknown"
		}
		report.ApplicationsByStatus[status]++

		if rel, ok := app.Relationships["job"]; ok && rel.Data != nil {
			report.ApplicationsByJob[rel.Data.ID]++
		}
	}

	if days > 0 {
		report.AveragePerDay = float64(report.TotalApplications) / float64(days)
	}

	for jobID, count := range report.ApplicationsByJob {
		report.TopJobs = append(report.TopJobs, JobCount{JobID: jobID, Count: count})
	}
	sort.Slice(report.TopJobs, func(i, j int) bool {
		return report.TopJobs[i].Count > report.TopJobs[j].Count
	})
	if len(report.TopJobs) > 5 {
		report.TopJobs = report.TopJobs[:5]
	}

	return report, nil
}

type UserReport struct {
	TotalUsers  int            `json:"total_users"`
	UsersByRole map[string]int `json:"users_by_role"`
}

func userReport() (UserReport, error) {
	report := UserReport{UsersByRole: map[string]int{}}

	users, err := ttClient.getAllPages("/users", nil)
	if err != nil {
		return report, err
	}

	report.TotalUsers = len(users)
	for _, user := range users {
		role := user.stringAttr("role")
		if role == "" {
			role = "unknown"
		}
		report.UsersByRole[role]++
	}

	return report, nil
}

type MigrationReport struct {
	Runs          []MigrationRun `json:"runs"`
	TotalMigrated int64          `json:"total_migrated"`
	TotalFailed   int64          `json:"total_failed"`
}

func migrationReport() (MigrationReport, error) {
	report := MigrationReport{}

	if _, err := dbmap.Select(&report.Runs, "SELECT * FROM migration_runs ORDER BY id DESC LIMIT 10"); err != nil {
		return report, err
	}

	migrated, err := dbmap.SelectInt("SELECT COUNT(*) FROM entity_migrations WHERE status IN ('created','updated')")
	if err == nil {
		report.TotalMigrated = migrated
	}

	failed, err := dbmap.SelectInt("SELECT COUNT(*) FROM entity_migrations WHERE status = 'failed'")
	if err == nil {
		report.TotalFailed = failed
	}

	return report, nil
}
