package main

import "encoding/json"

// Shapes follow the Greenhouse Harvest API. Only the fields the bridge
// reads are declared; raw snapshots keep everything.

type GHContactInfo struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type GHCandidate struct {
	ID             int64           `json:"id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Company        string          `json:"company"`
	Title          string          `json:"title"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
	EmailAddresses []GHContactInfo `json:"email_addresses"`
	PhoneNumbers   []GHContactInfo `json:"phone_numbers"`
	Tags           []string        `json:"tags"`
	ApplicationIDs []int64         `json:"application_ids"`
	IsPrivate      bool            `json:"is_private"`
	ActivityFeed   json.RawMessage `json:"activity_feed,omitempty"`
}

type GHUser struct {
	ID                  int64    `json:"id" csv:"id"`
	Name                string   `json:"name" csv:"name"`
	FirstName           string   `json:"first_name" csv:"first_name"`
	LastName            string   `json:"last_name" csv:"last_name"`
	PrimaryEmailAddress string   `json:"primary_email_address" csv:"primary_email_address"`
	Emails              []string `json:"emails" csv:"-"`
	SiteAdmin           bool     `json:"site_admin" csv:"site_admin"`
	Disabled            bool     `json:"disabled" csv:"disabled"`
	CreatedAt           string   `json:"created_at" csv:"created_at"`
	UpdatedAt           string   `json:"updated_at" csv:"updated_at"`
}

type GHIDName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GHJob struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Status       string       `json:"status"` // open, closed, draft
	Confidential bool         `json:"confidential"`
	Departments  []GHIDName   `json:"departments"`
	Offices      []GHIDName   `json:"offices"`
	OpenedAt     string       `json:"opened_at"`
	ClosedAt     string       `json:"closed_at"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
	Notes        string       `json:"notes"`
	Stages       []GHJobStage `json:"stages,omitempty"`
}

type GHJobStage struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

type GHSource struct {
	ID         int64  `json:"id"`
	PublicName string `json:"public_name"`
}

type GHApplication struct {
	ID             int64      `json:"id"`
	CandidateID    int64      `json:"candidate_id"`
	Prospect       bool       `json:"prospect"`
	AppliedAt      string     `json:"applied_at"`
	RejectedAt     string     `json:"rejected_at"`
	LastActivityAt string     `json:"last_activity_at"`
	Source         *GHSource  `json:"source"`
	CurrentStage   *GHIDName  `json:"current_stage"`
	Jobs           []GHIDName `json:"jobs"`
	Status         string     `json:"status"` // active, rejected, hired
}

type GHOffer struct {
	ID            int64  `json:"id"`
	ApplicationID int64  `json:"application_id"`
	Version       int    `json:"version"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	SentAt        string `json:"sent_at"`
	ResolvedAt    string `json:"resolved_at"`
	StartsAt      string `json:"starts_at"`
}

type GHInterviewer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type GHDateTime struct {
	DateTime string `json:"date_time"`
}

type GHScheduledInterview struct {
	ID            int64           `json:"id"`
	ApplicationID int64           `json:"application_id"`
	Start         GHDateTime      `json:"start"`
	End           GHDateTime      `json:"end"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	Interview     *GHIDName       `json:"interview"`
	Interviewers  []GHInterviewer `json:"interviewers"`
}

type GHScorecard struct {
	ID                    int64     `json:"id"`
	ApplicationID         int64     `json:"application_id"`
	CandidateID           int64     `json:"candidate_id"`
	Interview             string    `json:"interview"`
	OverallRecommendation string    `json:"overall_recommendation"`
	SubmittedAt           string    `json:"submitted_at"`
	SubmittedBy           *GHIDName `json:"submitted_by"`
}
