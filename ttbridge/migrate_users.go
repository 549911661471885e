package main

import (
	"strings"
	"time"
)

// UserMapping pins a greenhouse user (by email) to the destination user and
// the role the migration decided on.
type UserMapping struct {
	ID      int64  `db:"id, primarykey, autoincrement" json:"id"`
	GHID    int64  `db:"gh_id" json:"gh_id"`
	GHEmail string `db:"gh_email" json:"gh_email"`
	TTID    string `db:"tt_id" json:"tt_id"`
	Role    string `db:"role" json:"role"`
	Created int64  `db:"created" json:"created"`
}

// The users API rejects admin roles unless the account has the add-on, so
// everything is created as a recruiter and roles are corrected afterwards
// (see runUserRoleUpdates).
const defaultMigratedRole = "recruiter"

func migrateUsers(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "users"}

	users := []GHUser{}
	if err := loadSnapshotInto("users", &users); err != nil {
		ErrorLog.Println("users snapshot err: ", err)
		summary.Failed++
		return summary
	}

	existing, err := ttClient.existingUserEmails()
	if err != nil {
		ErrorLog.Println("couldnt list existing tt users: ", err)
		summary.Failed++
		return summary
	}

	for _, user := range users {
		if opts.Limit > 0 && summary.Total >= opts.Limit {
			break
		}

		ghID := formatInt64(user.ID)
		if !opts.wantsRecord("users", ghID) {
			continue
		}
		summary.Total++

		email := strings.ToLower(strings.TrimSpace(user.PrimaryEmailAddress))

		if user.Disabled || email == "" {
			summary.Skipped++
			recordMigration(run, "users", ghID, "", MIG_SKIPPED, "disabled or no email", "")
			continue
		}

		if ttID, ok := existing[email]; ok {
			summary.Skipped++
			recordMigration(run, "users", ghID, ttID, MIG_SKIPPED, "already exists", "")
			upsertUserMapping(user, ttID)
			continue
		}

		if opts.DryRun {
			summary.Created++
			continue
		}

		idemKey := newIdempotencyKey()
		payload := userPayload(user)

		ttID, created, err := ttCreateOrUpdate("/users", ghExternalID("users", user.ID), payload)
		if err != nil {
			ErrorLog.Println("user migrate err for ", email, ": ", err)
			summary.Failed++
			recordMigration(run, "users", ghID, "", MIG_FAILED, err.Error(), idemKey)
			continue
		}

		if created {
			summary.Created++
			recordMigration(run, "users", ghID, ttID, MIG_CREATED, "", idemKey)
		} else {
			summary.Updated++
			recordMigration(run, "users", ghID, ttID, MIG_UPDATED, "", idemKey)
		}

		upsertUserMapping(user, ttID)
	}

	return summary
}

func userPayload(user GHUser) TTPayload {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}

	return TTPayload{
		Data: TTResource{
			Type: "users",
			Attributes: map[string]interface{}{
				"name":        name,
				"email":       strings.ToLower(strings.TrimSpace(user.PrimaryEmailAddress)),
				"role":        defaultMigratedRole,
				"title":       "Recruiter",
				"external-id": ghExternalID("users", user.ID),
			},
		},
	}
}

func upsertUserMapping(user GHUser, ttID string) {
	email := strings.ToLower(strings.TrimSpace(user.PrimaryEmailAddress))

	role := defaultMigratedRole
	if user.SiteAdmin {
		role = "admin"
	}

	mapping := UserMapping{}
	err := dbmap.SelectOne(&mapping, "SELECT * FROM user_mappings WHERE gh_email = ?", email)
	if err != nil {
		mapping = UserMapping{
			GHID:    user.ID,
			GHEmail: email,
			TTID:    ttID,
			Role:    role,
			Created: time.Now().Unix(),
		}
		if err := dbmap.Insert(&mapping); err != nil {
			ErrorLog.Println("user mapping insert err: ", err)
		}
		return
	}

	mapping.TTID = ttID
	mapping.Role = role
	if _, err := dbmap.Update(&mapping); err != nil {
		ErrorLog.Println("user mapping update err: ", err)
	}
}

// runUserRoleUpdates promotes users whose mapping says they should not stay
// recruiters. Runs after a migration, once the role add-on is in place.
func runUserRoleUpdates() (int, error) {
	mappings := []UserMapping{}
	if _, err := dbmap.Select(&mappings, "SELECT * FROM user_mappings WHERE role != ? AND tt_id != ''", defaultMigratedRole); err != nil {
		ErrorLog.Println("couldnt select user mappings: ", err)
		return 0, err
	}

	updated := 0
	for _, mapping := range mappings {
		payload := TTPayload{
			Data: TTResource{
				Type: "users",
				Attributes: map[string]interface{}{
					"role": mapping.Role,
				},
			},
		}

		if err := ttClient.updateResource("/users", mapping.TTID, payload); err != nil {
			ErrorLog.Println("role update err for ", mapping.GHEmail, ": ", err)
			continue
		}
		updated++
	}

	InfoLog.Println("updated roles for ", updated, " users")

	return updated, nil
}
