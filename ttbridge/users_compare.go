package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

// Compares the exported user backup against live TeamTailor, by email.
// Output drives the "who still needs an account" conversations during
// cutover.

type UserComparison struct {
	Missing  []GHUser `json:"missing"`  // in backup, not in TeamTailor
	Existing []GHUser `json:"existing"` // in both
	Extra    []string `json:"extra"`    // TeamTailor emails not in backup
}

type userComparisonRow struct {
	Email     string `csv:"email"`
	Name      string `csv:"name"`
	State     string `csv:"state"`
	SiteAdmin bool   `csv:"site_admin"`
}

func loadUsersCSV(path string) ([]GHUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	users := []GHUser{}
	if err := gocsv.UnmarshalFile(f, &users); err != nil {
		return nil, err
	}

	// drop rows with no usable identity, the old exports have junk lines
	cleaned := make([]GHUser, 0, len(users))
	for _, u := range users {
		if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.PrimaryEmailAddress) == "" {
			continue
		}
		cleaned = append(cleaned, u)
	}

	return cleaned, nil
}

func compareUsers(backupPath string) (UserComparison, error) {
	comparison := UserComparison{}

	backup, err := loadUsersCSV(backupPath)
	if err != nil {
		return comparison, err
	}

	existing, err := ttClient.existingUserEmails()
	if err != nil {
		return comparison, err
	}

	backupEmails := map[string]bool{}
	for _, user := range backup {
		email := strings.ToLower(strings.TrimSpace(user.PrimaryEmailAddress))
		backupEmails[email] = true

		if user.Disabled {
			continue
		}

		if _, ok := existing[email]; ok {
			comparison.Existing = append(comparison.Existing, user)
		} else {
			comparison.Missing = append(comparison.Missing, user)
		}
	}

	for email := range existing {
		if !backupEmails[email] {
			comparison.Extra = append(comparison.Extra, email)
		}
	}

	return comparison, nil
}

func writeComparisonCSV(comparison UserComparison) (string, error) {
	rows := []userComparisonRow{}

	for _, user := range comparison.Missing {
		rows = append(rows, userComparisonRow{
			Email:     user.PrimaryEmailAddress,
			Name:      strings.TrimSpace(user.FirstName + " " + user.LastName),
			State:     "missing",
			SiteAdmin: user.SiteAdmin,
		})
	}
	for _, user := range comparison.Existing {
		rows = append(rows, userComparisonRow{
			Email:     user.PrimaryEmailAddress,
			Name:      strings.TrimSpace(user.FirstName + " " + user.LastName),
			State:     "existing",
			SiteAdmin: user.SiteAdmin,
		})
	}
	for _, email := range comparison.Extra {
		rows = append(rows, userComparisonRow{Email: email, State: "extra"})
	}

	return saveEntityCSV("user_comparison", &rows)
}

func registerUserToolRoutes(router *gin.Engine) {
	router.GET("/users/compare", getUserComparison)
}

func getUserComparison(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	backupPath := c.Query("backup")
	if backupPath == "" {
		backupPath = snapshotCSVPath("users")
	}

	comparison, err := compareUsers(backupPath)
	if err != nil {
		ErrorLog.Println("user compare err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	csvPath, err := writeComparisonCSV(comparison)
	if err != nil {
		ErrorLog.Println("comparison csv err: ", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"missing":  len(comparison.Missing),
		"existing": len(comparison.Existing),
		"extra":    len(comparison.Extra),
		"csv":      csvPath,
		"detail":   comparison,
	})
}
