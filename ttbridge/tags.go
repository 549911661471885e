package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// TagAssignment is the audit trail for every tag the bridge puts on a
// destination candidate.
type TagAssignment struct {
	ID          int64  `db:"id, primarykey, autoincrement" json:"id"`
	CandidateID string `db:"candidate_id" json:"candidate_id"`
	Tag         string `db:"tag" json:"tag"`
	Source      string `db:"source" json:"source"`
	Created     int64  `db:"created" json:"created"`
}

type TagDefinition struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Aliases  []string `json:"aliases,omitempty"`
}

// The catalog keeps migrated tags consistent: free-text source tags collapse
// onto canonical names via aliases.
var tagCatalog = []TagDefinition{
	{Name: "python", Category: "language", Aliases: []string{"py", "python3"}},
	{Name: "javascript", Category: "language", Aliases: []string{"js", "ecmascript"}},
	{Name: "typescript", Category: "language", Aliases: []string{"ts"}},
	{Name: "java", Category: "language"},
	{Name: "golang", Category: "language", Aliases: []string{"go"}},
	{Name: "ruby", Category: "language"},
	{Name: "react", Category: "framework", Aliases: []string{"reactjs", "react.js"}},
	{Name: "django", Category: "framework"},
	{Name: "rails", Category: "framework", Aliases: []string{"ruby-on-rails", "ror"}},
	{Name: "postgresql", Category: "database", Aliases: []string{"postgres", "psql"}},
	{Name: "mysql", Category: "database"},
	{Name: "aws", Category: "tool", Aliases: []string{"amazon-web-services"}},
	{Name: "docker", Category: "tool"},
	{Name: "kubernetes", Category: "tool", Aliases: []string{"k8s"}},
	{Name: "senior", Category: "level", Aliases: []string{"sr", "sr."}},
	{Name: "junior", Category: "level", Aliases: []string{"jr", "jr."}},
	{Name: "remote", Category: "location"},
	{Name: "onsite", Category: "location", Aliases: []string{"on-site"}},
	{Name: "contractor", Category: "type", Aliases: []string{"contract", "freelance"}},
	{Name: "greenhouse-import", Category: "status"},
}

var tagAliasIndex map[string]string

func buildTagAliasIndex() map[string]string {
	index := map[string]string{}
	for _, def := range tagCatalog {
		index[def.Name] = def.Name
		for _, alias := range def.Aliases {
			index[alias] = def.Name
		}
	}
	return index
}

// normalizeTag maps free text onto the catalog. Unknown tags pass through
// lowercased and hyphenated.
func normalizeTag(raw string) string {
	if tagAliasIndex == nil {
		tagAliasIndex = buildTagAliasIndex()
	}

	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, " ", "-")
	if cleaned == "" {
		return ""
	}

	if canonical, ok := tagAliasIndex[cleaned]; ok {
		return canonical
	}
	return cleaned
}

func normalizeTags(raws []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, raw := range raws {
		tag := normalizeTag(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// migrateTags runs after candidates: every migrated candidate gets its
// normalized source tags plus the import marker pushed to the destination.
func migrateTags(run *MigrationRun, opts MigrateOptions) EntitySummary {
	summary := EntitySummary{Entity: "tags"}

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
		if !opts.wantsRecord("tags", ghID) {
			continue
		}

		ttID, err := mappedTTID("candidates", ghID)
		if err != nil {
			continue
		}
		summary.Total++

		tags := normalizeTags(append([]string{"greenhouse-import"}, candidate.Tags...))

		if opts.DryRun {
			summary.Updated++
			continue
		}

		if err := applyCandidateTags(ttID, tags, "migration"); err != nil {
			ErrorLog.Println("tag migrate err for ", ghID, ": ", err)
			summary.Failed++
			recordMigration(run, "tags", ghID, ttID, MIG_FAILED, err.Error(), "")
			continue
		}

		summary.Updated++
		recordMigration(run, "tags", ghID, ttID, MIG_UPDATED, "", "")
	}

	return summary
}

func applyCandidateTags(candidateTTID string, tags []string, source string) error {
	payload := TTPayload{
		Data: TTResource{
			Type: "candidates",
			Attributes: map[string]interface{}{
				"tags": tags,
			},
		},
	}

	if err := ttClient.updateResource("/candidates", candidateTTID, payload); err != nil {
		return err
	}

	for _, tag := range tags {
		assignment := &TagAssignment{
			CandidateID: candidateTTID,
			Tag:         tag,
			Source:      source,
			Created:     time.Now().Unix(),
		}
		if err := dbmap.Insert(assignment); err != nil {
			ErrorLog.Println("tag assignment insert err: ", err)
		}
	}

	return nil
}

type bulkTagRule struct {
	Match string `json:"match"` // substring of title or company
	Tag   string `json:"tag"`
}

type bulkTagRequest struct {
	Rules []bulkTagRule `json:"rules"`
	Limit int           `json:"limit"`
}

// runBulkTagging applies pattern rules over the candidate snapshot and
// PATCHes the matching destination records.
func runBulkTagging(rules []bulkTagRule, limit int) (int, error) {
	candidates := []GHCandidate{}
	if err := loadSnapshotInto("candidates", &candidates); err != nil {
		return 0, err
	}

	tagged := 0
	for _, candidate := range candidates {
		if limit > 0 && tagged >= limit {
			break
		}

		haystack := strings.ToLower(candidate.Title + " " + candidate.Company)

		matched := []string{}
		for _, rule := range rules {
			if rule.Match == "" || rule.Tag == "" {
				continue
			}
			if strings.Contains(haystack, strings.ToLower(rule.Match)) {
				matched = append(matched, rule.Tag)
			}
		}
		if len(matched) == 0 {
			continue
		}

		ttID, err := mappedTTID("candidates", formatInt64(candidate.ID))
		if err != nil {
			continue
		}

		if err := applyCandidateTags(ttID, normalizeTags(matched), "pattern"); err != nil {
			ErrorLog.Println("bulk tag err for ", candidate.ID, ": ", err)
			continue
		}
		tagged++
	}

	return tagged, nil
}

func registerTagRoutes(router *gin.Engine) {
	router.GET("/tags/catalog", getTagCatalog)
	router.POST("/tags/bulk", postBulkTags)
}

func getTagCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": tagCatalog})
}

func postBulkTags(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	input := bulkTagRequest{}
	if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	if len(input.Rules) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing rules"})
		return
	}

	tagged, err := runBulkTagging(input.Rules, input.Limit)
	if err != nil {
		ErrorLog.Println("bulk tagging err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tagged": tagged})
}
