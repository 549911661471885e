package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func registerMigrationRoutes(router *gin.Engine) {
	router.POST("/migrate/run", postMigrateRun)
	router.POST("/migrate/retry-failed", postRetryFailed)
	router.POST("/migrate/verify", postVerify)
	router.POST("/migrate/update-roles", postUpdateRoles)
	router.GET("/migrate/runs", getMigrationRuns)
	router.GET("/migrate/runs/:id", getMigrationRun)
}

func registerExportRoutes(router *gin.Engine) {
	router.POST("/export/run", postExportRun)
	router.POST("/export/archive", postExportArchive)
}

func postMigrateRun(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	opts := MigrateOptions{}
	if err := c.ShouldBindWith(&opts, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input is wrong format"})
		return
	}

	run, err := runMigration(opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

func postRetryFailed(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	run, err := retryFailed(c.Query("entity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

func postVerify(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	results, err := verifyMigration()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func postUpdateRoles(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	updated, err := runUserRoleUpdates()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func getMigrationRuns(c *gin.Context) {
	runs := []MigrationRun{}
	if _, err := dbmap.Select(&runs, "SELECT * FROM migration_runs ORDER BY id DESC LIMIT 50"); err != nil {
		ErrorLog.Println("couldnt select migration runs: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func getMigrationRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad run id"})
		return
	}

	run := MigrationRun{}
	if err := dbmap.SelectOne(&run, "SELECT * FROM migration_runs WHERE id = ?", id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	rows := []EntityMigration{}
	if _, err := dbmap.Select(&rows, "SELECT * FROM entity_migrations WHERE run_id = ? AND status = 'failed' ORDER BY id LIMIT 200", id); err != nil {
		ErrorLog.Println("couldnt select run failures: ", err)
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "failures": rows})
}

type exportRequest struct {
	Entity      string `json:"entity"`
	Incremental bool   `json:"incremental"`
}

func postExportRun(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	input := exportRequest{}
	// empty body means full export of everything
	c.ShouldBindWith(&input, binding.JSON)

	if input.Entity != "" {
		info, err := exportEntityByName(input.Entity, input.Incremental)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": []SnapshotInfo{info}})
		return
	}

	summary := runAllExports(input.Incremental)
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func postExportArchive(c *gin.Context) {
	if err := isAdminRequest(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := archiveSnapshots(); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"archived": true})
}
