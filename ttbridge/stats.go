package main

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type FileStat struct {
	File    string `json:"file"`
	Records int    `json:"records"`
	Bytes   int64  `json:"bytes"`
	Error   string `json:"error,omitempty"`
}

func registerStatsRoutes(router *gin.Engine) {
	router.GET("/stats", getStats)
}

// getStats walks the JSON snapshots and reports record counts and sizes.
func getStats(c *gin.Context) {
	jsonDir := filepath.Join(dataDir, "json")

	entries, err := ioutil.ReadDir(jsonDir)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"counts": []FileStat{}})
		return
	}

	stats := []FileStat{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		stat := FileStat{File: entry.Name(), Bytes: entry.Size()}

		raw, err := ioutil.ReadFile(filepath.Join(jsonDir, entry.Name()))
		if err != nil {
			stat.Error = err.Error()
			stats = append(stats, stat)
			continue
		}

		items := []json.RawMessage{}
		if err := json.Unmarshal(raw, &items); err != nil {
			// single-object snapshot
			stat.Records = 1
		} else {
			stat.Records = len(items)
		}

		stats = append(stats, stat)
	}

	c.JSON(http.StatusOK, gin.H{"counts": stats})
}
