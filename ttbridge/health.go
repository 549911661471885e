package main

import (
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func registerHealthRoutes(router *gin.Engine) {
	router.GET("/health", getHealth)
}

func getHealth(c *gin.Context) {
	checks := map[string]HealthCheck{
		"greenhouse_api": checkGreenhouse(),
		"teamtailor_api": checkTeamTailor(),
		"storage":        checkStorage(),
		"database":       checkDatabase(),
	}

	healthy := true
	for _, check := range checks {
		if check.Status != "healthy" {
			healthy = false
		}
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"timestamp": time.Now().Unix(),
		"service":   "ttbridge",
		"checks":    checks,
	})
}

func checkGreenhouse() HealthCheck {
	if err := ghClient.ping(); err != nil {
		return HealthCheck{Status: "unhealthy", Message: err.Error()}
	}
	return HealthCheck{Status: "healthy", Message: "Greenhouse API connection OK"}
}

func checkTeamTailor() HealthCheck {
	if err := ttClient.ping(); err != nil {
		return HealthCheck{Status: "unhealthy", Message: err.Error()}
	}
	return HealthCheck{Status: "healthy", Message: "TeamTailor API connection OK"}
}

func checkStorage() HealthCheck {
	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		return HealthCheck{Status: "unhealthy", Message: "data dir missing"}
	}
	return HealthCheck{Status: "healthy", Message: "Storage accessible"}
}

func checkDatabase() HealthCheck {
	if err := dbmap.Db.Ping(); err != nil {
		return HealthCheck{Status: "unhealthy", Message: err.Error()}
	}
	return HealthCheck{Status: "healthy", Message: "Database connection OK"}
}

// consecutive failed probes per API, read by the cron alert
var (
	ghFailedProbes int64
	ttFailedProbes int64
)

const disconnectAlertThreshold = 3

// probeVendorAPIs runs from cron. Sends one alert email when either API has
// been down for three straight probes, then resets so the inbox survives.
func probeVendorAPIs() {
	if err := ghClient.ping(); err != nil {
		n := atomic.AddInt64(&ghFailedProbes, 1)
		ErrorLog.Println("greenhouse probe failed (", n, "): ", err)
		if n == disconnectAlertThreshold {
			sendDisconnectAlertEmail("Greenhouse", err.Error())
			atomic.StoreInt64(&ghFailedProbes, 0)
		}
	} else {
		atomic.StoreInt64(&ghFailedProbes, 0)
	}

	if err := ttClient.ping(); err != nil {
		n := atomic.AddInt64(&ttFailedProbes, 1)
		ErrorLog.Println("teamtailor probe failed (", n, "): ", err)
		if n == disconnectAlertThreshold {
			sendDisconnectAlertEmail("TeamTailor", err.Error())
			atomic.StoreInt64(&ttFailedProbes, 0)
		}
	} else {
		atomic.StoreInt64(&ttFailedProbes, 0)
	}
}
