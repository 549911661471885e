package main

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Read-only dashboard: a single page of Chart.js pulling the JSON routes
// below. No writes happen from here.

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>ttbridge dashboard</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js@3.9.1/dist/chart.min.js"></script>
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    .charts { display: flex; flex-wrap: wrap; gap: 2rem; }
    .chart { width: 420px; }
  </style>
</head>
<body>
  <h1>Migration Dashboard</h1>
  <div class="charts">
    <div class="chart"><canvas id="pipeline"></canvas></div>
    <div class="chart"><canvas id="users"></canvas></div>
  </div>
  <h2>Recent Runs</h2>
  <table border="1" cellpadding="6" id="runs"><tr><th>ID</th><th>Entities</th><th>Status</th><th>Summary</th></tr></table>
  <script>
    fetch('/dashboard/pipeline').then(r => r.json()).then(data => {
      new Chart(document.getElementById('pipeline'), {
        type: 'bar',
        data: {
          labels: Object.keys(data.applications_by_status),
          datasets: [{ label: 'Applications by status (' + data.period_days + 'd)', data: Object.values(data.applications_by_status) }]
        }
      });
    });
    fetch('/dashboard/users').then(r => r.json()).then(data => {
      new Chart(document.getElementById('users'), {
        type: 'doughnut',
        data: {
          labels: Object.keys(data.users_by_role),
          datasets: [{ label: 'Users by role', data: Object.values(data.users_by_role) }]
        }
      });
    });
    fetch('/dashboard/migration').then(r => r.json()).then(data => {
      const table = document.getElementById('runs');
      (data.runs || []).forEach(run => {
        const row = table.insertRow();
        row.insertCell().textContent = run.id;
        row.insertCell().textContent = run.entities;
        row.insertCell().textContent = run.status;
        row.insertCell().textContent = run.summary;
      });
    });
  </script>
</body>
</html>`))

func registerDashboardRoutes(router *gin.Engine) {
	router.GET("/dashboard", getDashboardPage)
	router.GET("/dashboard/pipeline", getDashboardPipeline)
	router.GET("/dashboard/users", getDashboardUsers)
	router.GET("/dashboard/migration", getDashboardMigration)
}

func getDashboardPage(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(c.Writer, nil); err != nil {
		ErrorLog.Println("dashboard template err: ", err)
	}
}

func getDashboardPipeline(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err == nil && parsed > 0 && parsed <= 365 {
			days = parsed
		}
	}

	cacheKey := CACHENAME_DASH_REPORT + ":pipeline:" + strconv.Itoa(days)
	if cached, found := cash.Get(cacheKey); found {
		report, ok := cached.(PipelineReport)
		if ok {
			c.JSON(http.StatusOK, report)
			return
		}
	}

	report, err := pipelineReport(days)
	if err != nil {
		ErrorLog.Println("pipeline report err: ", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "TeamTailor request failed"})
		return
	}

	cash.Set(cacheKey, report, DEFAULT_CACHE_EXPIRATION)

	c.JSON(http.StatusOK, report)
}

func getDashboardUsers(c *gin.Context) {
	cacheKey := CACHENAME_DASH_REPORT + ":users"
	if cached, found := cash.Get(cacheKey); found {
		report, ok := cached.(UserReport)
		if ok {
			c.JSON(http.StatusOK, report)
			return
		}
	}

	report, err := userReport()
	if err != nil {
		ErrorLog.Println("user report err: ", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "TeamTailor request failed"})
		return
	}

	cash.Set(cacheKey, report, DEFAULT_CACHE_EXPIRATION)

	c.JSON(http.StatusOK, report)
}

func getDashboardMigration(c *gin.Context) {
	report, err := migrationReport()
	if err != nil {
		ErrorLog.Println("migration report err: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, report)
}
