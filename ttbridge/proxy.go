package main

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Read-only passthrough over the Greenhouse Harvest API, cached so the
// dashboard and curious humans do not chew the rate limit.

func registerRootRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "ttbridge",
			"message": "Greenhouse to TeamTailor migration bridge",
			"health":  "/health",
		})
	})
}

func registerProxyRoutes(router *gin.Engine) {
	router.GET("/candidates", ghProxy("candidates"))
	router.GET("/candidates/:id", ghProxyByID("candidates"))
	router.GET("/candidates/:id/activity_feed", ghProxySub("candidates", "activity_feed"))
	router.GET("/applications", ghProxy("applications"))
	router.GET("/applications/:id", ghProxyByID("applications"))
	router.GET("/jobs", ghProxy("jobs"))
	router.GET("/jobs/:id", ghProxyByID("jobs"))
	router.GET("/jobs/:id/stages", ghProxySub("jobs", "stages"))
	router.GET("/users", ghProxy("users"))
	router.GET("/users/:id", ghProxyByID("users"))
	router.GET("/offers", ghProxy("offers"))
	router.GET("/scorecards", ghProxy("scorecards"))
	router.GET("/scheduled_interviews", ghProxy("scheduled_interviews"))
	router.GET("/departments", ghProxy("departments"))
	router.GET("/offices", ghProxy("offices"))
	router.GET("/metadata/:name", ghMetadataProxy)
}

func ghProxy(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveGHProxy(c, path)
	}
}

func ghProxyByID(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveGHProxy(c, path+"/"+c.Param("id"))
	}
}

func ghProxySub(path, sub string) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveGHProxy(c, path+"/"+c.Param("id")+"/"+sub)
	}
}

var allowedMetadata = map[string]bool{
	"sources":           true,
	"rejection_reasons": true,
	"close_reasons":     true,
	"degrees":           true,
	"disciplines":       true,
	"schools":           true,
	"eeoc":              true,
	"user_roles":        true,
	"email_templates":   true,
	"prospect_pools":    true,
}

func ghMetadataProxy(c *gin.Context) {
	name := c.Param("name")
	if !allowedMetadata[name] {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown metadata endpoint"})
		return
	}

	serveGHProxy(c, "metadata/"+name)
}

func serveGHProxy(c *gin.Context, path string) {
	params := url.Values{}
	for _, name := range []string{"per_page", "page", "updated_after", "created_after"} {
		if v := c.Query(name); v != "" {
			params.Set(name, v)
		}
	}

	cacheKey := CACHENAME_GH_PROXY + ":" + path + "?" + params.Encode()
	if cached, found := cash.Get(cacheKey); found {
		body, ok := cached.([]byte)
		if ok {
			c.Data(http.StatusOK, "application/json", body)
			return
		}
	}

	body, err := ghClient.getRaw(path, params)
	if err != nil {
		ErrorLog.Println("gh proxy err for ", path, ": ", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Greenhouse request failed"})
		return
	}

	cash.Set(cacheKey, body, DEFAULT_CACHE_EXPIRATION)

	c.Data(http.StatusOK, "application/json", body)
}

// Thin TeamTailor GET passthrough, mostly for eyeballing the destination
// while a migration runs.
func registerTTProxyRoutes(router *gin.Engine) {
	router.GET("/tt/candidates", ttProxy("/candidates"))
	router.GET("/tt/jobs", ttProxy("/jobs"))
	router.GET("/tt/users", ttProxy("/users"))
	router.GET("/tt/job-applications", ttProxy("/job-applications"))
}

func ttProxy(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := url.Values{}
		for name, vals := range c.Request.URL.Query() {
			for _, v := range vals {
				params.Add(name, v)
			}
		}

		cacheKey := CACHENAME_TT_PROXY + ":" + path + "?" + params.Encode()
		if cached, found := cash.Get(cacheKey); found {
			body, ok := cached.([]byte)
			if ok {
				c.Data(http.StatusOK, "application/vnd.api+json", body)
				return
			}
		}

		resp, err := ttClient.get(path, params)
		if err != nil {
			ErrorLog.Println("tt proxy err for ", path, ": ", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "TeamTailor request failed"})
			return
		}
		if resp.StatusCode >= 400 {
			c.Data(resp.StatusCode, "application/vnd.api+json", resp.Body)
			return
		}

		cash.Set(cacheKey, resp.Body, DEFAULT_CACHE_EXPIRATION)

		c.Data(http.StatusOK, "application/vnd.api+json", resp.Body)
	}
}
