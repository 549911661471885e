package main

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Mutating routes are gated behind the shared admin key. Read-only proxy
// and dashboard routes stay open inside the VPC.
func isAdminRequest(c *gin.Context) error {
	key := c.GetHeader("X-Admin-Key")
	if key == "" {
		key = c.Query("admin_key")
	}

	if key == "" || key != passwords.ADMIN_KEY {
		return errors.New("admin key required")
	}

	return nil
}
