package api

import (
	"strconv" // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// currentUserID extracts the authenticated user's ID from the gin context
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID") // Set by the JWT middleware
	if !exists {
		return 0, false // Not authenticated
	}
	id, ok := v.(uint)
	return id, ok
}

// findOwned loads the row matching both id and owner into dest.
// Every mutating category/expense operation goes through this helper so
// the ownership predicate is never omitted; a miss surfaces as
// gorm.ErrRecordNotFound.
func findOwned(db *gorm.DB, id string, userID uint, dest any) error {
	return db.Where("id = ? AND user_id = ?", id, userID).First(dest).Error
}

// summaryCacheKeys lists every summary cache key kept for a user.
// Mutations delete all of them.
func summaryCacheKeys(userID uint) []string {
	base := "summary:user:" + strconv.Itoa(int(userID)) // Per-user key prefix
	return []string{base + ":default", base + ":today", base + ":month"}
}
