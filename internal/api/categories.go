package api

import (
	"context"                   // Context for Redis operations
	"fmt"                       // Message formatting
	"myfinance/internal/domain" // Importing domain models
	"myfinance/internal/utils"  // Utility functions
	"net/http"                  // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Request struct for creating a category
type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required"` // Category name must be provided
	Icon     *string `json:"icon"`                    // Optional icon, null when omitted
	Priority *int    `json:"priority"`                // Optional priority, 0 when omitted
}

// Request struct for updating a category
type UpdateCategoryRequest struct {
	Name     string  `json:"name" binding:"required"` // New name must be provided
	Icon     *string `json:"icon"`                    // New icon; unchanged when omitted
	Priority *int    `json:"priority"`                // New priority; unchanged when omitted
}

// cloneTemplates copies template rows into a user's namespace with
// is_default forced false.
func cloneTemplates(templates []domain.Category, userID uint) []domain.Category {
	clones := make([]domain.Category, 0, len(templates))
	for _, t := range templates {
		clones = append(clones, domain.Category{
			UserID:    &userID,    // Owned by the caller
			Name:      t.Name,     // Template name
			Icon:      t.Icon,     // Template icon
			Priority:  t.Priority, // Template priority
			IsDefault: false,      // Clones are ordinary user rows
		})
	}
	return clones
}

// ListCategoriesHandler returns the caller's categories, bootstrapping a
// personal copy of the template set on first access. Once the user owns
// at least one category the bootstrap never re-runs.
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var owned []domain.Category // Check for existing user categories
		if err := db.Where("user_id = ?", userID).Find(&owned).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		// If the user has no categories yet, copy the template set
		if len(owned) == 0 {
			var templates []domain.Category // Fetch template rows
			if err := db.Where("is_default = ?", true).Find(&templates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch default categories"})
				return
			}
			if clones := cloneTemplates(templates, userID); len(clones) > 0 {
				// Bulk-insert the cloned set
				if err := db.Create(&clones).Error; err != nil {
					logrus.WithFields(logrus.Fields{
						"user_id": userID,      // User ID
						"error":   err.Error(), // Error message
					}).Error("Category bootstrap failed") // Log bootstrap failure
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create default categories"})
					return
				}
			}
		}
		var categories []domain.Category // Fetch the final owned set
		if err := db.Where("user_id = ?", userID).
			Order("priority asc, id asc"). // Stable order: priority first, id as tie-break
			Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories) // Return the owned set
	}
}

// CreateCategoryHandler inserts a new category owned by the caller
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateCategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		priority := 0 // Priority defaults to 0 when omitted
		if req.Priority != nil {
			priority = *req.Priority
		}
		category := domain.Category{
			UserID:    &userID,  // Owned by the caller
			Name:      req.Name, // Provided name
			Icon:      req.Icon, // Null when omitted
			Priority:  priority, // Provided or default priority
			IsDefault: false,    // User rows are never templates
		}
		// Attempt to create the category
		if err := db.Create(&category).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create category") // Log creation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category) // Return the created row
	}
}

// UpdateCategoryHandler updates a category owned by the caller
func UpdateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateCategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var category domain.Category // Fetch the row scoped to its owner
		if err := findOwned(db, c.Param("id"), userID, &category); err != nil {
			// Not owned by the caller or nonexistent
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		category.Name = req.Name // Apply the new name
		if req.Icon != nil {
			category.Icon = req.Icon // Apply the new icon when provided
		}
		if req.Priority != nil {
			category.Priority = *req.Priority // Apply the new priority when provided
		}
		// Persist the updated row
		if err := db.Save(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		// Invalidate summary caches, cached rows embed category names
		_ = utils.DeleteCache(context.Background(), rdb, summaryCacheKeys(userID)...)
		c.JSON(http.StatusOK, category) // Return the updated row
	}
}

// DeleteCategoryHandler deletes a category owned by the caller
func DeleteCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var category domain.Category // Fetch the row scoped to its owner
		if err := findOwned(db, c.Param("id"), userID, &category); err != nil {
			// Not owned by the caller or nonexistent
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		// Delete the row
		if err := db.Delete(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		// Invalidate summary caches, cached rows embed category names
		_ = utils.DeleteCache(context.Background(), rdb, summaryCacheKeys(userID)...)
		// Return the deleted row alongside the confirmation message
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted", "deleted": category})
	}
}

// RestoreCategoriesHandler re-inserts the template categories the caller
// no longer has, matching by exact name. Existing rows are left alone.
func RestoreCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var templates []domain.Category // Fetch template rows
		if err := db.Where("is_default = ?", true).Find(&templates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch default categories"})
			return
		}
		var ownedNames []string // Names the user already has
		if err := db.Model(&domain.Category{}).Where("user_id = ?", userID).Pluck("name", &ownedNames).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		have := make(map[string]bool, len(ownedNames)) // Case-sensitive name lookup
		for _, name := range ownedNames {
			have[name] = true
		}
		var missing []domain.Category // Templates absent from the user's set
		for _, t := range templates {
			if !have[t.Name] {
				missing = append(missing, t)
			}
		}
		// Nothing to restore
		if len(missing) == 0 {
			c.JSON(http.StatusOK, gin.H{"message": "All default categories already present"})
			return
		}
		clones := cloneTemplates(missing, userID) // Clone only the missing templates
		if err := db.Create(&clones).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to restore categories") // Log restore failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore categories"})
			return
		}
		// Report how many rows were added
		c.JSON(http.StatusOK, gin.H{
			"message":    fmt.Sprintf("Added %d categories", len(clones)),
			"categories": clones,
		})
	}
}
