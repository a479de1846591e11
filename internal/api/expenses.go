package api

import (
	"context"                   // Context for Redis operations
	"myfinance/internal/domain" // Importing domain models
	"myfinance/internal/utils"  // Utility functions
	"net/http"                  // HTTP status codes
	"strconv"                   // String conversion
	"time"                      // Date window arithmetic

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// summaryCacheTTL bounds staleness of cached summaries; mutations also
// invalidate them eagerly.
const summaryCacheTTL = 60 * time.Second

// Request struct shared by expense create and update
type ExpenseRequest struct {
	Amount     *float64 `json:"amount" binding:"required"` // Amount must be provided, zero allowed
	Note       *string  `json:"note"`                      // Optional note, null when omitted
	CategoryID *uint    `json:"category_id"`               // Optional category reference, null when omitted
	Date       *string  `json:"date"`                      // Optional date, now when omitted
}

// expenseRow is an expense joined with its category name
type expenseRow struct {
	ID           uint      `json:"id"`            // Expense ID
	UserID       uint      `json:"user_id"`       // Owning user
	Amount       float64   `json:"amount"`        // Expense amount
	Note         *string   `json:"note"`          // Optional note
	CategoryID   *uint     `json:"category_id"`   // Optional category reference
	Date         time.Time `json:"date"`          // Expense date
	CategoryName *string   `json:"category_name"` // Joined category name, null for uncategorized rows
}

// summaryRow is the slice element returned inside a summary
type summaryRow struct {
	Amount           float64   `json:"amount"`            // Expense amount
	Date             time.Time `json:"date"`              // Expense date
	Note             *string   `json:"note"`              // Optional note
	CategoryName     *string   `json:"category_name"`     // Joined category name
	CategoryPriority *int      `json:"category_priority"` // Joined category priority
}

// summaryPayload is the cached summary response body
type summaryPayload struct {
	Total    float64      `json:"total"`    // Sum of amounts in the window
	Count    int          `json:"count"`    // Number of expenses in the window
	Expenses []summaryRow `json:"expenses"` // The matching expenses
}

// parseDate accepts a plain calendar date or a full RFC 3339 timestamp
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil // Plain date
	}
	return time.Parse(time.RFC3339, s) // Full timestamp
}

// dayWindow returns the half-open window covering the calendar day of t
func dayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// monthWindow returns the half-open window covering the calendar month of t
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// CreateExpenseHandler inserts a new expense owned by the caller
func CreateExpenseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		date := time.Now() // Date defaults to now when omitted
		if req.Date != nil {
			parsed, err := parseDate(*req.Date)
			if err != nil {
				// If the date is malformed, return bad request
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
				return
			}
			date = parsed
		}
		expense := domain.Expense{
			UserID:     userID,         // Owned by the caller
			Amount:     *req.Amount,    // Stored as given, no sign validation
			Note:       req.Note,       // Null when omitted
			CategoryID: req.CategoryID, // Null when omitted
			Date:       date,           // Provided or default date
		}
		// Attempt to create the expense
		if err := db.Create(&expense).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create expense") // Log creation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
			return
		}
		// Invalidate cached summaries for this user
		_ = utils.DeleteCache(context.Background(), rdb, summaryCacheKeys(userID)...)
		c.JSON(http.StatusCreated, expense) // Return the created row
	}
}

// ListExpensesHandler returns the caller's expenses joined with their
// category name, newest first.
func ListExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		expenses := []expenseRow{} // Joined result rows
		err := db.Table("expenses").
			Select("expenses.id, expenses.user_id, expenses.amount, expenses.note, expenses.category_id, expenses.date, categories.name AS category_name").
			Joins("LEFT JOIN categories ON categories.id = expenses.category_id").
			Where("expenses.user_id = ?", userID).
			Order("expenses.date DESC").
			Scan(&expenses).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		c.JSON(http.StatusOK, expenses) // Return the owned expenses
	}
}

// UpdateExpenseHandler updates an expense owned by the caller. Omitted
// optional fields fall back to their defaults, same as on create.
func UpdateExpenseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var expense domain.Expense // Fetch the row scoped to its owner
		if err := findOwned(db, c.Param("id"), userID, &expense); err != nil {
			// Not owned by the caller or nonexistent
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		date := time.Now() // Date defaults to now when omitted
		if req.Date != nil {
			parsed, err := parseDate(*req.Date)
			if err != nil {
				// If the date is malformed, return bad request
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
				return
			}
			date = parsed
		}
		expense.Amount = *req.Amount        // Apply the new amount
		expense.Note = req.Note             // Null when omitted
		expense.CategoryID = req.CategoryID // Null when omitted
		expense.Date = date                 // Provided or default date
		// Persist the updated row
		if err := db.Save(&expense).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
			return
		}
		// Invalidate cached summaries for this user
		_ = utils.DeleteCache(context.Background(), rdb, summaryCacheKeys(userID)...)
		c.JSON(http.StatusOK, expense) // Return the updated row
	}
}

// DeleteExpenseHandler deletes an expense owned by the caller
func DeleteExpenseHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var expense domain.Expense // Fetch the row scoped to its owner
		if err := findOwned(db, c.Param("id"), userID, &expense); err != nil {
			// Not owned by the caller or nonexistent
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		// Delete the row
		if err := db.Delete(&expense).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
			return
		}
		// Invalidate cached summaries for this user
		_ = utils.DeleteCache(context.Background(), rdb, summaryCacheKeys(userID)...)
		// Return the deleted row alongside the confirmation message
		c.JSON(http.StatusOK, gin.H{"message": "Expense deleted", "deleted": expense})
	}
}

// querySummary loads the joined expense rows inside [start, end) and
// reduces them to a summary payload.
func querySummary(db *gorm.DB, userID uint, start, end time.Time) (summaryPayload, error) {
	rows := []summaryRow{} // Joined result rows
	err := db.Table("expenses").
		Select("expenses.amount, expenses.date, expenses.note, categories.name AS category_name, categories.priority AS category_priority").
		Joins("LEFT JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ? AND expenses.date >= ? AND expenses.date < ?", userID, start, end).
		Scan(&rows).Error
	if err != nil {
		return summaryPayload{}, err
	}
	var total float64 // Reduce to the total
	for _, r := range rows {
		total += r.Amount
	}
	return summaryPayload{Total: total, Count: len(rows), Expenses: rows}, nil
}

// sumWindow returns just the amount total inside [start, end)
func sumWindow(db *gorm.DB, userID uint, start, end time.Time) (float64, error) {
	var total float64 // Aggregate straight in the store
	err := db.Model(&domain.Expense{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// SummaryHandler returns total, count and the matching expenses over a
// date window: an exact day (?date=), an inclusive range (?from=&to=),
// or the current calendar month when no filter is given. Only the
// unfiltered variant is cached, its window changes with the clock.
func SummaryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var start, end time.Time // Resolved date window
		cacheable := false       // Whether this window goes through the cache
		switch {
		case c.Query("date") != "":
			// Exact calendar day
			day, err := parseDate(c.Query("date"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
				return
			}
			start, end = dayWindow(day)
		case c.Query("from") != "" && c.Query("to") != "":
			// Inclusive [from, to] range
			from, err := parseDate(c.Query("from"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
				return
			}
			to, err := parseDate(c.Query("to"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
				return
			}
			start = from
			_, end = dayWindow(to) // Include the whole final day
		default:
			// Current calendar month
			start, end = monthWindow(time.Now())
			cacheable = true
		}
		ctx := context.Background()                                               // Context for Redis operations
		cacheKey := "summary:user:" + strconv.Itoa(int(userID)) + ":default"      // Cache key for the unfiltered window
		var payload summaryPayload                                                // Summary response body
		if cacheable {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &payload); err == nil && found {
				c.JSON(http.StatusOK, payload) // Return cached summary
				return
			}
		}
		payload, err := querySummary(db, userID, start, end) // Query and reduce
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch summary"})
			return
		}
		if cacheable {
			// Cache the unfiltered summary
			_ = utils.SetCache(ctx, rdb, cacheKey, payload, summaryCacheTTL)
		}
		c.JSON(http.StatusOK, payload) // Return the summary
	}
}

// TodaySummaryHandler returns the amount total for the current day
func TodaySummaryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		start, end := dayWindow(time.Now())                                // Today's window
		ctx := context.Background()                                        // Context for Redis operations
		cacheKey := "summary:user:" + strconv.Itoa(int(userID)) + ":today" // Cache key for today's total
		var cached struct {
			Date  string  `json:"date"`  // The summarized day
			Total float64 `json:"total"` // Sum of amounts
		}
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"date": cached.Date, "total": cached.Total}) // Return cached total
			return
		}
		total, err := sumWindow(db, userID, start, end) // Aggregate in the store
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch summary"})
			return
		}
		cached.Date = start.Format("2006-01-02") // The summarized day
		cached.Total = total                     // Sum of amounts
		_ = utils.SetCache(ctx, rdb, cacheKey, cached, summaryCacheTTL)
		c.JSON(http.StatusOK, gin.H{"date": cached.Date, "total": total}) // Return today's total
	}
}

// MonthSummaryHandler returns the amount total for the current month
func MonthSummaryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		now := time.Now()                                                  // Current moment
		start, end := monthWindow(now)                                     // Current month's window
		ctx := context.Background()                                        // Context for Redis operations
		cacheKey := "summary:user:" + strconv.Itoa(int(userID)) + ":month" // Cache key for the monthly total
		var cached struct {
			Month int     `json:"month"` // The summarized month
			Year  int     `json:"year"`  // The summarized year
			Total float64 `json:"total"` // Sum of amounts
		}
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"month": cached.Month, "year": cached.Year, "total": cached.Total}) // Return cached total
			return
		}
		total, err := sumWindow(db, userID, start, end) // Aggregate in the store
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch summary"})
			return
		}
		cached.Month = int(now.Month()) // The summarized month
		cached.Year = now.Year()        // The summarized year
		cached.Total = total            // Sum of amounts
		_ = utils.SetCache(ctx, rdb, cacheKey, cached, summaryCacheTTL)
		c.JSON(http.StatusOK, gin.H{"month": cached.Month, "year": cached.Year, "total": total}) // Return the monthly total
	}
}
