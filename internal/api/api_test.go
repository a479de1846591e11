package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"myfinance/internal/auth"
	"myfinance/internal/db"
	"myfinance/internal/domain"
	"myfinance/internal/middleware"
	"myfinance/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// sentMail records one call to the fake sender
type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeSender records outgoing mail instead of delivering it
type fakeSender struct {
	sent []sentMail
}

func (f *fakeSender) Send(to, subject, htmlBody string) error {
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// newTestDB opens an in-memory store with the full schema and seed data
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))
	require.NoError(t, db.Seed(conn))
	return conn
}

// newTestRouter wires the full route table against the given store,
// with caching disabled and mail captured by the fake sender.
func newTestRouter(t *testing.T, conn *gorm.DB, sender *fakeSender) *gin.Engine {
	t.Helper()
	credentials := auth.NewService(conn)

	r := gin.New()
	r.POST("/auth/register", RegisterHandler(conn, credentials, sender, "http://localhost:3000"))
	r.POST("/auth/login", LoginHandler(conn, credentials, testSecret))
	r.GET("/auth/confirm-email", ConfirmEmailHandler(conn))
	r.GET("/auth/user", middleware.JWTAuthMiddleware(testSecret), CurrentUserHandler(conn))

	categoryGroup := r.Group("/categories")
	categoryGroup.Use(middleware.JWTAuthMiddleware(testSecret))
	categoryGroup.GET("", ListCategoriesHandler(conn))
	categoryGroup.POST("", CreateCategoryHandler(conn))
	categoryGroup.PUT("/:id", UpdateCategoryHandler(conn, nil))
	categoryGroup.DELETE("/:id", DeleteCategoryHandler(conn, nil))
	categoryGroup.POST("/restore-all", RestoreCategoriesHandler(conn))

	expenseGroup := r.Group("/expenses")
	expenseGroup.Use(middleware.JWTAuthMiddleware(testSecret))
	expenseGroup.POST("", CreateExpenseHandler(conn, nil))
	expenseGroup.GET("", ListExpensesHandler(conn))
	expenseGroup.PUT("/:id", UpdateExpenseHandler(conn, nil))
	expenseGroup.DELETE("/:id", DeleteExpenseHandler(conn, nil))
	expenseGroup.GET("/summary", SummaryHandler(conn, nil))
	expenseGroup.GET("/summary/today", TodaySummaryHandler(conn, nil))
	expenseGroup.GET("/summary/month", MonthSummaryHandler(conn, nil))

	return r
}

// createConfirmedUser inserts a confirmed user directly and returns its
// ID with a valid bearer token.
func createConfirmedUser(t *testing.T, conn *gorm.DB, email string) (uint, string) {
	t.Helper()
	user := domain.User{Email: email, EmailConfirmed: true}
	require.NoError(t, conn.Create(&user).Error)
	token, err := utils.GenerateJWT(user.ID, user.Email, testSecret)
	require.NoError(t, err)
	return user.ID, token
}

// perform runs one request against the router and returns the recorder
func perform(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON response body into dest
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
