package api

import (
	"errors"                    // Error inspection
	"myfinance/internal/auth"   // Credential service
	"myfinance/internal/domain" // Importing domain models
	"myfinance/internal/mail"   // Mail sender
	"myfinance/internal/utils"  // Utility functions
	"net/http"                  // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided and valid
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided and valid
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
	User  gin.H  `json:"user"`  // Authenticated user identity
}

// RegisterHandler creates a credential, persists the user row and sends
// the confirmation email. The credential write and the user-row write are
// not wrapped in a transaction; a credential without a user row is an
// accepted failure mode.
func RegisterHandler(db *gorm.DB, creds auth.CredentialService, sender mail.Sender, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Delegate credential creation to the credential service
		identity, err := creds.SignUp(req.Email, req.Password)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"email": req.Email,   // Requested email
				"error": err.Error(), // Error message
			}).Error("Registration failed") // Log registration failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}
		// Generate a single-use confirmation token
		token, err := utils.GenerateConfirmationToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}
		// Persist the user row keyed by the issued identity ID
		user := domain.User{
			ID:                     identity.ID,    // Same ID as the credential record
			Email:                  identity.Email, // Registered email
			EmailConfirmationToken: &token,         // Pending confirmation token
			EmailConfirmed:         false,          // Not confirmed yet
		}
		if err := db.Create(&user).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": identity.ID, // Issued identity ID
				"error":   err.Error(), // Error message
			}).Error("Failed to persist user row") // Credential exists without a user row at this point
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}
		// Send the confirmation email with the token link
		confirmURL := baseURL + "/auth/confirm-email?token=" + token
		subject, body := mail.ConfirmationEmail(confirmURL)
		if err := sender.Send(user.Email, subject, body); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to send confirmation email") // Log mail failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send confirmation email"})
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Confirmation email sent"})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, creds auth.CredentialService, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Delegate authentication to the credential service
		identity, err := creds.SignIn(req.Email, req.Password)
		if err != nil {
			// If authentication fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		var user domain.User // Fetch the local user row
		if err := db.First(&user, identity.ID).Error; err != nil {
			// If the user row is missing or the lookup fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to check user"})
			return
		}
		// Reject logins until the email is confirmed
		if !user.EmailConfirmed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Email not confirmed"})
			return
		}
		// Generate JWT token embedding the identity
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token and user identity in the response
		c.JSON(http.StatusOK, AuthResponse{
			Token: token,
			User:  gin.H{"id": user.ID, "email": user.Email},
		})
	}
}

// ConfirmEmailHandler redeems a confirmation token. The token is cleared
// on redemption, so a second call with the same token fails.
func ConfirmEmailHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token") // Token from the confirmation link
		if token == "" {
			// If the token is missing, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
			return
		}
		var user domain.User // Find the user holding this token
		if err := db.Where("email_confirmation_token = ?", token).First(&user).Error; err != nil {
			// Unknown or already-cleared token
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}
		// Reject if the email was already confirmed
		if user.EmailConfirmed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already confirmed"})
			return
		}
		// Flip the confirmed flag and clear the token in one update
		updates := map[string]any{"email_confirmed": true, "email_confirmation_token": nil}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,     // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to confirm email") // Log confirmation failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm email"})
			return
		}
		// Return plain-text success, this endpoint is opened from the email link
		c.String(http.StatusOK, "Email confirmed!")
	}
}

// CurrentUserHandler returns the authenticated user's profile row
func CurrentUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Token is valid but the row is gone
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
			return
		}
		// Return the user profile
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
