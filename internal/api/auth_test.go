package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"myfinance/internal/domain"
	"myfinance/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserAndSendsConfirmation(t *testing.T) {
	conn := newTestDB(t)
	sender := &fakeSender{}
	r := newTestRouter(t, conn, sender)

	w := perform(t, r, "POST", "/auth/register", "",
		map[string]any{"email": "new@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	// The user row exists, unconfirmed, holding a pending token
	var user domain.User
	require.NoError(t, conn.Where("email = ?", "new@example.com").First(&user).Error)
	assert.False(t, user.EmailConfirmed)
	require.NotNil(t, user.EmailConfirmationToken)
	assert.Len(t, *user.EmailConfirmationToken, 64)

	// The credential record shares the user's ID
	var cred domain.Credential
	require.NoError(t, conn.Where("email = ?", "new@example.com").First(&cred).Error)
	assert.Equal(t, cred.ID, user.ID)

	// The confirmation mail carries the token link
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "new@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "confirm-email?token="+*user.EmailConfirmationToken)
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	w := perform(t, r, "POST", "/auth/register", "", map[string]any{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, r, "POST", "/auth/register", "", map[string]any{"email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmailFails(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	w := perform(t, r, "POST", "/auth/register", "",
		map[string]any{"email": "dup@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, r, "POST", "/auth/register", "",
		map[string]any{"email": "dup@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoginBeforeConfirmationIsForbidden(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	w := perform(t, r, "POST", "/auth/register", "",
		map[string]any{"email": "u@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Correct credentials, but the email is not confirmed yet
	w = perform(t, r, "POST", "/auth/login", "",
		map[string]any{"email": "u@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	w := perform(t, r, "POST", "/auth/register", "",
		map[string]any{"email": "u@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, r, "POST", "/auth/login", "",
		map[string]any{"email": "u@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, r, "POST", "/auth/login", "",
		map[string]any{"email": "nobody@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmEmailThenLogin(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	w := perform(t, r, "POST", "/auth/register", "",
		map[string]any{"email": "u@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code)

	var user domain.User
	require.NoError(t, conn.Where("email = ?", "u@example.com").First(&user).Error)
	require.NotNil(t, user.EmailConfirmationToken)
	token := *user.EmailConfirmationToken

	// First redemption succeeds and clears the token
	w = perform(t, r, "GET", "/auth/confirm-email?token="+token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Email confirmed"))

	require.NoError(t, conn.First(&user, user.ID).Error)
	assert.True(t, user.EmailConfirmed)
	assert.Nil(t, user.EmailConfirmationToken, "token must be cleared on redemption")

	// Second redemption with the same token fails
	w = perform(t, r, "GET", "/auth/confirm-email?token="+token, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Login now succeeds and returns a token valid for 7 days
	w = perform(t, r, "POST", "/auth/login", "",
		map[string]any{"email": "u@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "u@example.com", resp.User.Email)

	claims, err := utils.ParseJWT(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	ttl := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), ttl.Seconds(), 60)
}

func TestConfirmEmailMissingToken(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	w := perform(t, r, "GET", "/auth/confirm-email", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, r, "GET", "/auth/confirm-email?token=unknown", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrentUser(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})
	userID, token := createConfirmedUser(t, conn, "me@example.com")

	w := perform(t, r, "GET", "/auth/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User domain.User `json:"user"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, userID, resp.User.ID)
	assert.Equal(t, "me@example.com", resp.User.Email)
}

func TestCurrentUserMissingRow(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	// A valid token for a user row that does not exist
	token, err := utils.GenerateJWT(999, "ghost@example.com", testSecret)
	require.NoError(t, err)

	w := perform(t, r, "GET", "/auth/user", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurrentUserRequiresAuth(t *testing.T) {
	conn := newTestDB(t)
	r := newTestRouter(t, conn, &fakeSender{})

	w := perform(t, r, "GET", "/auth/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
