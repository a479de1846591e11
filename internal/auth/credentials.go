package auth

import (
	"errors"                    // Sentinel errors
	"myfinance/internal/domain" // Importing domain models

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// ErrInvalidCredentials is returned when sign-in fails, without revealing
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is the record the credential service hands back on success
type Identity struct {
	ID    uint   // Issued identity ID, shared with the User row
	Email string // Verified login email
}

// CredentialService creates and verifies user credentials. Route handlers
// talk to it through this interface rather than touching the credentials
// table directly.
type CredentialService interface {
	SignUp(email, password string) (Identity, error)
	SignIn(email, password string) (Identity, error)
}

// Service is the store-backed credential service
type Service struct {
	db *gorm.DB // Store handle, injected at startup
}

// NewService constructs a credential service on top of the given store
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SignUp hashes the password and creates a credential record.
// Fails if the email is already registered.
func (s *Service) SignUp(email, password string) (Identity, error) {
	// Hash the password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err // Return error if hashing fails
	}
	cred := domain.Credential{Email: email, PasswordHash: string(hash)}
	// Attempt to create the credential (unique email enforced by the store)
	if err := s.db.Create(&cred).Error; err != nil {
		return Identity{}, err // Duplicate email or store failure
	}
	return Identity{ID: cred.ID, Email: cred.Email}, nil
}

// SignIn verifies the password against the stored hash
func (s *Service) SignIn(email, password string) (Identity, error) {
	var cred domain.Credential
	// Fetch credential by email
	if err := s.db.Where("email = ?", email).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrInvalidCredentials // Unknown email
		}
		return Identity{}, err // Store failure
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials // Wrong password
	}
	return Identity{ID: cred.ID, Email: cred.Email}, nil
}
