package services

import (
	"database/sql"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
	"github.com/raaf17/assesment-test-imp/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	CreateUser(name, email, password, passwordConfirmation string) (models.User, error)
	Authenticate(email, password string) (models.User, bool, error)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserService provides registration and credential verification.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.NotFound("User not found")
		}
		return models.User{}, apperr.Internal("Failed to load user", err)
	}
	return user, nil
}

// getUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) getUserByEmail(email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CreateUser validates the registration fields, hashes the password and
// stores a new user. A claimed email is a validation failure, not an
// internal one.
func (s *UserService) CreateUser(name, email, password, passwordConfirmation string) (models.User, error) {
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "Name is required"
	}
	if email == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "Email must be a valid email address"
	}
	if len(password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if password != passwordConfirmation {
		fields["password_confirmation"] = "Password confirmation does not match"
	}
	if len(fields) > 0 {
		return models.User{}, apperr.Validation("Validation failed", fields)
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return models.User{}, apperr.Internal("Failed to check email", err)
	}
	if exists > 0 {
		return models.User{}, apperr.Validation("Validation failed", map[string]string{
			"email": "Email is already taken",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Internal("Failed to hash password", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, name, email, password_hash) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.User{}, apperr.Internal("Failed to create user", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Name, user.Email, user.PasswordHash); err != nil {
		return models.User{}, apperr.Internal("Failed to create user", err)
	}

	return s.GetUserByID(user.ID)
}

// Authenticate verifies a user's credentials. A missing user or a
// wrong password both come back as ok=false with no error, so the
// caller can answer 401 without inspecting failure detail. The error
// is non-nil only for storage failures.
func (s *UserService) Authenticate(email, password string) (models.User, bool, error) {
	user, err := s.getUserByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, false, nil
		}
		return models.User{}, false, apperr.Internal("Failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, false, nil
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, true, nil
}
