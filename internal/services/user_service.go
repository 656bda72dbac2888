package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/stockroom-be/internal/models"
)

// ErrEmailTaken is returned when registration collides with an existing email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned when email/password verification fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(email, password string) (*models.User, error)
	UpdateUser(id int64, upd models.UserUpdate) (*models.User, error)
	AuthenticateUser(email, password string) (*models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by ID. A missing user is reported as a
// nil record, not an error; callers decide what absence means.
func (s *UserService) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, email, password_hash, is_active FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a single user by email, including the password hash.
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, email, password_hash, is_active FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a new active user, hashing their password.
func (s *UserService) CreateUser(email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO users(email, password_hash, is_active) VALUES(?, ?, 1)",
		email, string(hashedPassword),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Email: email, IsActive: true}, nil
}

// UpdateUser applies a partial update. Only the fields present in upd are
// written; an empty update is a no-op. Returns nil if the user does not exist.
func (s *UserService) UpdateUser(id int64, upd models.UserUpdate) (*models.User, error) {
	var sets []string
	var args []any

	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		sets = append(sets, "password_hash = ?")
		args = append(args, string(hashedPassword))
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *upd.IsActive)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := s.db.Exec(query, args...); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
	}

	return s.GetUserByID(id)
}

// AuthenticateUser verifies a user's credentials. An unknown email and a wrong
// password fail the same way.
func (s *UserService) AuthenticateUser(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
