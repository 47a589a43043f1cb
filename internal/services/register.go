package services

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/NazarKuzyk/TodoList/internal/models"
)

const (
	MinPasswordLength = 8
	maxUsernameLength = 150
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username is too long")
	ErrUsernameInvalid  = errors.New("username may only contain letters, digits and @/./+/-/_")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type RegistrationRequest struct {
	Username string
	Password string
	Confirm  string
}

type RegisterService interface {
	RegisterUser(ctx context.Context, db *gorm.DB, req RegistrationRequest) (*models.User, error)
}

type RegisterServiceImpl struct {
	bcryptCost int
}

func NewRegisterService(bcryptCost int) *RegisterServiceImpl {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &RegisterServiceImpl{bcryptCost: bcryptCost}
}

func validateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}

	for _, r := range username {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '@', r == '.', r == '+', r == '-', r == '_':
		default:
			return ErrUsernameInvalid
		}
	}

	return nil
}

// RegisterUser validates the request and creates the account. Validation runs
// before any write, so a rejected registration leaves no user row behind.
func (s *RegisterServiceImpl) RegisterUser(ctx context.Context, db *gorm.DB, req RegistrationRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	if req.Password != req.Confirm {
		return nil, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var existing models.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Password: string(hashedPassword),
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return &user, nil
}

// isUniqueViolation matches the duplicate-key errors sqlite and postgres
// return when two registrations race on the same username.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
