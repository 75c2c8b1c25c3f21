package store

import (
	"errors"
	"fmt"

	"strength-tracker/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUnauthorized means the username/secret pair did not match.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrProtectedUser guards the seeded admin account from deletion.
	ErrProtectedUser = errors.New("user cannot be deleted")
	// ErrUsernameTaken enforces username uniqueness on create.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrNotFound is returned for lookups of unknown users.
	ErrNotFound = errors.New("user not found")
)

// UserStore is the mutable credential/permission table behind the auth gate.
type UserStore interface {
	Authenticate(username, secret string) (*models.User, error)
	List() ([]models.User, error)
	Create(username, secret, role string, permissions []string) (*models.User, error)
	Delete(id uint) error
}

type gormUserStore struct {
	db *gorm.DB
}

// NewUserStore builds the gorm-backed user table.
func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

// Authenticate compares the secret against the stored bcrypt hash. The
// comparison runs even for unknown usernames so both failure modes cost
// roughly the same.
func (s *gormUserStore) Authenticate(username, secret string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)) != nil {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

func (s *gormUserStore) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *gormUserStore) Create(username, secret, role string, permissions []string) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := HashSecret(secret)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	user.SetPermissions(permissions)
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (s *gormUserStore) Delete(id uint) error {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.Username == models.AdminUsername {
		return ErrProtectedUser
	}
	if err := s.db.Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// HashSecret derives the stored bcrypt hash for a secret.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// dummyHash keeps Authenticate doing one bcrypt comparison per call
// regardless of whether the username exists.
var dummyHash = mustHash("unused-placeholder-secret")

func mustHash(secret string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}
