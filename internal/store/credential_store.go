package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oopsmv/backend/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when the username unique constraint
	// rejects an insert. Under concurrent registration exactly one caller
	// wins; every loser sees this error.
	ErrDuplicateUsername = errors.New("username already taken")
)

// CredentialStore persists user identities and their hashed credentials.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// Insert creates a full account: a user row plus its credentials, as
	// one transaction.
	Insert(ctx context.Context, username, passwordHash, nickname string) (*models.User, error)
	// CreateGuest creates an anonymous user row with no credentials.
	CreateGuest(ctx context.Context) (*models.User, error)
	// LinkCredentials attaches a username and password hash to an existing
	// guest row, promoting it to a regular account.
	LinkCredentials(ctx context.Context, userID uuid.UUID, username, passwordHash, nickname string) (*models.User, error)
}

type GormCredentialStore struct {
	db *gorm.DB
}

func NewCredentialStore(db *gorm.DB) *GormCredentialStore {
	return &GormCredentialStore{db: db}
}

func (s *GormCredentialStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Insert runs the two-step identity creation (guest row, then credentials)
// inside a single transaction so a failed credential write never leaves an
// orphaned guest behind.
func (s *GormCredentialStore) Insert(ctx context.Context, username, passwordHash, nickname string) (*models.User, error) {
	user := &models.User{IsGuest: true}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"username":      username,
			"password_hash": passwordHash,
			"nickname":      nickname,
			"is_guest":      false,
		}
		return tx.Model(user).Updates(updates).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	user.Username = &username
	user.PasswordHash = passwordHash
	user.Nickname = nickname
	user.IsGuest = false
	return user, nil
}

func (s *GormCredentialStore) CreateGuest(ctx context.Context) (*models.User, error) {
	user := &models.User{IsGuest: true}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *GormCredentialStore) LinkCredentials(ctx context.Context, userID uuid.UUID, username, passwordHash, nickname string) (*models.User, error) {
	updates := map[string]interface{}{
		"username":      username,
		"password_hash": passwordHash,
		"nickname":      nickname,
		"is_guest":      false,
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return nil, ErrDuplicateUsername
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return s.FindByID(ctx, userID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
