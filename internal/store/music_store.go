package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/oopsmv/backend/internal/models"
	"gorm.io/gorm"
)

// ErrMusicNotFound is returned when no music row matches the lookup.
var ErrMusicNotFound = errors.New("music not found")

// MusicStore persists music metadata and the per-track context record.
type MusicStore interface {
	CreateMusic(ctx context.Context, music *models.Music) error
	CreateContext(ctx context.Context, mc *models.MusicContext) error
	// SaveContext creates or replaces the context row for a track.
	SaveContext(ctx context.Context, mc *models.MusicContext) error
	GetMusic(ctx context.Context, id uuid.UUID) (*models.Music, error)
	GetContext(ctx context.Context, musicID uuid.UUID) (*models.MusicContext, error)
	ListMusic(ctx context.Context, limit, offset int) ([]models.Music, int64, error)
	UpdateMusic(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteMusic(ctx context.Context, id uuid.UUID) error
}

type GormMusicStore struct {
	db *gorm.DB
}

func NewMusicStore(db *gorm.DB) *GormMusicStore {
	return &GormMusicStore{db: db}
}

func (s *GormMusicStore) CreateMusic(ctx context.Context, music *models.Music) error {
	return s.db.WithContext(ctx).Create(music).Error
}

func (s *GormMusicStore) CreateContext(ctx context.Context, mc *models.MusicContext) error {
	return s.db.WithContext(ctx).Create(mc).Error
}

func (s *GormMusicStore) SaveContext(ctx context.Context, mc *models.MusicContext) error {
	var existing models.MusicContext
	err := s.db.WithContext(ctx).Where("music_id = ?", mc.MusicID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(mc).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"weather":     mc.Weather,
		"time_of_day": mc.TimeOfDay,
		"theme":       mc.Theme,
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return err
	}
	mc.ID = existing.ID
	return nil
}

func (s *GormMusicStore) GetMusic(ctx context.Context, id uuid.UUID) (*models.Music, error) {
	var music models.Music
	if err := s.db.WithContext(ctx).Preload("Context").First(&music, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMusicNotFound
		}
		return nil, err
	}
	return &music, nil
}

func (s *GormMusicStore) GetContext(ctx context.Context, musicID uuid.UUID) (*models.MusicContext, error) {
	var mc models.MusicContext
	if err := s.db.WithContext(ctx).Where("music_id = ?", musicID).First(&mc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mc, nil
}

func (s *GormMusicStore) ListMusic(ctx context.Context, limit, offset int) ([]models.Music, int64, error) {
	var tracks []models.Music
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.Music{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := s.db.WithContext(ctx).Preload("Context").Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&tracks).Error; err != nil {
		return nil, 0, err
	}

	return tracks, total, nil
}

func (s *GormMusicStore) UpdateMusic(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Music{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMusicNotFound
	}
	return nil
}

func (s *GormMusicStore) DeleteMusic(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Music{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMusicNotFound
	}
	// Context rows cascade via the FK constraint, but delete explicitly in
	// case the schema was migrated without it.
	s.db.WithContext(ctx).Delete(&models.MusicContext{}, "music_id = ?", id)
	return nil
}
