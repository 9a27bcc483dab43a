package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oopsmv/backend/internal/models"
	"github.com/oopsmv/backend/internal/store"
)

// PartialWriteError reports that the music row committed but the context
// write failed. The caller must repair via AttachContext instead of
// re-registering the track.
type PartialWriteError struct {
	MusicID uuid.UUID
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("music %s saved but context write failed: %v", e.MusicID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// MusicInput carries the metadata fields for a track.
type MusicInput struct {
	Title       string
	Artist      string
	Genre       string
	Mood        string
	DurationSec int
	FilePath    string
	YoutubeID   string
}

// ContextInput carries the situational tags for a track.
type ContextInput struct {
	Weather   string
	TimeOfDay string
	Theme     string
}

type MusicService struct {
	music store.MusicStore
}

func NewMusicService(music store.MusicStore) *MusicService {
	return &MusicService{music: music}
}

// RegisterMusic inserts the track, then its context record. The two writes
// are sequential: if the context insert fails the track stays committed and
// a *PartialWriteError carrying its id is returned alongside the row.
func (s *MusicService) RegisterMusic(ctx context.Context, in MusicInput, ctxIn ContextInput) (*models.Music, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.DurationSec < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", ErrInvalidInput)
	}

	music := &models.Music{
		Title:       in.Title,
		Artist:      in.Artist,
		Genre:       in.Genre,
		Mood:        in.Mood,
		DurationSec: in.DurationSec,
		FilePath:    in.FilePath,
		YoutubeID:   in.YoutubeID,
	}
	if err := s.music.CreateMusic(ctx, music); err != nil {
		return nil, fmt.Errorf("failed to create music: %w", err)
	}

	mc := &models.MusicContext{
		MusicID:   music.ID,
		Weather:   ctxIn.Weather,
		TimeOfDay: ctxIn.TimeOfDay,
		Theme:     ctxIn.Theme,
	}
	if err := s.music.CreateContext(ctx, mc); err != nil {
		return music, &PartialWriteError{MusicID: music.ID, Err: err}
	}

	music.Context = mc
	return music, nil
}

// AttachContext creates or replaces the context record for an existing
// track. This is the repair path after a partial write.
func (s *MusicService) AttachContext(ctx context.Context, musicID uuid.UUID, ctxIn ContextInput) (*models.MusicContext, error) {
	if _, err := s.music.GetMusic(ctx, musicID); err != nil {
		return nil, err
	}

	mc := &models.MusicContext{
		MusicID:   musicID,
		Weather:   ctxIn.Weather,
		TimeOfDay: ctxIn.TimeOfDay,
		Theme:     ctxIn.Theme,
	}
	if err := s.music.SaveContext(ctx, mc); err != nil {
		return nil, fmt.Errorf("failed to save context: %w", err)
	}
	return mc, nil
}

// GetMusic returns a single track with its context.
func (s *MusicService) GetMusic(ctx context.Context, id uuid.UUID) (*models.Music, error) {
	return s.music.GetMusic(ctx, id)
}

// ListMusic returns tracks newest first, with pagination.
func (s *MusicService) ListMusic(ctx context.Context, limit, offset int) ([]models.Music, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.music.ListMusic(ctx, limit, offset)
}

// UpdateMusic applies a partial metadata update. Empty fields are left
// untouched.
func (s *MusicService) UpdateMusic(ctx context.Context, id uuid.UUID, in MusicInput) error {
	updates := map[string]interface{}{}
	if in.Title != "" {
		updates["title"] = in.Title
	}
	if in.Artist != "" {
		updates["artist"] = in.Artist
	}
	if in.Genre != "" {
		updates["genre"] = in.Genre
	}
	if in.Mood != "" {
		updates["mood"] = in.Mood
	}
	if in.DurationSec > 0 {
		updates["duration_sec"] = in.DurationSec
	}
	if in.FilePath != "" {
		updates["file_path"] = in.FilePath
	}
	if in.YoutubeID != "" {
		updates["youtube_id"] = in.YoutubeID
	}
	if len(updates) == 0 {
		return nil
	}
	return s.music.UpdateMusic(ctx, id, updates)
}

// DeleteMusic removes a track; its context row cascades.
func (s *MusicService) DeleteMusic(ctx context.Context, id uuid.UUID) error {
	return s.music.DeleteMusic(ctx, id)
}
