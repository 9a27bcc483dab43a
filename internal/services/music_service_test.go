package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/oopsmv/backend/internal/models"
	"github.com/oopsmv/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMusicStore is an in-memory MusicStore. Setting failContext forces
// every context insert to fail, simulating the partial-write condition.
type fakeMusicStore struct {
	mu          sync.Mutex
	music       map[uuid.UUID]*models.Music
	contexts    map[uuid.UUID]*models.MusicContext // keyed by music id
	failContext bool
}

func newFakeMusicStore() *fakeMusicStore {
	return &fakeMusicStore{
		music:    make(map[uuid.UUID]*models.Music),
		contexts: make(map[uuid.UUID]*models.MusicContext),
	}
}

func (f *fakeMusicStore) CreateMusic(ctx context.Context, music *models.Music) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if music.ID == uuid.Nil {
		music.ID = uuid.New()
	}
	copied := *music
	f.music[music.ID] = &copied
	return nil
}

func (f *fakeMusicStore) CreateContext(ctx context.Context, mc *models.MusicContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failContext {
		return errors.New("context insert failed")
	}
	if mc.ID == uuid.Nil {
		mc.ID = uuid.New()
	}
	copied := *mc
	f.contexts[mc.MusicID] = &copied
	return nil
}

func (f *fakeMusicStore) SaveContext(ctx context.Context, mc *models.MusicContext) error {
	return f.CreateContext(ctx, mc)
}

func (f *fakeMusicStore) GetMusic(ctx context.Context, id uuid.UUID) (*models.Music, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	music, ok := f.music[id]
	if !ok {
		return nil, store.ErrMusicNotFound
	}
	copied := *music
	if mc, ok := f.contexts[id]; ok {
		mcCopy := *mc
		copied.Context = &mcCopy
	}
	return &copied, nil
}

func (f *fakeMusicStore) GetContext(ctx context.Context, musicID uuid.UUID) (*models.MusicContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mc, ok := f.contexts[musicID]
	if !ok {
		return nil, nil
	}
	copied := *mc
	return &copied, nil
}

func (f *fakeMusicStore) ListMusic(ctx context.Context, limit, offset int) ([]models.Music, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tracks []models.Music
	for _, m := range f.music {
		tracks = append(tracks, *m)
	}
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt.After(tracks[j].CreatedAt)
	})
	total := int64(len(tracks))
	if offset >= len(tracks) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(tracks) {
		end = len(tracks)
	}
	return tracks[offset:end], total, nil
}

func (f *fakeMusicStore) UpdateMusic(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	music, ok := f.music[id]
	if !ok {
		return store.ErrMusicNotFound
	}
	if title, ok := updates["title"].(string); ok {
		music.Title = title
	}
	if artist, ok := updates["artist"].(string); ok {
		music.Artist = artist
	}
	return nil
}

func (f *fakeMusicStore) DeleteMusic(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.music[id]; !ok {
		return store.ErrMusicNotFound
	}
	delete(f.music, id)
	delete(f.contexts, id)
	return nil
}

func TestRegisterMusicWithContext(t *testing.T) {
	fake := newFakeMusicStore()
	svc := NewMusicService(fake)
	ctx := context.Background()

	music, err := svc.RegisterMusic(ctx,
		MusicInput{Title: "X", Artist: "Y", DurationSec: 180, YoutubeID: "abc123"},
		ContextInput{Weather: "rain", TimeOfDay: "night", Theme: "chill"},
	)
	require.NoError(t, err)
	require.NotNil(t, music)
	require.NotNil(t, music.Context)
	assert.Equal(t, music.ID, music.Context.MusicID)

	stored, err := svc.GetMusic(ctx, music.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Context)
	assert.Equal(t, "rain", stored.Context.Weather)
}

func TestRegisterMusicPartialWrite(t *testing.T) {
	fake := newFakeMusicStore()
	fake.failContext = true
	svc := NewMusicService(fake)
	ctx := context.Background()

	music, err := svc.RegisterMusic(ctx,
		MusicInput{Title: "X"},
		ContextInput{Weather: "rain"},
	)
	require.Error(t, err)

	var partial *PartialWriteError
	require.ErrorAs(t, err, &partial)
	require.NotNil(t, music)
	assert.Equal(t, music.ID, partial.MusicID)

	// Music row persists, context row does not.
	stored, err := svc.GetMusic(ctx, partial.MusicID)
	require.NoError(t, err)
	assert.Nil(t, stored.Context)

	// Repair: attach the context without re-inserting the music row.
	fake.failContext = false
	_, err = svc.AttachContext(ctx, partial.MusicID, ContextInput{Weather: "rain", TimeOfDay: "night"})
	require.NoError(t, err)

	stored, err = svc.GetMusic(ctx, partial.MusicID)
	require.NoError(t, err)
	require.NotNil(t, stored.Context)
	assert.Equal(t, "rain", stored.Context.Weather)

	tracks, total, err := svc.ListMusic(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, tracks, 1)
}

func TestRegisterMusicInvalidInput(t *testing.T) {
	svc := NewMusicService(newFakeMusicStore())
	ctx := context.Background()

	_, err := svc.RegisterMusic(ctx, MusicInput{Title: ""}, ContextInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RegisterMusic(ctx, MusicInput{Title: "X", DurationSec: -1}, ContextInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAttachContextUnknownMusic(t *testing.T) {
	svc := NewMusicService(newFakeMusicStore())

	_, err := svc.AttachContext(context.Background(), uuid.New(), ContextInput{Weather: "rain"})
	assert.ErrorIs(t, err, store.ErrMusicNotFound)
}

func TestDeleteMusicRemovesContext(t *testing.T) {
	fake := newFakeMusicStore()
	svc := NewMusicService(fake)
	ctx := context.Background()

	music, err := svc.RegisterMusic(ctx, MusicInput{Title: "X"}, ContextInput{Weather: "rain"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMusic(ctx, music.ID))

	_, err = svc.GetMusic(ctx, music.ID)
	assert.ErrorIs(t, err, store.ErrMusicNotFound)

	mc, err := fake.GetContext(ctx, music.ID)
	require.NoError(t, err)
	assert.Nil(t, mc)
}
