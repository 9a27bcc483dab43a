package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oopsmv/backend/internal/services"
	"github.com/oopsmv/backend/internal/store"
)

type MusicHandler struct {
	musicService *services.MusicService
	shareService *services.ShareService
}

func NewMusicHandler(musicService *services.MusicService, shareService *services.ShareService) *MusicHandler {
	return &MusicHandler{
		musicService: musicService,
		shareService: shareService,
	}
}

type musicContextRequest struct {
	Weather   string `json:"weather"`
	TimeOfDay string `json:"time_of_day"`
	Theme     string `json:"theme"`
}

// Register inserts a track together with its context record. The body is
// flat (metadata and context fields side by side), matching the original
// registration form.
func (h *MusicHandler) Register(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Artist      string `json:"artist"`
		Genre       string `json:"genre"`
		Mood        string `json:"mood"`
		DurationSec int    `json:"duration_sec"`
		FilePath    string `json:"file_path"`
		YoutubeID   string `json:"youtube_id"`
		Weather     string `json:"weather"`
		TimeOfDay   string `json:"time_of_day"`
		Theme       string `json:"theme"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	music, err := h.musicService.RegisterMusic(c.Request.Context(),
		services.MusicInput{
			Title:       req.Title,
			Artist:      req.Artist,
			Genre:       req.Genre,
			Mood:        req.Mood,
			DurationSec: req.DurationSec,
			FilePath:    req.FilePath,
			YoutubeID:   req.YoutubeID,
		},
		services.ContextInput{
			Weather:   req.Weather,
			TimeOfDay: req.TimeOfDay,
			Theme:     req.Theme,
		},
	)

	if err != nil {
		var partial *services.PartialWriteError
		switch {
		case errors.As(err, &partial):
			// The track committed; tell the caller to repair the
			// context instead of re-registering.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    "partial_write",
				"message":  "music saved but context write failed; retry via POST /music/:id/context",
				"music_id": partial.MusicID,
			})
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register music"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Music registered",
		"music":   music,
	})
}

// AttachContext creates or replaces the context record for a track. This
// is the repair path after a partial write.
func (h *MusicHandler) AttachContext(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid music id"})
		return
	}

	var req musicContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mc, err := h.musicService.AttachContext(c.Request.Context(), id, services.ContextInput{
		Weather:   req.Weather,
		TimeOfDay: req.TimeOfDay,
		Theme:     req.Theme,
	})
	if err != nil {
		if errors.Is(err, store.ErrMusicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "music not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Context saved",
		"context": mc,
	})
}

// List returns tracks newest first, with pagination
func (h *MusicHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tracks, total, err := h.musicService.ListMusic(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list music"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"music":  tracks,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Get returns a single track with its context
func (h *MusicHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid music id"})
		return
	}

	music, err := h.musicService.GetMusic(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrMusicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "music not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get music"})
		return
	}

	c.JSON(http.StatusOK, music)
}

// Update applies a partial metadata update
func (h *MusicHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid music id"})
		return
	}

	var req struct {
		Title       string `json:"title"`
		Artist      string `json:"artist"`
		Genre       string `json:"genre"`
		Mood        string `json:"mood"`
		DurationSec int    `json:"duration_sec"`
		FilePath    string `json:"file_path"`
		YoutubeID   string `json:"youtube_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.musicService.UpdateMusic(c.Request.Context(), id, services.MusicInput{
		Title:       req.Title,
		Artist:      req.Artist,
		Genre:       req.Genre,
		Mood:        req.Mood,
		DurationSec: req.DurationSec,
		FilePath:    req.FilePath,
		YoutubeID:   req.YoutubeID,
	})
	if err != nil {
		if errors.Is(err, store.ErrMusicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "music not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update music"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Music updated"})
}

// Delete removes a track and its context
func (h *MusicHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid music id"})
		return
	}

	if err := h.musicService.DeleteMusic(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrMusicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "music not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete music"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Music deleted"})
}

// SharePDF serves a QR share sheet for the track's YouTube link
func (h *MusicHandler) SharePDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid music id"})
		return
	}

	music, err := h.musicService.GetMusic(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrMusicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "music not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get music"})
		return
	}

	pdf, err := h.shareService.MusicSharePDF(music)
	if err != nil {
		if errors.Is(err, services.ErrNoYoutubeID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "music has no youtube video"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render share sheet"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", music.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
