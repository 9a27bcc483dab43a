package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/oopsmv/backend/internal/config"
)

// ErrUpstreamUnavailable covers transport errors, timeouts and non-2xx
// answers from the recommendation service. Not retried.
var ErrUpstreamUnavailable = errors.New("recommendation service unavailable")

// RecommendService forwards recommendation requests to the external
// service and relays its response verbatim.
type RecommendService struct {
	baseURL string
	client  *http.Client
}

func NewRecommendService(cfg *config.Config) *RecommendService {
	return &RecommendService{
		baseURL: cfg.RecommenderURL,
		client:  &http.Client{Timeout: cfg.RecommenderTimeout},
	}
}

type recommendRequest struct {
	Emotion  string `json:"emotion"`
	Activity string `json:"activity"`
	Weather  string `json:"weather"`
}

// Recommend POSTs the selection to the upstream /recommend endpoint and
// returns the response body and content type untouched.
func (s *RecommendService) Recommend(ctx context.Context, emotion, activity, weather string) ([]byte, string, error) {
	if emotion == "" || activity == "" || weather == "" {
		return nil, "", fmt.Errorf("%w: emotion, activity and weather are required", ErrInvalidInput)
	}

	payload, err := json.Marshal(recommendRequest{
		Emotion:  emotion,
		Activity: activity,
		Weather:  weather,
	})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: upstream returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return body, contentType, nil
}
