package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AnshRaj112/emotional-diary-backend/internal/models"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	pixabayAPIURL = "https://pixabay.com/api/"

	backgroundQuery    = "nature landscape"
	backgroundCategory = "nature"
	backgroundMinWidth = 1920
	backgroundBatch    = 10
)

// Background fetch sources, reported alongside each batch.
const (
	SourceUpstream = "upstream"
	SourceCache    = "cache"
)

type pixabayHit struct {
	LargeImageURL string `json:"largeImageURL"`
	PageURL       string `json:"pageURL"`
	User          string `json:"user"`
	UserID        int64  `json:"user_id"`
}

type pixabayResponse struct {
	Hits []pixabayHit `json:"hits"`
}

// BackgroundImageService fetches decorative backgrounds from Pixabay.
type BackgroundImageService struct {
	apiKey   func() string
	baseURL  string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewBackgroundImageService builds the proxy. apiKey is called on every
// fetch so a key added to the environment takes effect without a restart.
// cache may be nil.
func NewBackgroundImageService(apiKey func() string, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *BackgroundImageService {
	s := &BackgroundImageService{
		apiKey:   apiKey,
		baseURL:  pixabayAPIURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "pixabay",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return s
}

// WithBaseURL points the proxy at a different Pixabay-compatible endpoint.
func (s *BackgroundImageService) WithBaseURL(u string) *BackgroundImageService {
	s.baseURL = u
	return s
}

// Fetch returns a batch of backgrounds and where it came from.
func (s *BackgroundImageService) Fetch(ctx context.Context) ([]models.BackgroundImage, string, error) {
	key := s.apiKey()
	if key == "" {
		return nil, "", ErrImagesNotConfigured
	}

	cacheKey := CacheKey("backgrounds", backgroundQuery)
	var cached []models.BackgroundImage
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.logger.Warn("background cache read failed, evicting entry", zap.Error(err))
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			s.logger.Warn("background cache evict failed", zap.Error(err))
		}
	}
	if found {
		return cached, SourceCache, nil
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetchUpstream(ctx, key)
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	images := result.([]models.BackgroundImage)

	if err := s.cache.SetWithTTL(ctx, cacheKey, images, s.cacheTTL); err != nil {
		s.logger.Warn("background cache write failed", zap.Error(err))
	}
	return images, SourceUpstream, nil
}

func (s *BackgroundImageService) fetchUpstream(ctx context.Context, key string) ([]models.BackgroundImage, error) {
	q := url.Values{}
	q.Set("key", key)
	q.Set("q", backgroundQuery)
	q.Set("image_type", "photo")
	q.Set("orientation", "horizontal")
	q.Set("category", backgroundCategory)
	q.Set("min_width", strconv.Itoa(backgroundMinWidth))
	q.Set("editors_choice", "true")
	q.Set("per_page", strconv.Itoa(backgroundBatch))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("pixabay returned %d", resp.StatusCode)
	}

	var body pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode pixabay response: %w", err)
	}

	images := make([]models.BackgroundImage, 0, len(body.Hits))
	for _, hit := range body.Hits {
		images = append(images, models.BackgroundImage{
			ImageURL:        hit.LargeImageURL,
			Photographer:    hit.User,
			PhotographerURL: fmt.Sprintf("https://pixabay.com/users/%s-%d/", hit.User, hit.UserID),
			SourceURL:       hit.PageURL,
		})
	}
	return images, nil
}
