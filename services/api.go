package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

// UpstreamClient is the slice of the platform API the engine consumes.
// Services hold this interface so tests can swap in a fake.
type UpstreamClient interface {
	GetRoadmap(ctx context.Context, roadmapID string) (*model.Roadmap, error)
	GetEnrollment(ctx context.Context, userID, roadmapID string) (*model.EnrollmentCheck, error)
	GetEnrollmentLegacy(ctx context.Context, userID, roadmapID string) (*model.EnrollmentCheck, error)
	SelectRoadmap(ctx context.Context, userID, roadmapID string, restart bool) error
	GetDays(ctx context.Context, userID, roadmapID string, page, limit int) (*model.DayPage, error)
	GetDayActivities(ctx context.Context, dayID string) ([]model.Activity, error)
	GetDayProgress(ctx context.Context, userID, dayID string) ([]model.ActivityProgress, error)
	GetMiniGames(ctx context.Context, activityID string) ([]model.MiniGame, error)
	LogActivityProgress(ctx context.Context, userID, activityID string, timeSpent int, isCompleted bool) error
}

type ApiService struct {
	appContext.DefaultService

	httpClient  *http.Client
	baseURL     string
	redisSvc    *RedisService
	cacheExpiry time.Duration
}

const API_SVC = "api_svc"

func (svc ApiService) Id() string {
	return API_SVC
}

func (svc *ApiService) Configure(ctx *appContext.Context) error {
	svc.httpClient = &http.Client{
		Timeout: 10 * time.Second,
	}
	svc.baseURL = os.Getenv("UPSTREAM_API_URL")
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:4000"
	}
	svc.cacheExpiry = 1 * time.Hour
	return svc.DefaultService.Configure(ctx)
}

func (svc *ApiService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// GetRoadmap fetches roadmap metadata plus its day list. Roadmaps are
// content-author owned and effectively immutable, so responses are cached.
func (svc *ApiService) GetRoadmap(ctx context.Context, roadmapID string) (*model.Roadmap, error) {
	cacheKey := fmt.Sprintf("roadmap:%s", roadmapID)

	var roadmap model.Roadmap
	if svc.cacheGet(ctx, cacheKey, &roadmap) {
		return &roadmap, nil
	}

	if err := svc.getJSON(ctx, "/roadmaps/:roadmapId", fmt.Sprintf("/roadmaps/%s", roadmapID), &roadmap); err != nil {
		return nil, err
	}

	svc.cacheSet(ctx, cacheKey, &roadmap)
	return &roadmap, nil
}

func (svc *ApiService) GetEnrollment(ctx context.Context, userID, roadmapID string) (*model.EnrollmentCheck, error) {
	var check model.EnrollmentCheck
	path := fmt.Sprintf("/users/%s/roadmaps/%s/enrollment", userID, roadmapID)
	if err := svc.getJSON(ctx, "/users/:userId/roadmaps/:roadmapId/enrollment", path, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// GetEnrollmentLegacy hits the pre-migration enrollment route. Only used
// when the primary route answers 404.
func (svc *ApiService) GetEnrollmentLegacy(ctx context.Context, userID, roadmapID string) (*model.EnrollmentCheck, error) {
	var check model.EnrollmentCheck
	path := fmt.Sprintf("/roadmap_enrollments/user/%s/roadmap/%s", userID, roadmapID)
	if err := svc.getJSON(ctx, "/roadmap_enrollments/user/:userId/roadmap/:roadmapId", path, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

func (svc *ApiService) SelectRoadmap(ctx context.Context, userID, roadmapID string, restart bool) error {
	body := map[string]interface{}{
		"roadmapId": roadmapID,
		"restart":   restart,
	}
	path := fmt.Sprintf("/roadmap_enrollments/user/%s/select", userID)
	return svc.send(ctx, http.MethodPost, "/roadmap_enrollments/user/:userId/select", path, body, nil)
}

func (svc *ApiService) GetDays(ctx context.Context, userID, roadmapID string, page, limit int) (*model.DayPage, error) {
	var dayPage model.DayPage
	path := fmt.Sprintf("/users/%s/roadmaps/%s/days?page=%d&limit=%d", userID, roadmapID, page, limit)
	if err := svc.getJSON(ctx, "/users/:userId/roadmaps/:roadmapId/days", path, &dayPage); err != nil {
		return nil, err
	}
	return &dayPage, nil
}

func (svc *ApiService) GetDayActivities(ctx context.Context, dayID string) ([]model.Activity, error) {
	var activities []model.Activity
	if err := svc.getJSON(ctx, "/days/:dayId/activities", fmt.Sprintf("/days/%s/activities", dayID), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (svc *ApiService) GetDayProgress(ctx context.Context, userID, dayID string) ([]model.ActivityProgress, error) {
	var records []model.ActivityProgress
	path := fmt.Sprintf("/users/%s/days/%s/progress", userID, dayID)
	if err := svc.getJSON(ctx, "/users/:userId/days/:dayId/progress", path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetMiniGames fetches an activity's mini-game chain. Chains are authored
// content, cached like roadmaps.
func (svc *ApiService) GetMiniGames(ctx context.Context, activityID string) ([]model.MiniGame, error) {
	cacheKey := fmt.Sprintf("minigames:%s", activityID)

	var games []model.MiniGame
	if svc.cacheGet(ctx, cacheKey, &games) {
		return games, nil
	}

	if err := svc.getJSON(ctx, "/activities/:activityId/minigames", fmt.Sprintf("/activities/%s/minigames", activityID), &games); err != nil {
		return nil, err
	}

	svc.cacheSet(ctx, cacheKey, games)
	return games, nil
}

func (svc *ApiService) LogActivityProgress(ctx context.Context, userID, activityID string, timeSpent int, isCompleted bool) error {
	body := map[string]interface{}{
		"timeSpent":   timeSpent,
		"isCompleted": isCompleted,
	}
	path := fmt.Sprintf("/users/%s/activities/%s", userID, activityID)
	return svc.send(ctx, http.MethodPut, "/users/:userId/activities/:activityId", path, body, nil)
}

func (svc *ApiService) getJSON(ctx context.Context, endpoint, path string, dest interface{}) error {
	return svc.send(ctx, http.MethodGet, endpoint, path, nil, dest)
}

// send issues one upstream request. Metrics are labeled with the route
// template, never the expanded path, to keep label cardinality bounded.
func (svc *ApiService) send(ctx context.Context, method, endpoint, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, svc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := svc.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("Upstream request failed")
		upstreamRequestsTotal.WithLabelValues(endpoint, method, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(endpoint, method, fmt.Sprint(resp.StatusCode)).Inc()
	upstreamRequestDurationSeconds.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, shared.ErrRouteNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).WithField("path", path).Error("Upstream returned non-2xx status")
		return fmt.Errorf("upstream %s %s: status %d", method, path, resp.StatusCode)
	}

	if dest == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, dest); err != nil {
		log.WithError(err).WithField("path", path).Error("Failed to decode upstream response")
		return err
	}

	return nil
}

func (svc *ApiService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if svc.redisSvc == nil {
		return false
	}
	raw, err := svc.redisSvc.Get(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	if err := sonic.Unmarshal([]byte(raw), dest); err != nil {
		return false
	}
	log.WithField("key", key).Debug("Upstream cache hit")
	return true
}

func (svc *ApiService) cacheSet(ctx context.Context, key string, value interface{}) {
	if svc.redisSvc == nil {
		return
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		return
	}
	if err := svc.redisSvc.Set(ctx, key, raw, svc.cacheExpiry); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to cache upstream response")
	}
}
