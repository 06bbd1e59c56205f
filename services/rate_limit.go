package services

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/fluentpath/roadmap_client/shared"
)

// RateLimitService throttles the event endpoints. Counters live in redis
// as fixed windows keyed by learner (or IP for anonymous visitors), so
// limits hold across restarts and replicas.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"day_select": {
			EndpointType: "day_select",
			MaxRequests:  60,
			WindowSize:   time.Minute,
			Description:  "Day selection rate limit",
			IsActive:     true,
		},
		"advance": {
			EndpointType: "advance",
			MaxRequests:  120,
			WindowSize:   time.Minute,
			Description:  "Session advance rate limit",
			IsActive:     true,
		},
		"switch": {
			EndpointType: "switch",
			MaxRequests:  10,
			WindowSize:   time.Minute,
			Description:  "Roadmap switch rate limit",
			IsActive:     true,
		},
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

// IsAllowed counts the request against its fixed window and reports the
// remaining budget.
func (svc *RateLimitService) IsAllowed(c *fiber.Ctx, identifier, endpointType string) (bool, int, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive {
		return true, -1, nil
	}

	window := time.Now().Unix() / int64(config.WindowSize.Seconds())
	key := fmt.Sprintf("ratelimit:%s:%s:%d", endpointType, identifier, window)

	count, err := svc.redisSvc.Increment(c.UserContext(), key)
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(c.UserContext(), key, config.WindowSize); err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to set rate limit expiry")
		}
	}

	remaining := config.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return int(count) <= config.MaxRequests, remaining, nil
}

// RateLimit creates a per-learner rate limiting middleware.
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := svc.getIdentifier(c)

		allowed, remaining, err := svc.IsAllowed(c, identifier, endpointType)
		if err != nil {
			log.WithError(err).WithField("endpoint_type", endpointType).Warn("Rate limit check failed")
			// Never block learners on limiter outages.
			return c.Next()
		}

		if remaining >= 0 {
			c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		if !allowed {
			return shared.ResponseJSON(c, http.StatusTooManyRequests, "Too many requests. Please slow down.", nil)
		}

		return c.Next()
	}
}

// IPRateLimit applies the general per-IP limit.
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, remaining, err := svc.IsAllowed(c, getClientIP(c), "api_general")
		if err != nil {
			return c.Next()
		}

		if remaining >= 0 {
			c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		if !allowed {
			return shared.ResponseJSON(c, http.StatusTooManyRequests, "Too many requests. Please slow down.", nil)
		}

		return c.Next()
	}
}

func (svc *RateLimitService) getIdentifier(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return userID
	}
	return getClientIP(c)
}

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
