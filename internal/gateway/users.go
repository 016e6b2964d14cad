package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nslott/masterserver/internal/model"
)

const (
	// DefaultUserCacheSize bounds the user snapshot LRU.
	DefaultUserCacheSize = 100
	// DefaultUserCacheTTL is how long a snapshot stays fresh.
	DefaultUserCacheTTL = 15 * time.Second
)

// UserService is the HTTP client for the out-of-process user service
// (accounts and authentication). User reads go through a short-TTL LRU.
type UserService struct {
	svc   *service
	cache *expirable.LRU[uint32, *model.User]
}

// UserServiceOption is a functional option for UserService configuration.
type UserServiceOption func(*userServiceConfig)

type userServiceConfig struct {
	timeout      time.Duration
	pingInterval time.Duration
	cacheSize    int
	cacheTTL     time.Duration
}

// WithUserCache overrides the cache bounds (useful for TTL tests).
func WithUserCache(size int, ttl time.Duration) UserServiceOption {
	return func(c *userServiceConfig) {
		c.cacheSize = size
		c.cacheTTL = ttl
	}
}

// WithUserTimeouts overrides request timeout and ping cadence.
func WithUserTimeouts(timeout, pingInterval time.Duration) UserServiceOption {
	return func(c *userServiceConfig) {
		c.timeout = timeout
		c.pingInterval = pingInterval
	}
}

// NewUserService creates a client against baseURL (scheme://host:port).
func NewUserService(baseURL string, opts ...UserServiceOption) *UserService {
	cfg := userServiceConfig{
		timeout:      DefaultRequestTimeout,
		pingInterval: DefaultPingInterval,
		cacheSize:    DefaultUserCacheSize,
		cacheTTL:     DefaultUserCacheTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &UserService{
		svc:   newService("userservice", baseURL, cfg.timeout, cfg.pingInterval),
		cache: expirable.NewLRU[uint32, *model.User](cfg.cacheSize, nil, cfg.cacheTTL),
	}
}

// Run drives the liveness pinger until ctx is cancelled.
func (u *UserService) Run(ctx context.Context) {
	u.svc.pinger.Run(ctx)
}

// Alive reports the last known liveness of the user service.
func (u *UserService) Alive() bool {
	return u.svc.pinger.Alive()
}

// ValidateCredentials checks a username/password pair.
// Returns the userId on success, 0 for bad credentials (nil error), and
// 0 with a non-nil error when the service itself failed.
func (u *UserService) ValidateCredentials(ctx context.Context, username, password string) (uint32, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var reply struct {
		UserID uint32 `json:"userId"`
	}
	found, err := u.svc.sendJSON(ctx, http.MethodPost, "/users/check", body, &reply)
	if err != nil {
		return 0, fmt.Errorf("validating credentials: %w", err)
	}
	if !found {
		return 0, nil
	}
	return reply.UserID, nil
}

// GetUser returns a user snapshot by id, serving from the LRU while fresh.
func (u *UserService) GetUser(ctx context.Context, userID uint32) (*model.User, bool, error) {
	if cached, ok := u.cache.Get(userID); ok {
		return cached, true, nil
	}

	var user model.User
	found, err := u.svc.getJSON(ctx, fmt.Sprintf("/users/%d", userID), &user)
	if err != nil || !found {
		return nil, false, err
	}

	u.cache.Add(userID, &user)
	return &user, true, nil
}

// GetUserByName returns a user snapshot by account name. The result is
// cached under its userId so subsequent id reads hit the LRU.
func (u *UserService) GetUserByName(ctx context.Context, name string) (*model.User, bool, error) {
	var user model.User
	found, err := u.svc.getJSON(ctx, "/users/byname/"+name, &user)
	if err != nil || !found {
		return nil, false, err
	}

	u.cache.Add(user.UserID, &user)
	return &user, true, nil
}

// InvalidateUser drops a cached snapshot after a write touching that user.
func (u *UserService) InvalidateUser(userID uint32) {
	u.cache.Remove(userID)
}
