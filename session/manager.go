package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/room4-2/jurgo-ivr/config"
	"github.com/room4-2/jurgo-ivr/metrics"
)

const redisKeyPrefix = "order_state:"

type entry struct {
	state     State
	expiresAt time.Time
}

// Manager tracks the order intent of each live conversation. Entries are
// bounded by an LRU and expire after the configured TTL; Redis, when
// reachable, mirrors them so a restart does not lose every caller's place.
type Manager struct {
	cache *lru.Cache
	ttl   time.Duration
	redis *redis.Client
	log   zerolog.Logger
	now   func() time.Time
}

// NewManager creates a tracker with an optional Redis mirror
func NewManager(cfg *config.Config, log zerolog.Logger) (*Manager, error) {
	cache, err := lru.New(cfg.StateCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create state cache: %w", err)
	}

	m := &Manager{
		cache: cache,
		ttl:   cfg.StateTTL,
		log:   log.With().Str("component", "session").Logger(),
		now:   time.Now,
	}

	if cfg.RedisURL == "" {
		return m, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		m.log.Warn().Err(err).Msg("invalid REDIS_URL, order state is process-local")
		return m, nil
	}
	redisClient := redis.NewClient(opts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Redis unavailable, continue without it
		m.log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable, order state is process-local")
		_ = redisClient.Close()
		return m, nil
	}

	m.redis = redisClient
	return m, nil
}

// redisOptions accepts a redis:// URL or a bare host:port.
func redisOptions(cfg *config.Config) (*redis.Options, error) {
	if !strings.Contains(cfg.RedisURL, "://") {
		return &redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if opts.Password == "" {
		opts.Password = cfg.RedisPassword
	}
	return opts, nil
}

// Get returns the state of a conversation, if known and not expired
func (m *Manager) Get(ctx context.Context, conversationID string) (State, bool) {
	if v, ok := m.cache.Get(conversationID); ok {
		e := v.(entry)
		if m.now().Before(e.expiresAt) {
			return e.state, true
		}
		m.cache.Remove(conversationID)
		metrics.TrackedConversations.Set(float64(m.cache.Len()))
	}

	if m.redis == nil {
		return nil, false
	}

	key := redisKeyPrefix + conversationID
	raw, err := m.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("redis read failed")
		}
		return nil, false
	}

	state, err := parseState(raw)
	if err != nil {
		m.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("ignoring unreadable mirrored state")
		return nil, false
	}

	// Keep the local copy no longer than the mirrored key lives
	ttl := m.ttl
	if remaining, err := m.redis.TTL(ctx, key).Result(); err == nil && remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	m.storeFor(conversationID, state, ttl)
	return state, true
}

// Set records the state of a conversation
func (m *Manager) Set(ctx context.Context, conversationID string, state State) {
	m.store(conversationID, state)

	if m.redis != nil {
		if err := m.redis.Set(ctx, redisKeyPrefix+conversationID, state.String(), m.ttl).Err(); err != nil {
			m.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("redis write failed")
		}
	}
}

func (m *Manager) store(conversationID string, state State) {
	m.storeFor(conversationID, state, m.ttl)
}

func (m *Manager) storeFor(conversationID string, state State, ttl time.Duration) {
	m.cache.Add(conversationID, entry{state: state, expiresAt: m.now().Add(ttl)})
	metrics.TrackedConversations.Set(float64(m.cache.Len()))
}

// Count returns the number of conversations held locally
func (m *Manager) Count() int {
	return m.cache.Len()
}

// CleanupExpired drops local entries whose TTL has passed
func (m *Manager) CleanupExpired() int {
	now := m.now()
	removed := 0
	for _, key := range m.cache.Keys() {
		v, ok := m.cache.Peek(key)
		if !ok {
			continue
		}
		if now.After(v.(entry).expiresAt) {
			m.cache.Remove(key)
			removed++
		}
	}
	metrics.TrackedConversations.Set(float64(m.cache.Len()))
	return removed
}

// StartCleanupRoutine starts periodic cleanup of expired entries
func (m *Manager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanupExpired(); n > 0 {
				m.log.Debug().Int("removed", n).Msg("expired order states removed")
			}
		}
	}
}

// Shutdown releases the Redis connection
func (m *Manager) Shutdown() {
	m.cache.Purge()
	if m.redis != nil {
		_ = m.redis.Close()
	}
}
