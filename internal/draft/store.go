package draft

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a session identifier has no stored draft
// data at all (expired, cleared or never started).
var ErrNoSession = errors.New("draft session not found")

// stepKeys lists every key a session may hold in the store.
var stepKeys = []string{metaKey, StepKey1, StepKey2, StepKey3, StepKey4}

// Store persists per-step draft slices for an in-progress wizard
// session.  Load returns nil bytes (and nil error) when the slice has
// never been saved.  Save overwrites the whole slice, last write wins;
// merging is the caller's job.  Clear drops every slice of the session.
// The backing store is swappable: Redis in production, memory in tests
// and in degraded mode when Redis is unreachable.
type Store interface {
    Load(ctx context.Context, sessionID, stepKey string) ([]byte, error)
    Save(ctx context.Context, sessionID, stepKey string, slice []byte) error
    Clear(ctx context.Context, sessionID string) error
}

// RedisStore keeps draft slices in Redis under draft:{session}:{step}
// keys.  Every save refreshes the session TTL so an active wizard never
// expires mid-flow, while abandoned drafts disappear on their own.
type RedisStore struct {
    rdb *redis.Client
    ttl time.Duration
}

// NewRedisStore returns a Store backed by the given Redis client.  When
// ttl is zero a 24h default is applied.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
    if ttl <= 0 {
        ttl = 24 * time.Hour
    }
    return &RedisStore{rdb: rdb, ttl: ttl}
}

func draftKey(sessionID, stepKey string) string {
    return fmt.Sprintf("draft:%s:%s", sessionID, stepKey)
}

// Load fetches one slice.  A missing key is not an error: it returns
// nil bytes so callers can distinguish "never saved" from a real fault.
func (s *RedisStore) Load(ctx context.Context, sessionID, stepKey string) ([]byte, error) {
    b, err := s.rdb.Get(ctx, draftKey(sessionID, stepKey)).Bytes()
    if err == redis.Nil {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

// Save overwrites the slice and refreshes the TTL on every key of the
// session so the whole draft expires together.
func (s *RedisStore) Save(ctx context.Context, sessionID, stepKey string, slice []byte) error {
    if err := s.rdb.Set(ctx, draftKey(sessionID, stepKey), slice, s.ttl).Err(); err != nil {
        return err
    }
    for _, k := range stepKeys {
        if k == stepKey {
            continue
        }
        // ignore errors; missing keys simply have nothing to refresh
        _ = s.rdb.Expire(ctx, draftKey(sessionID, k), s.ttl).Err()
    }
    return nil
}

// Clear removes every slice of the session.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
    keys := make([]string, 0, len(stepKeys))
    for _, k := range stepKeys {
        keys = append(keys, draftKey(sessionID, k))
    }
    return s.rdb.Del(ctx, keys...).Err()
}

// MemoryStore is an in-process Store used by tests and as a fallback
// when no Redis client could be constructed at startup.  Slices are
// copied on the way in and out so callers cannot alias stored state.
type MemoryStore struct {
    mu       sync.RWMutex
    sessions map[string]map[string][]byte
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{sessions: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID, stepKey string) ([]byte, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    sess, ok := s.sessions[sessionID]
    if !ok {
        return nil, nil
    }
    b, ok := sess[stepKey]
    if !ok {
        return nil, nil
    }
    return append([]byte(nil), b...), nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID, stepKey string, slice []byte) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    sess, ok := s.sessions[sessionID]
    if !ok {
        sess = make(map[string][]byte)
        s.sessions[sessionID] = sess
    }
    sess[stepKey] = append([]byte(nil), slice...)
    return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.sessions, sessionID)
    return nil
}
