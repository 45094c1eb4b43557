package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned by Store.Lock while another request holds the
// submission lock of the same wizard.
var ErrLocked = errors.New("wizard: locked by another request")

// Store persists wizards between requests.
type Store interface {
	Save(ctx context.Context, w *Wizard, ttl time.Duration) error
	// Load returns ErrNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (*Wizard, error)
	Delete(ctx context.Context, id string) error
	// Lock takes the submission lock for id.  The returned func releases it.
	Lock(ctx context.Context, id string, ttl time.Duration) (func(), error)
}

// RedisStore keeps wizards as JSON values under "wizard:{id}".
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "wizard"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(id string) string     { return s.prefix + ":" + id }
func (s *RedisStore) lockKey(id string) string { return s.prefix + ":" + id + ":submit" }

func (s *RedisStore) Save(ctx context.Context, w *Wizard, ttl time.Duration) error {
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wizard: %w", err)
	}
	return s.rdb.Set(ctx, s.key(w.ID), b, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Wizard, error) {
	b, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var w Wizard
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("decode wizard %s: %w", id, err)
	}
	return &w, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id), s.lockKey(id)).Err()
}

// Lock uses SET NX with a TTL so a crashed holder cannot block the wizard
// forever.  Release only deletes the key if it still holds our token.
func (s *RedisStore) Lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, s.lockKey(id), token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, s.rdb, []string{s.lockKey(id)}, token).Err()
	}, nil
}

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// MemoryStore is the single-process fallback used when Redis is absent.
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]memItem
	locks   map[string]time.Time
	nowFunc func() time.Time
}

type memItem struct {
	data    []byte
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:   map[string]memItem{},
		locks:   map[string]time.Time{},
		nowFunc: time.Now,
	}
}

// Save stores a JSON copy so callers cannot mutate stored state in place.
func (s *MemoryStore) Save(_ context.Context, w *Wizard, ttl time.Duration) error {
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wizard: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[w.ID] = memItem{data: b, expires: s.nowFunc().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Wizard, error) {
	s.mu.Lock()
	it, ok := s.items[id]
	if ok && s.nowFunc().After(it.expires) {
		delete(s.items, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var w Wizard
	if err := json.Unmarshal(it.data, &w); err != nil {
		return nil, fmt.Errorf("decode wizard %s: %w", id, err)
	}
	return &w, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	delete(s.locks, id)
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, id string, ttl time.Duration) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	if until, held := s.locks[id]; held && now.Before(until) {
		return nil, ErrLocked
	}
	until := now.Add(ttl)
	s.locks[id] = until
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.locks[id].Equal(until) {
			delete(s.locks, id)
		}
	}, nil
}
