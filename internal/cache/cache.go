package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/log"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	DeletePrefix(prefix string) int
	Size() int
}

var _ Cache[int] = (*LRUCache[int])(nil)

// Loading fills a cache on miss. Concurrent misses of the same key share a
// single load. A load that overlaps an Invalidate of its key is returned to
// its callers but never stored.
type Loading[T any] struct {
	cache Cache[T]
	group singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

func NewLoading[T any](c Cache[T]) *Loading[T] {
	return &Loading[T]{cache: c, gens: make(map[string]uint64)}
}

// generation sums the invalidation counters of every prefix of key.
// Callers hold l.mu.
func (l *Loading[T]) generation(key string) uint64 {
	var gen uint64
	for prefix, n := range l.gens {
		if strings.HasPrefix(key, prefix) {
			gen += n
		}
	}
	return gen
}

// Get returns the cached value for key or stores the result of load. Failed
// loads are not cached.
func (l *Loading[T]) Get(key string, load func() (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	l.mu.Lock()
	gen := l.generation(key)
	l.mu.Unlock()

	// Loads started after an invalidation must not join one started before it.
	flight := key + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := l.group.Do(flight, func() (any, error) {
		v, err := load()
		if err != nil {
			return v, err
		}
		l.mu.Lock()
		if l.generation(key) == gen {
			l.cache.Set(key, v)
		}
		l.mu.Unlock()
		return v, nil
	})
	return v.(T), err
}

// Invalidate drops every entry whose key starts with prefix and discards the
// results of loads already running for those keys.
func (l *Loading[T]) Invalidate(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gens[prefix]++
	l.cache.DeletePrefix(prefix)
}

type Cleaner interface {
	CleanExpired() int
}

// Manager periodically purges expired entries from registered caches.
type Manager struct {
	caches      []Cleaner
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, c := range m.caches {
				cleaned += c.CleanExpired()
			}
			if cleaned > 0 {
				m.logger.Debug("Expired cache entries removed", log.FieldCount, cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup loop. It must follow StartCleanup.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
