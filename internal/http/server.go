// Package http exposes the session lifecycle as a JSON API.
package http

import (
	"container/list"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gagebu/internal/core"
	applog "gagebu/internal/log"
	"gagebu/internal/session"
)

// LRU cache with TTL and size-based eviction.
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries.
func (c *lruCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

type Server struct {
	http.Server
	sessions *session.Manager

	summaryCache *lruCache[core.Summary]

	// Per-session revision counters. Bumped on every mutation so cached
	// summaries from before the change can never be served.
	revMu sync.Mutex
	revs  map[string]int

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, sessions *session.Manager, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		sessions:         sessions,
		summaryCache:     newLRUCache[core.Summary](200, 5*time.Minute),
		revs:             make(map[string]int),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/sessions", s.withRequestLog(s.handleOpenSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.withRequestLog(s.handleCloseSession))
	mux.HandleFunc("GET /api/sessions/{id}/rows", s.withRequestLog(s.handleListRows))
	mux.HandleFunc("POST /api/sessions/{id}/rows", s.withRequestLog(s.handleQuickAdd))
	mux.HandleFunc("GET /api/sessions/{id}/categories", s.withRequestLog(s.handleCategories))
	mux.HandleFunc("GET /api/sessions/{id}/summary", s.withRequestLog(s.handleSummary))
	mux.HandleFunc("POST /api/sessions/{id}/save", s.withRequestLog(s.handleSave))

	// Every request gets the component logger and a request ID in context;
	// handlers pull them back out with applog.FromContext.
	var handler http.Handler = mux
	handler = applog.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(handler)
	handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(handler)
	s.Server.Handler = handler

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) rev(sessionID string) int {
	s.revMu.Lock()
	defer s.revMu.Unlock()
	return s.revs[sessionID]
}

func (s *Server) bumpRev(sessionID string) {
	s.revMu.Lock()
	defer s.revMu.Unlock()
	s.revs[sessionID]++
}

func (s *Server) dropRev(sessionID string) {
	s.revMu.Lock()
	defer s.revMu.Unlock()
	delete(s.revs, sessionID)
}

// withRequestLog logs every request's outcome and latency.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		applog.FromContext(r.Context()).InfoContext(r.Context(), "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) summaryCacheKey(sessionID string, f session.Filter) string {
	return sessionID + "|" + strconv.Itoa(s.rev(sessionID)) + "|" + filterKey(f)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
