package mw

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache keeps successful GET responses in memory, keyed by request URI.
// Entries under a resource prefix are dropped whenever that resource is modified.
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration

	// mu orders stores against purges; generations counts purges per prefix.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store:       cache.New(ttl, 2*ttl),
		ttl:         ttl,
		generations: make(map[string]uint64),
	}
}

// generation sums the purge counters of every prefix covering key. Callers hold mu.
func (rc *ResponseCache) generation(key string) uint64 {
	var gen uint64
	for prefix, n := range rc.generations {
		if strings.HasPrefix(key, prefix) {
			gen += n
		}
	}
	return gen
}

func (rc *ResponseCache) startGeneration(key string) uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generation(key)
}

// storeIfCurrent caches resp unless a purge covering key happened since gen was taken.
func (rc *ResponseCache) storeIfCurrent(key string, gen uint64, resp cachedResponse) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.generation(key) != gen {
		return
	}
	rc.store.Set(key, resp, rc.ttl)
}

// Handler serves GET requests from the cache and records successful misses.
func (rc *ResponseCache) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if resp, found := rc.store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		gen := rc.startGeneration(key)
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			rc.storeIfCurrent(key, gen, cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			})
		}
	}
}

// Invalidate drops every cached entry under prefix after a successful mutation.
func (rc *ResponseCache) Invalidate(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Writer.Status() >= 300 {
			return
		}
		rc.Purge(prefix)
	}
}

// Purge removes every entry whose key starts with prefix. Responses already being
// rendered for such keys are not stored afterwards.
func (rc *ResponseCache) Purge(prefix string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.generations[prefix]++
	for key := range rc.store.Items() {
		if strings.HasPrefix(key, prefix) {
			rc.store.Delete(key)
		}
	}
}
