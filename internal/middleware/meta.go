package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey   = "response_meta"
	requestStartKey   = "request_start"
	cacheHitKey       = "cache_hit"
	processingTimeKey = "processing_time_ms"
)

// WithResponseMeta marks the request start and prepares the meta map that
// handlers return in the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, ok := c.Get(responseMetaKey); ok {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

// ResponseMeta finalises the meta map right before a handler responds:
// cache_hit plus the time spent since WithResponseMeta ran. Without the
// middleware the elapsed time is measured from fallback.
func ResponseMeta(c *gin.Context, cacheHit bool, fallback time.Time) map[string]interface{} {
	meta := ensureMeta(c)
	meta[cacheHitKey] = cacheHit
	start := fallback
	if v, ok := c.Get(requestStartKey); ok {
		if t, ok := v.(time.Time); ok {
			start = t
		}
	}
	meta[processingTimeKey] = time.Since(start).Milliseconds()
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := map[string]interface{}{}
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
