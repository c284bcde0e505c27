package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/openday-seat-reservation/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

var testCache = config.CacheConfig{
	Enabled:      true,
	Methods:      map[string]bool{http.MethodGet: true},
	TTL:          time.Minute,
	KeyStrategy:  "path_query",
	Prefix:       "cache",
	MaxBodyBytes: 1 << 20,
}

// seatAPI serves a one-seat "event" whose status flips on reserve; reads
// counts how often the handler (not the cache) answered.
type seatAPI struct {
	reserved atomic.Bool
	reads    atomic.Int32
}

func (s *seatAPI) echo(rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.Use(RequestID())
	g := e.Group("/api", NewRedisCache(testCache, rdb), InvalidateOnWrite(testCache, rdb))
	g.GET("/seats/:eventId", func(c echo.Context) error {
		s.reads.Add(1)
		status := "available"
		if s.reserved.Load() {
			status = "reserved"
		}
		return c.JSON(http.StatusOK, []echo.Map{{"id": 1, "event_id": c.Param("eventId"), "status": status}})
	})
	g.POST("/reserve", func(c echo.Context) error {
		if !s.reserved.CompareAndSwap(false, true) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	})
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRedisCache_MissThenHit(t *testing.T) {
	_, rdb := newRedis(t)
	api := &seatAPI{}
	e := api.echo(rdb)

	first := serve(e, http.MethodGet, "/api/seats/1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(e, http.MethodGet, "/api/seats/1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.EqualValues(t, 1, api.reads.Load())

	ids := second.Header().Values(echo.HeaderXRequestID)
	require.Len(t, ids, 1, "a replayed response carries only its own request id")
	assert.NotEqual(t, first.Header().Get(echo.HeaderXRequestID), ids[0])

	other := serve(e, http.MethodGet, "/api/seats/2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Contains(t, other.Body.String(), `"event_id":"2"`)
}

func TestInvalidateOnWrite_FlushesAfterSuccessfulWrite(t *testing.T) {
	mr, rdb := newRedis(t)
	api := &seatAPI{}
	e := api.echo(rdb)

	serve(e, http.MethodGet, "/api/seats/1")
	serve(e, http.MethodGet, "/api/seats/2")
	require.Len(t, mr.Keys(), 2)

	require.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/reserve").Code)
	assert.Empty(t, mr.Keys())

	after := serve(e, http.MethodGet, "/api/seats/1")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Contains(t, after.Body.String(), `"status":"reserved"`)
}

func TestInvalidateOnWrite_KeepsCacheOnFailedWrite(t *testing.T) {
	mr, rdb := newRedis(t)
	api := &seatAPI{}
	api.reserved.Store(true)
	e := api.echo(rdb)

	serve(e, http.MethodGet, "/api/seats/1")
	require.Equal(t, http.StatusConflict, serve(e, http.MethodPost, "/api/reserve").Code)
	assert.Len(t, mr.Keys(), 1)
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/api/seats/1").Header().Get("X-Cache"))
}

func limitedEcho(rdb *redis.Client, burst int) *echo.Echo {
	cfg := config.RateLimitConfig{Enabled: true, Burst: burst, RefillEvery: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.POST("/api/reserve", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, NewTokenBucket(cfg, rdb, PerClient))
	e.POST("/api/cancel-verify", func(c echo.Context) error {
		var in struct {
			Phone string `json:"phone"`
		}
		if err := c.Bind(&in); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"phone": in.Phone})
	}, NewTokenBucket(cfg, rdb, PerClientAndPhone))
	return e
}

func post(e *echo.Echo, target, ip, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_BlocksWhenEmpty(t *testing.T) {
	_, rdb := newRedis(t)
	e := limitedEcho(rdb, 2)

	first := post(e, "/api/reserve", "10.0.0.1", `{}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, http.StatusOK, post(e, "/api/reserve", "10.0.0.1", `{}`).Code)

	blocked := post(e, "/api/reserve", "10.0.0.1", `{}`)
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	retry, err := strconv.Atoi(blocked.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 3600, retry, 5)
	assert.Contains(t, blocked.Body.String(), "rate limit exceeded")

	assert.Equal(t, http.StatusOK, post(e, "/api/reserve", "10.0.0.2", `{}`).Code, "other clients have their own bucket")
}

func TestTokenBucket_PhoneBucketSpansClients(t *testing.T) {
	_, rdb := newRedis(t)
	e := limitedEcho(rdb, 2)
	guess := `{"name":"Ada","surname":"Lovelace","phone":"555-0101"}`

	ok := post(e, "/api/cancel-verify", "10.0.0.1", guess)
	require.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"phone":"555-0101"}`, ok.Body.String(), "handler still sees the body")
	require.Equal(t, http.StatusOK, post(e, "/api/cancel-verify", "10.0.0.2", guess).Code)

	assert.Equal(t, http.StatusTooManyRequests, post(e, "/api/cancel-verify", "10.0.0.3", guess).Code)
	assert.Equal(t, http.StatusOK, post(e, "/api/cancel-verify", "10.0.0.3", `{"phone":"555-0202"}`).Code,
		"another phone from the same client is not throttled")
}

func TestTokenBucket_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr, rdb := newRedis(t)
	e := limitedEcho(rdb, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(e, "/api/reserve", "10.0.0.1", `{}`).Code)
	}
}
