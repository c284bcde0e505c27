package middleware

import (
    "bytes"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "strings"
    "time"
    "unicode"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/openday-seat-reservation/internal/config"
    "github.com/iliyamo/openday-seat-reservation/internal/logging"
    "github.com/iliyamo/openday-seat-reservation/internal/metrics"
)

// takeTokens refills every bucket in KEYS and takes one token from each,
// but only when all of them have one to give.  Returns {1, lowest tokens
// left} or {0, ms until the emptiest bucket refills}.
//
// ARGV: now_ms, burst, refill_ms, ttl_ms
var takeTokens = redis.NewScript(`
local now = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = {}
local wait = 0
for i, key in ipairs(KEYS) do
  local b = redis.call('HMGET', key, 'tokens', 'ts')
  local tokens = tonumber(b[1]) or burst
  local ts = tonumber(b[2]) or now
  local gained = math.floor((now - ts) / refill)
  if gained > 0 then
    tokens = math.min(burst, tokens + gained)
    ts = ts + gained * refill
  end
  if tokens >= burst then
    ts = now
  end
  state[i] = {tokens, ts}
  if tokens < 1 then
    local w = refill - (now - ts)
    if w > wait then wait = w end
  end
end

if wait > 0 then
  return {0, wait}
end

local left = burst
for i, key in ipairs(KEYS) do
  local tokens = state[i][1] - 1
  redis.call('HSET', key, 'tokens', tokens, 'ts', state[i][2])
  redis.call('PEXPIRE', key, ttl)
  if tokens < left then left = tokens end
end
return {1, left}
`)

// BucketFunc names the buckets a request draws from.  A request is let
// through only if every bucket has a token left.
type BucketFunc func(c echo.Context) []string

// PerClient gives each client IP its own bucket per route.
func PerClient(c echo.Context) []string {
    return []string{clientBucket(c)}
}

// PerClientAndPhone adds a second bucket keyed by the phone number in the
// JSON body, so guessing contact details for one phone is throttled even
// when the guesses come from many addresses.  The body is restored for
// the handler.
func PerClientAndPhone(c echo.Context) []string {
    buckets := []string{clientBucket(c)}
    if phone := phoneFromBody(c.Request()); phone != "" {
        sum := sha1.Sum([]byte(phone))
        buckets = append(buckets, fmt.Sprintf("phone:%x", sum[:8]))
    }
    return buckets
}

func clientBucket(c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    return "client:" + ip + ":" + c.Request().Method + " " + c.Path()
}

// phoneFromBody returns the digits of the "phone" field, or "" when the
// body is not JSON or has no phone.
func phoneFromBody(r *http.Request) string {
    if r.Body == nil {
        return ""
    }
    raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
    _ = r.Body.Close()
    r.Body = io.NopCloser(bytes.NewReader(raw))
    if err != nil {
        return ""
    }
    var body struct {
        Phone string `json:"phone"`
    }
    if json.Unmarshal(raw, &body) != nil {
        return ""
    }
    return strings.Map(func(r rune) rune {
        if unicode.IsDigit(r) {
            return r
        }
        return -1
    }, body.Phone)
}

// NewTokenBucket rate limits the wrapped route with Redis token buckets.
// Blocked requests get 429 with Retry-After; Redis errors let the
// request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, buckets BucketFunc) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    refillMs := cfg.RefillEvery.Milliseconds()
    ttlMs := cfg.BucketTTL().Milliseconds()

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            names := buckets(c)
            keys := make([]string, len(names))
            for i, n := range names {
                keys[i] = cfg.Prefix + ":" + n
            }

            res, err := takeTokens.Run(c.Request().Context(), rdb, keys,
                time.Now().UnixMilli(), cfg.Burst, refillMs, ttlMs).Int64Slice()
            if err != nil || len(res) != 2 {
                logging.Warn().Err(err).Strs("buckets", keys).Msg("rate limit check failed; allowing request")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
            if res[0] == 1 {
                h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
                return next(c)
            }

            retry := (time.Duration(res[1])*time.Millisecond + time.Second - 1) / time.Second
            h.Set("X-RateLimit-Remaining", "0")
            h.Set("Retry-After", strconv.FormatInt(int64(retry), 10))
            metrics.APIRateLimitHits.WithLabelValues(c.Path()).Inc()
            logging.Debug().Strs("buckets", keys).Int64("retry_ms", res[1]).Msg("rate limited")
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "rate limit exceeded",
                "retry_after": int64(retry),
            })
        }
    }
}
