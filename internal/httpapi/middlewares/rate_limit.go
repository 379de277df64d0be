package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"bookstagram/internal/ratelimit"

	"github.com/labstack/echo/v4"
)

func NewRateLimitMiddleware() echo.MiddlewareFunc {
	return newRateLimitMiddlewareWithConfig(ratelimit.Config{
		Window: time.Minute,
		Read:   240,
		Write:  30,
	})
}

func newRateLimitMiddlewareWithConfig(cfg ratelimit.Config) echo.MiddlewareFunc {
	limiter := ratelimit.New(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope := requestScope(c.Request().Method)
			bucket := c.RealIP()

			result := limiter.Take(time.Now().UTC(), scope, bucket)
			setRateLimitHeaders(c.Response().Header(), result)

			if !result.Allowed {
				c.Response().Header().Set("Retry-After", strconv.FormatInt(result.ResetIn, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"error": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}

func requestScope(method string) ratelimit.Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ratelimit.ScopeRead
	default:
		return ratelimit.ScopeWrite
	}
}

func setRateLimitHeaders(h http.Header, r ratelimit.Result) {
	if r.Limit <= 0 {
		return
	}
	h.Set("RateLimit-Limit", strconv.Itoa(r.Limit))
	h.Set("RateLimit-Remaining", strconv.Itoa(r.Remaining))
	h.Set("RateLimit-Reset", strconv.FormatInt(r.ResetIn, 10))
}
