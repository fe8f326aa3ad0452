package middleware

import (
	"net/http"

	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure"
	"github.com/andreyxaxa/Candidate-Verifier/internal/metrics"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// RateLimit caps requests per client IP. When the limiter store is
// unreachable the request is let through.
func RateLimit(limiter infrastructure.RateLimiter, l logger.Interface) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		allowed, err := limiter.Allow(ctx.UserContext(), ctx.IP())
		if err != nil {
			l.Error(err, "restapi - middleware - RateLimit")

			return ctx.Next()
		}

		if !allowed {
			metrics.RateLimited.Inc()

			return ctx.Status(http.StatusTooManyRequests).JSON(response.Error{Error: "too many requests"})
		}

		return ctx.Next()
	}
}
