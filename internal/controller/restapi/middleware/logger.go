package middleware

import (
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func Logger(l logger.Interface) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()

		err := ctx.Next()

		l.Info("restapi - %s %s - %d - %s - %s",
			ctx.Method(),
			ctx.Route().Path,
			ctx.Response().StatusCode(),
			time.Since(start),
			ctx.IP(),
		)

		return err
	}
}
