package restapi

import (
	"net/http"
	"strings"

	"github.com/andreyxaxa/Candidate-Verifier/config"
	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi/middleware"
	v1 "github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure"
	"github.com/andreyxaxa/Candidate-Verifier/internal/usecase"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title Candidate verifier
// @version 1.0.0
// @host localhost:8080
// @BasePath /
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	cand usecase.CandidateUseCase,
	limiter infrastructure.RateLimiter,
	l logger.Interface,
) {
	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.HTTP.AllowOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(middleware.Logger(l))

	// K8s probe
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{"status": "OK"})
	})

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	var rateLimit fiber.Handler
	if limiter != nil {
		rateLimit = middleware.RateLimit(limiter, l)
	}

	v1.NewCandidateRoutes(app, cand, l, cfg.Import.MaxFileSize, cfg.Submit.MaxPhotoSize, rateLimit)
}
