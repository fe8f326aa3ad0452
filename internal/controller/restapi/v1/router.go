package v1

import (
	"github.com/andreyxaxa/Candidate-Verifier/internal/usecase"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// NewCandidateRoutes registers the admin and candidate endpoints. limiter
// guards the token lookups and may be nil.
func NewCandidateRoutes(
	router fiber.Router,
	cand usecase.CandidateUseCase,
	l logger.Interface,
	maxFileSize, maxPhotoSize int64,
	limiter fiber.Handler,
) {
	r := &V1{cand: cand, logger: l, maxFileSize: maxFileSize, maxPhotoSize: maxPhotoSize}

	guarded := func(h fiber.Handler) []fiber.Handler {
		if limiter == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{limiter, h}
	}

	{
		// Admin
		router.Post("/admin/upload-excel", r.uploadExcel)
		router.Get("/admin/candidates", r.listCandidates)
		router.Get("/admin/candidate/:id", r.getCandidate)
		router.Get("/admin/candidate/:id/photo/:slot", r.getCandidatePhoto)

		// Candidate
		router.Get("/candidate/:token", guarded(r.prefill)...)
		router.Post("/submit/:token", guarded(r.submit)...)
	}
}
