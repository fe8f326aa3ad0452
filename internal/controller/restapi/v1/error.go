package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

func errorResponse(ctx *fiber.Ctx, code int, msg string) error {
	return ctx.Status(code).JSON(response.Error{Error: msg})
}

// candidateErrorResponse maps use case errors for the public endpoints.
// Messages stay generic: nothing about storage or other candidates leaks.
func (r *V1) candidateErrorResponse(ctx *fiber.Ctx, err error, op string) error {
	var vErr *errs.ValidationError

	switch {
	case errors.Is(err, errs.ErrRecordNotFound):
		return errorResponse(ctx, http.StatusNotFound, "candidate not found")
	case errors.Is(err, errs.ErrAlreadySubmitted):
		return errorResponse(ctx, http.StatusForbidden, "form already submitted")
	case errors.As(err, &vErr):
		return errorResponse(ctx, http.StatusBadRequest, fmt.Sprintf("invalid field: %s", vErr.Field))
	}

	r.logger.Error(err, "restapi - v1 - "+op)

	return errorResponse(ctx, http.StatusInternalServerError, "internal server error")
}
