package v1

import (
	"github.com/andreyxaxa/Candidate-Verifier/internal/usecase"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
)

type V1 struct {
	cand   usecase.CandidateUseCase
	logger logger.Interface

	maxFileSize  int64
	maxPhotoSize int64
}
