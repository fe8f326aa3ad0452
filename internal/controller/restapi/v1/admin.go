package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure/sheet"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// @Summary  	Import candidates
// @Description Parses an .xlsx or .csv file and creates one pending candidate with a unique link per row
// @Tags 		admin
// @Accept 		mpfd
// @Produce 	json
// @Param 		excelFile formData file true "Spreadsheet (.xlsx, .csv)"
// @Success 	200 {object} response.Upload
// @Failure 	400 {object} response.Error "No file, empty file, bad format or missing column"
// @Failure 	413 {object} response.Error "File too large"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/admin/upload-excel [post]
func (r *V1) uploadExcel(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("excelFile")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "file is required")
	}

	// 1. валидация размера
	if file.Size == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "file is empty")
	}

	if file.Size > r.maxFileSize {
		return errorResponse(ctx, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file size cant be more than %d bytes", r.maxFileSize))
	}

	// 2. валидация расширения
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(sheet.Extensions, ext) {
		return errorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("unsupported file format. Allowed: %s", strings.Join(sheet.Extensions, ", ")))
	}

	// 3. читаем файл
	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadExcel")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with opening the file")
	}
	defer fileReader.Close()

	data, err := io.ReadAll(fileReader)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadExcel")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with reading the file")
	}

	// 4. импорт
	candidates, err := r.cand.Import(ctx.UserContext(), file.Filename, data)
	if err != nil {
		var schemaErr *errs.SchemaMismatchError

		switch {
		case errors.As(err, &schemaErr):
			return errorResponse(ctx, http.StatusBadRequest, fmt.Sprintf("missing required column: %s", schemaErr.Column))
		case errors.Is(err, errs.ErrEmptyInput):
			return errorResponse(ctx, http.StatusBadRequest, "file contains no candidate rows")
		case errors.Is(err, errs.ErrUnsupportedFormat):
			return errorResponse(ctx, http.StatusBadRequest, "file could not be parsed")
		}
		r.logger.Error(err, "restapi - v1 - uploadExcel")

		return errorResponse(ctx, http.StatusInternalServerError, "failed to import candidates")
	}

	return ctx.Status(http.StatusOK).JSON(response.Upload{
		Message:    "Upload successful",
		Candidates: candidates,
	})
}

// @Summary 	List candidates
// @Description Most recently submitted first, never submitted candidates follow in import order
// @Tags 		admin
// @Produce 	json
// @Success 	200 {object} response.CandidateList
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/admin/candidates [get]
func (r *V1) listCandidates(ctx *fiber.Ctx) error {
	candidates, err := r.cand.List(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listCandidates")

		return errorResponse(ctx, http.StatusInternalServerError, "failed to load candidates")
	}

	resp := response.CandidateList{Candidates: make([]response.CandidateSummary, 0, len(candidates))}
	for _, c := range candidates {
		resp.Candidates = append(resp.Candidates, response.NewCandidateSummary(c))
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}

// @Summary 	Get candidate
// @Description Full record with photo descriptors
// @Tags 		admin
// @Produce 	json
// @Param 		id path string true "Candidate ID(uuid)"
// @Success 	200 {object} response.CandidateDetail
// @Failure 	404 {object} response.Error "Candidate not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/admin/candidate/{id} [get]
func (r *V1) getCandidate(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusNotFound, "candidate not found")
	}

	c, err := r.cand.GetByID(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "candidate not found")
		}
		r.logger.Error(err, "restapi - v1 - getCandidate")

		return errorResponse(ctx, http.StatusInternalServerError, "failed to load candidate")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewCandidateDetail(c))
}

// @Summary 	Download candidate photo
// @Description Streams the original photo or, with variant=thumbnail, its stamped preview
// @Tags 		admin
// @Produce 	image/jpeg,image/png,image/webp
// @Param 		id 		path  string true  "Candidate ID(uuid)"
// @Param 		slot 	path  int 	 true  "Photo slot(1-6)"
// @Param 		variant query string false "Variant" Enums(original, thumbnail)
// @Success 	200 {file} 	binary
// @Failure 	400 {object} response.Error "Invalid slot or variant"
// @Failure 	404 {object} response.Error "Photo not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/admin/candidate/{id}/photo/{slot} [get]
func (r *V1) getCandidatePhoto(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusNotFound, "photo not found")
	}

	slot, err := strconv.Atoi(ctx.Params("slot"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid slot")
	}

	var thumbnail bool
	switch ctx.Query("variant") {
	case "", "original":
	case "thumbnail":
		thumbnail = true
	default:
		return errorResponse(ctx, http.StatusBadRequest, "invalid variant. Allowed: original, thumbnail")
	}

	photo, err := r.cand.DownloadPhoto(ctx.UserContext(), id, slot, thumbnail)
	if err != nil {
		var vErr *errs.ValidationError

		switch {
		case errors.As(err, &vErr):
			return errorResponse(ctx, http.StatusBadRequest, fmt.Sprintf("invalid %s", vErr.Field))
		case errors.Is(err, errs.ErrRecordNotFound):
			return errorResponse(ctx, http.StatusNotFound, "photo not found")
		}
		r.logger.Error(err, "restapi - v1 - getCandidatePhoto")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	ctx.Set(fiber.HeaderContentType, photo.ContentType)

	return ctx.SendStream(photo.Body)
}
