package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Candidate-Verifier/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

// marks a photo slot sent as a file part so the schema sees it as present
const filePartPlaceholder = "file"

// @Summary 	Prefill verification form
// @Description Returns the imported details of a pending candidate
// @Tags 		candidate
// @Produce 	json
// @Param 		token path string true "Candidate token"
// @Success 	200 {object} response.PublicCandidate
// @Failure 	403 {object} response.Error "Form already submitted"
// @Failure 	404 {object} response.Error "Candidate not found"
// @Failure 	429 {object} response.Error "Too many requests"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/candidate/{token} [get]
func (r *V1) prefill(ctx *fiber.Ctx) error {
	c, err := r.cand.GetForPrefill(ctx.UserContext(), ctx.Params("token"))
	if err != nil {
		return r.candidateErrorResponse(ctx, err, "prefill")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewPublicCandidate(c))
}

// @Summary 	Submit verification form
// @Description Saves the edited details and 1 to 6 photos with capture metadata. A token can be submitted once.
// @Tags 		candidate
// @Accept 		json,mpfd
// @Produce 	json
// @Param 		token path string true "Candidate token"
// @Param 		photo1 formData file false "Photo for slot 1 (photo1..photo6, each with meta1..meta6)"
// @Param 		meta1 formData string false "Capture metadata for slot 1"
// @Success 	200 {object} response.Message
// @Failure 	400 {object} response.Error "Invalid field"
// @Failure 	403 {object} response.Error "Form already submitted"
// @Failure 	404 {object} response.Error "Candidate not found"
// @Failure 	429 {object} response.Error "Too many requests"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/submit/{token} [post]
func (r *V1) submit(ctx *fiber.Ctx) error {
	token := ctx.Params("token")

	// 1. разбираем тело: JSON с base64 или multipart с файлами
	var (
		doc   map[string]any
		files map[int]*multipart.FileHeader
	)

	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := ctx.MultipartForm()
		if err != nil {
			return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
		}
		doc, files = multipartDocument(form)
	} else {
		if err := ctx.BodyParser(&doc); err != nil || doc == nil {
			return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
		}
	}

	// 2. валидация полей формы
	if err := validate.Submission(doc); err != nil {
		return r.candidateErrorResponse(ctx, err, "submit")
	}

	details, err := detailsFromDocument(doc)
	if err != nil {
		return r.candidateErrorResponse(ctx, err, "submit")
	}

	// 3. валидация фото
	photos, err := r.collectPhotos(doc, files)
	if err != nil {
		return r.candidateErrorResponse(ctx, err, "submit")
	}

	// 4. сохраняем
	err = r.cand.Submit(ctx.UserContext(), token, dto.Submission{Details: details, Photos: photos})
	if err != nil {
		return r.candidateErrorResponse(ctx, err, "submit")
	}

	return ctx.Status(http.StatusOK).JSON(response.Message{Message: "Submission saved"})
}

func multipartDocument(form *multipart.Form) (map[string]any, map[int]*multipart.FileHeader) {
	doc := make(map[string]any, len(form.Value))
	for k, vs := range form.Value {
		if len(vs) > 0 {
			doc[k] = vs[0]
		}
	}

	files := make(map[int]*multipart.FileHeader)
	for slot := 1; slot <= entity.MaxPhotoSlots; slot++ {
		field := validate.PhotoField(slot)
		if fhs := form.File[field]; len(fhs) > 0 {
			files[slot] = fhs[0]
			doc[field] = filePartPlaceholder
		}
	}

	return doc, files
}

func detailsFromDocument(doc map[string]any) (entity.Details, error) {
	fields := make(map[string]any, len(validate.DetailFields))
	for _, f := range validate.DetailFields {
		fields[f] = doc[f]
	}

	var d entity.Details

	b, err := json.Marshal(fields)
	if err != nil {
		return d, fmt.Errorf("restapi - v1 - detailsFromDocument - json.Marshal: %w", err)
	}

	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("restapi - v1 - detailsFromDocument - json.Unmarshal: %w", err)
	}

	return d, nil
}

func (r *V1) collectPhotos(doc map[string]any, files map[int]*multipart.FileHeader) ([]dto.PhotoUpload, error) {
	photos := make([]dto.PhotoUpload, 0, entity.MaxPhotoSlots)

	for slot := 1; slot <= entity.MaxPhotoSlots; slot++ {
		field := validate.PhotoField(slot)

		var (
			data []byte
			err  error
		)

		if fh, ok := files[slot]; ok {
			data, err = r.readFilePart(field, fh)
		} else if v, ok := doc[field].(string); ok {
			data, err = validate.DecodePhoto(v)
			if err != nil {
				err = errs.NewValidationError(field, "is not a valid base64 image")
			}
		} else {
			continue
		}
		if err != nil {
			return nil, err
		}

		if int64(len(data)) > r.maxPhotoSize {
			return nil, errs.NewValidationError(field, fmt.Sprintf("cant be more than %d bytes", r.maxPhotoSize))
		}

		contentType, ok := validate.ContentType(data)
		if !ok {
			return nil, errs.NewValidationError(field, "unsupported image type. Allowed: jpeg, png, webp")
		}

		meta, _ := doc[validate.MetaField(slot)].(string)

		photos = append(photos, dto.PhotoUpload{
			Slot:        slot,
			ContentType: contentType,
			Data:        data,
			Meta:        meta,
		})
	}

	return photos, nil
}

func (r *V1) readFilePart(field string, fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > r.maxPhotoSize {
		return nil, errs.NewValidationError(field, fmt.Sprintf("cant be more than %d bytes", r.maxPhotoSize))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("restapi - v1 - readFilePart - fh.Open: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, r.maxPhotoSize+1))
	if err != nil {
		return nil, fmt.Errorf("restapi - v1 - readFilePart - io.ReadAll: %w", err)
	}

	if len(data) == 0 {
		return nil, errs.NewValidationError(field, "is empty")
	}

	return data, nil
}
