package transport

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"
	"catalog-api/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// maxUploadSize bounds the multipart form held in memory
	maxUploadSize = 10 << 20 // 10 MiB

	// uploadFieldName is the multipart field carrying the image file
	uploadFieldName = "image"
)

// DeleteImageRequest represents the image removal payload
type DeleteImageRequest struct {
	ID    string `json:"id" validate:"required"`
	Index *int   `json:"index" validate:"required,gte=0,lte=4"`
}

// ImageHandler handles HTTP requests for product image slots
type ImageHandler struct {
	imageService service.ImageService
	images       *storage.ImageStore
	logger       *zap.Logger
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(imageService service.ImageService, images *storage.ImageStore, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		images:       images,
		logger:       logger,
	}
}

// RegisterRoutes registers all image routes
func (h *ImageHandler) RegisterRoutes(r chi.Router) {
	r.Route("/image", func(r chi.Router) {
		r.Get("/{name}", h.Serve)
		r.Post("/", h.Upload)
		r.Delete("/", h.Delete)
	})
}

// sniffImageType reads the leading bytes of the upload and sniffs the
// content type. The declared part header is not trusted. The bytes read
// for sniffing are stitched back in front of the remaining stream.
func sniffImageType(file io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	return contentType, io.MultiReader(bytes.NewReader(head), file), nil
}

// Upload attaches an uploaded image to one of a product's slots
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid multipart form")
		return
	}

	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid product id")
		return
	}

	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil || index < 0 || index > 4 {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "index must be an integer between 0 and 4")
		return
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "image file is required")
		return
	}
	defer file.Close()

	contentType, content, err := sniffImageType(file)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if contentType != "image/jpeg" && contentType != "image/png" {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid mime type")
		return
	}

	product, err := h.imageService.Attach(r.Context(), id, index, header.Filename, content)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to attach image",
			zap.Error(err),
			zap.String("product_id", id.String()),
			zap.Int("slot", index),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to attach image")
		return
	}

	h.logger.Info("Image attached",
		zap.String("product_id", id.String()),
		zap.Int("slot", index),
		zap.String("file", product.Images[index]),
	)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete detaches the image at a product's slot and removes its file
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid product id")
		return
	}

	product, err := h.imageService.Detach(r.Context(), id, *req.Index)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case service.ErrNoImageAtSlot:
			middleware.RespondWithError(w, http.StatusNotAcceptable, "no image at this slot")
		case service.ErrImageNotFound:
			// The slot reference was cleared anyway (self-heal)
			middleware.RespondWithError(w, http.StatusNotFound, "image not found")
		default:
			h.logger.Error("Failed to detach image",
				zap.Error(err),
				zap.String("product_id", id.String()),
				zap.Int("slot", *req.Index),
			)
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to detach image")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Serve streams a stored image back to the client
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := h.images.Open(name)
	if err != nil {
		if err == storage.ErrFileNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "image not found")
			return
		}

		h.logger.Error("Failed to open image", zap.Error(err), zap.String("file", name))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to open image")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("Failed to stat image", zap.Error(err), zap.String("file", name))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read image")
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
