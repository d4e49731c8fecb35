package transport

import (
	"net/http"
	"strconv"

	"catalog-api/internal/domain"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultDescription is used when a product is created without one
const defaultDescription = "No Description"

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"description"`
	Rating      *int     `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

// UpdateProductRequest represents the product update payload; absent
// fields are left unchanged. Status is not accepted: it always follows
// the product's category.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Rating      *int     `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/product", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/active", h.ListActive)
		r.Get("/{id}", h.Get)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// parseFilter builds a sparse product filter from the query string.
// String predicates pass through as substrings; numeric ones must parse.
func parseFilter(r *http.Request) (repository.ProductFilter, bool) {
	filter := repository.ProductFilter{}
	query := r.URL.Query()

	if v := query.Get("name"); v != "" {
		filter.Name = &v
	}
	if v := query.Get("category"); v != "" {
		filter.Category = &v
	}
	if v := query.Get("description"); v != "" {
		filter.Description = &v
	}
	if v := query.Get("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, false
		}
		filter.Price = &price
	}
	if v := query.Get("quantity"); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil {
			return filter, false
		}
		filter.Quantity = &quantity
	}
	if v := query.Get("rating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil {
			return filter, false
		}
		filter.Rating = &rating
	}

	return filter, true
}

// List handles listing products with optional field filters
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListActive handles listing active products only
func (h *ProductHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	filter, ok := parseFilter(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid filter value")
		return
	}

	var (
		products []*domain.Product
		err      error
	)
	if activeOnly {
		products, err = h.productService.ListActive(r.Context(), filter)
	} else {
		products, err = h.productService.List(r.Context(), filter)
	}
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get handles fetching a product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid product id")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err), zap.String("product_id", id.String()))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.ProductInput{
		Name:        req.Name,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Category:    req.Category,
		Description: req.Description,
	}
	if input.Description == "" {
		input.Description = defaultDescription
	}
	if req.Rating != nil {
		input.Rating = *req.Rating
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		if err == service.ErrCategoryDoesNotExist {
			middleware.RespondWithError(w, http.StatusBadRequest, "category doesn't exist")
			return
		}

		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := service.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Category:    req.Category,
		Description: req.Description,
		Rating:      req.Rating,
	}

	if err := h.productService.Update(r.Context(), id, patch); err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case repository.ErrCategoryNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		default:
			h.logger.Error("Failed to update product", zap.Error(err), zap.String("product_id", id.String()))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "product updated successfully"})
}

// Delete handles product deletion and its best-effort image cleanup
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotAcceptable, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err), zap.String("product_id", id.String()))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "product deleted successfully"})
}
