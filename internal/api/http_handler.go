package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"kilofresh-admin/internal/backend"
	"kilofresh-admin/internal/console"
	"kilofresh-admin/internal/domain"
)

// HTTPHandler exposes the console screens as a JSON/multipart API. All form
// and staging semantics live in the console package; the handlers only
// adapt requests onto screen operations.
type HTTPHandler struct {
	categories *console.CategoryScreen
	products   *console.ProductScreen
	orders     *console.OrderScreen
	notifier   *console.Notifier
	maxRequest int64
	log        zerolog.Logger
}

// NewHTTPHandler creates the handler set with its dependencies.
func NewHTTPHandler(categories *console.CategoryScreen, products *console.ProductScreen, orders *console.OrderScreen, notifier *console.Notifier, maxRequestSize int64, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		categories: categories,
		products:   products,
		orders:     orders,
		notifier:   notifier,
		maxRequest: maxRequestSize,
		log:        logger.With().Str("component", "api").Logger(),
	}
}

// --- Helpers ---

// ErrorResponse is the JSON shape for a single error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FieldErrorResponse is the JSON shape for validation failures: one
// localized message per offending field.
type FieldErrorResponse struct {
	Errors console.FieldErrors `json:"errors"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// respondScreenError maps console/backend errors onto status codes. Every
// console sentinel gets an explicit case so a purely local failure is never
// reported as a backend one; only genuine backend errors fall through to 502
// with their localized message.
func respondScreenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, console.ErrFormOpen),
		errors.Is(err, console.ErrFormClosed),
		errors.Is(err, console.ErrBusy):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, console.ErrUnknownEntity):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, console.ErrValidation):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, console.ErrFileTooLarge):
		respondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		respondWithError(w, http.StatusBadGateway, backend.AsError(err).Message)
	}
}

// readUpload drains one multipart file part into a staging input.
func readUpload(fh *multipart.FileHeader) (console.FileInput, error) {
	f, err := fh.Open()
	if err != nil {
		return console.FileInput{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return console.FileInput{}, err
	}
	return console.FileInput{Name: fh.Filename, Content: content}, nil
}

// parseFloatField parses an optional numeric form field. An absent value is
// zero (reported as "required" by form validation); garbage is an error.
func parseFloatField(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// parseBoolField parses an optional boolean form field, absent meaning false.
func parseBoolField(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func (h *HTTPHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequest)
	if err := r.ParseMultipartForm(h.maxRequest); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart payload: "+err.Error())
		return false
	}
	return true
}

// noticeResponse wraps the notice published for a completed mutation. Errors
// carries field-level problems that did not stop the mutation, such as an
// oversized image dropped from an otherwise valid batch.
type noticeResponse struct {
	Notice *console.Notice     `json:"notice"`
	Errors console.FieldErrors `json:"errors,omitempty"`
}

// --- Category handlers ---

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if !h.categories.Loaded() {
		if err := h.categories.Load(r.Context()); err != nil {
			respondScreenError(w, err)
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.categories.Categories(),
	})
}

func (h *HTTPHandler) ReloadCategories(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Load(r.Context()); err != nil {
		respondScreenError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.categories.Categories(),
	})
}

// submitCategoryForm funnels one request through the category form session:
// open, populate, stage, submit. The session is torn down on every failure
// path so the next request starts from a closed form.
func (h *HTTPHandler) submitCategoryForm(w http.ResponseWriter, r *http.Request, editID string) {
	if !h.parseMultipart(w, r) {
		return
	}

	var err error
	if editID == "" {
		err = h.categories.OpenCreate()
	} else {
		err = h.categories.OpenEdit(editID)
	}
	if err != nil {
		respondScreenError(w, err)
		return
	}
	// Tear down only the session this request opened. By the time the defer
	// runs a successful submit has already closed it, and another request may
	// own a new session that must survive.
	gen := h.categories.SessionGeneration()
	defer h.categories.CancelSession(gen)

	if err := h.categories.SetName(r.FormValue("name")); err != nil {
		respondScreenError(w, err)
		return
	}
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		in, err := readUpload(files[0])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Failed to read image upload: "+err.Error())
			return
		}
		if err := h.categories.StageImage(in); err != nil {
			respondWithJSON(w, http.StatusUnprocessableEntity, FieldErrorResponse{Errors: h.categories.Errors()})
			return
		}
	}

	if err := h.categories.Submit(r.Context()); err != nil {
		if errors.Is(err, console.ErrValidation) {
			respondWithJSON(w, http.StatusUnprocessableEntity, FieldErrorResponse{Errors: h.categories.Errors()})
			return
		}
		respondScreenError(w, err)
		return
	}

	code := http.StatusOK
	if editID == "" {
		code = http.StatusCreated
	}
	respondWithJSON(w, code, noticeResponse{Notice: h.notifier.Current()})
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	h.submitCategoryForm(w, r, "")
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	h.submitCategoryForm(w, r, chi.URLParam(r, "categoryID"))
}

func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		respondScreenError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, noticeResponse{Notice: h.notifier.Current()})
}

// --- Product handlers ---

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if !h.products.Loaded() {
		if err := h.products.Load(r.Context()); err != nil {
			respondScreenError(w, err)
			return
		}
	}
	products := h.products.Products()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

func (h *HTTPHandler) submitProductForm(w http.ResponseWriter, r *http.Request, editID string) {
	if !h.parseMultipart(w, r) {
		return
	}

	var err error
	if editID == "" {
		err = h.products.OpenCreate()
	} else {
		err = h.products.OpenEdit(editID)
	}
	if err != nil {
		respondScreenError(w, err)
		return
	}
	gen := h.products.SessionGeneration()
	defer h.products.CancelSession(gen)

	priceBefore, err := parseFloatField(r.FormValue("priceBefore"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid priceBefore value: "+r.FormValue("priceBefore"))
		return
	}
	priceAfter, err := parseFloatField(r.FormValue("priceAfter"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid priceAfter value: "+r.FormValue("priceAfter"))
		return
	}
	isOffer, err := parseBoolField(r.FormValue("isOffer"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid isOffer value: "+r.FormValue("isOffer"))
		return
	}
	fields := console.ProductForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		PriceBefore: priceBefore,
		PriceAfter:  priceAfter,
		Category:    r.FormValue("category"),
		IsOffer:     isOffer,
	}
	if err := h.products.SetFields(fields); err != nil {
		respondScreenError(w, err)
		return
	}

	// Removals index into the combined display list: existing images first,
	// then staged previews. They are applied before new files stage, the
	// same order the form applies them in.
	for _, raw := range r.Form["removeImages"] {
		k, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid removeImages index: "+raw)
			return
		}
		if err := h.products.RemoveImage(k); err != nil {
			respondScreenError(w, err)
			return
		}
	}

	// Field errors from staging survive a successful submit: an oversized
	// file is dropped while its batch-mates stage, and the response must say
	// so rather than report a clean success.
	var stagingErrs console.FieldErrors
	if files := r.MultipartForm.File["images"]; len(files) > 0 {
		inputs := make([]console.FileInput, 0, len(files))
		for _, fh := range files {
			in, err := readUpload(fh)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Failed to read image upload: "+err.Error())
				return
			}
			inputs = append(inputs, in)
		}
		if err := h.products.StageImages(inputs); err != nil {
			if !errors.Is(err, console.ErrFileTooLarge) {
				respondScreenError(w, err)
				return
			}
			stagingErrs = h.products.Errors()
		}
	}

	if err := h.products.Submit(r.Context()); err != nil {
		if errors.Is(err, console.ErrValidation) {
			respondWithJSON(w, http.StatusUnprocessableEntity, FieldErrorResponse{Errors: h.products.Errors()})
			return
		}
		respondScreenError(w, err)
		return
	}

	code := http.StatusOK
	if editID == "" {
		code = http.StatusCreated
	}
	respondWithJSON(w, code, noticeResponse{Notice: h.notifier.Current(), Errors: stagingErrs})
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.submitProductForm(w, r, "")
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.submitProductForm(w, r, chi.URLParam(r, "productID"))
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
		respondScreenError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, noticeResponse{Notice: h.notifier.Current()})
}

// --- Order handlers ---

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if !h.orders.Loaded() {
		if err := h.orders.Load(r.Context()); err != nil {
			respondScreenError(w, err)
			return
		}
	}
	orders := h.orders.Orders()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.OpenDetail(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondScreenError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// OrderStatusInput is the JSON body for a status transition.
type OrderStatusInput struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input OrderStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if !input.Status.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status value: "+string(input.Status))
		return
	}

	if err := h.orders.SetStatus(r.Context(), chi.URLParam(r, "orderID"), input.Status); err != nil {
		respondScreenError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, noticeResponse{Notice: h.notifier.Current()})
}

func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		respondScreenError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, noticeResponse{Notice: h.notifier.Current()})
}

// --- Notices ---

func (h *HTTPHandler) GetNotice(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, noticeResponse{Notice: h.notifier.Current()})
}

// --- Route registration ---

// RegisterRoutes sets up the console's HTTP routes.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Post("/reload", h.ReloadCategories)
		r.Route("/{categoryID}", func(r chi.Router) {
			r.Put("/", h.UpdateCategory)
			r.Delete("/", h.DeleteCategory)
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Route("/{productID}", func(r chi.Router) {
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Put("/status", h.UpdateOrderStatus)
			r.Delete("/", h.DeleteOrder)
		})
	})

	r.Get("/api/v1/notices", h.GetNotice)
}
