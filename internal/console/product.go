package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"kilofresh-admin/internal/backend"
	"kilofresh-admin/internal/domain"
)

// Localized messages of the product screen.
const (
	msgProductNameRequired = "عنوان المنتج مطلوب"
	msgProductDescRequired = "وصف المنتج مطلوب"
	msgPriceBeforeInvalid  = "السعر قبل الخصم مطلوب ويجب أن يكون أكبر من صفر"
	msgPriceAfterInvalid   = "السعر بعد الخصم مطلوب ويجب أن يكون أكبر من صفر"
	msgPriceAfterNotLess   = "السعر بعد الخصم يجب أن يكون أقل من السعر الأصلي"
	msgCategoryChoice      = "يجب اختيار الفئة"
	msgImagesRequired      = "يجب إضافة صورة واحدة على الأقل"
	msgImageBatchTooBig    = "حجم إحدى الصور كبير جداً (الحد الأقصى 5 ميجابايت لكل صورة)"
	labelUnspecified       = "غير محدد"
)

// ProductForm is the working copy of a product's editable fields. The price
// pair is cross-checked so the discounted price stays strictly below the
// original one.
type ProductForm struct {
	Name        string  `validate:"required"`
	Description string  `validate:"required"`
	PriceBefore float64 `validate:"required,gt=0"`
	PriceAfter  float64 `validate:"required,gt=0,ltfield=PriceBefore"`
	Category    string  `validate:"required"`
	IsOffer     bool
}

// ProductScreen drives the product management view. It consumes a read-only
// snapshot of the category list for its category selector; that is the only
// coupling between entity screens.
type ProductScreen struct {
	mu         sync.Mutex
	api        backend.ProductAPI
	store      *ListStore[domain.Product]
	categories *ListStore[domain.Category]
	form       *FormController[ProductForm]
	notifier   *Notifier
	validate   *validator.Validate
	maxFile    int64
	busy       bool
	log        zerolog.Logger
}

// NewProductScreen wires a product screen against the backend API and the
// shared category snapshot.
func NewProductScreen(api backend.ProductAPI, categories *ListStore[domain.Category], notifier *Notifier, maxFileSize int64, logger zerolog.Logger) *ProductScreen {
	return &ProductScreen{
		api:        api,
		store:      NewListStore(api.ListProducts),
		categories: categories,
		form:       NewFormController[ProductForm](),
		notifier:   notifier,
		validate:   validator.New(),
		maxFile:    maxFileSize,
		log:        logger.With().Str("screen", "product").Logger(),
	}
}

// Load refreshes the product snapshot.
func (s *ProductScreen) Load(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		s.notifier.Error(backend.AsError(err).Message)
		return err
	}
	s.log.Debug().Int("count", s.store.Len()).Msg("products loaded")
	return nil
}

// Products returns the current snapshot in backend order.
func (s *ProductScreen) Products() []domain.Product { return s.store.Snapshot() }

// Loaded reports whether an initial load ever succeeded.
func (s *ProductScreen) Loaded() bool { return s.store.Loaded() }

// CategoryName resolves a category reference for display, falling back to
// the "unspecified" label when the reference no longer exists.
func (s *ProductScreen) CategoryName(categoryID string) string {
	cat, ok := s.categories.Find(func(c domain.Category) bool { return c.ID == categoryID })
	if !ok {
		return labelUnspecified
	}
	return cat.Name
}

// OpenCreate starts a fresh create session.
func (s *ProductScreen) OpenCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.OpenCreate(ProductForm{}, NewStagingBuffer(nil, s.maxFile))
}

// OpenEdit starts an edit session seeded from the selected product and its
// persisted images.
func (s *ProductScreen) OpenEdit(id string) error {
	p, ok := s.store.Find(func(p domain.Product) bool { return p.ID == id })
	if !ok {
		return ErrUnknownEntity
	}

	existing := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		existing = append(existing, img.URL)
	}
	fields := ProductForm{
		Name:        p.Name,
		Description: p.Description,
		PriceBefore: p.PriceBefore,
		PriceAfter:  p.PriceAfter,
		Category:    p.Category,
		IsOffer:     p.IsOffer,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.OpenEdit(id, fields, NewStagingBuffer(existing, s.maxFile))
}

// SetFields replaces the working copy wholesale and clears pending field
// errors for everything the caller touched.
func (s *ProductScreen) SetFields(fields ProductForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.form.IsOpen() {
		return ErrFormClosed
	}
	*s.form.Fields() = fields
	for _, key := range []string{"name", "description", "priceBefore", "priceAfter", "category"} {
		s.form.ClearError(key)
	}
	return nil
}

// StageImages stages one selection batch. Oversized files are excluded with
// a field error while the valid files of the same batch still stage.
func (s *ProductScreen) StageImages(inputs []FileInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.form.IsOpen() {
		return ErrFormClosed
	}

	err := s.form.Staging().AddBatch(inputs)
	if errors.Is(err, ErrFileTooLarge) {
		s.form.SetError("images", msgImageBatchTooBig)
		return err
	}
	if err != nil {
		return err
	}
	s.form.ClearError("images")
	return nil
}

// RemoveImage removes the image at the given index of the combined display
// list (existing images first, then staged previews).
func (s *ProductScreen) RemoveImage(k int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.form.IsOpen() {
		return ErrFormClosed
	}
	if !s.form.Staging().RemoveAt(k) {
		return ErrUnknownEntity
	}
	return nil
}

// Images returns the combined display list of the open session.
func (s *ProductScreen) Images() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.form.IsOpen() {
		return nil
	}
	return s.form.Staging().Display()
}

// Errors returns the session's field error map.
func (s *ProductScreen) Errors() FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Errors()
}

// SessionState returns the form session state.
func (s *ProductScreen) SessionState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.State()
}

// SessionGeneration returns the generation tag of the current session.
func (s *ProductScreen) SessionGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Generation()
}

// Cancel tears the session down.
func (s *ProductScreen) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsOpen() {
		s.form.Close()
	}
}

// CancelSession cancels only the session identified by gen, leaving a
// successor session untouched.
func (s *ProductScreen) CancelSession(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsOpen() && s.form.Generation() == gen {
		s.form.Close()
	}
}

// validateForm checks every field and collects all applicable errors; there
// is no short-circuit. The image rule counts retained existing images plus
// staged files, identically in create and edit mode.
func (s *ProductScreen) validateForm() FieldErrors {
	f := *s.form.Fields()
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)

	errs := FieldErrors{}
	if err := s.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.StructField() {
				case "Name":
					errs["name"] = msgProductNameRequired
				case "Description":
					errs["description"] = msgProductDescRequired
				case "PriceBefore":
					errs["priceBefore"] = msgPriceBeforeInvalid
				case "PriceAfter":
					if fe.Tag() == "ltfield" {
						errs["priceAfter"] = msgPriceAfterNotLess
					} else {
						errs["priceAfter"] = msgPriceAfterInvalid
					}
				case "Category":
					errs["category"] = msgCategoryChoice
				}
			}
		}
	}
	if s.form.Staging().Count() == 0 {
		// A staging rejection is the more precise explanation for the missing
		// images; keep it over the generic requirement message.
		if s.form.Errors()["images"] == msgImageBatchTooBig {
			errs["images"] = msgImageBatchTooBig
		} else {
			errs["images"] = msgImagesRequired
		}
	}
	return errs
}

// Submit validates the working copy and performs exactly one mutating call;
// see CategoryScreen.Submit for the protocol.
func (s *ProductScreen) Submit(ctx context.Context) error {
	s.mu.Lock()
	if !s.form.IsOpen() {
		s.mu.Unlock()
		return ErrFormClosed
	}

	gen, err := s.form.BeginSubmit(s.validateForm())
	if err != nil {
		s.mu.Unlock()
		return err
	}

	f := *s.form.Fields()
	params := backend.ProductParams{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		PriceBefore: f.PriceBefore,
		PriceAfter:  f.PriceAfter,
		Category:    f.Category,
		IsOffer:     f.IsOffer,
		Images:      s.form.Staging().Files(),
	}
	targetID, editing := s.form.Editing()
	s.mu.Unlock()

	var message string
	var callErr error
	if editing {
		_, message, callErr = s.api.UpdateProduct(ctx, targetID, params)
	} else {
		_, message, callErr = s.api.CreateProduct(ctx, params)
	}

	s.mu.Lock()
	display := ""
	if callErr != nil {
		display = backend.AsError(callErr).Message
	}
	if !s.form.FinishSubmit(gen, callErr, display) {
		s.mu.Unlock()
		s.log.Warn().Str("id", targetID).Msg("discarding stale submit response")
		return nil
	}
	s.mu.Unlock()

	if callErr != nil {
		s.notifier.Error(display)
		return callErr
	}
	s.notifier.Success(message)
	if err := s.store.Load(ctx); err != nil {
		s.notifier.Error(backend.AsError(err).Message)
	}
	return nil
}

// Delete removes a product and reloads the list.
func (s *ProductScreen) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	message, err := s.api.DeleteProduct(ctx, id)

	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()

	if err != nil {
		s.notifier.Error(backend.AsError(err).Message)
		return err
	}
	s.notifier.Success(message)
	if err := s.store.Load(ctx); err != nil {
		s.notifier.Error(backend.AsError(err).Message)
	}
	return nil
}
