package console

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"kilofresh-admin/internal/backend"
	"kilofresh-admin/internal/domain"
)

// Localized messages of the category screen.
const (
	msgCategoryNameRequired  = "اسم الفئة مطلوب"
	msgCategoryImageRequired = "صورة الفئة مطلوبة"
	msgCategoryImageTooBig   = "حجم الصورة كبير جداً (الحد الأقصى 5 ميجابايت)"
)

// CategoryForm is the working copy of a category's editable fields.
type CategoryForm struct {
	Name string `validate:"required"`
}

// CategoryScreen drives the category management view: the list snapshot, one
// form session and the shared notifier.
type CategoryScreen struct {
	mu       sync.Mutex
	api      backend.CategoryAPI
	store    *ListStore[domain.Category]
	form     *FormController[CategoryForm]
	notifier *Notifier
	validate *validator.Validate
	maxFile  int64
	busy     bool // guards list actions (delete) against double invocation
	log      zerolog.Logger
}

// NewCategoryScreen wires a category screen against the backend API.
func NewCategoryScreen(api backend.CategoryAPI, notifier *Notifier, maxFileSize int64, logger zerolog.Logger) *CategoryScreen {
	return &CategoryScreen{
		api:      api,
		store:    NewListStore(api.ListCategories),
		form:     NewFormController[CategoryForm](),
		notifier: notifier,
		validate: validator.New(),
		maxFile:  maxFileSize,
		log:      logger.With().Str("screen", "category").Logger(),
	}
}

// Load refreshes the category snapshot. A failed load keeps the previous
// snapshot and surfaces the error through the notifier.
func (s *CategoryScreen) Load(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		s.notifier.Error(backend.AsError(err).Message)
		return err
	}
	s.log.Debug().Int("count", s.store.Len()).Msg("categories loaded")
	return nil
}

// Categories returns the current snapshot in backend order.
func (s *CategoryScreen) Categories() []domain.Category { return s.store.Snapshot() }

// Loaded reports whether an initial load ever succeeded.
func (s *CategoryScreen) Loaded() bool { return s.store.Loaded() }

// Store exposes the list store as a read-only category source for other
// screens (the product form's category selector).
func (s *CategoryScreen) Store() *ListStore[domain.Category] { return s.store }

// OpenCreate starts a fresh create session.
func (s *CategoryScreen) OpenCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.OpenCreate(CategoryForm{}, NewStagingBuffer(nil, s.maxFile))
}

// OpenEdit starts an edit session seeded from the selected category,
// including its persisted image.
func (s *CategoryScreen) OpenEdit(id string) error {
	cat, ok := s.store.Find(func(c domain.Category) bool { return c.ID == id })
	if !ok {
		return ErrUnknownEntity
	}

	var existing []string
	if cat.Image.URL != "" {
		existing = []string{cat.Image.URL}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.OpenEdit(id, CategoryForm{Name: cat.Name}, NewStagingBuffer(existing, s.maxFile))
}

// SetName updates the working copy and clears the field's pending error.
func (s *CategoryScreen) SetName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.form.IsOpen() {
		return ErrFormClosed
	}
	s.form.Fields().Name = name
	s.form.ClearError("name")
	return nil
}

// StageImage replaces the staged image file. The category form carries a
// single image; an oversized file is rejected with a field error and the
// previously staged file stays in place.
func (s *CategoryScreen) StageImage(in FileInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.form.IsOpen() {
		return ErrFormClosed
	}
	if int64(len(in.Content)) > s.maxFile {
		s.form.SetError("image", msgCategoryImageTooBig)
		return ErrFileTooLarge
	}

	st := s.form.Staging()
	st.Clear()
	if err := st.AddBatch([]FileInput{in}); err != nil {
		return err
	}
	s.form.ClearError("image")
	return nil
}

// Errors returns the session's field error map.
func (s *CategoryScreen) Errors() FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Errors()
}

// SessionState returns the form session state.
func (s *CategoryScreen) SessionState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.State()
}

// SessionGeneration returns the generation tag of the current session.
func (s *CategoryScreen) SessionGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Generation()
}

// Cancel tears the session down, discarding all transient state.
func (s *CategoryScreen) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsOpen() {
		s.form.Close()
	}
}

// CancelSession cancels only the session identified by gen. A session opened
// after that one ended is left untouched, so a caller's teardown can never
// destroy a successor it does not own.
func (s *CategoryScreen) CancelSession(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.IsOpen() && s.form.Generation() == gen {
		s.form.Close()
	}
}

// Submit validates the working copy and performs exactly one mutating call.
// Validation failures never reach the network. On success the session closes
// and the list reloads; on failure the session stays open with the error in
// the "submit" slot and on the notifier.
func (s *CategoryScreen) Submit(ctx context.Context) error {
	s.mu.Lock()
	if !s.form.IsOpen() {
		s.mu.Unlock()
		return ErrFormClosed
	}

	name := strings.TrimSpace(s.form.Fields().Name)
	errs := FieldErrors{}
	if err := s.validate.Struct(CategoryForm{Name: name}); err != nil {
		errs["name"] = msgCategoryNameRequired
	}
	_, editing := s.form.Editing()
	if !editing && s.form.Staging().Count() == 0 {
		errs["image"] = msgCategoryImageRequired
	}

	gen, err := s.form.BeginSubmit(errs)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	// Snapshot the payload before releasing the lock for the network call.
	var image *backend.FileUpload
	if files := s.form.Staging().Files(); len(files) > 0 {
		image = &files[len(files)-1]
	}
	targetID, editing := s.form.Editing()
	s.mu.Unlock()

	var message string
	var callErr error
	if editing {
		_, message, callErr = s.api.UpdateCategory(ctx, targetID, backend.UpdateCategoryParams{Name: name, Image: image})
	} else {
		_, message, callErr = s.api.CreateCategory(ctx, backend.CreateCategoryParams{Name: name, Image: image})
	}

	s.mu.Lock()
	display := ""
	if callErr != nil {
		display = backend.AsError(callErr).Message
	}
	if !s.form.FinishSubmit(gen, callErr, display) {
		// The session was torn down while the request was in flight; the
		// late response is a no-op.
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

// Delete removes a category and reloads the list. The busy flag rejects a
// second delete racing the first.
func (s *CategoryScreen) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	message, err := s.api.DeleteCategory(ctx, id)

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
