package console

// SessionState is the tagged state of a form session. Illegal combinations
// (submitting while closed, two open sessions) are unrepresentable: a screen
// owns exactly one controller and transitions are guarded here.
type SessionState int

const (
	SessionClosed SessionState = iota
	SessionCreating
	SessionEditing
	SessionSubmitting
)

func (s SessionState) String() string {
	switch s {
	case SessionClosed:
		return "closed"
	case SessionCreating:
		return "creating"
	case SessionEditing:
		return "editing"
	case SessionSubmitting:
		return "submitting"
	}
	return "unknown"
}

// FieldErrors maps a field name to its localized validation message. The
// "submit" key carries failures of the mutating call itself.
type FieldErrors map[string]string

// FormController is the generic resource form controller: the transient
// state machine governing creation or edit of one entity. Screens own one
// instance each and synchronize access; the controller itself is not
// concurrency safe.
//
// Every submit is tagged with the session generation. The generation moves
// on open and close, so a response arriving after its session was torn down
// is recognized as stale and discarded instead of writing into a successor.
type FormController[F any] struct {
	state    SessionState
	mode     SessionState // SessionCreating or SessionEditing while open
	gen      uint64
	targetID string
	fields   F
	errors   FieldErrors
	staging  *StagingBuffer
}

// NewFormController returns a closed controller.
func NewFormController[F any]() *FormController[F] {
	return &FormController[F]{state: SessionClosed}
}

// OpenCreate starts a create session with an empty working copy. Opening
// while a session is open is disallowed.
func (c *FormController[F]) OpenCreate(fields F, staging *StagingBuffer) error {
	return c.open(SessionCreating, "", fields, staging)
}

// OpenEdit starts an edit session seeded from the selected entity.
func (c *FormController[F]) OpenEdit(targetID string, fields F, staging *StagingBuffer) error {
	return c.open(SessionEditing, targetID, fields, staging)
}

func (c *FormController[F]) open(mode SessionState, targetID string, fields F, staging *StagingBuffer) error {
	if c.state != SessionClosed {
		return ErrFormOpen
	}
	c.state = mode
	c.mode = mode
	c.gen++
	c.targetID = targetID
	c.fields = fields
	c.errors = FieldErrors{}
	c.staging = staging
	return nil
}

// Close tears the session down and discards all transient state, including
// the staging buffer. Any in-flight submit becomes stale.
func (c *FormController[F]) Close() {
	var zero F
	c.state = SessionClosed
	c.mode = SessionClosed
	c.gen++
	c.targetID = ""
	c.fields = zero
	c.errors = nil
	c.staging = nil
}

// State returns the current session state.
func (c *FormController[F]) State() SessionState { return c.state }

// Generation returns the current session generation. It moves on every open
// and close, so a generation identifies one session instance.
func (c *FormController[F]) Generation() uint64 { return c.gen }

// IsOpen reports whether any session is active, submitting included.
func (c *FormController[F]) IsOpen() bool { return c.state != SessionClosed }

// Editing returns the target entity id when the session edits an existing
// entity.
func (c *FormController[F]) Editing() (string, bool) {
	if c.mode == SessionEditing {
		return c.targetID, true
	}
	return "", false
}

// Fields returns a pointer to the working copy for reading and mutation.
func (c *FormController[F]) Fields() *F { return &c.fields }

// Staging returns the session's image staging buffer, nil when closed.
func (c *FormController[F]) Staging() *StagingBuffer { return c.staging }

// Errors returns the current field error map.
func (c *FormController[F]) Errors() FieldErrors {
	out := FieldErrors{}
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// SetError attaches a single field error, e.g. an oversized staged file.
func (c *FormController[F]) SetError(field, msg string) {
	if c.errors == nil {
		c.errors = FieldErrors{}
	}
	c.errors[field] = msg
}

// ClearError drops a field's error once the user amends the field.
func (c *FormController[F]) ClearError(field string) {
	delete(c.errors, field)
}

// BeginSubmit moves the session into submitting after validation. All
// collected errors are stored and reported as ErrValidation before any
// network call; ErrBusy guards against a concurrent submit. On success it
// returns the generation tag the eventual response must present.
func (c *FormController[F]) BeginSubmit(errs FieldErrors) (uint64, error) {
	switch c.state {
	case SessionClosed:
		return 0, ErrFormClosed
	case SessionSubmitting:
		return 0, ErrBusy
	}
	if len(errs) > 0 {
		c.errors = errs
		return 0, ErrValidation
	}
	c.errors = FieldErrors{}
	c.state = SessionSubmitting
	return c.gen, nil
}

// FinishSubmit resolves a submit carrying the generation from BeginSubmit.
// A stale generation (the session was cancelled or superseded meanwhile) is
// discarded and reported as false. On success the session closes; on failure
// it reopens with the display message in the "submit" error slot.
func (c *FormController[F]) FinishSubmit(gen uint64, submitErr error, display string) bool {
	if c.gen != gen || c.state != SessionSubmitting {
		return false
	}
	if submitErr == nil {
		c.Close()
		return true
	}
	c.state = c.mode
	c.SetError("submit", display)
	return true
}
