package console

import (
	"encoding/base64"
	"net/http"
	"sync"

	"kilofresh-admin/internal/backend"
)

// FileInput is a newly selected local file about to be staged.
type FileInput struct {
	Name    string
	Content []byte
}

// StagingBuffer reconciles three kinds of images into one submission payload:
// images already persisted on the entity (remote URLs, kept unless removed),
// newly selected files pending upload, and removals indexed into the combined
// display list (existing images first, then staged previews, in that order).
//
// The staged files and their previews are parallel lists: every add and
// remove keeps them the same length and in the same order.
type StagingBuffer struct {
	existing    []string
	files       []backend.FileUpload
	previews    []string
	maxFileSize int64
}

// NewStagingBuffer creates a buffer seeded with the entity's persisted image
// URLs (empty for a create form).
func NewStagingBuffer(existing []string, maxFileSize int64) *StagingBuffer {
	return &StagingBuffer{
		existing:    append([]string(nil), existing...),
		maxFileSize: maxFileSize,
	}
}

// AddBatch stages the files selected in one action. Files above the size
// ceiling are excluded and reported via ErrFileTooLarge while the remaining
// files still stage. Previews are decoded concurrently and the whole batch is
// appended at once, in selection order, only after every decode finished,
// so a partial batch is never visible.
func (b *StagingBuffer) AddBatch(inputs []FileInput) error {
	valid := make([]FileInput, 0, len(inputs))
	oversized := false
	for _, in := range inputs {
		if int64(len(in.Content)) > b.maxFileSize {
			oversized = true
			continue
		}
		valid = append(valid, in)
	}

	if len(valid) > 0 {
		previews := make([]string, len(valid))
		var wg sync.WaitGroup
		for i, in := range valid {
			wg.Add(1)
			go func(i int, in FileInput) {
				defer wg.Done()
				previews[i] = dataURL(in.Content)
			}(i, in)
		}
		wg.Wait()

		for _, in := range valid {
			b.files = append(b.files, backend.FileUpload{Name: in.Name, Content: in.Content})
		}
		b.previews = append(b.previews, previews...)
	}

	if oversized {
		return ErrFileTooLarge
	}
	return nil
}

// RemoveAt removes the image at index k of the combined display list. An
// index inside the existing segment drops that persisted image from the
// submission; otherwise the staged file and its preview are dropped at the
// same relative position. It reports whether the index was in range.
func (b *StagingBuffer) RemoveAt(k int) bool {
	if k < 0 {
		return false
	}
	if k < len(b.existing) {
		b.existing = append(b.existing[:k], b.existing[k+1:]...)
		return true
	}
	k -= len(b.existing)
	if k >= len(b.files) {
		return false
	}
	b.files = append(b.files[:k], b.files[k+1:]...)
	b.previews = append(b.previews[:k], b.previews[k+1:]...)
	return true
}

// Clear drops every staged file and preview, keeping the existing segment.
// The category form uses it to replace its single image.
func (b *StagingBuffer) Clear() {
	b.files = nil
	b.previews = nil
}

// Count returns retained existing images plus staged files; the "at least
// one image" rule is computed against it in create and edit mode alike.
func (b *StagingBuffer) Count() int {
	return len(b.existing) + len(b.files)
}

// Existing returns the persisted image URLs still retained.
func (b *StagingBuffer) Existing() []string {
	return append([]string(nil), b.existing...)
}

// Files returns the staged uploads in selection order.
func (b *StagingBuffer) Files() []backend.FileUpload {
	return append([]backend.FileUpload(nil), b.files...)
}

// Display returns the combined display list: existing URLs first, then the
// staged previews.
func (b *StagingBuffer) Display() []string {
	out := make([]string, 0, len(b.existing)+len(b.previews))
	out = append(out, b.existing...)
	out = append(out, b.previews...)
	return out
}

// dataURL turns raw image bytes into an inline data URL the console client
// can render directly, without another fetch.
func dataURL(content []byte) string {
	mime := http.DetectContentType(content)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
}
