package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// FileUpload is a staged image handed to the backend as one multipart file
// part.
type FileUpload struct {
	Name    string // original filename
	Content []byte
}

// form accumulates a multipart/form-data body, deferring error handling to
// close so call sites stay flat.
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *form) file(field string, u FileUpload) {
	if f.err != nil {
		return
	}
	part, err := f.w.CreateFormFile(field, u.Name)
	if err != nil {
		f.err = err
		return
	}
	if _, err := part.Write(u.Content); err != nil {
		f.err = err
	}
}

// close finalizes the body and returns it with its content type.
func (f *form) close() (*bytes.Buffer, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("build multipart form: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("build multipart form: %w", err)
	}
	return &f.buf, f.w.FormDataContentType(), nil
}
