package backend

import (
	"context"
	"net/http"

	"kilofresh-admin/internal/domain"
)

// Per-operation fallback messages, used when the backend fails without a
// parseable message body. These must stay byte-identical to what the Kilo
// Fresh clients display.
const (
	msgFetchCategories = "فشل في جلب الفئات"
	msgFetchCategory   = "فشل في جلب الفئة"
	msgCreateCategory  = "فشل في إضافة الفئة"
	msgUpdateCategory  = "فشل في تحديث الفئة"
	msgDeleteCategory  = "فشل في حذف الفئة"
	msgCreatedCategory = "تم إضافة الفئة بنجاح"
	msgUpdatedCategory = "تم تحديث الفئة بنجاح"
	msgDeletedCategory = "تم حذف الفئة بنجاح"
)

// ListCategories fetches the full category collection in backend order.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var res struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.getJSON(ctx, "/categories/category/getAll", msgFetchCategories, &res); err != nil {
		return nil, err
	}
	return res.Categories, nil
}

// GetCategoryByID fetches a single category.
func (c *Client) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var res struct {
		Category domain.Category `json:"category"`
	}
	if err := c.getJSON(ctx, "/categories/category/getById/"+id, msgFetchCategory, &res); err != nil {
		return nil, err
	}
	return &res.Category, nil
}

// CreateCategory submits a new category as multipart form data. It returns
// the created category and the localized success message.
func (c *Client) CreateCategory(ctx context.Context, params CreateCategoryParams) (*domain.Category, string, error) {
	f := newForm()
	f.field("name", params.Name)
	if params.Image != nil {
		f.file("image", *params.Image)
	}
	body, contentType, err := f.close()
	if err != nil {
		return nil, "", &Error{Message: msgCreateCategory, Err: err}
	}

	var res struct {
		Category domain.Category `json:"category"`
		Message  string          `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/categories/addCategory", contentType, body, msgCreateCategory, &res); err != nil {
		return nil, "", err
	}
	if res.Message == "" {
		res.Message = msgCreatedCategory
	}
	return &res.Category, res.Message, nil
}

// UpdateCategory updates a category; the image part is only sent when a new
// file was staged.
func (c *Client) UpdateCategory(ctx context.Context, id string, params UpdateCategoryParams) (*domain.Category, string, error) {
	f := newForm()
	f.field("name", params.Name)
	if params.Image != nil {
		f.file("image", *params.Image)
	}
	body, contentType, err := f.close()
	if err != nil {
		return nil, "", &Error{Message: msgUpdateCategory, Err: err}
	}

	var res struct {
		Category domain.Category `json:"category"`
		Message  string          `json:"message"`
	}
	if err := c.do(ctx, http.MethodPut, "/categories/updateCategory/"+id, contentType, body, msgUpdateCategory, &res); err != nil {
		return nil, "", err
	}
	if res.Message == "" {
		res.Message = msgUpdatedCategory
	}
	return &res.Category, res.Message, nil
}

// DeleteCategory removes a category and returns the success message.
func (c *Client) DeleteCategory(ctx context.Context, id string) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	if err := c.deleteJSON(ctx, "/categories/deleteCategory/"+id, msgDeleteCategory, &res); err != nil {
		return "", err
	}
	if res.Message == "" {
		res.Message = msgDeletedCategory
	}
	return res.Message, nil
}
