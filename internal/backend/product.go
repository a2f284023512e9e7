package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"kilofresh-admin/internal/domain"
)

const (
	msgFetchProducts  = "فشل في جلب المنتجات"
	msgFetchProduct   = "فشل في جلب المنتج"
	msgFetchOffers    = "فشل في جلب المنتجات المعروضة"
	msgSearchProducts = "فشل في البحث"
	msgCreateProduct  = "فشل في إضافة المنتج"
	msgUpdateProduct  = "فشل في تحديث المنتج"
	msgDeleteProduct  = "فشل في حذف المنتج"
	msgCreatedProduct = "تم إضافة المنتج بنجاح"
	msgUpdatedProduct = "تم تحديث المنتج بنجاح"
	msgDeletedProduct = "تم حذف المنتج بنجاح"
)

// productList is the common list response shape.
type productList struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// ListProducts fetches the full product collection in backend order.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var res productList
	if err := c.getJSON(ctx, "/products/product/getAll", msgFetchProducts, &res); err != nil {
		return nil, err
	}
	return res.Products, nil
}

// GetProductByID fetches a single product.
func (c *Client) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var res struct {
		Product domain.Product `json:"product"`
	}
	if err := c.getJSON(ctx, "/products/product/getById/"+id, msgFetchProduct, &res); err != nil {
		return nil, err
	}
	return &res.Product, nil
}

// GetProductsByCategory fetches the products of one category along with the
// category itself.
func (c *Client) GetProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, *domain.Category, error) {
	var res struct {
		Products []domain.Product `json:"products"`
		Category domain.Category  `json:"category"`
		Count    int              `json:"count"`
	}
	if err := c.getJSON(ctx, "/products/product/getByCategory/"+categoryID, msgFetchProducts, &res); err != nil {
		return nil, nil, err
	}
	return res.Products, &res.Category, nil
}

// ListOffers fetches the products flagged as offers.
func (c *Client) ListOffers(ctx context.Context) ([]domain.Product, error) {
	var res productList
	if err := c.getJSON(ctx, "/products/product/offers", msgFetchOffers, &res); err != nil {
		return nil, err
	}
	return res.Products, nil
}

// SearchProducts runs a free-text product search.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	var res struct {
		Products []domain.Product `json:"products"`
		Query    string           `json:"query"`
		Count    int              `json:"count"`
	}
	path := "/products/product/search?query=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, msgSearchProducts, &res); err != nil {
		return nil, err
	}
	return res.Products, nil
}

// productForm encodes the shared multipart fields for create and update.
func productForm(params ProductParams) *form {
	f := newForm()
	f.field("name", params.Name)
	f.field("priceBefore", strconv.FormatFloat(params.PriceBefore, 'f', -1, 64))
	f.field("priceAfter", strconv.FormatFloat(params.PriceAfter, 'f', -1, 64))
	f.field("description", params.Description)
	f.field("category", params.Category)
	f.field("isOffer", strconv.FormatBool(params.IsOffer))
	for _, img := range params.Images {
		f.file("images", img)
	}
	return f
}

// CreateProduct submits a new product as multipart form data.
func (c *Client) CreateProduct(ctx context.Context, params ProductParams) (*domain.Product, string, error) {
	body, contentType, err := productForm(params).close()
	if err != nil {
		return nil, "", &Error{Message: msgCreateProduct, Err: err}
	}

	var res struct {
		Product domain.Product `json:"product"`
		Message string         `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/products/addProduct", contentType, body, msgCreateProduct, &res); err != nil {
		return nil, "", err
	}
	if res.Message == "" {
		res.Message = msgCreatedProduct
	}
	return &res.Product, res.Message, nil
}

// UpdateProduct updates a product; image parts are only sent for newly staged
// files, existing images stay untouched on the backend.
func (c *Client) UpdateProduct(ctx context.Context, id string, params ProductParams) (*domain.Product, string, error) {
	body, contentType, err := productForm(params).close()
	if err != nil {
		return nil, "", &Error{Message: msgUpdateProduct, Err: err}
	}

	var res struct {
		Product domain.Product `json:"product"`
		Message string         `json:"message"`
	}
	if err := c.do(ctx, http.MethodPut, "/products/updateProduct/"+id, contentType, body, msgUpdateProduct, &res); err != nil {
		return nil, "", err
	}
	if res.Message == "" {
		res.Message = msgUpdatedProduct
	}
	return &res.Product, res.Message, nil
}

// DeleteProduct removes a product and returns the success message.
func (c *Client) DeleteProduct(ctx context.Context, id string) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	if err := c.deleteJSON(ctx, "/products/deleteProduct/"+id, msgDeleteProduct, &res); err != nil {
		return "", err
	}
	if res.Message == "" {
		res.Message = msgDeletedProduct
	}
	return res.Message, nil
}
