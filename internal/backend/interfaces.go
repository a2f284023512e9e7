package backend

import (
	"context"

	"kilofresh-admin/internal/domain"
)

// CreateCategoryParams holds the multipart fields for creating a category.
// Image is required on create.
type CreateCategoryParams struct {
	Name  string
	Image *FileUpload
}

// UpdateCategoryParams holds the multipart fields for updating a category.
// A nil Image keeps the image already persisted on the category.
type UpdateCategoryParams struct {
	Name  string
	Image *FileUpload
}

// ProductParams holds the multipart fields shared by product create and
// update. On update an empty Images slice keeps the persisted images.
type ProductParams struct {
	Name        string
	Description string
	PriceBefore float64
	PriceAfter  float64
	Category    string
	IsOffer     bool
	Images      []FileUpload
}

// CheckoutParams is the JSON payload for creating an order from a cart.
type CheckoutParams struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
	CartID   string  `json:"cartId"`
	Shipping float64 `json:"shipping"`
}

// CategoryAPI defines the backend operations for categories.
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, params CreateCategoryParams) (*domain.Category, string, error)
	UpdateCategory(ctx context.Context, id string, params UpdateCategoryParams) (*domain.Category, string, error)
	DeleteCategory(ctx context.Context, id string) (string, error)
}

// ProductAPI defines the backend operations for products.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, *domain.Category, error)
	ListOffers(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, params ProductParams) (*domain.Product, string, error)
	UpdateProduct(ctx context.Context, id string, params ProductParams) (*domain.Product, string, error)
	DeleteProduct(ctx context.Context, id string) (string, error)
}

// OrderAPI defines the backend operations for orders.
type OrderAPI interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	Checkout(ctx context.Context, params CheckoutParams) (*domain.Order, string, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, string, error)
	DeleteOrder(ctx context.Context, id string) (string, error)
}
