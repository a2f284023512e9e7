package console

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kilofresh-admin/internal/backend"
	"kilofresh-admin/internal/domain"
)

type MockCategoryAPI struct {
	mock.Mock
}

func (m *MockCategoryAPI) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryAPI) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryAPI) CreateCategory(ctx context.Context, params backend.CreateCategoryParams) (*domain.Category, string, error) {
	args := m.Called(ctx, params)
	var cat *domain.Category
	if args.Get(0) != nil {
		cat = args.Get(0).(*domain.Category)
	}
	return cat, args.String(1), args.Error(2)
}

func (m *MockCategoryAPI) UpdateCategory(ctx context.Context, id string, params backend.UpdateCategoryParams) (*domain.Category, string, error) {
	args := m.Called(ctx, id, params)
	var cat *domain.Category
	if args.Get(0) != nil {
		cat = args.Get(0).(*domain.Category)
	}
	return cat, args.String(1), args.Error(2)
}

func (m *MockCategoryAPI) DeleteCategory(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockProductAPI struct {
	mock.Mock
}

func (m *MockProductAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductAPI) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductAPI) GetProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, *domain.Category, error) {
	args := m.Called(ctx, categoryID)
	var products []domain.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]domain.Product)
	}
	var cat *domain.Category
	if args.Get(1) != nil {
		cat = args.Get(1).(*domain.Category)
	}
	return products, cat, args.Error(2)
}

func (m *MockProductAPI) ListOffers(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductAPI) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductAPI) CreateProduct(ctx context.Context, params backend.ProductParams) (*domain.Product, string, error) {
	args := m.Called(ctx, params)
	var p *domain.Product
	if args.Get(0) != nil {
		p = args.Get(0).(*domain.Product)
	}
	return p, args.String(1), args.Error(2)
}

func (m *MockProductAPI) UpdateProduct(ctx context.Context, id string, params backend.ProductParams) (*domain.Product, string, error) {
	args := m.Called(ctx, id, params)
	var p *domain.Product
	if args.Get(0) != nil {
		p = args.Get(0).(*domain.Product)
	}
	return p, args.String(1), args.Error(2)
}

func (m *MockProductAPI) DeleteProduct(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockOrderAPI struct {
	mock.Mock
}

func (m *MockOrderAPI) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderAPI) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderAPI) Checkout(ctx context.Context, params backend.CheckoutParams) (*domain.Order, string, error) {
	args := m.Called(ctx, params)
	var o *domain.Order
	if args.Get(0) != nil {
		o = args.Get(0).(*domain.Order)
	}
	return o, args.String(1), args.Error(2)
}

func (m *MockOrderAPI) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, string, error) {
	args := m.Called(ctx, id, status)
	var o *domain.Order
	if args.Get(0) != nil {
		o = args.Get(0).(*domain.Order)
	}
	return o, args.String(1), args.Error(2)
}

func (m *MockOrderAPI) DeleteOrder(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
