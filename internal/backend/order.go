package backend

import (
	"context"
	"net/http"

	"kilofresh-admin/internal/domain"
)

const (
	msgFetchOrders       = "فشل في جلب الطلبات"
	msgFetchOrder        = "فشل في جلب الطلب"
	msgCreateOrder       = "فشل في إنشاء الطلب"
	msgUpdateOrderStatus = "فشل في تحديث حالة الطلب"
	msgDeleteOrder       = "فشل في حذف الطلب"
	msgCreatedOrder      = "تم إنشاء الطلب بنجاح"
	msgUpdatedOrder      = "تم تحديث حالة الطلب بنجاح"
	msgDeletedOrder      = "تم حذف الطلب بنجاح"
)

// defaultShipping is applied at checkout when no shipping cost is given.
const defaultShipping = 50

// ListOrders fetches the full order collection in backend order.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var res struct {
		Orders []domain.Order `json:"orders"`
		Count  int            `json:"count"`
	}
	if err := c.getJSON(ctx, "/order/getAll", msgFetchOrders, &res); err != nil {
		return nil, err
	}
	return res.Orders, nil
}

// GetOrderByID fetches a single order with its full detail.
func (c *Client) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	var res struct {
		Order domain.Order `json:"order"`
	}
	if err := c.getJSON(ctx, "/order/getById/"+id, msgFetchOrder, &res); err != nil {
		return nil, err
	}
	return &res.Order, nil
}

// Checkout creates an order from a cart. A zero Shipping falls back to the
// backend's default of 50.
func (c *Client) Checkout(ctx context.Context, params CheckoutParams) (*domain.Order, string, error) {
	if params.Shipping == 0 {
		params.Shipping = defaultShipping
	}

	var res struct {
		Order   domain.Order `json:"order"`
		Message string       `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/order/checkout", params, msgCreateOrder, &res); err != nil {
		return nil, "", err
	}
	if res.Message == "" {
		res.Message = msgCreatedOrder
	}
	return &res.Order, res.Message, nil
}

// UpdateOrderStatus moves an order to the given status. The backend accepts
// any transition within the fixed enumeration.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, string, error) {
	payload := struct {
		Status domain.OrderStatus `json:"status"`
	}{Status: status}

	var res struct {
		Order   domain.Order `json:"order"`
		Message string       `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPut, "/order/updateStatus/"+id, payload, msgUpdateOrderStatus, &res); err != nil {
		return nil, "", err
	}
	if res.Message == "" {
		res.Message = msgUpdatedOrder
	}
	return &res.Order, res.Message, nil
}

// DeleteOrder removes an order and returns the success message.
func (c *Client) DeleteOrder(ctx context.Context, id string) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	if err := c.deleteJSON(ctx, "/order/delete/"+id, msgDeleteOrder, &res); err != nil {
		return "", err
	}
	if res.Message == "" {
		res.Message = msgDeletedOrder
	}
	return res.Message, nil
}
