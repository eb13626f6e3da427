package ordering

import (
	"time"

	"github.com/bara/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest carries the data captured at order entry
type PlaceOrderRequest struct {
	Type              ordering.OrderType      `json:"type"`
	OrderedAt         *time.Time              `json:"ordered_at"`
	OrderName         string                  `json:"order_name"`
	TableNumber       string                  `json:"table_number"`
	PartySize         *int                    `json:"party_size"`
	PartyComposition  string                  `json:"party_composition"`
	ContactPhone      string                  `json:"contact_phone"`
	CustomerID        *uuid.UUID              `json:"customer_id"`
	Items             []PlaceOrderItemRequest `json:"items"`
	Tax               decimal.Decimal         `json:"tax"`
	DeliveryFee       decimal.Decimal         `json:"delivery_fee"`
	CustomerNotes     string                  `json:"customer_notes"`
	InternalNotes     string                  `json:"internal_notes"`
	StaffObservations string                  `json:"staff_observations"`
}

// PlaceOrderItemRequest is one line of an order being placed
type PlaceOrderItemRequest struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes"`
}

// OrderItemResponse is the API view of an order line
type OrderItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	Notes      string          `json:"notes,omitempty"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID                uuid.UUID              `json:"id"`
	CustomerID        *uuid.UUID             `json:"customer_id,omitempty"`
	ClusterID         *uuid.UUID             `json:"cluster_id,omitempty"`
	Type              ordering.OrderType     `json:"type"`
	OrderName         string                 `json:"order_name,omitempty"`
	TableNumber       string                 `json:"table_number,omitempty"`
	PartySize         *int                   `json:"party_size,omitempty"`
	PartyComposition  string                 `json:"party_composition,omitempty"`
	ContactPhone      string                 `json:"contact_phone,omitempty"`
	Weekday           time.Weekday           `json:"weekday"`
	TimeBucket        ordering.TimeBucket    `json:"time_bucket"`
	Status            ordering.OrderStatus   `json:"status"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
	Tax               decimal.Decimal        `json:"tax"`
	DeliveryFee       decimal.Decimal        `json:"delivery_fee"`
	Total             decimal.Decimal        `json:"total"`
	PaymentStatus     ordering.PaymentStatus `json:"payment_status"`
	PaymentMethod     string                 `json:"payment_method,omitempty"`
	CustomerNotes     string                 `json:"customer_notes,omitempty"`
	InternalNotes     string                 `json:"internal_notes,omitempty"`
	StaffObservations string                 `json:"staff_observations,omitempty"`
	OrderedAt         time.Time              `json:"ordered_at"`
	Items             []OrderItemResponse    `json:"items"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *ordering.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items[i] = OrderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.LineTotal,
			Notes:      item.Notes,
		}
	}

	return &OrderResponse{
		ID:                order.ID,
		CustomerID:        order.CustomerID,
		ClusterID:         order.ClusterID,
		Type:              order.Type,
		OrderName:         order.OrderName,
		TableNumber:       order.TableNumber,
		PartySize:         order.PartySize,
		PartyComposition:  order.PartyComposition,
		ContactPhone:      order.ContactPhone,
		Weekday:           order.Weekday,
		TimeBucket:        order.TimeBucket,
		Status:            order.Status,
		Subtotal:          order.Subtotal,
		Tax:               order.Tax,
		DeliveryFee:       order.DeliveryFee,
		Total:             order.Total,
		PaymentStatus:     order.PaymentStatus,
		PaymentMethod:     order.PaymentMethod,
		CustomerNotes:     order.CustomerNotes,
		InternalNotes:     order.InternalNotes,
		StaffObservations: order.StaffObservations,
		OrderedAt:         order.OrderedAt,
		Items:             items,
	}
}
