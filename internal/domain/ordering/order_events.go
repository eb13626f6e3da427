package ordering

import (
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderClustered     = "OrderClustered"
	EventTypeOrderAttributed    = "OrderAttributed"
)

// OrderCreatedEvent is published when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Type    OrderType `json:"type"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		Type:            order.Type,
	}
}

// OrderStatusChangedEvent is published when an order's status changes
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID   `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, oldStatus, newStatus OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// OrderClusteredEvent is published when an anonymous order joins a cluster
type OrderClusteredEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	ClusterID uuid.UUID `json:"cluster_id"`
}

// NewOrderClusteredEvent creates a new OrderClusteredEvent
func NewOrderClusteredEvent(order *Order, clusterID uuid.UUID) *OrderClusteredEvent {
	return &OrderClusteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderClustered, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		ClusterID:       clusterID,
	}
}

// OrderAttributedEvent is published when an order is attributed to a customer
type OrderAttributedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewOrderAttributedEvent creates a new OrderAttributedEvent
func NewOrderAttributedEvent(order *Order, customerID uuid.UUID) *OrderAttributedEvent {
	return &OrderAttributedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAttributed, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		CustomerID:      customerID,
	}
}
