package models

import (
	"time"

	"github.com/bara/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	AggregateModel
	CustomerID        *uuid.UUID             `gorm:"type:uuid;index"`
	ClusterID         *uuid.UUID             `gorm:"type:uuid;index"`
	Type              ordering.OrderType     `gorm:"type:varchar(20);not null;default:'dine_in'"`
	OrderName         string                 `gorm:"type:varchar(100)"`
	TableNumber       string                 `gorm:"type:varchar(20)"`
	PartySize         *int
	PartyComposition  string                 `gorm:"type:varchar(50)"`
	ContactPhone      string                 `gorm:"type:varchar(50)"`
	ContactDigits     string                 `gorm:"type:varchar(50);index"`
	Weekday           int                    `gorm:"not null"`
	TimeBucket        ordering.TimeBucket    `gorm:"type:varchar(20);not null"`
	Status            ordering.OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal          decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Tax               decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryFee       decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Total             decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus     ordering.PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaymentMethod     string                 `gorm:"type:varchar(50)"`
	CustomerNotes     string                 `gorm:"type:text"`
	InternalNotes     string                 `gorm:"type:text"`
	StaffObservations string                 `gorm:"type:text"`
	OrderedAt         time.Time              `gorm:"not null;index"`
	Items             []OrderItemModel       `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *ordering.Order {
	items := make([]ordering.OrderItem, len(m.Items))
	for i := range m.Items {
		items[i] = *m.Items[i].ToDomain()
	}

	return &ordering.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		ClusterID:         m.ClusterID,
		Type:              m.Type,
		OrderName:         m.OrderName,
		TableNumber:       m.TableNumber,
		PartySize:         m.PartySize,
		PartyComposition:  m.PartyComposition,
		ContactPhone:      m.ContactPhone,
		ContactDigits:     m.ContactDigits,
		Weekday:           time.Weekday(m.Weekday),
		TimeBucket:        m.TimeBucket,
		Status:            m.Status,
		Subtotal:          m.Subtotal,
		Tax:               m.Tax,
		DeliveryFee:       m.DeliveryFee,
		Total:             m.Total,
		PaymentStatus:     m.PaymentStatus,
		PaymentMethod:     m.PaymentMethod,
		CustomerNotes:     m.CustomerNotes,
		InternalNotes:     m.InternalNotes,
		StaffObservations: m.StaffObservations,
		OrderedAt:         m.OrderedAt,
		Items:             items,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *ordering.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.CustomerID = o.CustomerID
	m.ClusterID = o.ClusterID
	m.Type = o.Type
	m.OrderName = o.OrderName
	m.TableNumber = o.TableNumber
	m.PartySize = o.PartySize
	m.PartyComposition = o.PartyComposition
	m.ContactPhone = o.ContactPhone
	m.ContactDigits = o.ContactDigits
	m.Weekday = int(o.Weekday)
	m.TimeBucket = o.TimeBucket
	m.Status = o.Status
	m.Subtotal = o.Subtotal
	m.Tax = o.Tax
	m.DeliveryFee = o.DeliveryFee
	m.Total = o.Total
	m.PaymentStatus = o.PaymentStatus
	m.PaymentMethod = o.PaymentMethod
	m.CustomerNotes = o.CustomerNotes
	m.InternalNotes = o.InternalNotes
	m.StaffObservations = o.StaffObservations
	m.OrderedAt = o.OrderedAt

	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *ordering.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for the OrderItem domain entity.
type OrderItemModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name       string          `gorm:"type:varchar(200);not null"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes      string          `gorm:"type:text"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem entity.
func (m *OrderItemModel) ToDomain() *ordering.OrderItem {
	return &ordering.OrderItem{
		ID:         m.ID,
		OrderID:    m.OrderID,
		MenuItemID: m.MenuItemID,
		Name:       m.Name,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		LineTotal:  m.LineTotal,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem entity.
func (m *OrderItemModel) FromDomain(i *ordering.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.MenuItemID = i.MenuItemID
	m.Name = i.Name
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.LineTotal = i.LineTotal
	m.Notes = i.Notes
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}
