package ordering

import (
	"time"

	"github.com/bara/backend/internal/domain/crm"
	"github.com/bara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType represents how the order is fulfilled
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

// IsValid checks if the order type is valid
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeDelivery, OrderTypePickup:
		return true
	}
	return false
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPreparing || target == OrderStatusCancelled
	case OrderStatusPreparing:
		return target == OrderStatusReady || target == OrderStatusCancelled
	case OrderStatusReady:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// TimeBucket is the denormalized service-period bucket of an order,
// captured once at creation so feature extraction never re-derives it
// from the timestamp.
type TimeBucket string

const (
	TimeBucketBreakfast TimeBucket = "breakfast" // 06:00–10:59
	TimeBucketLunch     TimeBucket = "lunch"     // 11:00–14:59
	TimeBucketAfternoon TimeBucket = "afternoon" // 15:00–17:59
	TimeBucketDinner    TimeBucket = "dinner"    // 18:00–21:59
	TimeBucketLateNight TimeBucket = "latenight" // 22:00–05:59
)

// BucketForTime maps a timestamp to its service-period bucket
func BucketForTime(t time.Time) TimeBucket {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 11:
		return TimeBucketBreakfast
	case hour >= 11 && hour < 15:
		return TimeBucketLunch
	case hour >= 15 && hour < 18:
		return TimeBucketAfternoon
	case hour >= 18 && hour < 22:
		return TimeBucketDinner
	default:
		return TimeBucketLateNight
	}
}

// Order represents a placed order. It belongs to exactly one of: an
// identified customer, an unidentified cluster, or neither (fresh anonymous
// order). CustomerID and ClusterID are never both set; once CustomerID is
// set the linkage is immutable — an order moves cluster→customer, never
// customer→cluster.
type Order struct {
	shared.BaseAggregateRoot
	CustomerID        *uuid.UUID    `gorm:"type:uuid;index"`
	ClusterID         *uuid.UUID    `gorm:"type:uuid;index"`
	Type              OrderType     `gorm:"type:varchar(20);not null;default:'dine_in'"`
	OrderName         string        `gorm:"type:varchar(100)"` // name shouted at pickup, if any
	TableNumber       string        `gorm:"type:varchar(20)"`
	PartySize         *int          // nil = unknown, excluded from party-size similarity
	PartyComposition  string        `gorm:"type:varchar(50)"` // e.g. "2A2C" for 2 adults 2 children
	ContactPhone      string        `gorm:"type:varchar(50)"`
	ContactDigits     string        `gorm:"type:varchar(50);index"` // normalized phone, matching lookup key
	Weekday           time.Weekday  `gorm:"not null"`
	TimeBucket        TimeBucket    `gorm:"type:varchar(20);not null"`
	Status            OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax               decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryFee       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus     PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaymentMethod     string        `gorm:"type:varchar(50)"`
	CustomerNotes     string        `gorm:"type:text"`
	InternalNotes     string        `gorm:"type:text"`
	StaffObservations string        `gorm:"type:text"` // free-form recognition hints per visit
	OrderedAt         time.Time     `gorm:"not null;index"`
	Items             []OrderItem   `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new anonymous order placed at the given time. The
// weekday and time bucket are captured here and never re-derived.
func NewOrder(orderType OrderType, orderedAt time.Time) (*Order, error) {
	if !orderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", "Order type must be dine_in, delivery, or pickup")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              orderType,
		Weekday:           orderedAt.Weekday(),
		TimeBucket:        BucketForTime(orderedAt),
		Status:            OrderStatusPending,
		Subtotal:          decimal.Zero,
		Tax:               decimal.Zero,
		DeliveryFee:       decimal.Zero,
		Total:             decimal.Zero,
		PaymentStatus:     PaymentStatusUnpaid,
		OrderedAt:         orderedAt,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// SetParty records the observed party size and composition
func (o *Order) SetParty(size *int, composition string) error {
	if size != nil && (*size < 1 || *size > 100) {
		return shared.NewDomainError("INVALID_PARTY_SIZE", "Party size must be between 1 and 100")
	}

	o.PartySize = size
	o.PartyComposition = composition
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetContactPhone records the phone number captured with this order, if any.
// The normalized digit string is the lookup key for retroactive matching.
func (o *Order) SetContactPhone(phone string) {
	o.ContactPhone = phone
	o.ContactDigits = crm.NormalizePhone(phone)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetTable records the table number for dine-in orders
func (o *Order) SetTable(tableNumber string) {
	o.TableNumber = tableNumber
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetOrderName records the pickup/display name for the order
func (o *Order) SetOrderName(name string) {
	o.OrderName = name
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// AddItem appends a line item and recalculates the totals
func (o *Order) AddItem(item *OrderItem) {
	item.OrderID = o.ID
	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetCharges sets tax and delivery fee and recalculates the total
func (o *Order) SetCharges(tax, deliveryFee decimal.Decimal) error {
	if tax.IsNegative() || deliveryFee.IsNegative() {
		return shared.NewDomainError("INVALID_CHARGE", "Tax and delivery fee cannot be negative")
	}

	o.Tax = tax
	o.DeliveryFee = deliveryFee
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// UpdateStatus transitions the order to a new status
func (o *Order) UpdateStatus(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot transition order from "+string(o.Status)+" to "+string(target))
	}

	oldStatus := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, oldStatus, target))

	return nil
}

// RecordPayment marks the order as paid with the given method
func (o *Order) RecordPayment(method string) error {
	if o.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Order is already paid")
	}

	o.PaymentStatus = PaymentStatusPaid
	o.PaymentMethod = method
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetNotes sets customer-visible and internal notes
func (o *Order) SetNotes(customerNotes, internalNotes string) {
	o.CustomerNotes = customerNotes
	o.InternalNotes = internalNotes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetStaffObservations records free-form recognition hints for this visit
func (o *Order) SetStaffObservations(observations string) {
	o.StaffObservations = observations
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// AssignToCluster attaches an anonymous order to an unidentified cluster
func (o *Order) AssignToCluster(clusterID uuid.UUID) error {
	if clusterID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLUSTER", "Cluster ID cannot be empty")
	}
	if o.CustomerID != nil {
		return shared.NewDomainError("ALREADY_IDENTIFIED", "Order already belongs to a customer")
	}
	if o.ClusterID != nil {
		return shared.NewDomainError("ALREADY_CLUSTERED", "Order already belongs to a cluster")
	}

	o.ClusterID = &clusterID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderClusteredEvent(o, clusterID))

	return nil
}

// AssignToCustomer attributes the order to an identified customer, clearing
// any cluster linkage. Once set, the customer linkage is immutable.
func (o *Order) AssignToCustomer(customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if o.CustomerID != nil {
		return shared.NewDomainError("ALREADY_IDENTIFIED", "Order already belongs to a customer")
	}

	o.CustomerID = &customerID
	o.ClusterID = nil
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderAttributedEvent(o, customerID))

	return nil
}

// IsAnonymous returns true if the order has no customer and no cluster
func (o *Order) IsAnonymous() bool {
	return o.CustomerID == nil && o.ClusterID == nil
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Tax).Add(o.DeliveryFee)
}
