package ordering

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByCustomerID finds all orders attributed to a customer, newest first
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]Order, error)

	// FindByClusterID finds all orders linked to a cluster, newest first
	FindByClusterID(ctx context.Context, clusterID uuid.UUID) ([]Order, error)

	// FindByContactPhone finds orders whose captured contact phone matches the
	// normalized digit string. Required input to phone-based retroactive
	// matching.
	FindByContactPhone(ctx context.Context, normalizedPhone string, limit int) ([]Order, error)

	// FindAnonymous finds orders with neither customer nor cluster linkage,
	// newest first
	FindAnonymous(ctx context.Context, limit int) ([]Order, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves an order with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error
}
