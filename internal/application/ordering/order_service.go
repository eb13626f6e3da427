package ordering

import (
	"context"
	"time"

	appmatching "github.com/bara/backend/internal/application/matching"
	"github.com/bara/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderClusterer routes a just-placed anonymous order into a behavioral
// cluster. Satisfied by the matching assignment service.
type OrderClusterer interface {
	AssignOrder(ctx context.Context, order *ordering.Order) (*appmatching.AssignmentResult, error)
}

// OrderService handles order entry and lifecycle. Clustering runs after the
// order is saved and is best-effort: a clustering failure is logged and the
// order stands, unclustered, to be picked up later.
type OrderService struct {
	orderRepo ordering.OrderRepository
	clusterer OrderClusterer
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo ordering.OrderRepository, clusterer OrderClusterer, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		clusterer: clusterer,
		logger:    logger,
	}
}

// Place creates an order from the captured data. Anonymous orders are then
// routed into a cluster; orders placed for a known customer are attributed
// directly and never clustered.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	orderedAt := time.Now()
	if req.OrderedAt != nil {
		orderedAt = *req.OrderedAt
	}

	order, err := ordering.NewOrder(req.Type, orderedAt)
	if err != nil {
		return nil, err
	}

	if err := order.SetParty(req.PartySize, req.PartyComposition); err != nil {
		return nil, err
	}
	if req.ContactPhone != "" {
		order.SetContactPhone(req.ContactPhone)
	}
	if req.OrderName != "" {
		order.SetOrderName(req.OrderName)
	}
	if req.TableNumber != "" {
		order.SetTable(req.TableNumber)
	}
	if req.CustomerNotes != "" || req.InternalNotes != "" {
		order.SetNotes(req.CustomerNotes, req.InternalNotes)
	}
	if req.StaffObservations != "" {
		order.SetStaffObservations(req.StaffObservations)
	}

	for _, line := range req.Items {
		item, err := ordering.NewOrderItem(line.MenuItemID, line.Name, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		item.Notes = line.Notes
		order.AddItem(item)
	}
	if err := order.SetCharges(req.Tax, req.DeliveryFee); err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		if err := order.AssignToCustomer(*req.CustomerID); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	if order.IsAnonymous() {
		if _, err := s.clusterer.AssignOrder(ctx, order); err != nil {
			// Clustering never blocks order entry.
			s.logger.Warn("failed to cluster anonymous order",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}

	return ToOrderResponse(order), nil
}

// Get returns an order with its items
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// ListByCustomer returns a customer's orders, newest first
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

// ListByCluster returns a cluster's orders, newest first
func (s *OrderService) ListByCluster(ctx context.Context, clusterID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByClusterID(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

// UpdateStatus transitions an order through its lifecycle
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, target ordering.OrderStatus) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.UpdateStatus(target); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	return ToOrderResponse(order), nil
}

// RecordPayment marks an order as paid
func (s *OrderService) RecordPayment(ctx context.Context, id uuid.UUID, method string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.RecordPayment(method); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	return ToOrderResponse(order), nil
}

func toResponses(orders []ordering.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = *ToOrderResponse(&orders[i])
	}
	return responses
}
