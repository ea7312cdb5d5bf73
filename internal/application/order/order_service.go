package order

import (
	"context"
	"errors"

	"github.com/donhauser001/order-engine/internal/domain/order"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService manages order identity records and projects the current
// view from the latest version. Pricing itself lives in VersionService.
type OrderService struct {
	orders   order.OrderRepository
	versions *VersionService
	logger   *zap.Logger
}

// NewOrderService creates an OrderService
func NewOrderService(orders order.OrderRepository, versions *VersionService, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		versions: versions,
		logger:   logger,
	}
}

// Create creates an order. When services are selected the first priced
// version is built up front and persisted with the order in one
// transaction, so a created order is never silently unpriced.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*CurrentOrderView, error) {
	o, err := order.NewOrder(req.ClientID, req.ClientName, req.ProjectName, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	o.SetContact(req.ContactName, req.ContactInfo)
	if req.ProjectID != nil {
		o.SetProject(*req.ProjectID, req.ProjectName)
	}
	o.SetRemark(req.Remark)

	if len(req.SelectedServiceIDs) == 0 {
		if err := s.orders.Save(ctx, o); err != nil {
			return nil, err
		}
		s.logger.Info("order created without pricing",
			zap.String("order_id", o.ID.String()),
			zap.String("client_id", o.ClientID.String()))
		view := CurrentOrderView{OrderResponse: ToOrderResponse(o)}
		return &view, nil
	}

	version, err := s.versions.buildSnapshot(ctx, o, CreateVersionRequest{
		SelectedServiceIDs: req.SelectedServiceIDs,
		Services:           req.Services,
		Policies:           req.Policies,
		CreatedBy:          req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	version.VersionNumber = 1

	if err := s.orders.SaveWithVersion(ctx, o, version); err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("client_id", o.ClientID.String()),
		zap.String("total_amount", version.TotalAmount.String()))

	return s.currentView(o, version), nil
}

// Update applies identity-field changes. When the request also selects
// services, the field changes and the new priced version are committed
// in one transaction; a failed revision leaves the order untouched.
func (s *OrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdateOrderRequest, revision *CreateVersionRequest) (*CurrentOrderView, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsCancelled() {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Cancelled orders cannot be updated")
	}

	if req.ClientName != nil {
		if *req.ClientName == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Client name cannot be empty")
		}
		o.ClientName = *req.ClientName
	}
	if req.ContactName != nil {
		o.ContactName = *req.ContactName
	}
	if req.ContactInfo != nil {
		o.ContactInfo = *req.ContactInfo
	}
	if req.ProjectName != nil {
		o.ProjectName = *req.ProjectName
	}
	if req.Remark != nil {
		o.Remark = *req.Remark
	}
	o.Touch(req.UpdatedBy)

	if revision == nil {
		if err := s.orders.Save(ctx, o); err != nil {
			return nil, err
		}
		return s.GetCurrentView(ctx, orderID)
	}

	version, err := s.versions.saveWithRevision(ctx, o, *revision)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order updated with new version",
		zap.String("order_id", orderID.String()),
		zap.Int("version_number", version.VersionNumber))
	return s.currentView(o, version), nil
}

// Activate moves a draft order into normal status
func (s *OrderService) Activate(ctx context.Context, orderID, updatedBy uuid.UUID) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.Activate(updatedBy); err != nil {
		return err
	}
	return s.orders.Save(ctx, o)
}

// Cancel moves an order into cancelled status. Its priced history stays
// intact and readable.
func (s *OrderService) Cancel(ctx context.Context, orderID, updatedBy uuid.UUID) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.Cancel(updatedBy); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.logger.Info("order cancelled", zap.String("order_id", orderID.String()))
	return nil
}

// Delete removes an order together with its whole version history
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.String("order_id", orderID.String()))
	return nil
}

// List returns a page of current order views matching the filter
func (s *OrderService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[CurrentOrderView], error) {
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]CurrentOrderView, 0, len(orders))
	for i := range orders {
		view, err := s.projectCurrent(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetCurrentView returns the order joined with its latest version.
// An order without versions yields a view with nil derived fields.
func (s *OrderService) GetCurrentView(ctx context.Context, orderID uuid.UUID) (*CurrentOrderView, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.projectCurrent(ctx, o)
}

func (s *OrderService) projectCurrent(ctx context.Context, o *order.Order) (*CurrentOrderView, error) {
	latest, err := s.versions.versions.FindLatest(ctx, o.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			view := CurrentOrderView{OrderResponse: ToOrderResponse(o)}
			return &view, nil
		}
		return nil, err
	}
	return s.currentView(o, latest), nil
}

func (s *OrderService) currentView(o *order.Order, latest *order.OrderVersion) *CurrentOrderView {
	resp := ToVersionResponse(latest)
	number := latest.VersionNumber
	amount := latest.TotalAmount
	words := latest.TotalAmountRMB
	return &CurrentOrderView{
		OrderResponse:    ToOrderResponse(o),
		CurrentVersion:   &number,
		CurrentAmount:    &amount,
		CurrentAmountRMB: &words,
		LatestVersion:    &resp,
	}
}
