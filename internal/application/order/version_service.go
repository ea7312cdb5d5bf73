package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/donhauser001/order-engine/internal/domain/order"
	"github.com/donhauser001/order-engine/internal/domain/pricing"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/donhauser001/order-engine/internal/infrastructure/lock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCreateAttempts bounds the retry loop around version numbering.
// The per-order lock makes collisions rare; the retries cover writers
// on other processes that bypass the same lock backend.
const maxCreateAttempts = 3

// VersionService assigns contiguous version numbers and persists
// immutable priced snapshots. Numbering is serialized per order: a
// keyed lock covers the read-max-then-insert window, and the unique
// index on (order_id, version_number) backstops it.
type VersionService struct {
	orders   order.OrderRepository
	versions order.OrderVersionRepository
	catalog  order.CatalogService
	builder  *order.SnapshotBuilder
	locks    lock.Keyed
	logger   *zap.Logger
}

// NewVersionService creates a VersionService. catalog may be nil when
// callers always supply service and policy data inline.
func NewVersionService(
	orders order.OrderRepository,
	versions order.OrderVersionRepository,
	catalog order.CatalogService,
	locks lock.Keyed,
	logger *zap.Logger,
) *VersionService {
	return &VersionService{
		orders:   orders,
		versions: versions,
		catalog:  catalog,
		builder:  order.NewSnapshotBuilder(),
		locks:    locks,
		logger:   logger,
	}
}

// CreateVersion prices a new revision of an order and persists it under
// the next contiguous version number.
func (s *VersionService) CreateVersion(ctx context.Context, orderID uuid.UUID, req CreateVersionRequest) (*VersionResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanRevise() {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Cancelled orders cannot receive new versions")
	}

	version, err := s.buildSnapshot(ctx, o, req)
	if err != nil {
		return nil, err
	}

	if err := s.insertNumbered(ctx, version); err != nil {
		return nil, err
	}

	s.logger.Info("order version created",
		zap.String("order_id", orderID.String()),
		zap.Int("version_number", version.VersionNumber),
		zap.String("total_amount", version.TotalAmount.String()))

	resp := ToVersionResponse(version)
	return &resp, nil
}

// buildSnapshot resolves catalog data when the request carries none,
// then prices and validates the snapshot.
func (s *VersionService) buildSnapshot(ctx context.Context, o *order.Order, req CreateVersionRequest) (*order.OrderVersion, error) {
	services := req.Services
	policies := req.Policies
	if len(services) == 0 && len(req.SelectedServiceIDs) > 0 {
		if s.catalog == nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				"No service details supplied and no catalog configured")
		}
		var err error
		services, err = s.catalog.GetServiceDetails(ctx, req.SelectedServiceIDs)
		if err != nil {
			return nil, fmt.Errorf("load service details: %w", err)
		}
		policies, err = s.catalog.GetPoliciesForServices(ctx, req.SelectedServiceIDs)
		if err != nil {
			return nil, fmt.Errorf("load pricing policies: %w", err)
		}
	}

	version, err := s.builder.Build(order.SnapshotInput{
		OrderID:            o.ID,
		ClientID:           o.ClientID,
		ClientName:         o.ClientName,
		ContactName:        o.ContactName,
		ContactInfo:        o.ContactInfo,
		ProjectName:        o.ProjectName,
		SelectedServiceIDs: req.SelectedServiceIDs,
		Services:           services,
		Policies:           policies,
		CreatedBy:          req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	if err := version.Validate(); err != nil {
		return nil, err
	}
	return version, nil
}

// insertNumbered assigns the next version number and inserts the row.
// The keyed lock serializes numbering within this lock backend; a
// duplicate-key error from a concurrent writer triggers a renumbered
// retry, and persistent collisions surface as CONSISTENCY_CONFLICT.
func (s *VersionService) insertNumbered(ctx context.Context, version *order.OrderVersion) error {
	release, err := s.locks.Acquire(ctx, version.OrderID.String())
	if err != nil {
		return fmt.Errorf("acquire version lock: %w", err)
	}
	defer release()

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		maxNumber, err := s.versions.MaxVersionNumber(ctx, version.OrderID)
		if err != nil {
			return err
		}
		version.VersionNumber = maxNumber + 1

		err = s.versions.Insert(ctx, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		s.logger.Warn("version number collision, retrying",
			zap.String("order_id", version.OrderID.String()),
			zap.Int("version_number", version.VersionNumber),
			zap.Int("attempt", attempt))
	}
	return shared.ErrConsistencyConflict
}

// saveWithRevision persists identity-field changes and a new priced
// version together. The snapshot is built before anything is written,
// and SaveWithVersion commits order and version in one transaction, so
// a failed revision never leaves a half-applied update behind. Same
// lock-and-retry numbering as insertNumbered.
func (s *VersionService) saveWithRevision(ctx context.Context, o *order.Order, req CreateVersionRequest) (*order.OrderVersion, error) {
	version, err := s.buildSnapshot(ctx, o, req)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, o.ID.String())
	if err != nil {
		return nil, fmt.Errorf("acquire version lock: %w", err)
	}
	defer release()

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		maxNumber, err := s.versions.MaxVersionNumber(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		version.VersionNumber = maxNumber + 1

		err = s.orders.SaveWithVersion(ctx, o, version)
		if err == nil {
			return version, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Warn("version number collision, retrying",
			zap.String("order_id", o.ID.String()),
			zap.Int("version_number", version.VersionNumber),
			zap.Int("attempt", attempt))
	}
	return nil, shared.ErrConsistencyConflict
}

// GetVersions returns every version of an order, newest first
func (s *VersionService) GetVersions(ctx context.Context, orderID uuid.UUID) ([]VersionResponse, error) {
	versions, err := s.versions.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]VersionResponse, 0, len(versions))
	for i := range versions {
		responses = append(responses, ToVersionResponse(&versions[i]))
	}
	return responses, nil
}

// GetVersion returns one specific version of an order
func (s *VersionService) GetVersion(ctx context.Context, orderID uuid.UUID, versionNumber int) (*VersionResponse, error) {
	version, err := s.versions.FindByNumber(ctx, orderID, versionNumber)
	if err != nil {
		return nil, err
	}
	resp := ToVersionResponse(version)
	return &resp, nil
}

// GetLatestVersion returns the newest version of an order
func (s *VersionService) GetLatestVersion(ctx context.Context, orderID uuid.UUID) (*VersionResponse, error) {
	version, err := s.versions.FindLatest(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToVersionResponse(version)
	return &resp, nil
}

// GetLatestVersionNumber returns the highest version number of an
// order, 0 when it has no versions yet.
func (s *VersionService) GetLatestVersionNumber(ctx context.Context, orderID uuid.UUID) (int, error) {
	return s.versions.MaxVersionNumber(ctx, orderID)
}

// PreviewVersion prices a revision without persisting anything.
// The returned response carries version number 0.
func (s *VersionService) PreviewVersion(ctx context.Context, orderID uuid.UUID, req CreateVersionRequest) (*VersionResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	version, err := s.buildSnapshot(ctx, o, req)
	if err != nil {
		return nil, err
	}
	resp := ToVersionResponse(version)
	return &resp, nil
}

// ValidatePolicies checks a set of pricing policies for structural
// problems before they are offered on the order form.
func (s *VersionService) ValidatePolicies(policies []pricing.PricingPolicy) error {
	for i := range policies {
		if err := policies[i].ValidateConfiguration(); err != nil {
			return err
		}
	}
	return nil
}
