package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/user/marina-office/internal/domain"
)

// OccupancyUseCase exposes the occupancy ledger operations on resources.
// All operations are manager-only and scoped to the resource's dock.
type OccupancyUseCase struct {
	resources domain.ResourceRepository
	feed      domain.ChangeFeed
	logger    *slog.Logger
}

// NewOccupancyUseCase creates a new OccupancyUseCase.
func NewOccupancyUseCase(resources domain.ResourceRepository, feed domain.ChangeFeed, logger *slog.Logger) *OccupancyUseCase {
	return &OccupancyUseCase{
		resources: resources,
		feed:      feed,
		logger:    logger,
	}
}

func (uc *OccupancyUseCase) loadScoped(ctx context.Context, actor domain.Actor, resourceID uuid.UUID) (*domain.Resource, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	resource, err := uc.resources.FindByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDock(resource.DockID) {
		return nil, domain.ErrForbidden
	}
	return resource, nil
}

// AssignTenants replaces the occupant set of a resource and re-derives its
// status.
func (uc *OccupancyUseCase) AssignTenants(ctx context.Context, actor domain.Actor, resourceID uuid.UUID, accountIDs []uuid.UUID) (*domain.Resource, error) {
	resource, err := uc.loadScoped(ctx, actor, resourceID)
	if err != nil {
		return nil, err
	}
	resource.AssignOccupants(accountIDs)
	if err := uc.resources.Update(ctx, resource); err != nil {
		return nil, err
	}
	uc.publishResourceChange(ctx, resource.ID)
	return resource, nil
}

// SetInvoiceResponsible points billing for the resource at one of its listed
// tenants.
func (uc *OccupancyUseCase) SetInvoiceResponsible(ctx context.Context, actor domain.Actor, resourceID, accountID uuid.UUID) (*domain.Resource, error) {
	resource, err := uc.loadScoped(ctx, actor, resourceID)
	if err != nil {
		return nil, err
	}
	if err := resource.SetInvoiceResponsible(accountID); err != nil {
		return nil, err
	}
	if err := uc.resources.Update(ctx, resource); err != nil {
		return nil, err
	}
	uc.publishResourceChange(ctx, resource.ID)
	return resource, nil
}

// RemoveTenant drops an account from the resource's tenant list and occupant
// set, reassigning invoice responsibility as needed.
func (uc *OccupancyUseCase) RemoveTenant(ctx context.Context, actor domain.Actor, resourceID, accountID uuid.UUID) (*domain.Resource, error) {
	resource, err := uc.loadScoped(ctx, actor, resourceID)
	if err != nil {
		return nil, err
	}
	resource.RemoveTenant(accountID)
	if err := uc.resources.Update(ctx, resource); err != nil {
		return nil, err
	}
	uc.publishResourceChange(ctx, resource.ID)
	return resource, nil
}

// SetSecondHand toggles the second-hand allowance on the resource.
func (uc *OccupancyUseCase) SetSecondHand(ctx context.Context, actor domain.Actor, resourceID uuid.UUID, enabled bool) (*domain.Resource, error) {
	resource, err := uc.loadScoped(ctx, actor, resourceID)
	if err != nil {
		return nil, err
	}
	resource.SetSecondHand(enabled)
	if err := uc.resources.Update(ctx, resource); err != nil {
		return nil, err
	}
	uc.publishResourceChange(ctx, resource.ID)
	return resource, nil
}

// SetSecondHandTenant records a sub-tenant on the resource.
func (uc *OccupancyUseCase) SetSecondHandTenant(ctx context.Context, actor domain.Actor, resourceID, accountID uuid.UUID, invoiceDirectly bool) (*domain.Resource, error) {
	resource, err := uc.loadScoped(ctx, actor, resourceID)
	if err != nil {
		return nil, err
	}
	if err := resource.SetSecondHandTenant(accountID, invoiceDirectly); err != nil {
		return nil, err
	}
	if err := uc.resources.Update(ctx, resource); err != nil {
		return nil, err
	}
	uc.publishResourceChange(ctx, resource.ID)
	return resource, nil
}

// publishResourceChange nudges live list views. Loss of a notice is
// harmless, so a publish failure is only logged.
func (uc *OccupancyUseCase) publishResourceChange(ctx context.Context, resourceID uuid.UUID) {
	notice := domain.ChangeNotice{
		Kind:       domain.ChangeResourceUpdated,
		ResourceID: resourceID,
		At:         time.Now().UTC(),
	}
	if err := uc.feed.Publish(ctx, notice); err != nil {
		uc.logger.Warn("failed to publish resource change notice", "resource_id", resourceID, "error", err)
	}
}
