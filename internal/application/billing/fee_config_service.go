package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FeeConfigService maintains the vehicle ticket price table
type FeeConfigService struct {
	prices billing.VehicleFeeConfigRepository
	audit  *AuditRecorder
	logger *zap.Logger
}

// NewFeeConfigService creates a new FeeConfigService
func NewFeeConfigService(prices billing.VehicleFeeConfigRepository, audit *AuditRecorder, logger *zap.Logger) *FeeConfigService {
	return &FeeConfigService{prices: prices, audit: audit, logger: logger}
}

// SetTicketPrice creates or replaces the price of a vehicle class and ticket kind.
// Tickets already issued keep their amounts.
func (s *FeeConfigService) SetTicketPrice(ctx context.Context, req SetTicketPriceRequest, actor string) (*TicketPriceResponse, error) {
	class, err := billing.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		return nil, err
	}
	kind, err := billing.ParseTicketKind(req.TicketKind)
	if err != nil {
		return nil, err
	}

	cfg, err := s.prices.FindByClassAndKind(ctx, class, kind)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		cfg, err = billing.NewVehicleFeeConfig(class, kind, req.Price, actor)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := cfg.SetPrice(req.Price, actor); err != nil {
			return nil, err
		}
	}

	if err := s.prices.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, billing.EntityFeeConfig, cfg.ID, billing.ActionUpdate,
		fmt.Sprintf("%s %s ticket price set to %s", class, kind, cfg.Price), actor)
	s.logger.Info("ticket price set",
		zap.String("vehicle_class", string(class)),
		zap.String("ticket_kind", string(kind)),
		zap.String("price", cfg.Price.Amount().String()),
	)

	resp := ToTicketPriceResponse(cfg)
	return &resp, nil
}

// ListTicketPrices lists the whole price table
func (s *FeeConfigService) ListTicketPrices(ctx context.Context) ([]TicketPriceResponse, error) {
	configs, err := s.prices.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]TicketPriceResponse, len(configs))
	for i, cfg := range configs {
		responses[i] = ToTicketPriceResponse(cfg)
	}
	return responses, nil
}
