package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodbridge/internal/clock"
	"github.com/polkiloo/foodbridge/internal/config"
	"github.com/polkiloo/foodbridge/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newEligibilityPolicy,
	NewInventoryLedger,
	NewAllocationEngine,
	NewOrderUseCase,
	NewDeliveryUseCase,
	NewRatingUseCase,
	newDonationUseCase,
	func(r *RatingUseCase) DonorRater { return r },
)

func newEligibilityPolicy(cfg *config.Config) *EligibilityPolicy {
	return NewEligibilityPolicy(cfg.EligibleOrganizations)
}

type donationParams struct {
	fx.In

	Donations   repository.DonationRepository
	Locations   repository.LocationRepository
	Policy      *EligibilityPolicy
	Interpreter NoteInterpreter
	Config      *config.Config
	Clock       clock.Clock
	Logger      *slog.Logger
}

func newDonationUseCase(p donationParams) *DonationUseCase {
	return NewDonationUseCase(p.Donations, p.Locations, p.Policy, p.Interpreter, p.Config.ShelfLife, p.Clock, p.Logger)
}
