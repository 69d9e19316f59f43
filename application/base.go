package application

import (
	"context"
	"time"

	"rewards/domain/entities"
	"rewards/domain/interfaces"
	"rewards/domain/services"
)

// BalanceCache serves display balances without opening a transaction.
// Invalidate bumps a per-user generation; SetIfGeneration drops a balance
// loaded before the latest invalidation.
type BalanceCache interface {
	Get(ctx context.Context, userID string) (*entities.Balance, bool)
	Generation(ctx context.Context, userID string) (int64, error)
	SetIfGeneration(ctx context.Context, userID string, generation int64, balance *entities.Balance) bool
	Invalidate(ctx context.Context, userID string)
}

// Dependencies are shared by every handler
type Dependencies struct {
	UnitOfWorkFactory UnitOfWorkFactory
	Clock             services.Clock
	Location          *time.Location
	AccountSettings   services.AccountSettings
	Retry             RetryPolicy
	Metrics           OperationMetrics
	BalanceCache      BalanceCache
}

type base struct {
	uowFactory      UnitOfWorkFactory
	clock           services.Clock
	location        *time.Location
	accountSettings services.AccountSettings
	retry           RetryPolicy
	metrics         OperationMetrics
	balanceCache    BalanceCache
}

func newBase(deps Dependencies) *base {
	b := &base{
		uowFactory:      deps.UnitOfWorkFactory,
		clock:           deps.Clock,
		location:        deps.Location,
		accountSettings: deps.AccountSettings,
		retry:           deps.Retry,
		metrics:         deps.Metrics,
		balanceCache:    deps.BalanceCache,
	}
	if b.clock == nil {
		b.clock = func() time.Time { return time.Now().UTC() }
	}
	if b.location == nil {
		b.location = time.UTC
	}
	if b.metrics == nil {
		b.metrics = noopMetrics{}
	}
	return b
}

func (b *base) currencyService(uow UnitOfWork) interfaces.CurrencyService {
	return services.NewCurrencyService(uow.AccountRepository(), uow.LedgerRepository(), uow.EventBus())
}

func (b *base) missionService(uow UnitOfWork) interfaces.MissionService {
	return services.NewMissionService(
		uow.AccountRepository(),
		uow.MissionRepository(),
		uow.MissionCompletionRepository(),
		b.currencyService(uow),
		uow.EventBus(),
		b.clock,
		b.location,
	)
}

func (b *base) prizeService(uow UnitOfWork) interfaces.PrizeService {
	return services.NewPrizeService(
		uow.AccountRepository(),
		uow.PrizeRepository(),
		uow.PrizeEntryRepository(),
		uow.PityCounterRepository(),
		b.currencyService(uow),
		uow.EventBus(),
		b.clock,
	)
}

func (b *base) accountService(uow UnitOfWork) interfaces.AccountService {
	return services.NewAccountService(uow.AccountRepository(), b.currencyService(uow), uow.EventBus(), b.accountSettings, b.clock)
}

func (b *base) redemptionService(uow UnitOfWork) interfaces.RedemptionService {
	return services.NewRedemptionService(
		uow.AccountRepository(),
		uow.RewardProductRepository(),
		uow.WithdrawalRepository(),
		b.currencyService(uow),
		uow.EventBus(),
		b.clock,
	)
}
