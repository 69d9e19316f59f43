package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rewards/domain/entities"

	"github.com/google/uuid"
)

type accountRepository struct {
	store *Store
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID string) (*entities.Account, error) {
	account, ok := r.store.data.accounts[userID]
	if !ok {
		return nil, nil
	}
	return copyAccount(account), nil
}

// GetForUpdate needs no extra locking; the unit of work already holds the store
func (r *accountRepository) GetForUpdate(ctx context.Context, userID string) (*entities.Account, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *accountRepository) GetByReferralCode(ctx context.Context, code string) (*entities.Account, error) {
	for _, account := range r.store.data.accounts {
		if account.ReferralCode == code {
			return copyAccount(account), nil
		}
	}
	return nil, nil
}

func (r *accountRepository) Create(ctx context.Context, account *entities.Account) error {
	if _, ok := r.store.data.accounts[account.UserID]; ok {
		return fmt.Errorf("account %s: %w", account.UserID, entities.ErrAlreadyExists)
	}
	for _, existing := range r.store.data.accounts {
		if existing.ReferralCode == account.ReferralCode {
			return fmt.Errorf("referral code %s: %w", account.ReferralCode, entities.ErrAlreadyExists)
		}
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = r.store.clock()
	}
	account.UpdatedAt = account.CreatedAt
	account.Points = 0
	account.Tickets = 0
	r.store.data.accounts[account.UserID] = copyAccount(account)
	return nil
}

func (r *accountRepository) GetBalance(ctx context.Context, userID string, currency entities.Currency) (int64, error) {
	if !currency.IsValid() {
		return 0, fmt.Errorf("currency %q: %w", currency, entities.ErrInvalidCurrency)
	}
	account, ok := r.store.data.accounts[userID]
	if !ok {
		return 0, fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	return account.BalanceOf(currency), nil
}

func (r *accountRepository) SetBalance(ctx context.Context, userID string, currency entities.Currency, value int64) error {
	if !currency.IsValid() {
		return fmt.Errorf("currency %q: %w", currency, entities.ErrInvalidCurrency)
	}
	if value < 0 {
		return fmt.Errorf("balance %d for %s: %w", value, userID, entities.ErrInvalidAmount)
	}
	account, ok := r.store.data.accounts[userID]
	if !ok {
		return fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	account.SetBalanceOf(currency, value)
	account.UpdatedAt = r.store.clock()
	return nil
}

func (r *accountRepository) SetReferredBy(ctx context.Context, userID, referrerID string) error {
	account, ok := r.store.data.accounts[userID]
	if !ok {
		return fmt.Errorf("account %s: %w", userID, entities.ErrNotFound)
	}
	account.ReferredBy = &referrerID
	account.UpdatedAt = r.store.clock()
	return nil
}

type ledgerRepository struct {
	store *Store
}

func (r *ledgerRepository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	if entry.Amount == 0 || entry.BalanceAfter < 0 {
		return fmt.Errorf("ledger entry for %s: %w", entry.UserID, entities.ErrInvalidAmount)
	}
	if _, ok := r.store.data.accounts[entry.UserID]; !ok {
		return fmt.Errorf("account %s: %w", entry.UserID, entities.ErrNotFound)
	}
	if err := r.store.takeAppendFailure(entry.TransactionType); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.store.data.seq++
	entry.Seq = r.store.data.seq
	entry.CreatedAt = r.store.clock()
	r.store.data.ledger = append(r.store.data.ledger, copyLedgerEntry(entry))
	return nil
}

func (r *ledgerRepository) History(ctx context.Context, userID string, currency *entities.Currency, limit, offset int) ([]*entities.LedgerEntry, error) {
	matched := make([]*entities.LedgerEntry, 0)
	for _, entry := range r.store.data.ledger {
		if entry.UserID != userID {
			continue
		}
		if currency != nil && entry.Currency != *currency {
			continue
		}
		matched = append(matched, copyLedgerEntry(entry))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Seq > matched[j].Seq
	})
	return page(matched, limit, offset), nil
}

func (r *ledgerRepository) GetByReference(ctx context.Context, userID, referenceID string) ([]*entities.LedgerEntry, error) {
	matched := make([]*entities.LedgerEntry, 0)
	for _, entry := range r.store.data.ledger {
		if entry.UserID == userID && entry.ReferenceID != nil && *entry.ReferenceID == referenceID {
			matched = append(matched, copyLedgerEntry(entry))
		}
	}
	return matched, nil
}

type missionRepository struct {
	store *Store
}

func (r *missionRepository) GetByID(ctx context.Context, id string) (*entities.Mission, error) {
	mission, ok := r.store.data.missions[id]
	if !ok {
		return nil, nil
	}
	return copyMission(mission), nil
}

func (r *missionRepository) ListActive(ctx context.Context) ([]*entities.Mission, error) {
	missions := make([]*entities.Mission, 0)
	for _, mission := range r.store.data.missions {
		if mission.IsActive {
			missions = append(missions, copyMission(mission))
		}
	}
	sort.Slice(missions, func(i, j int) bool {
		if missions[i].DisplayOrder != missions[j].DisplayOrder {
			return missions[i].DisplayOrder < missions[j].DisplayOrder
		}
		return missions[i].ID < missions[j].ID
	})
	return missions, nil
}

func (r *missionRepository) Upsert(ctx context.Context, mission *entities.Mission) error {
	if mission.ID == "" {
		mission.ID = uuid.NewString()
	}
	now := r.store.clock()
	if existing, ok := r.store.data.missions[mission.ID]; ok {
		mission.CreatedAt = existing.CreatedAt
	} else {
		mission.CreatedAt = now
	}
	mission.UpdatedAt = now
	r.store.data.missions[mission.ID] = copyMission(mission)
	return nil
}

type missionCompletionRepository struct {
	store *Store
}

func (r *missionCompletionRepository) Create(ctx context.Context, completion *entities.MissionCompletion) error {
	if completion.ID == "" {
		completion.ID = uuid.NewString()
	}
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = r.store.clock()
	}
	cp := *completion
	r.store.data.completions = append(r.store.data.completions, &cp)
	return nil
}

func (r *missionCompletionRepository) CountSince(ctx context.Context, userID, missionID string, since time.Time) (int, error) {
	count := 0
	for _, c := range r.store.data.completions {
		if c.UserID == userID && c.MissionID == missionID && !c.CompletedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *missionCompletionRepository) CountByMissionSince(ctx context.Context, userID string, since time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	for _, c := range r.store.data.completions {
		if c.UserID == userID && !c.CompletedAt.Before(since) {
			counts[c.MissionID]++
		}
	}
	return counts, nil
}

type prizeRepository struct {
	store *Store
}

func (r *prizeRepository) GetByID(ctx context.Context, id string) (*entities.Prize, error) {
	prize, ok := r.store.data.prizes[id]
	if !ok {
		return nil, nil
	}
	cp := *prize
	return &cp, nil
}

func (r *prizeRepository) ListActive(ctx context.Context) ([]*entities.Prize, error) {
	prizes := make([]*entities.Prize, 0)
	for _, prize := range r.store.data.prizes {
		if prize.IsActive {
			cp := *prize
			prizes = append(prizes, &cp)
		}
	}
	sort.Slice(prizes, func(i, j int) bool {
		if prizes[i].DisplayOrder != prizes[j].DisplayOrder {
			return prizes[i].DisplayOrder < prizes[j].DisplayOrder
		}
		return prizes[i].ID < prizes[j].ID
	})
	return prizes, nil
}

func (r *prizeRepository) Upsert(ctx context.Context, prize *entities.Prize) error {
	if prize.ID == "" {
		prize.ID = uuid.NewString()
	}
	now := r.store.clock()
	if existing, ok := r.store.data.prizes[prize.ID]; ok {
		prize.CreatedAt = existing.CreatedAt
	} else {
		prize.CreatedAt = now
	}
	prize.UpdatedAt = now
	cp := *prize
	r.store.data.prizes[prize.ID] = &cp
	return nil
}

type prizeEntryRepository struct {
	store *Store
}

func (r *prizeEntryRepository) Create(ctx context.Context, entry *entities.PrizeEntry) error {
	for _, existing := range r.store.data.entries {
		if existing.UserID == entry.UserID && existing.RequestID == entry.RequestID {
			return fmt.Errorf("prize entry request %s: %w", entry.RequestID, entities.ErrAlreadyExists)
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.store.clock()
	}
	cp := *entry
	r.store.data.entries = append(r.store.data.entries, &cp)
	return nil
}

func (r *prizeEntryRepository) GetByRequestID(ctx context.Context, userID, requestID string) (*entities.PrizeEntry, error) {
	for _, entry := range r.store.data.entries {
		if entry.UserID == userID && entry.RequestID == requestID {
			cp := *entry
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *prizeEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.PrizeEntry, error) {
	matched := make([]*entities.PrizeEntry, 0)
	for i := len(r.store.data.entries) - 1; i >= 0; i-- {
		entry := r.store.data.entries[i]
		if entry.UserID == userID {
			cp := *entry
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return page(matched, limit, offset), nil
}

type pityCounterRepository struct {
	store *Store
}

func (r *pityCounterRepository) Get(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error) {
	counter, ok := r.store.data.pity[pityKey{userID, prizeID}]
	if !ok {
		return nil, nil
	}
	return copyPityCounter(counter), nil
}

func (r *pityCounterRepository) GetOrCreateForUpdate(ctx context.Context, userID, prizeID string) (*entities.PrizePityCounter, error) {
	key := pityKey{userID, prizeID}
	counter, ok := r.store.data.pity[key]
	if !ok {
		counter = &entities.PrizePityCounter{
			UserID:    userID,
			PrizeID:   prizeID,
			UpdatedAt: r.store.clock(),
		}
		r.store.data.pity[key] = counter
	}
	return copyPityCounter(counter), nil
}

func (r *pityCounterRepository) Save(ctx context.Context, counter *entities.PrizePityCounter) error {
	key := pityKey{counter.UserID, counter.PrizeID}
	if _, ok := r.store.data.pity[key]; !ok {
		return fmt.Errorf("pity counter %s/%s: %w", counter.UserID, counter.PrizeID, entities.ErrNotFound)
	}
	if counter.CurrentCount < 0 {
		return fmt.Errorf("pity counter %s/%s: %w", counter.UserID, counter.PrizeID, entities.ErrInvalidAmount)
	}
	r.store.data.pity[key] = copyPityCounter(counter)
	return nil
}

func (r *pityCounterRepository) ListByUser(ctx context.Context, userID string) ([]*entities.PrizePityCounter, error) {
	counters := make([]*entities.PrizePityCounter, 0)
	for key, counter := range r.store.data.pity {
		if key.userID == userID {
			counters = append(counters, copyPityCounter(counter))
		}
	}
	sort.Slice(counters, func(i, j int) bool {
		return counters[i].PrizeID < counters[j].PrizeID
	})
	return counters, nil
}

type rewardProductRepository struct {
	store *Store
}

func (r *rewardProductRepository) GetForUpdate(ctx context.Context, id string) (*entities.RewardProduct, error) {
	product, ok := r.store.data.products[id]
	if !ok {
		return nil, nil
	}
	return copyProduct(product), nil
}

func (r *rewardProductRepository) ListActive(ctx context.Context) ([]*entities.RewardProduct, error) {
	products := make([]*entities.RewardProduct, 0)
	for _, product := range r.store.data.products {
		if product.IsActive {
			products = append(products, copyProduct(product))
		}
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].DisplayOrder != products[j].DisplayOrder {
			return products[i].DisplayOrder < products[j].DisplayOrder
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (r *rewardProductRepository) Upsert(ctx context.Context, product *entities.RewardProduct) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := r.store.clock()
	if existing, ok := r.store.data.products[product.ID]; ok {
		product.CreatedAt = existing.CreatedAt
	} else {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.store.data.products[product.ID] = copyProduct(product)
	return nil
}

func (r *rewardProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	product, ok := r.store.data.products[id]
	if !ok || product.Stock == nil {
		return fmt.Errorf("finite reward product %s: %w", id, entities.ErrNotFound)
	}
	if stock < 0 {
		return fmt.Errorf("stock %d for %s: %w", stock, id, entities.ErrInvalidAmount)
	}
	product.Stock = &stock
	product.UpdatedAt = r.store.clock()
	return nil
}

type withdrawalRepository struct {
	store *Store
}

func (r *withdrawalRepository) Create(ctx context.Context, request *entities.WithdrawalRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = r.store.clock()
	}
	if request.UpdatedAt.IsZero() {
		request.UpdatedAt = request.CreatedAt
	}
	if request.Status == "" {
		request.Status = entities.WithdrawalStatusPending
	}
	r.store.data.withdrawals[request.ID] = copyWithdrawal(request)
	return nil
}

func (r *withdrawalRepository) GetForUpdate(ctx context.Context, id string) (*entities.WithdrawalRequest, error) {
	request, ok := r.store.data.withdrawals[id]
	if !ok {
		return nil, nil
	}
	return copyWithdrawal(request), nil
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.WithdrawalRequest, error) {
	matched := make([]*entities.WithdrawalRequest, 0)
	for _, request := range r.store.data.withdrawals {
		if request.UserID == userID {
			matched = append(matched, copyWithdrawal(request))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, limit, offset), nil
}

func (r *withdrawalRepository) UpdateStatus(ctx context.Context, request *entities.WithdrawalRequest) error {
	existing, ok := r.store.data.withdrawals[request.ID]
	if !ok {
		return fmt.Errorf("withdrawal request %s: %w", request.ID, entities.ErrNotFound)
	}
	updated := copyWithdrawal(existing)
	updated.Status = request.Status
	updated.AdminNotes = request.AdminNotes
	updated.ProcessedAt = request.ProcessedAt
	updated.UpdatedAt = request.UpdatedAt
	r.store.data.withdrawals[request.ID] = copyWithdrawal(updated)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
