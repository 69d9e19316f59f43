package memstore

import (
	"sync"
	"time"

	"rewards/domain/entities"
)

type pityKey struct {
	userID  string
	prizeID string
}

// data is everything a unit of work can touch. It is cloned on Begin so Rollback can restore it.
type data struct {
	accounts    map[string]*entities.Account
	ledger      []*entities.LedgerEntry
	seq         int64
	missions    map[string]*entities.Mission
	completions []*entities.MissionCompletion
	prizes      map[string]*entities.Prize
	entries     []*entities.PrizeEntry
	pity        map[pityKey]*entities.PrizePityCounter
	products    map[string]*entities.RewardProduct
	withdrawals map[string]*entities.WithdrawalRequest
}

func newData() *data {
	return &data{
		accounts:    make(map[string]*entities.Account),
		missions:    make(map[string]*entities.Mission),
		prizes:      make(map[string]*entities.Prize),
		pity:        make(map[pityKey]*entities.PrizePityCounter),
		products:    make(map[string]*entities.RewardProduct),
		withdrawals: make(map[string]*entities.WithdrawalRequest),
	}
}

func (d *data) clone() *data {
	c := newData()
	c.seq = d.seq
	for k, v := range d.accounts {
		c.accounts[k] = copyAccount(v)
	}
	c.ledger = make([]*entities.LedgerEntry, len(d.ledger))
	for i, v := range d.ledger {
		c.ledger[i] = copyLedgerEntry(v)
	}
	for k, v := range d.missions {
		c.missions[k] = copyMission(v)
	}
	c.completions = make([]*entities.MissionCompletion, len(d.completions))
	for i, v := range d.completions {
		cp := *v
		c.completions[i] = &cp
	}
	for k, v := range d.prizes {
		cp := *v
		c.prizes[k] = &cp
	}
	c.entries = make([]*entities.PrizeEntry, len(d.entries))
	for i, v := range d.entries {
		cp := *v
		c.entries[i] = &cp
	}
	for k, v := range d.pity {
		c.pity[k] = copyPityCounter(v)
	}
	for k, v := range d.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range d.withdrawals {
		c.withdrawals[k] = copyWithdrawal(v)
	}
	return c
}

// Store is an in-process implementation of every repository.
// Units of work are serialized: one holds the store from Begin until Commit or Rollback.
type Store struct {
	sem   chan struct{}
	clock func() time.Time

	mu          sync.Mutex
	data        *data
	commitFails []error
	appendFails map[entities.TransactionType][]error
}

// NewStore creates an empty store. A nil clock uses time.Now.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		sem:   make(chan struct{}, 1),
		clock: clock,
		data:  newData(),
	}
}

// FailNextCommits makes the next commits fail with the given errors, in order.
// The failed unit of work is rolled back as if storage had rejected it.
func (s *Store) FailNextCommits(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitFails = append(s.commitFails, errs...)
}

// FailNextAppends makes the next ledger appends of txType fail with the given
// errors, in order. The balance change made before the append is rolled back
// with the rest of the unit of work.
func (s *Store) FailNextAppends(txType entities.TransactionType, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendFails == nil {
		s.appendFails = make(map[entities.TransactionType][]error)
	}
	s.appendFails[txType] = append(s.appendFails[txType], errs...)
}

func (s *Store) takeAppendFailure(txType entities.TransactionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.appendFails[txType]
	if len(pending) == 0 {
		return nil
	}
	s.appendFails[txType] = pending[1:]
	return pending[0]
}

func (s *Store) takeCommitFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.commitFails) == 0 {
		return nil
	}
	err := s.commitFails[0]
	s.commitFails = s.commitFails[1:]
	return err
}

func copyAccount(a *entities.Account) *entities.Account {
	c := *a
	if a.ReferredBy != nil {
		v := *a.ReferredBy
		c.ReferredBy = &v
	}
	return &c
}

func copyLedgerEntry(e *entities.LedgerEntry) *entities.LedgerEntry {
	c := *e
	if e.Description != nil {
		v := *e.Description
		c.Description = &v
	}
	if e.ReferenceID != nil {
		v := *e.ReferenceID
		c.ReferenceID = &v
	}
	return &c
}

func copyMission(m *entities.Mission) *entities.Mission {
	c := *m
	if m.DailyLimit != nil {
		v := *m.DailyLimit
		c.DailyLimit = &v
	}
	return &c
}

func copyPityCounter(p *entities.PrizePityCounter) *entities.PrizePityCounter {
	c := *p
	if p.LastResetAt != nil {
		v := *p.LastResetAt
		c.LastResetAt = &v
	}
	return &c
}

func copyProduct(p *entities.RewardProduct) *entities.RewardProduct {
	c := *p
	if p.Stock != nil {
		v := *p.Stock
		c.Stock = &v
	}
	return &c
}

func copyWithdrawal(w *entities.WithdrawalRequest) *entities.WithdrawalRequest {
	c := *w
	if w.AdminNotes != nil {
		v := *w.AdminNotes
		c.AdminNotes = &v
	}
	if w.ProcessedAt != nil {
		v := *w.ProcessedAt
		c.ProcessedAt = &v
	}
	return &c
}
