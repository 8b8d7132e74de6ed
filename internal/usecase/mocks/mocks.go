package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// Store is an in-memory ledger shared by the mock repositories so that
// balances, listings and soft deletes observe the same rows.
type Store struct {
	mu sync.RWMutex

	users        map[string]*domain.User
	currencies   map[int64]*domain.Currency
	owners       map[int64]*domain.CurrencyOwner
	debtors      map[int64]*domain.Debtor
	transactions map[int64]*domain.Transaction
	seq          int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*domain.User),
		currencies:   make(map[int64]*domain.Currency),
		owners:       make(map[int64]*domain.CurrencyOwner),
		debtors:      make(map[int64]*domain.Debtor),
		transactions: make(map[int64]*domain.Transaction),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// Users returns a user repository over the store.
func (s *Store) Users() *MockUserRepository { return &MockUserRepository{store: s} }

// Currencies returns a currency repository over the store.
func (s *Store) Currencies() *MockCurrencyRepository { return &MockCurrencyRepository{store: s} }

// Debtors returns a debtor repository over the store.
func (s *Store) Debtors() *MockDebtorRepository { return &MockDebtorRepository{store: s} }

// Transactions returns a transaction repository over the store.
func (s *Store) Transactions() *MockTransactionRepository {
	return &MockTransactionRepository{store: s}
}

// Balances returns a balance repository over the store.
func (s *Store) Balances() *MockBalanceRepository { return &MockBalanceRepository{store: s} }

// Lifecycle returns a lifecycle repository over the store.
func (s *Store) Lifecycle() *MockLifecycleRepository { return &MockLifecycleRepository{store: s} }

// SeedUser stores a user as is.
func (s *Store) SeedUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

// SeedCurrency attaches a current currency to ownerID.
func (s *Store) SeedCurrency(ownerID, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCurrency(name)
	if c == nil {
		c = &domain.Currency{ID: s.nextID(), Name: name, Active: true}
		s.currencies[c.ID] = c
	}
	id := s.nextID()
	s.owners[id] = &domain.CurrencyOwner{ID: id, CurrencyID: c.ID, OwnerID: ownerID, Current: true}
	return c.ID
}

// SeedDebtor stores a debtor and returns its ID.
func (s *Store) SeedDebtor(ownerID, name string, active bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.debtors[id] = &domain.Debtor{ID: id, Name: name, OwnerID: ownerID, Active: active}
	return id
}

// SeedTransaction stores a transaction and returns its ID.
func (s *Store) SeedTransaction(debtorID int64, date time.Time, sum string, active bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.transactions[id] = &domain.Transaction{
		ID:       id,
		Date:     date,
		Sum:      decimal.RequireFromString(sum),
		DebtorID: debtorID,
		Active:   active,
	}
	return id
}

// User returns a copy of the stored user.
func (s *Store) User(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, false
	}
	return *u, true
}

// Currency returns a copy of the stored currency with the given name.
func (s *Store) Currency(name string) (domain.Currency, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.findCurrency(name)
	if c == nil {
		return domain.Currency{}, false
	}
	return *c, true
}

// CurrencyCount returns how many currency rows exist.
func (s *Store) CurrencyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.currencies)
}

// CurrentOwnerRows returns how many current owner rows ownerID has.
func (s *Store) CurrentOwnerRows(ownerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.owners {
		if o.OwnerID == ownerID && o.Current {
			n++
		}
	}
	return n
}

// Debtor returns a copy of the stored debtor.
func (s *Store) Debtor(id int64) (domain.Debtor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.debtors[id]
	if !ok {
		return domain.Debtor{}, false
	}
	return *d, true
}

// Transaction returns a copy of the stored transaction.
func (s *Store) Transaction(id int64) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return domain.Transaction{}, false
	}
	return *t, true
}

// TransactionCount returns how many transaction rows exist, active or not.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

func (s *Store) findCurrency(name string) *domain.Currency {
	for _, c := range s.currencies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *Store) activeTransactions(debtorID int64) []*domain.Transaction {
	var out []*domain.Transaction
	for _, t := range s.transactions {
		if t.DebtorID == debtorID && t.Active {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sumOf(txs []*domain.Transaction) decimal.NullDecimal {
	if len(txs) == 0 {
		return decimal.NullDecimal{}
	}
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Sum)
	}
	return decimal.NullDecimal{Decimal: total, Valid: true}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	store *Store

	CreateFunc                   func(ctx context.Context, tx usecase.Transaction, user *domain.User) error
	ActiveEmailTakenFunc         func(ctx context.Context, email string) (bool, error)
	DeleteInactiveDuplicatesFunc func(ctx context.Context, tx usecase.Transaction, user *domain.User) ([]int64, error)
}

func (m *MockUserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, user)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.users[user.ID]; ok {
		return fmt.Errorf("duplicate user id %s", user.ID)
	}
	cp := *user
	m.store.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	u, ok := m.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	return m.GetByID(ctx, id)
}

func (m *MockUserRepository) GetActiveByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, u := range m.store.users {
		if u.Active && strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) ActiveUsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := m.GetActiveByUsername(ctx, username)
	return err == nil, nil
}

func (m *MockUserRepository) ActiveEmailTaken(ctx context.Context, email string) (bool, error) {
	if m.ActiveEmailTakenFunc != nil {
		return m.ActiveEmailTakenFunc(ctx, email)
	}
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, u := range m.store.users {
		if u.Active && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) Activate(ctx context.Context, tx usecase.Transaction, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	u, ok := m.store.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = true
	return nil
}

func (m *MockUserRepository) DeleteInactiveDuplicates(ctx context.Context, tx usecase.Transaction, user *domain.User) ([]int64, error) {
	if m.DeleteInactiveDuplicatesFunc != nil {
		return m.DeleteInactiveDuplicatesFunc(ctx, tx, user)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var currencyIDs []int64
	for id, u := range m.store.users {
		if id == user.ID || u.Active || !user.SameIdentity(u) {
			continue
		}
		for oid, o := range m.store.owners {
			if o.OwnerID == id {
				currencyIDs = append(currencyIDs, o.CurrencyID)
				delete(m.store.owners, oid)
			}
		}
		delete(m.store.users, id)
	}
	return currencyIDs, nil
}

// MockCurrencyRepository is a mock implementation of CurrencyRepository.
type MockCurrencyRepository struct {
	store *Store

	UpsertFunc func(ctx context.Context, tx usecase.Transaction, name string) (*domain.Currency, error)
}

func (m *MockCurrencyRepository) Upsert(ctx context.Context, tx usecase.Transaction, name string) (*domain.Currency, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, name)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c := m.store.findCurrency(name)
	if c == nil {
		c = &domain.Currency{ID: m.store.nextID(), Name: name}
		m.store.currencies[c.ID] = c
	}
	c.Active = true
	cp := *c
	return &cp, nil
}

func (m *MockCurrencyRepository) ClearCurrent(ctx context.Context, tx usecase.Transaction, ownerID string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, o := range m.store.owners {
		if o.OwnerID == ownerID {
			o.Current = false
		}
	}
	return nil
}

func (m *MockCurrencyRepository) CreateOwner(ctx context.Context, tx usecase.Transaction, owner *domain.CurrencyOwner) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	owner.ID = m.store.nextID()
	cp := *owner
	m.store.owners[owner.ID] = &cp
	return nil
}

func (m *MockCurrencyRepository) CurrentName(ctx context.Context, ownerID string) (string, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, o := range m.store.owners {
		if o.OwnerID == ownerID && o.Current {
			return m.store.currencies[o.CurrencyID].Name, nil
		}
	}
	return "", domain.ErrNoActiveCurrency
}

// MockDebtorRepository is a mock implementation of DebtorRepository.
type MockDebtorRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, debtor *domain.Debtor) error
}

func (m *MockDebtorRepository) Create(ctx context.Context, debtor *domain.Debtor) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, debtor)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	debtor.ID = m.store.nextID()
	cp := *debtor
	m.store.debtors[debtor.ID] = &cp
	return nil
}

func (m *MockDebtorRepository) GetByID(ctx context.Context, id int64) (*domain.Debtor, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	d, ok := m.store.debtors[id]
	if !ok {
		return nil, domain.ErrDebtorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MockDebtorRepository) UpdateName(ctx context.Context, id int64, name string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	d, ok := m.store.debtors[id]
	if !ok || !d.Active {
		return domain.ErrDebtorNotFound
	}
	d.Name = name
	return nil
}

func (m *MockDebtorRepository) activeOf(ownerID string) []*domain.Debtor {
	var out []*domain.Debtor
	for _, d := range m.store.debtors {
		if d.OwnerID == ownerID && d.Active {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockDebtorRepository) ListWithBalance(ctx context.Context, ownerID string, limit, offset int) ([]*domain.DebtorWithBalance, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	var out []*domain.DebtorWithBalance
	for _, d := range page(m.activeOf(ownerID), limit, offset) {
		out = append(out, &domain.DebtorWithBalance{
			Debtor:  *d,
			Balance: sumOf(m.store.activeTransactions(d.ID)),
		})
	}
	return out, nil
}

func (m *MockDebtorRepository) CountActive(ctx context.Context, ownerID string) (int, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return len(m.activeOf(ownerID)), nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, t *domain.Transaction) error
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	t.ID = m.store.nextID()
	cp := *t
	m.store.transactions[t.ID] = &cp
	return nil
}

func (m *MockTransactionRepository) GetActive(ctx context.Context, debtorID, id int64) (*domain.Transaction, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	t, ok := m.store.transactions[id]
	if !ok || t.DebtorID != debtorID || !t.Active {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	existing, ok := m.store.transactions[t.ID]
	if !ok || !existing.Active {
		return domain.ErrTransactionNotFound
	}
	existing.Date = t.Date
	existing.Sum = t.Sum
	existing.Comment = t.Comment
	return nil
}

func (m *MockTransactionRepository) ListActive(ctx context.Context, debtorID int64, limit, offset int) ([]*domain.Transaction, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return page(m.store.activeTransactions(debtorID), limit, offset), nil
}

func (m *MockTransactionRepository) ListAllActive(ctx context.Context, debtorID int64) ([]*domain.Transaction, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return m.store.activeTransactions(debtorID), nil
}

func (m *MockTransactionRepository) CountActive(ctx context.Context, debtorID int64) (int, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return len(m.store.activeTransactions(debtorID)), nil
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	store *Store
}

func (m *MockBalanceRepository) SumActive(ctx context.Context, filter usecase.BalanceFilter) (decimal.NullDecimal, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	if filter.DebtorID != 0 {
		return sumOf(m.store.activeTransactions(filter.DebtorID)), nil
	}

	var all []*domain.Transaction
	for _, d := range m.store.debtors {
		if d.OwnerID == filter.OwnerID && d.Active {
			all = append(all, m.store.activeTransactions(d.ID)...)
		}
	}
	return sumOf(all), nil
}

// MockLifecycleRepository is a mock implementation of LifecycleRepository.
type MockLifecycleRepository struct {
	store *Store

	DeactivateTransactionsByDebtorFunc func(ctx context.Context, tx usecase.Transaction, debtorID int64) (int64, error)
}

func (m *MockLifecycleRepository) DeactivateDebtor(ctx context.Context, tx usecase.Transaction, debtorID int64) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	d, ok := m.store.debtors[debtorID]
	if !ok {
		return domain.ErrDebtorNotFound
	}
	d.Active = false
	return nil
}

func (m *MockLifecycleRepository) DeactivateTransactionsByDebtor(ctx context.Context, tx usecase.Transaction, debtorID int64) (int64, error) {
	if m.DeactivateTransactionsByDebtorFunc != nil {
		return m.DeactivateTransactionsByDebtorFunc(ctx, tx, debtorID)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var n int64
	for _, t := range m.store.transactions {
		if t.DebtorID == debtorID {
			t.Active = false
			n++
		}
	}
	return n, nil
}

func (m *MockLifecycleRepository) DeactivateTransaction(ctx context.Context, tx usecase.Transaction, transactionID int64) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	t, ok := m.store.transactions[transactionID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Active = false
	return nil
}

func (m *MockLifecycleRepository) DeactivateCurrencyIfOrphaned(ctx context.Context, tx usecase.Transaction, currencyID int64) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, o := range m.store.owners {
		if o.CurrencyID == currencyID {
			return false, nil
		}
	}
	c, ok := m.store.currencies[currencyID]
	if !ok {
		return false, nil
	}
	c.Active = false
	return true, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu        sync.Mutex
	Commits   int
	Rollbacks int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{manager: m}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	manager *MockTransactionManager
	done    bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	if m.manager != nil && !m.done {
		m.manager.mu.Lock()
		m.manager.Commits++
		m.manager.mu.Unlock()
	}
	m.done = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	// Rollback after Commit is a no-op, as with pgx.
	if m.manager != nil && !m.done {
		m.manager.mu.Lock()
		m.manager.Rollbacks++
		m.manager.mu.Unlock()
	}
	m.done = true
	return nil
}

// MockRetrier is a mock implementation of Retrier.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
	Calls     int
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	m.Calls++
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{data: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	m.data[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
