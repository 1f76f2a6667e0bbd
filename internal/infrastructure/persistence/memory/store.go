// Package memory provides in-process repositories backed by maps.
// It serves the "memory" database driver for local runs and backs the
// application and handler tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	appinventory "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/partner"
)

// Store holds all records. Transactions take the write lock for their whole
// duration, so every transaction is serialized; repositories used outside a
// transaction lock per call.
type Store struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]catalog.Category
	products   map[uuid.UUID]catalog.Product
	suppliers  map[uuid.UUID]partner.Supplier
	users      map[uuid.UUID]identity.User
	ledger     []inventory.StockLedgerEntry

	faultMu sync.Mutex
	faults  map[string]error
}

// Fault points that tests can arm with InjectFault
const (
	FaultProductSaveStock = "product.save_stock"
	FaultLedgerAppend     = "ledger.append"
	FaultCommit           = "commit"
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		categories: make(map[uuid.UUID]catalog.Category),
		products:   make(map[uuid.UUID]catalog.Product),
		suppliers:  make(map[uuid.UUID]partner.Supplier),
		users:      make(map[uuid.UUID]identity.User),
		ledger:     make([]inventory.StockLedgerEntry, 0),
		faults:     make(map[string]error),
	}
}

// InjectFault makes the next operation at point fail with err
func (s *Store) InjectFault(point string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[point] = err
}

func (s *Store) takeFault(point string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	err := s.faults[point]
	delete(s.faults, point)
	return err
}

// Categories returns a category repository outside any transaction
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

// Products returns a product repository outside any transaction
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Suppliers returns a supplier repository outside any transaction
func (s *Store) Suppliers() *SupplierRepository { return &SupplierRepository{s: s} }

// Ledger returns a ledger repository outside any transaction
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{s: s} }

// Users returns a user repository outside any transaction
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Execute runs fn with repositories bound to a serialized transaction.
// When fn (or the simulated commit) fails, every change made by fn is
// discarded.
func (s *Store) Execute(_ context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	tx := &txRepos{
		products:   &ProductRepository{s: s, inTx: true},
		categories: &CategoryRepository{s: s, inTx: true},
		suppliers:  &SupplierRepository{s: s, inTx: true},
		ledger:     &LedgerRepository{s: s, inTx: true},
	}

	if err := fn(tx); err != nil {
		s.restore(snap)
		return err
	}
	if err := s.takeFault(FaultCommit); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	categories map[uuid.UUID]catalog.Category
	products   map[uuid.UUID]catalog.Product
	suppliers  map[uuid.UUID]partner.Supplier
	users      map[uuid.UUID]identity.User
	ledger     []inventory.StockLedgerEntry
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		categories: make(map[uuid.UUID]catalog.Category, len(s.categories)),
		products:   make(map[uuid.UUID]catalog.Product, len(s.products)),
		suppliers:  make(map[uuid.UUID]partner.Supplier, len(s.suppliers)),
		users:      make(map[uuid.UUID]identity.User, len(s.users)),
		ledger:     append([]inventory.StockLedgerEntry(nil), s.ledger...),
	}
	for k, v := range s.categories {
		snap.categories[k] = v
	}
	for k, v := range s.products {
		snap.products[k] = copyProduct(v)
	}
	for k, v := range s.suppliers {
		snap.suppliers[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.categories = snap.categories
	s.products = snap.products
	s.suppliers = snap.suppliers
	s.users = snap.users
	s.ledger = snap.ledger
}

func (s *Store) rlock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) wlock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type txRepos struct {
	products   *ProductRepository
	categories *CategoryRepository
	suppliers  *SupplierRepository
	ledger     *LedgerRepository
}

func (t *txRepos) ProductRepo() catalog.ProductRepository      { return t.products }
func (t *txRepos) CategoryRepo() catalog.CategoryRepository    { return t.categories }
func (t *txRepos) SupplierRepo() partner.SupplierRepository    { return t.suppliers }
func (t *txRepos) LedgerRepo() inventory.StockLedgerRepository { return t.ledger }

var _ appinventory.TransactionScope = (*Store)(nil)
