package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/domain/partner"
	"github.com/stocker/backend/internal/domain/shared"
)

// SupplierRepository is the in-memory partner.SupplierRepository
type SupplierRepository struct {
	s    *Store
	inTx bool
}

// FindByID finds a supplier by its ID
func (r *SupplierRepository) FindByID(_ context.Context, id uuid.UUID) (*partner.Supplier, error) {
	defer r.s.rlock(r.inTx)()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &sp, nil
}

// FindByIDs returns the suppliers that exist among ids
func (r *SupplierRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]partner.Supplier, error) {
	defer r.s.rlock(r.inTx)()
	out := make([]partner.Supplier, 0, len(ids))
	for _, id := range ids {
		if sp, ok := r.s.suppliers[id]; ok {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name) })
	return out, nil
}

// FindAll returns every supplier ordered by name
func (r *SupplierRepository) FindAll(_ context.Context) ([]partner.Supplier, error) {
	defer r.s.rlock(r.inTx)()
	out := make([]partner.Supplier, 0, len(r.s.suppliers))
	for _, sp := range r.s.suppliers {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name) })
	return out, nil
}

// Save creates or updates a supplier
func (r *SupplierRepository) Save(_ context.Context, sp *partner.Supplier) error {
	defer r.s.wlock(r.inTx)()
	stored := *sp
	stored.ClearDomainEvents()
	r.s.suppliers[sp.ID] = stored
	return nil
}

// Delete removes a supplier and unlinks it from every product
func (r *SupplierRepository) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.wlock(r.inTx)()
	if _, ok := r.s.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.s.suppliers, id)
	for pid, p := range r.s.products {
		links := p.SupplierIDs[:0:0]
		for _, sid := range p.SupplierIDs {
			if sid != id {
				links = append(links, sid)
			}
		}
		p.SupplierIDs = links
		r.s.products[pid] = p
	}
	return nil
}

// Count returns the number of suppliers
func (r *SupplierRepository) Count(_ context.Context) (int64, error) {
	defer r.s.rlock(r.inTx)()
	return int64(len(r.s.suppliers)), nil
}

// UserRepository is the in-memory identity.UserRepository
type UserRepository struct {
	s *Store
}

// FindByID finds a user by its ID
func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	defer r.s.rlock(false)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

// FindByUsername finds a user by username
func (r *UserRepository) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	defer r.s.rlock(false)()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindAll returns every user ordered by username
func (r *UserRepository) FindAll(_ context.Context) ([]identity.User, error) {
	defer r.s.rlock(false)()
	out := make([]identity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Save creates or updates a user. Usernames are unique.
func (r *UserRepository) Save(_ context.Context, u *identity.User) error {
	defer r.s.wlock(false)()
	for id, existing := range r.s.users {
		if id != u.ID && existing.Username == u.Username {
			return shared.NewDomainError(shared.CodeAlreadyExists, "username already taken")
		}
	}
	stored := *u
	stored.ClearDomainEvents()
	r.s.users[u.ID] = stored
	return nil
}

// Delete removes a user and clears it from ledger entries
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.wlock(false)()
	if _, ok := r.s.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.s.users, id)
	for i := range r.s.ledger {
		if a := r.s.ledger[i].ActingUserID; a != nil && *a == id {
			r.s.ledger[i].ActingUserID = nil
		}
	}
	return nil
}

var (
	_ partner.SupplierRepository = (*SupplierRepository)(nil)
	_ identity.UserRepository    = (*UserRepository)(nil)
)
