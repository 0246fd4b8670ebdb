package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/familyauth/internal/domain/family"
)

type FamilyMembersRepo struct {
	s *Store
}

func (r *FamilyMembersRepo) ListByUser(_ context.Context, userID int64) ([]family.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]family.Member, 0)
	for _, m := range r.s.members {
		if m.OwnedBy(userID) {
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *FamilyMembersRepo) GetByID(_ context.Context, id int64) (family.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.members[id]
	if !ok {
		return family.Member{}, family.ErrNotFound
	}

	return m, nil
}

func (r *FamilyMembersRepo) Create(_ context.Context, m family.Member) (family.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextMemberID++
	m.ID = r.s.nextMemberID
	r.s.members[m.ID] = m

	return m, nil
}

func (r *FamilyMembersRepo) Update(_ context.Context, m family.Member) (family.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.members[m.ID]
	if !ok || !existing.OwnedBy(m.UserID) {
		return family.Member{}, family.ErrNotFound
	}

	r.s.members[m.ID] = m

	return m, nil
}

func (r *FamilyMembersRepo) Delete(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.members[id]
	if !ok || !existing.OwnedBy(userID) {
		return family.ErrNotFound
	}

	delete(r.s.members, id)

	return nil
}
