package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/familyauth/internal/domain/profile"
)

type ProfilesRepo struct {
	s *Store
}

func (r *ProfilesRepo) GetByUserID(_ context.Context, userID int64) (profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}

	return p, nil
}

func (r *ProfilesRepo) Create(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.profiles[p.UserID]; exists {
		return profile.Profile{}, profile.ErrAlreadyExists
	}

	r.s.profiles[p.UserID] = p

	return p, nil
}

func (r *ProfilesRepo) Update(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.profiles[p.UserID]; !exists {
		return profile.Profile{}, profile.ErrNotFound
	}

	r.s.profiles[p.UserID] = p

	return p, nil
}

func (r *ProfilesRepo) List(_ context.Context) ([]profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]profile.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}
