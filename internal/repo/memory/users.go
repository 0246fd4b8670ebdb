package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/familyauth/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.s.users[id], nil
}

func (r *UsersRepo) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	r.s.users[userID] = u

	return nil
}

// CreateAccount stores the user with its profile and family members under
// one lock, so a taken email leaves nothing behind.
func (r *UsersRepo) CreateAccount(_ context.Context, acc user.NewAccount) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[acc.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	role := acc.Role
	if role == "" {
		role = user.RoleUser
	}

	r.s.nextUserID++
	u := user.User{
		ID:           r.s.nextUserID,
		Email:        acc.Email,
		PasswordHash: acc.PasswordHash,
		Role:         role,
		CreatedAt:    r.s.now().UTC(),
	}

	r.s.users[u.ID] = u
	r.s.emails[u.Email] = u.ID

	if acc.Profile != nil {
		p := *acc.Profile
		p.UserID = u.ID
		r.s.profiles[u.ID] = p
	}

	for _, m := range acc.FamilyMembers {
		r.s.nextMemberID++
		m.ID = r.s.nextMemberID
		m.UserID = u.ID
		r.s.members[m.ID] = m
	}

	return u, nil
}

func (r *UsersRepo) ListWithProfiles(_ context.Context) ([]user.WithProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.WithProfile, 0, len(r.s.users))

	for _, u := range r.s.users {
		row := user.WithProfile{
			ID:        u.ID,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		}

		if p, ok := r.s.profiles[u.ID]; ok {
			row.Profile = &p
		}

		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}
