// Package memory keeps every record in process memory. It backs tests and
// local runs without Postgres.
package memory

import (
	"sync"
	"time"

	"github.com/geocoder89/familyauth/internal/domain/family"
	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/domain/user"
)

type Store struct {
	mu sync.RWMutex

	now func() time.Time

	users    map[int64]user.User
	emails   map[string]int64
	profiles map[int64]profile.Profile
	members  map[int64]family.Member

	nextUserID   int64
	nextMemberID int64
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]user.User),
		emails:   make(map[string]int64),
		profiles: make(map[int64]profile.Profile),
		members:  make(map[int64]family.Member),
	}
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{s: s}
}

func (s *Store) Profiles() *ProfilesRepo {
	return &ProfilesRepo{s: s}
}

func (s *Store) FamilyMembers() *FamilyMembersRepo {
	return &FamilyMembersRepo{s: s}
}
