package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/familyauth/internal/domain/calendar"
	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	base
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base: base{prom: prom}, pool: pool}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, email, password, role, created_at
			FROM users
			WHERE email = $1`,
			email,
		).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	var rows int64

	err := r.observe("users.update_password", func() error {
		tag, err := r.pool.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, passwordHash, userID)
		rows = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if rows == 0 {
		return user.ErrNotFound
	}

	return nil
}

// CreateAccount writes the user, the optional profile and every family
// member in a single transaction.
func (r *UsersRepo) CreateAccount(ctx context.Context, acc user.NewAccount) (u user.User, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return user.User{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	role := acc.Role
	if role == "" {
		role = user.RoleUser
	}

	err = r.observe("users.create", func() error {
		return tx.QueryRow(ctx,
			`INSERT INTO users (email, password, role)
			VALUES ($1, $2, $3)
			RETURNING id, email, role, created_at`,
			acc.Email, acc.PasswordHash, role,
		).Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	if acc.Profile != nil {
		p := *acc.Profile
		p.UserID = u.ID

		if _, err = insertProfile(ctx, tx, r.base, p); err != nil {
			return user.User{}, fmt.Errorf("insert profile: %w", err)
		}
	}

	for _, m := range acc.FamilyMembers {
		m.UserID = u.ID

		if _, err = insertMember(ctx, tx, r.base, m); err != nil {
			return user.User{}, fmt.Errorf("insert family member: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return user.User{}, fmt.Errorf("commit: %w", err)
	}

	u.PasswordHash = acc.PasswordHash

	return u, nil
}

// ListWithProfiles returns every user, newest first, with the profile
// attached when one exists.
func (r *UsersRepo) ListWithProfiles(ctx context.Context) ([]user.WithProfile, error) {
	out := make([]user.WithProfile, 0)

	err := r.observe("users.list_with_profiles", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT u.id, u.email, u.role, u.created_at,
				p.user_id, p.first_name, p.last_name, p.middle_name, p.birth_date,
				p.passport_series, p.passport_number, p.address, p.phone,
				p.has_maternal_capital, p.maternal_capital_amount,
				p.housing_type, p.living_area, p.ownership_status
			FROM users u
			LEFT JOIN user_profiles p ON p.user_id = u.id
			ORDER BY u.created_at DESC, u.id DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				row user.WithProfile
				np  nullableProfile
			)

			if err := rows.Scan(
				&row.ID, &row.Email, &row.Role, &row.CreatedAt,
				&np.UserID, &np.FirstName, &np.LastName, &np.MiddleName, &np.BirthDate,
				&np.PassportSeries, &np.PassportNumber, &np.Address, &np.Phone,
				&np.HasMaternalCapital, &np.MaternalCapitalAmount,
				&np.HousingType, &np.LivingArea, &np.OwnershipStatus,
			); err != nil {
				return err
			}

			row.Profile = np.profile()
			out = append(out, row)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// nullableProfile receives the right side of the LEFT JOIN.
type nullableProfile struct {
	UserID                *int64
	FirstName             *string
	LastName              *string
	MiddleName            *string
	BirthDate             *time.Time
	PassportSeries        *string
	PassportNumber        *string
	Address               *string
	Phone                 *string
	HasMaternalCapital    *bool
	MaternalCapitalAmount *float64
	HousingType           *profile.HousingType
	LivingArea            *float64
	OwnershipStatus       *profile.OwnershipStatus
}

func (n nullableProfile) profile() *profile.Profile {
	if n.UserID == nil {
		return nil
	}

	p := &profile.Profile{
		UserID:          *n.UserID,
		MiddleName:      n.MiddleName,
		HousingType:     n.HousingType,
		LivingArea:      n.LivingArea,
		OwnershipStatus: n.OwnershipStatus,
	}

	p.FirstName = deref(n.FirstName)
	p.LastName = deref(n.LastName)
	p.PassportSeries = deref(n.PassportSeries)
	p.PassportNumber = deref(n.PassportNumber)
	p.Address = deref(n.Address)
	p.Phone = deref(n.Phone)

	if n.BirthDate != nil {
		p.BirthDate = calendar.NewDate(*n.BirthDate)
	}
	if n.HasMaternalCapital != nil {
		p.HasMaternalCapital = *n.HasMaternalCapital
	}
	if n.MaternalCapitalAmount != nil {
		p.MaternalCapitalAmount = *n.MaternalCapitalAmount
	}

	return p
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
