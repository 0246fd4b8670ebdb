package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `user_id, first_name, last_name, middle_name, birth_date,
	passport_series, passport_number, address, phone,
	has_maternal_capital, maternal_capital_amount,
	housing_type, living_area, ownership_status`

type ProfilesRepo struct {
	base
	pool *pgxpool.Pool
}

func NewProfilesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{base: base{prom: prom}, pool: pool}
}

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile

	err := row.Scan(
		&p.UserID, &p.FirstName, &p.LastName, &p.MiddleName, &p.BirthDate.Time,
		&p.PassportSeries, &p.PassportNumber, &p.Address, &p.Phone,
		&p.HasMaternalCapital, &p.MaternalCapitalAmount,
		&p.HousingType, &p.LivingArea, &p.OwnershipStatus,
	)

	return p, err
}

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID int64) (profile.Profile, error) {
	var p profile.Profile

	err := r.observe("profiles.get_by_user", func() error {
		var err error
		p, err = scanProfile(r.pool.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}

	return p, nil
}

func (r *ProfilesRepo) Create(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	created, err := insertProfile(ctx, r.pool, r.base, p)
	if err != nil {
		if isUniqueViolation(err) {
			return profile.Profile{}, profile.ErrAlreadyExists
		}
		return profile.Profile{}, err
	}

	return created, nil
}

func insertProfile(ctx context.Context, q querier, b base, p profile.Profile) (profile.Profile, error) {
	var out profile.Profile

	err := b.observe("profiles.create", func() error {
		var err error
		out, err = scanProfile(q.QueryRow(ctx,
			`INSERT INTO user_profiles (`+profileColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING `+profileColumns,
			p.UserID, p.FirstName, p.LastName, p.MiddleName, p.BirthDate.Time,
			p.PassportSeries, p.PassportNumber, p.Address, p.Phone,
			p.HasMaternalCapital, p.MaternalCapitalAmount,
			p.HousingType, p.LivingArea, p.OwnershipStatus,
		))
		return err
	})

	return out, err
}

func (r *ProfilesRepo) Update(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	var out profile.Profile

	err := r.observe("profiles.update", func() error {
		var err error
		out, err = scanProfile(r.pool.QueryRow(ctx,
			`UPDATE user_profiles SET
				first_name = $2, last_name = $3, middle_name = $4, birth_date = $5,
				passport_series = $6, passport_number = $7, address = $8, phone = $9,
				has_maternal_capital = $10, maternal_capital_amount = $11,
				housing_type = $12, living_area = $13, ownership_status = $14
			WHERE user_id = $1
			RETURNING `+profileColumns,
			p.UserID, p.FirstName, p.LastName, p.MiddleName, p.BirthDate.Time,
			p.PassportSeries, p.PassportNumber, p.Address, p.Phone,
			p.HasMaternalCapital, p.MaternalCapitalAmount,
			p.HousingType, p.LivingArea, p.OwnershipStatus,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}

	return out, nil
}

func (r *ProfilesRepo) List(ctx context.Context) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0)

	err := r.observe("profiles.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM user_profiles ORDER BY user_id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
