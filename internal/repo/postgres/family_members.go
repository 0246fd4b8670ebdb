package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/familyauth/internal/domain/family"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberColumns = `id, user_id, relation_type, first_name, last_name, middle_name,
	birth_date, document_type, document_number`

type FamilyMembersRepo struct {
	base
	pool *pgxpool.Pool
}

func NewFamilyMembersRepo(pool *pgxpool.Pool, prom *observability.Prom) *FamilyMembersRepo {
	return &FamilyMembersRepo{base: base{prom: prom}, pool: pool}
}

func scanMember(row pgx.Row) (family.Member, error) {
	var m family.Member

	err := row.Scan(
		&m.ID, &m.UserID, &m.RelationType, &m.FirstName, &m.LastName, &m.MiddleName,
		&m.BirthDate.Time, &m.DocumentType, &m.DocumentNumber,
	)

	return m, err
}

func (r *FamilyMembersRepo) ListByUser(ctx context.Context, userID int64) ([]family.Member, error) {
	out := make([]family.Member, 0)

	err := r.observe("family.list_by_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+memberColumns+` FROM family_members WHERE user_id = $1 ORDER BY id`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanMember(rows)
			if err != nil {
				return err
			}
			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *FamilyMembersRepo) GetByID(ctx context.Context, id int64) (family.Member, error) {
	var m family.Member

	err := r.observe("family.get_by_id", func() error {
		var err error
		m, err = scanMember(r.pool.QueryRow(ctx,
			`SELECT `+memberColumns+` FROM family_members WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return family.Member{}, family.ErrNotFound
		}
		return family.Member{}, err
	}

	return m, nil
}

func (r *FamilyMembersRepo) Create(ctx context.Context, m family.Member) (family.Member, error) {
	return insertMember(ctx, r.pool, r.base, m)
}

func insertMember(ctx context.Context, q querier, b base, m family.Member) (family.Member, error) {
	var out family.Member

	err := b.observe("family.create", func() error {
		var err error
		out, err = scanMember(q.QueryRow(ctx,
			`INSERT INTO family_members (user_id, relation_type, first_name, last_name, middle_name,
				birth_date, document_type, document_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+memberColumns,
			m.UserID, m.RelationType, m.FirstName, m.LastName, m.MiddleName,
			m.BirthDate.Time, m.DocumentType, m.DocumentNumber,
		))
		return err
	})

	return out, err
}

// Update rewrites the record only while it still belongs to m.UserID.
// family.ErrNotFound means no row matched both id and owner.
func (r *FamilyMembersRepo) Update(ctx context.Context, m family.Member) (family.Member, error) {
	var out family.Member

	err := r.observe("family.update", func() error {
		var err error
		out, err = scanMember(r.pool.QueryRow(ctx,
			`UPDATE family_members SET
				relation_type = $3, first_name = $4, last_name = $5, middle_name = $6,
				birth_date = $7, document_type = $8, document_number = $9
			WHERE id = $1 AND user_id = $2
			RETURNING `+memberColumns,
			m.ID, m.UserID, m.RelationType, m.FirstName, m.LastName, m.MiddleName,
			m.BirthDate.Time, m.DocumentType, m.DocumentNumber,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return family.Member{}, family.ErrNotFound
		}
		return family.Member{}, err
	}

	return out, nil
}

func (r *FamilyMembersRepo) Delete(ctx context.Context, id, userID int64) error {
	var deleted int64

	err := r.observe("family.delete", func() error {
		return r.pool.QueryRow(ctx,
			`DELETE FROM family_members WHERE id = $1 AND user_id = $2 RETURNING id`,
			id, userID,
		).Scan(&deleted)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return family.ErrNotFound
		}
		return err
	}

	return nil
}
