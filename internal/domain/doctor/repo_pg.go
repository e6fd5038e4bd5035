package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `doctor_id, name, email, phone, specialization, experience_years,
	bio, consultation_fee, photo, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Specialization, &d.ExperienceYears,
		&d.Bio, &d.ConsultationFee, &d.Photo, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (p *repoPG) Create(ctx context.Context, d *Doctor) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO doctors (name, email, phone, specialization, experience_years, bio, consultation_fee, photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING doctor_id, created_at, updated_at`,
		d.Name, d.Email, d.Phone, d.Specialization, d.ExperienceYears, d.Bio, d.ConsultationFee, d.Photo).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (p *repoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := scanDoctor(p.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE doctor_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (p *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE doctors
		SET name = $2, email = $3, phone = $4, specialization = $5, experience_years = $6,
			bio = $7, consultation_fee = $8, photo = $9, updated_at = NOW()
		WHERE doctor_id = $1`,
		d.ID, d.Name, d.Email, d.Phone, d.Specialization, d.ExperienceYears,
		d.Bio, d.ConsultationFee, d.Photo)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM doctors WHERE doctor_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	where := ``
	var args []interface{}
	idx := 1
	if specialization != "" {
		where = fmt.Sprintf(` WHERE specialization ILIKE $%d`, idx)
		args = append(args, specialization)
		idx++
	}

	var total int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + doctorCols + ` FROM doctors` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
