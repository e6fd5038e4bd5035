package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const reviewCols = `review_id, doctor_id, user_id, rating, comment, created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.DoctorID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	return &r, err
}

func (p *repoPG) Create(ctx context.Context, r *Review) error {
	return p.pool.QueryRow(ctx, `
		INSERT INTO reviews (doctor_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING review_id, created_at, updated_at`,
		r.DoctorID, r.UserID, r.Rating, r.Comment).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (p *repoPG) GetOwned(ctx context.Context, reviewID, userID int64) (*Review, error) {
	r, err := scanReview(p.pool.QueryRow(ctx,
		`SELECT `+reviewCols+` FROM reviews WHERE review_id = $1 AND user_id = $2`, reviewID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *repoPG) Update(ctx context.Context, r *Review) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = NOW() WHERE review_id = $1`,
		r.ID, r.Rating, r.Comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) Delete(ctx context.Context, reviewID int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM reviews WHERE review_id = $1`, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*DoctorReview, int, error) {
	var total int
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT r.review_id, r.doctor_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at, u.name
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.doctor_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`,
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*DoctorReview
	for rows.Next() {
		var r DoctorReview
		if err := rows.Scan(&r.ID, &r.DoctorID, &r.UserID, &r.Rating, &r.Comment,
			&r.CreatedAt, &r.UpdatedAt, &r.ReviewerName); err != nil {
			return nil, 0, err
		}
		items = append(items, &r)
	}
	return items, total, rows.Err()
}
