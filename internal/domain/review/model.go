package review

import "time"

// Review maps to the reviews table. One patient may leave multiple reviews
// for a doctor; edits and deletes are scoped to the author.
type Review struct {
	ID        int64     `db:"review_id" json:"review_id"`
	DoctorID  int64     `db:"doctor_id" json:"doctor_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DoctorReview is a Review joined with the reviewer's name for public
// listings.
type DoctorReview struct {
	Review
	ReviewerName string `db:"reviewer_name" json:"reviewer_name"`
}

type AddRequest struct {
	DoctorID int64   `json:"doctor_id"`
	Rating   int     `json:"rating"`
	Comment  *string `json:"comment,omitempty"`
}

type UpdateRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}
