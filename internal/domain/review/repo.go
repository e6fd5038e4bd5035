package review

import "context"

type Repository interface {
	Create(ctx context.Context, r *Review) error
	// GetOwned returns the review only when it belongs to userID.
	GetOwned(ctx context.Context, reviewID, userID int64) (*Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, reviewID int64) error
	ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*DoctorReview, int, error)
}
