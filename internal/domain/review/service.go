package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/caremarket/caremarket/internal/platform/auth"
)

// ErrNotFound covers both unknown review ids and reviews owned by someone
// else; ownership failures are indistinguishable from not-found.
var ErrNotFound = errors.New("review not found or not authorized")

type Service struct {
	reviews Repository
}

func NewService(reviews Repository) *Service {
	return &Service{reviews: reviews}
}

// Add creates a review by the actor for a doctor.
func (s *Service) Add(ctx context.Context, actor auth.Actor, req AddRequest) (*Review, error) {
	if req.DoctorID <= 0 {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	r := &Review{
		DoctorID: req.DoctorID,
		UserID:   actor.ID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update edits the actor's own review.
func (s *Service) Update(ctx context.Context, actor auth.Actor, reviewID int64, req UpdateRequest) (*Review, error) {
	r, err := s.reviews.GetOwned(ctx, reviewID, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, fmt.Errorf("rating must be between 1 and 5")
		}
		r.Rating = *req.Rating
	}
	if req.Comment != nil {
		r.Comment = req.Comment
	}

	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the actor's own review.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, reviewID int64) error {
	r, err := s.reviews.GetOwned(ctx, reviewID, actor.ID)
	if err != nil {
		return err
	}
	return s.reviews.Delete(ctx, r.ID)
}

// ListByDoctor returns a doctor's reviews with reviewer names, newest first.
func (s *Service) ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*DoctorReview, int, error) {
	return s.reviews.ListByDoctor(ctx, doctorID, limit, offset)
}
