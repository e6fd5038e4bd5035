package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("doctor not found")
	ErrEmailTaken = errors.New("doctor email already registered")
)

type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

// Create registers a doctor. Admin only; enforced at the route level.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Doctor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Specialization == "" {
		return nil, fmt.Errorf("name, email, phone and specialization are required")
	}
	if req.ExperienceYears < 0 {
		return nil, fmt.Errorf("experience_years cannot be negative")
	}
	if req.ConsultationFee < 0 {
		return nil, fmt.Errorf("consultation_fee cannot be negative")
	}

	d := &Doctor{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		ExperienceYears: req.ExperienceYears,
		Bio:             req.Bio,
		ConsultationFee: req.ConsultationFee,
		Photo:           req.Photo,
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// Update applies partial changes to a doctor. Admin only.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		d.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, fmt.Errorf("email cannot be empty")
		}
		d.Email = email
	}
	if req.Phone != nil {
		d.Phone = *req.Phone
	}
	if req.Specialization != nil {
		d.Specialization = *req.Specialization
	}
	if req.ExperienceYears != nil {
		if *req.ExperienceYears < 0 {
			return nil, fmt.Errorf("experience_years cannot be negative")
		}
		d.ExperienceYears = *req.ExperienceYears
	}
	if req.Bio != nil {
		d.Bio = *req.Bio
	}
	if req.ConsultationFee != nil {
		if *req.ConsultationFee < 0 {
			return nil, fmt.Errorf("consultation_fee cannot be negative")
		}
		d.ConsultationFee = *req.ConsultationFee
	}
	if req.Photo != nil {
		d.Photo = req.Photo
	}

	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a doctor. Admin only.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

// List returns doctors newest first, optionally filtered by specialization.
func (s *Service) List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, specialization, limit, offset)
}
