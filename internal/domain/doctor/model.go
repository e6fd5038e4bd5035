package doctor

import "time"

// Doctor maps to the doctors table. Admin managed; read endpoints are public.
type Doctor struct {
	ID              int64     `db:"doctor_id" json:"doctor_id"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	Specialization  string    `db:"specialization" json:"specialization"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	Bio             string    `db:"bio" json:"bio"`
	ConsultationFee float64   `db:"consultation_fee" json:"consultation_fee"`
	Photo           *string   `db:"photo" json:"photo,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Specialization  string  `json:"specialization"`
	ExperienceYears int     `json:"experience_years"`
	Bio             string  `json:"bio"`
	ConsultationFee float64 `json:"consultation_fee"`
	Photo           *string `json:"photo,omitempty"`
}

type UpdateRequest struct {
	Name            *string  `json:"name,omitempty"`
	Email           *string  `json:"email,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Specialization  *string  `json:"specialization,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	ConsultationFee *float64 `json:"consultation_fee,omitempty"`
	Photo           *string  `json:"photo,omitempty"`
}
