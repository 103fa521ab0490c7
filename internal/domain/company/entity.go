package company

import "time"

type Company struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Department struct {
	ID        int64
	CompanyID int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
