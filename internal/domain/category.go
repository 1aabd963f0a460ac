package domain

import "time"

type Category struct {
	ID           int
	Name         string
	Description  string
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
