package course

import "gorm.io/gorm"

// Course represents a training course offered by the centre
type Course struct {
	gorm.Model
	Title         string `json:"title"`
	Description   string `json:"description"`
	Provider      string `json:"provider"`
	DurationHours int64  `json:"duration_hours" gorm:"default:0"`
	ValidityYears int    `json:"validity_years" gorm:"default:0"` // 0 means certificates never expire
	Status        string `json:"status" gorm:"default:'DRAFT'"`   // DRAFT, ACTIVE, INACTIVE
	IsPublished   bool   `json:"is_published" gorm:"default:false"`
	IsDeleted     bool   `gorm:"default:false"`
}
