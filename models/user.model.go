package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER-ADMIN"
)

type User struct {
	gorm.Model
	Name                string `gorm:"default:''"`
	Email               string `gorm:"unique;not null"`
	Mobile              string `gorm:"default:''"`
	Role                string `gorm:"default:'STUDENT'"` // STUDENT, INSTRUCTOR, ADMIN, SUPER-ADMIN
	Password            string `gorm:"not null"`
	Organization        string
	IsEmailVerified     bool      `gorm:"default:false"`
	IsActive            bool      `gorm:"default:true"`
	LastLogin           time.Time `gorm:"default:NULL"`
	FailedLoginAttempts int       `gorm:"default:0"`
	IsDeleted           bool      `gorm:"default:false"`
}
