package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Profile information
	Name     *string `json:"name,omitempty"`
	JobTitle *string `json:"job_title,omitempty"`
	Timezone string  `gorm:"default:'Europe/London'" json:"timezone"`

	// Tenancy
	OrganisationID uint `gorm:"not null;index" json:"organisation_id"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	// Relations
	Organisation Organisation         `json:"-"`
	Assignments  []UserTeamAssignment `gorm:"foreignKey:UserID" json:"assignments,omitempty"`
}
