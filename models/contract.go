package models

import (
	"time"

	"gorm.io/gorm"
)

// Stored contract statuses, set by operators. The effective status shown on
// lists and reports is derived from this plus the date bounds; see engine.
const (
	ContractStatusActive    = "active"
	ContractStatusCompleted = "completed"
	ContractStatusInactive  = "inactive"
)

// Contract represents a care contract held with a local authority
type Contract struct {
	gorm.Model
	OrganisationID uint `gorm:"not null;index" json:"organisation_id"`

	// Ownership; nil means unassigned, visible to all organisation members
	TeamID *uint `gorm:"index" json:"team_id,omitempty"`

	LocalAuthorityID uint `gorm:"not null;index" json:"local_authority_id"`
	ContractTypeID   uint `gorm:"not null;index" json:"contract_type_id"`

	// Contract details
	Title          string  `gorm:"not null" json:"title"`
	ContractNumber *string `gorm:"index" json:"contract_number,omitempty"` // operator reference, not unique
	Description    string  `gorm:"type:text" json:"description"`

	// Lifecycle
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"` // nil = open-ended
	Status    string     `gorm:"default:'active'" json:"status"`

	// Financial information
	AnnualValue float64 `gorm:"default:0" json:"annual_value"`
	WeeklyHours float64 `gorm:"default:0" json:"weekly_hours"`

	// Relations
	Organisation   Organisation   `json:"-"`
	Team           *Team          `json:"team,omitempty"`
	LocalAuthority LocalAuthority `json:"local_authority,omitempty"`
	ContractType   ContractType   `json:"contract_type,omitempty"`
	Payments       []Payment      `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
	Rates          []Rate         `gorm:"foreignKey:ContractID" json:"rates,omitempty"`
}

// PaymentMethod names how a payment was received (BACS, cheque, ...)
type PaymentMethod struct {
	gorm.Model
	OrganisationID uint   `gorm:"not null;index" json:"organisation_id"`
	Name           string `gorm:"not null" json:"name"`
}

// Payment records money received against a contract
type Payment struct {
	gorm.Model
	OrganisationID  uint      `gorm:"not null;index" json:"organisation_id"`
	ContractID      uint      `gorm:"not null;index" json:"contract_id"`
	PaymentMethodID *uint     `json:"payment_method_id,omitempty"`
	Amount          float64   `gorm:"not null" json:"amount"`
	PaymentDate     time.Time `gorm:"not null" json:"payment_date"`
	Reference       string    `json:"reference"`

	// Relations
	Contract      Contract       `json:"-"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
}

// Rate is a charge rate agreed under a contract
type Rate struct {
	gorm.Model
	OrganisationID uint      `gorm:"not null;index" json:"organisation_id"`
	ContractID     uint      `gorm:"not null;index" json:"contract_id"`
	Name           string    `gorm:"not null" json:"name"`
	Unit           string    `gorm:"default:'hour'" json:"unit"` // hour, week, night, session
	Amount         float64   `gorm:"not null" json:"amount"`
	EffectiveFrom  time.Time `gorm:"not null" json:"effective_from"`

	// Relations
	Contract Contract `json:"-"`
}

// Person represents a service user attached to contracts
type Person struct {
	gorm.Model
	OrganisationID uint       `gorm:"not null;index" json:"organisation_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	LocalAuthority string     `json:"local_authority"`

	// Relations
	Organisation Organisation `json:"-"`
}
