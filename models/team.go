package models

import "gorm.io/gorm"

// Access levels for team roles
const (
	AccessLevelTeam         = "team"         // assigned team plus all descendants
	AccessLevelOrganisation = "organisation" // every team in the organisation
)

// Team represents one node in an organisation's team hierarchy.
// ParentTeamID is nil for root teams; the parent relation must stay acyclic.
type Team struct {
	gorm.Model
	OrganisationID uint   `gorm:"not null;index" json:"organisation_id"`
	Name           string `gorm:"not null" json:"name"`
	TeamTypeID     *uint  `gorm:"index" json:"team_type_id,omitempty"`
	ParentTeamID   *uint  `gorm:"index" json:"parent_team_id,omitempty"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	// Relations
	Organisation Organisation         `json:"-"`
	TeamType     *TeamType            `json:"team_type,omitempty"`
	Assignments  []UserTeamAssignment `gorm:"foreignKey:TeamID" json:"assignments,omitempty"`
	Contracts    []Contract           `gorm:"foreignKey:TeamID" json:"contracts,omitempty"`
}

// TeamRole defines what a user can see and do within a team
type TeamRole struct {
	gorm.Model
	OrganisationID uint   `gorm:"not null;index" json:"organisation_id"`
	Name           string `gorm:"not null" json:"name"`
	AccessLevel    string `gorm:"not null;default:'team'" json:"access_level"` // team, organisation
	CanManage      bool   `gorm:"default:false" json:"can_manage"`

	// Relations
	Organisation Organisation `json:"-"`
}

// UserTeamAssignment links a user to a team with a role.
// A user may hold several assignments across different teams; IsPrimary marks
// at most one as the default for display and has no effect on access.
type UserTeamAssignment struct {
	gorm.Model
	UserID     uint `gorm:"not null;index" json:"user_id"`
	TeamID     uint `gorm:"not null;index" json:"team_id"`
	TeamRoleID uint `gorm:"not null;index" json:"team_role_id"`
	IsPrimary  bool `gorm:"default:false" json:"is_primary"`

	// Relations
	User     User     `json:"-"`
	Team     Team     `json:"team,omitempty"`
	TeamRole TeamRole `json:"team_role,omitempty"`
}
