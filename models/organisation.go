package models

import "gorm.io/gorm"

// Organisation is the tenancy boundary; every record hangs off one
type Organisation struct {
	gorm.Model
	Name     string `gorm:"not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Relations
	Teams     []Team     `gorm:"foreignKey:OrganisationID" json:"teams,omitempty"`
	Contracts []Contract `gorm:"foreignKey:OrganisationID" json:"contracts,omitempty"`
}

// LocalAuthority represents a commissioning local authority
type LocalAuthority struct {
	gorm.Model
	OrganisationID uint   `gorm:"not null;index" json:"organisation_id"`
	Name           string `gorm:"not null" json:"name"`
	Region         string `json:"region"`

	// Relations
	Organisation Organisation `json:"-"`
}

// ContractType classifies contracts (e.g. block, spot, framework)
type ContractType struct {
	gorm.Model
	OrganisationID uint   `gorm:"not null;index" json:"organisation_id"`
	Name           string `gorm:"not null" json:"name"`

	// Relations
	Organisation Organisation `json:"-"`
}

// TeamType is an optional classification for teams (e.g. region, area, service)
type TeamType struct {
	gorm.Model
	OrganisationID uint   `gorm:"not null;index" json:"organisation_id"`
	Name           string `gorm:"not null" json:"name"`

	// Relations
	Organisation Organisation `json:"-"`
}

// CreateDefaultTeamRoles seeds the standard roles for a new organisation
func CreateDefaultTeamRoles(db *gorm.DB, organisationID uint) error {
	defaultRoles := []TeamRole{
		{
			OrganisationID: organisationID,
			Name:           "Organisation Admin",
			AccessLevel:    AccessLevelOrganisation,
			CanManage:      true,
		},
		{
			OrganisationID: organisationID,
			Name:           "Team Manager",
			AccessLevel:    AccessLevelTeam,
			CanManage:      true,
		},
		{
			OrganisationID: organisationID,
			Name:           "Team Member",
			AccessLevel:    AccessLevelTeam,
			CanManage:      false,
		},
	}
	for _, role := range defaultRoles {
		if err := db.FirstOrCreate(&role, "organisation_id = ? AND name = ?", organisationID, role.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
