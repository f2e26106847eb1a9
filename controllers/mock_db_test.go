package controller

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"contracthub/models"
)

// newMockDB opens a GORM connection over a sqlmock driver so handlers can
// run against scripted query results.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

var teamColumns = []string{"id", "organisation_id", "name", "parent_team_id", "is_active"}

func adminUser() *models.User {
	return &models.User{
		Model:          gorm.Model{ID: 7},
		Email:          "admin@example.org",
		OrganisationID: 3,
		IsActive:       true,
		IsAdmin:        true,
	}
}

// expectAccessQueries scripts the two queries resolveAccess always issues:
// the organisation's teams and the caller's assignments.
func expectAccessQueries(mock sqlmock.Sqlmock, teamRows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT \* FROM "teams" WHERE organisation_id`).
		WillReturnRows(teamRows)
	mock.ExpectQuery(`SELECT \* FROM "user_team_assignments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "team_id", "team_role_id"}))
}
