package controller

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"contracthub/models"
)

func teamApp(db *gorm.DB) *fiber.App {
	tc := NewTeamController(db, log.New(io.Discard, "", 0))
	app := fiber.New()
	app.Put("/teams/:id", func(c *fiber.Ctx) error {
		c.Locals("user", adminUser())
		return tc.UpdateTeam(c)
	})
	return app
}

func TestTeamUpdateParent(t *testing.T) {
	t.Run("clear_parent re-roots the team", func(t *testing.T) {
		db, mock := newMockDB(t)
		app := teamApp(db)

		expectAccessQueries(mock, sqlmock.NewRows(teamColumns).
			AddRow(1, 3, "Root", nil, true).
			AddRow(2, 3, "Area North", 1, true))
		mock.ExpectQuery(`SELECT \* FROM "teams" WHERE \(id = \$1 AND organisation_id = \$2\)`).
			WillReturnRows(sqlmock.NewRows(teamColumns).
				AddRow(2, 3, "Area North", 1, true))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "teams" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		req := httptest.NewRequest("PUT", "/teams/2", strings.NewReader(`{"clear_parent":true}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Success bool        `json:"success"`
			Data    models.Team `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Nil(t, body.Data.ParentTeamID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent parent fields leave the parent unchanged", func(t *testing.T) {
		db, mock := newMockDB(t)
		app := teamApp(db)

		expectAccessQueries(mock, sqlmock.NewRows(teamColumns).
			AddRow(1, 3, "Root", nil, true).
			AddRow(2, 3, "Area North", 1, true))
		mock.ExpectQuery(`SELECT \* FROM "teams" WHERE \(id = \$1 AND organisation_id = \$2\)`).
			WillReturnRows(sqlmock.NewRows(teamColumns).
				AddRow(2, 3, "Area North", 1, true))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "teams" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		req := httptest.NewRequest("PUT", "/teams/2", strings.NewReader(`{"name":"Area North East"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Success bool        `json:"success"`
			Data    models.Team `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.Data.ParentTeamID)
		assert.Equal(t, uint(1), *body.Data.ParentTeamID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-parenting under the team's own subtree is rejected", func(t *testing.T) {
		db, mock := newMockDB(t)
		app := teamApp(db)

		expectAccessQueries(mock, sqlmock.NewRows(teamColumns).
			AddRow(1, 3, "Root", nil, true).
			AddRow(2, 3, "Area North", 1, true).
			AddRow(3, 3, "Team Oak", 2, true))
		mock.ExpectQuery(`SELECT \* FROM "teams" WHERE \(id = \$1 AND organisation_id = \$2\)`).
			WillReturnRows(sqlmock.NewRows(teamColumns).
				AddRow(2, 3, "Area North", 1, true))

		req := httptest.NewRequest("PUT", "/teams/2", strings.NewReader(`{"parent_team_id":3}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
