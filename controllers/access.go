package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"contracthub/engine"
	"contracthub/models"
	"contracthub/utils"
)

// resolveAccess computes the caller's accessible-team set from their current
// assignments and the organisation's current team tree. It runs on every
// request on purpose: membership and hierarchy change between page loads,
// and a cached set would leak or hide records.
//
// A corrupt hierarchy (parent-pointer cycle) fails closed: no access is
// computed and the caller must answer with an error, not a partial view.
func resolveAccess(db *gorm.DB, user *models.User) (engine.AccessSet, *engine.TeamGraph, error) {
	var teams []models.Team
	if err := db.Where("organisation_id = ?", user.OrganisationID).Find(&teams).Error; err != nil {
		return engine.AccessSet{}, nil, err
	}

	graph, err := engine.BuildTeamGraph(teams)
	if err != nil {
		return engine.AccessSet{}, nil, err
	}

	var assignments []models.UserTeamAssignment
	if err := db.Preload("TeamRole").Where("user_id = ?", user.ID).Find(&assignments).Error; err != nil {
		return engine.AccessSet{}, nil, err
	}

	access := engine.ResolveAccess(user.OrganisationID, assignments, graph)

	// The organisation-admin account flag is equivalent to holding an
	// organisation-level managerial role on every team.
	if user.IsAdmin {
		access.Unrestricted = true
		access.CanManage = true
	}

	return access, graph, nil
}

// accessErrorResponse maps a resolveAccess failure onto the standard
// envelope and reports it. These are all 500-class conditions: corrupt
// hierarchy data or a failed query, never a bad request.
func accessErrorResponse(c *fiber.Ctx, err error) error {
	utils.LogError("access_resolution", err, map[string]interface{}{
		"path":   c.Path(),
		"method": c.Method(),
	})

	if errors.Is(err, engine.ErrHierarchyCycle) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError,
			"Team hierarchy is corrupt; access cannot be computed", err)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve access", err)
}
