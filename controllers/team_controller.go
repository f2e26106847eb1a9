package controller

import (
	"log"
	"sort"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"contracthub/engine"
	"contracthub/models"
	"contracthub/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

type teamResponse struct {
	models.Team
	HierarchyPath string `json:"hierarchy_path"`
}

// CreateTeam creates a team, optionally under a parent in the same organisation
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name         string `json:"name" validate:"required,min=2,max=200"`
		TeamTypeID   *uint  `json:"team_type_id"`
		ParentTeamID *uint  `json:"parent_team_id"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	access, _, err := resolveAccess(tc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if !access.CanManage {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Managerial role required", nil)
	}

	if input.ParentTeamID != nil {
		var parent models.Team
		if err := tc.DB.Where("id = ? AND organisation_id = ?", *input.ParentTeamID, user.OrganisationID).
			First(&parent).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Parent team not found", nil)
		}
	}

	team := models.Team{
		OrganisationID: user.OrganisationID,
		Name:           input.Name,
		TeamTypeID:     input.TeamTypeID,
		ParentTeamID:   input.ParentTeamID,
		IsActive:       true,
	}

	if err := tc.DB.Create(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

// GetTeams lists the organisation's teams with their hierarchy paths,
// sorted by path so the tree reads top-down
func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var teams []models.Team
	if err := tc.DB.Preload("TeamType").
		Where("organisation_id = ?", user.OrganisationID).Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}

	graph, err := engine.BuildTeamGraph(teams)
	if err != nil {
		return accessErrorResponse(c, err)
	}

	responses := make([]teamResponse, 0, len(teams))
	for _, team := range teams {
		responses = append(responses, teamResponse{
			Team:          team,
			HierarchyPath: graph.HierarchyPath(team.ID),
		})
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].HierarchyPath < responses[j].HierarchyPath
	})

	return c.JSON(utils.SuccessResponse(responses))
}

// GetTeam returns one team with its path and members
func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	var team models.Team
	if err := tc.DB.Preload("TeamType").Preload("Assignments.TeamRole").
		Where("id = ? AND organisation_id = ?", teamID, user.OrganisationID).
		First(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var teams []models.Team
	if err := tc.DB.Where("organisation_id = ?", user.OrganisationID).Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}
	graph, err := engine.BuildTeamGraph(teams)
	if err != nil {
		return accessErrorResponse(c, err)
	}

	return c.JSON(utils.SuccessResponse(teamResponse{
		Team:          team,
		HierarchyPath: graph.HierarchyPath(team.ID),
	}))
}

// UpdateTeam renames or re-parents a team. Re-parenting under the team's own
// subtree would create a cycle and is rejected.
func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	var input struct {
		Name       *string `json:"name" validate:"omitempty,min=2,max=200"`
		TeamTypeID *uint   `json:"team_type_id"`

		// A nil ParentTeamID means "unchanged"; re-rooting is requested
		// explicitly so a partial payload cannot detach a team by accident.
		ParentTeamID *uint `json:"parent_team_id"`
		ClearParent  bool  `json:"clear_parent"`

		IsActive *bool `json:"is_active"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	access, graph, err := resolveAccess(tc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if !access.CanManage || !access.CanViewTeam(teamID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	var team models.Team
	if err := tc.DB.Where("id = ? AND organisation_id = ?", teamID, user.OrganisationID).
		First(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	if input.ClearParent {
		team.ParentTeamID = nil
	} else if input.ParentTeamID != nil {
		newParent := *input.ParentTeamID
		if _, inSubtree := graph.Descendants(team.ID)[newParent]; inSubtree {
			return utils.ErrorResponse(c, fiber.StatusBadRequest,
				"Cannot move a team under its own subtree", nil)
		}
		var parent models.Team
		if err := tc.DB.Where("id = ? AND organisation_id = ?", newParent, user.OrganisationID).
			First(&parent).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Parent team not found", nil)
		}
		team.ParentTeamID = input.ParentTeamID
	}
	if input.Name != nil {
		team.Name = *input.Name
	}
	if input.TeamTypeID != nil {
		team.TeamTypeID = input.TeamTypeID
	}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}

	if err := tc.DB.Save(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	return c.JSON(utils.SuccessResponse(team))
}

// DeleteTeam removes a team that has no children and no contracts
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	access, _, err := resolveAccess(tc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if !access.CanManage || !access.CanViewTeam(teamID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	var team models.Team
	if err := tc.DB.Where("id = ? AND organisation_id = ?", teamID, user.OrganisationID).
		First(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var childCount int64
	tc.DB.Model(&models.Team{}).Where("parent_team_id = ?", team.ID).Count(&childCount)
	if childCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Team still has child teams", nil)
	}

	var contractCount int64
	tc.DB.Model(&models.Contract{}).Where("team_id = ?", team.ID).Count(&contractCount)
	if contractCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Team still has contracts", nil)
	}

	if err := tc.DB.Delete(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Team deleted"}))
}

// GetTeamRoles lists the organisation's roles
func (tc *TeamController) GetTeamRoles(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var roles []models.TeamRole
	if err := tc.DB.Where("organisation_id = ?", user.OrganisationID).Find(&roles).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch roles", err)
	}

	return c.JSON(utils.SuccessResponse(roles))
}

// CreateTeamRole adds a custom role
func (tc *TeamController) CreateTeamRole(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,min=2,max=100"`
		AccessLevel string `json:"access_level" validate:"required,oneof=team organisation"`
		CanManage   bool   `json:"can_manage"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	access, _, err := resolveAccess(tc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if !access.CanManage {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Managerial role required", nil)
	}

	role := models.TeamRole{
		OrganisationID: user.OrganisationID,
		Name:           input.Name,
		AccessLevel:    input.AccessLevel,
		CanManage:      input.CanManage,
	}

	if err := tc.DB.Create(&role).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create role", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(role))
}

// CreateAssignment gives a user a role on a team. Marking it primary clears
// any previous primary flag for that user.
func (tc *TeamController) CreateAssignment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		UserID     uint `json:"user_id" validate:"required"`
		TeamID     uint `json:"team_id" validate:"required"`
		TeamRoleID uint `json:"team_role_id" validate:"required"`
		IsPrimary  bool `json:"is_primary"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	access, _, err := resolveAccess(tc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if !access.CanManage || !access.CanViewTeam(input.TeamID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	// The target user, team and role must all live in this organisation
	var target models.User
	if err := tc.DB.Where("id = ? AND organisation_id = ?", input.UserID, user.OrganisationID).
		First(&target).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	var team models.Team
	if err := tc.DB.Where("id = ? AND organisation_id = ?", input.TeamID, user.OrganisationID).
		First(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}
	var role models.TeamRole
	if err := tc.DB.Where("id = ? AND organisation_id = ?", input.TeamRoleID, user.OrganisationID).
		First(&role).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Role not found", nil)
	}

	assignment := models.UserTeamAssignment{
		UserID:     input.UserID,
		TeamID:     input.TeamID,
		TeamRoleID: input.TeamRoleID,
		IsPrimary:  input.IsPrimary,
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if input.IsPrimary {
			if err := tx.Model(&models.UserTeamAssignment{}).
				Where("user_id = ?", input.UserID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create assignment", err)
	}

	utils.LogEvent("assignment_created", map[string]interface{}{
		"user_id":      input.UserID,
		"team_id":      input.TeamID,
		"team_role_id": input.TeamRoleID,
		"by":           user.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(assignment))
}

// DeleteAssignment revokes a user's role on a team
func (tc *TeamController) DeleteAssignment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	assignmentID := utils.ParseUint(c.Params("id"))

	var assignment models.UserTeamAssignment
	if err := tc.DB.Joins("Team").
		Where("user_team_assignments.id = ? AND \"Team\".organisation_id = ?", assignmentID, user.OrganisationID).
		First(&assignment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", nil)
	}

	access, _, err := resolveAccess(tc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if !access.CanManage || !access.CanViewTeam(assignment.TeamID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	if err := tc.DB.Delete(&assignment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete assignment", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Assignment deleted"}))
}
