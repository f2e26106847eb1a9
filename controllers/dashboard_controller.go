package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"contracthub/engine"
	"contracthub/models"
	"contracthub/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type dashboardStats struct {
	ContractCount    int     `json:"contract_count"`
	ActiveCount      int     `json:"active_count"`
	CompletedCount   int     `json:"completed_count"`
	InactiveCount    int     `json:"inactive_count"`
	ExpiringSoon     int     `json:"expiring_soon"`
	TotalAnnualValue float64 `json:"total_annual_value"`
	TeamCount        int64   `json:"team_count"`
	PeopleCount      int64   `json:"people_count"`
}

// GetStats returns the landing-page headline numbers, computed over the
// caller's visible contracts with effective statuses. "Expiring soon" means
// an end date within the next 90 days on a still-active contract.
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	access, _, err := resolveAccess(dc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}

	var contracts []models.Contract
	if err := dc.DB.Where("organisation_id = ?", user.OrganisationID).
		Order("id").Find(&contracts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch contracts", err)
	}

	contracts = engine.Reconcile(contracts, engine.ContractReconcileOptions())
	contracts = access.FilterContracts(contracts)

	now := time.Now()
	horizon := now.AddDate(0, 0, 90)

	stats := dashboardStats{ContractCount: len(contracts)}
	for _, contract := range contracts {
		switch engine.EffectiveContractStatus(contract, now) {
		case models.ContractStatusActive:
			stats.ActiveCount++
			stats.TotalAnnualValue += contract.AnnualValue
			if contract.EndDate != nil && !contract.EndDate.After(horizon) {
				stats.ExpiringSoon++
			}
		case models.ContractStatusCompleted:
			stats.CompletedCount++
		case models.ContractStatusInactive:
			stats.InactiveCount++
		}
	}

	if err := dc.DB.Model(&models.Team{}).
		Where("organisation_id = ? AND is_active = ?", user.OrganisationID, true).
		Count(&stats.TeamCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count teams", err)
	}
	if err := dc.DB.Model(&models.Person{}).
		Where("organisation_id = ?", user.OrganisationID).
		Count(&stats.PeopleCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count people", err)
	}

	return c.JSON(utils.SuccessResponse(stats))
}
