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

type ReportController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReportController(db *gorm.DB, logger *log.Logger) *ReportController {
	return &ReportController{
		DB:     db,
		Logger: logger,
	}
}

// reportWindow resolves the requested period. Absent parameters default to
// the current UK financial year; a half-specified or inverted range is a
// client error.
func reportWindow(c *fiber.Ctx) (engine.Window, error) {
	startParam := c.Query("start")
	endParam := c.Query("end")

	if startParam == "" && endParam == "" {
		return engine.FiscalYear(time.Now()), nil
	}
	if startParam == "" || endParam == "" {
		return engine.Window{}, fiber.NewError(fiber.StatusBadRequest, "start and end must be given together")
	}

	start, err := utils.ParseDate(startParam)
	if err != nil {
		return engine.Window{}, fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
	}
	end, err := utils.ParseDate(endParam)
	if err != nil {
		return engine.Window{}, fiber.NewError(fiber.StatusBadRequest, "end must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return engine.Window{}, fiber.NewError(fiber.StatusBadRequest, "end cannot be before start")
	}

	return engine.Window{Start: start, End: end}, nil
}

// reportInputs loads the caller's visible contracts and their payments,
// reconciled and access-filtered. Every report starts from this same base so
// the figures line up with what the contract list shows.
func (rc *ReportController) reportInputs(user *models.User) ([]models.Contract, []models.Payment, error) {
	access, _, err := resolveAccess(rc.DB, user)
	if err != nil {
		return nil, nil, err
	}

	var contracts []models.Contract
	if err := rc.DB.Preload("LocalAuthority").
		Where("organisation_id = ?", user.OrganisationID).
		Order("start_date, id").Find(&contracts).Error; err != nil {
		return nil, nil, err
	}

	contracts = engine.Reconcile(contracts, engine.ContractReconcileOptions())
	contracts = access.FilterContracts(contracts)

	ids := make([]uint, 0, len(contracts))
	for _, contract := range contracts {
		ids = append(ids, contract.ID)
	}

	var payments []models.Payment
	if len(ids) > 0 {
		if err := rc.DB.Preload("Contract").Preload("PaymentMethod").
			Where("contract_id IN ?", ids).Find(&payments).Error; err != nil {
			return nil, nil, err
		}
		payments = engine.Reconcile(payments, engine.PaymentReconcileOptions())
	}

	return contracts, payments, nil
}

// GetSummary returns the period summary with local-authority breakdown and
// prior-period comparison
func (rc *ReportController) GetSummary(c *fiber.Ctx) error {
	window, err := reportWindow(c)
	if err != nil {
		fiberErr := err.(*fiber.Error)
		return utils.ErrorResponse(c, fiberErr.Code, fiberErr.Message, nil)
	}

	contracts, payments, err := rc.reportInputs(c.Locals("user").(*models.User))
	if err != nil {
		return accessErrorResponse(c, err)
	}

	summary := engine.Aggregate(contracts, payments, window, time.Now())

	return c.JSON(utils.SuccessResponse(summary))
}

// GetLocalAuthorities returns just the per-authority slice of the summary,
// for the breakdown page
func (rc *ReportController) GetLocalAuthorities(c *fiber.Ctx) error {
	window, err := reportWindow(c)
	if err != nil {
		fiberErr := err.(*fiber.Error)
		return utils.ErrorResponse(c, fiberErr.Code, fiberErr.Message, nil)
	}

	contracts, payments, err := rc.reportInputs(c.Locals("user").(*models.User))
	if err != nil {
		return accessErrorResponse(c, err)
	}

	summary := engine.Aggregate(contracts, payments, window, time.Now())

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"window":      summary.Window,
		"authorities": summary.Authorities,
	}))
}

// GetStatusIssues lists contracts whose stored status disagrees with the
// derived one, for the data-quality audit page
func (rc *ReportController) GetStatusIssues(c *fiber.Ctx) error {
	contracts, _, err := rc.reportInputs(c.Locals("user").(*models.User))
	if err != nil {
		return accessErrorResponse(c, err)
	}

	now := time.Now()
	issues := make([]engine.StatusIssue, 0)
	for _, contract := range contracts {
		if issue, ok := engine.DetectStatusIssue(contract, now); ok {
			issues = append(issues, issue)
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"count":  len(issues),
		"issues": issues,
	}))
}
