package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"contracthub/engine"
	"contracthub/models"
	"contracthub/utils"
)

type ContractController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewContractController(db *gorm.DB, logger *log.Logger) *ContractController {
	return &ContractController{
		DB:     db,
		Logger: logger,
	}
}

type contractInput struct {
	Title            string  `json:"title" validate:"required,min=2,max=300"`
	ContractNumber   *string `json:"contract_number" validate:"omitempty,max=100"`
	Description      string  `json:"description" validate:"omitempty,max=2000"`
	TeamID           *uint   `json:"team_id"`
	LocalAuthorityID uint    `json:"local_authority_id" validate:"required"`
	ContractTypeID   uint    `json:"contract_type_id" validate:"required"`
	StartDate        string  `json:"start_date" validate:"required"`
	EndDate          string  `json:"end_date"`
	Status           string  `json:"status" validate:"omitempty,oneof=active completed inactive"`
	AnnualValue      float64 `json:"annual_value" validate:"gte=0"`
	WeeklyHours      float64 `json:"weekly_hours" validate:"gte=0"`
}

type contractResponse struct {
	models.Contract
	EffectiveStatus string `json:"effective_status"`
}

// parseContractDates validates and parses the date pair. An end date before
// the start date is rejected here, at the boundary; legacy rows already
// stored that way are tolerated on read.
func parseContractDates(input contractInput) (time.Time, *time.Time, error) {
	start, err := utils.ParseDate(input.StartDate)
	if err != nil {
		return time.Time{}, nil, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := utils.ParseOptionalDate(input.EndDate)
	if err != nil {
		return time.Time{}, nil, errors.New("end_date must be YYYY-MM-DD")
	}
	if end != nil && end.Before(start) {
		return time.Time{}, nil, errors.New("end_date cannot be before start_date")
	}
	return start, end, nil
}

// GetContracts lists the contracts visible to the caller: the organisation's
// rows are reconciled, access-filtered against the team graph, annotated with
// their effective status and paginated.
func (cc *ContractController) GetContracts(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	access, _, err := resolveAccess(cc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}

	query := cc.DB.Preload("LocalAuthority").Preload("ContractType").Preload("Team").
		Where("organisation_id = ?", user.OrganisationID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if teamID := c.Query("team_id"); teamID != "" {
		query = query.Where("team_id = ?", utils.ParseUint(teamID))
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ? OR contract_number ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var contracts []models.Contract
	if err := query.Order("start_date DESC, id").Find(&contracts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch contracts", err)
	}

	contracts = engine.Reconcile(contracts, engine.ContractReconcileOptions())
	contracts = access.FilterContracts(contracts)

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 25)
	if limit < 1 || limit > 100 {
		limit = 25
	}

	total := int64(len(contracts))
	offset := (page - 1) * limit
	if offset > len(contracts) {
		offset = len(contracts)
	}
	end := offset + limit
	if end > len(contracts) {
		end = len(contracts)
	}

	now := time.Now()
	responses := make([]contractResponse, 0, end-offset)
	for _, contract := range contracts[offset:end] {
		responses = append(responses, contractResponse{
			Contract:        contract,
			EffectiveStatus: engine.EffectiveContractStatus(contract, now),
		})
	}

	return c.JSON(utils.SuccessResponse(utils.PaginatedResponse{
		Data:  responses,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// GetContract returns one contract with payments and rates
func (cc *ContractController) GetContract(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	contractID := utils.ParseUint(c.Params("id"))

	var contract models.Contract
	if err := cc.DB.Preload("LocalAuthority").Preload("ContractType").Preload("Team").
		Preload("Payments.PaymentMethod").Preload("Rates").
		Where("id = ? AND organisation_id = ?", contractID, user.OrganisationID).
		First(&contract).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Contract not found", nil)
	}

	access, _, err := resolveAccess(cc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if err := access.AuthorizeView(contract); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	return c.JSON(utils.SuccessResponse(contractResponse{
		Contract:        contract,
		EffectiveStatus: engine.EffectiveContractStatus(contract, time.Now()),
	}))
}

// CreateContract creates a contract, optionally assigned to a team the
// caller can manage
func (cc *ContractController) CreateContract(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input contractInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	start, end, err := parseContractDates(input)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	access, _, err := resolveAccess(cc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if !access.CanManage {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Managerial role required", nil)
	}
	if input.TeamID != nil && !access.CanViewTeam(*input.TeamID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	var authority models.LocalAuthority
	if err := cc.DB.Where("id = ? AND organisation_id = ?", input.LocalAuthorityID, user.OrganisationID).
		First(&authority).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Local authority not found", nil)
	}
	var contractType models.ContractType
	if err := cc.DB.Where("id = ? AND organisation_id = ?", input.ContractTypeID, user.OrganisationID).
		First(&contractType).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Contract type not found", nil)
	}
	if input.TeamID != nil {
		var team models.Team
		if err := cc.DB.Where("id = ? AND organisation_id = ?", *input.TeamID, user.OrganisationID).
			First(&team).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
		}
	}

	status := input.Status
	if status == "" {
		status = models.ContractStatusActive
	}

	contract := models.Contract{
		OrganisationID:   user.OrganisationID,
		TeamID:           input.TeamID,
		LocalAuthorityID: input.LocalAuthorityID,
		ContractTypeID:   input.ContractTypeID,
		Title:            input.Title,
		ContractNumber:   input.ContractNumber,
		Description:      input.Description,
		StartDate:        start,
		EndDate:          end,
		Status:           status,
		AnnualValue:      input.AnnualValue,
		WeeklyHours:      input.WeeklyHours,
	}

	if err := cc.DB.Create(&contract).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create contract", err)
	}

	utils.LogEvent("contract_created", map[string]interface{}{
		"contract_id":     contract.ID,
		"organisation_id": user.OrganisationID,
		"by":              user.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(contract))
}

// UpdateContract updates an existing contract the caller can manage
func (cc *ContractController) UpdateContract(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	contractID := utils.ParseUint(c.Params("id"))

	var contract models.Contract
	if err := cc.DB.Where("id = ? AND organisation_id = ?", contractID, user.OrganisationID).
		First(&contract).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Contract not found", nil)
	}

	access, _, err := resolveAccess(cc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if err := access.AuthorizeManage(contract); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	var input contractInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	start, end, err := parseContractDates(input)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if input.LocalAuthorityID != contract.LocalAuthorityID {
		var authority models.LocalAuthority
		if err := cc.DB.Where("id = ? AND organisation_id = ?", input.LocalAuthorityID, user.OrganisationID).
			First(&authority).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Local authority not found", nil)
		}
	}
	if input.ContractTypeID != contract.ContractTypeID {
		var contractType models.ContractType
		if err := cc.DB.Where("id = ? AND organisation_id = ?", input.ContractTypeID, user.OrganisationID).
			First(&contractType).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Contract type not found", nil)
		}
	}

	// Moving the contract to another team also requires access to the target
	if input.TeamID != nil {
		if !access.CanViewTeam(*input.TeamID) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
		}
		var team models.Team
		if err := cc.DB.Where("id = ? AND organisation_id = ?", *input.TeamID, user.OrganisationID).
			First(&team).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
		}
	}

	contract.Title = input.Title
	contract.ContractNumber = input.ContractNumber
	contract.Description = input.Description
	contract.TeamID = input.TeamID
	contract.LocalAuthorityID = input.LocalAuthorityID
	contract.ContractTypeID = input.ContractTypeID
	contract.StartDate = start
	contract.EndDate = end
	contract.AnnualValue = input.AnnualValue
	contract.WeeklyHours = input.WeeklyHours
	if input.Status != "" {
		contract.Status = input.Status
	}

	if err := cc.DB.Save(&contract).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update contract", err)
	}

	return c.JSON(utils.SuccessResponse(contract))
}

// DeleteContract soft-deletes a contract and its payments
func (cc *ContractController) DeleteContract(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	contractID := utils.ParseUint(c.Params("id"))

	var contract models.Contract
	if err := cc.DB.Where("id = ? AND organisation_id = ?", contractID, user.OrganisationID).
		First(&contract).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Contract not found", nil)
	}

	access, _, err := resolveAccess(cc.DB, user)
	if err != nil {
		return accessErrorResponse(c, err)
	}
	if err := access.AuthorizeManage(contract); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", contract.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contract_id = ?", contract.ID).Delete(&models.Rate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&contract).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete contract", err)
	}

	utils.LogEvent("contract_deleted", map[string]interface{}{
		"contract_id":     contract.ID,
		"organisation_id": user.OrganisationID,
		"by":              user.ID,
	})

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Contract deleted"}))
}
