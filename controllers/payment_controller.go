package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"contracthub/engine"
	"contracthub/models"
	"contracthub/utils"
)

type PaymentController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewPaymentController(db *gorm.DB, logger *log.Logger) *PaymentController {
	return &PaymentController{
		DB:     db,
		Logger: logger,
	}
}

// loadContractForAccess fetches the owning contract and checks it against the
// caller's access set. Payments and rates inherit visibility from their
// contract; there is no per-row access on them.
func (pc *PaymentController) loadContractForAccess(c *fiber.Ctx, contractID uint, manage bool) (*models.Contract, error) {
	user := c.Locals("user").(*models.User)

	var contract models.Contract
	if err := pc.DB.Where("id = ? AND organisation_id = ?", contractID, user.OrganisationID).
		First(&contract).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Contract not found", nil)
	}

	access, _, err := resolveAccess(pc.DB, user)
	if err != nil {
		return nil, accessErrorResponse(c, err)
	}

	if manage {
		err = access.AuthorizeManage(contract)
	} else {
		err = access.AuthorizeView(contract)
	}
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "Access denied", nil)
	}

	return &contract, nil
}

// GetPayments lists a contract's payments, reconciled and newest first
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	contractID := utils.ParseUint(c.Params("id"))

	contract, errResp := pc.loadContractForAccess(c, contractID, false)
	if contract == nil {
		return errResp
	}

	var payments []models.Payment
	if err := pc.DB.Preload("Contract").Preload("PaymentMethod").
		Where("contract_id = ?", contract.ID).
		Order("payment_date DESC, id").Find(&payments).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch payments", err)
	}

	payments = engine.Reconcile(payments, engine.PaymentReconcileOptions())

	return c.JSON(utils.SuccessResponse(payments))
}

// CreatePayment records a payment against a contract
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	contractID := utils.ParseUint(c.Params("id"))

	var input struct {
		Amount          float64 `json:"amount" validate:"required,gt=0"`
		PaymentDate     string  `json:"payment_date" validate:"required"`
		PaymentMethodID *uint   `json:"payment_method_id"`
		Reference       string  `json:"reference" validate:"omitempty,max=200"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	paymentDate, err := utils.ParseDate(input.PaymentDate)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "payment_date must be YYYY-MM-DD", nil)
	}

	contract, errResp := pc.loadContractForAccess(c, contractID, true)
	if contract == nil {
		return errResp
	}

	if input.PaymentMethodID != nil {
		var method models.PaymentMethod
		if err := pc.DB.Where("id = ? AND organisation_id = ?", *input.PaymentMethodID, user.OrganisationID).
			First(&method).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Payment method not found", nil)
		}
	}

	payment := models.Payment{
		OrganisationID:  user.OrganisationID,
		ContractID:      contract.ID,
		PaymentMethodID: input.PaymentMethodID,
		Amount:          input.Amount,
		PaymentDate:     paymentDate,
		Reference:       input.Reference,
	}

	if err := pc.DB.Create(&payment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record payment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(payment))
}

// DeletePayment removes a payment from a contract the caller can manage
func (pc *PaymentController) DeletePayment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	paymentID := utils.ParseUint(c.Params("id"))

	var payment models.Payment
	if err := pc.DB.Where("id = ? AND organisation_id = ?", paymentID, user.OrganisationID).
		First(&payment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Payment not found", nil)
	}

	contract, errResp := pc.loadContractForAccess(c, payment.ContractID, true)
	if contract == nil {
		return errResp
	}

	if err := pc.DB.Delete(&payment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete payment", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Payment deleted"}))
}

// GetRates lists a contract's charge rates
func (pc *PaymentController) GetRates(c *fiber.Ctx) error {
	contractID := utils.ParseUint(c.Params("id"))

	contract, errResp := pc.loadContractForAccess(c, contractID, false)
	if contract == nil {
		return errResp
	}

	var rates []models.Rate
	if err := pc.DB.Where("contract_id = ?", contract.ID).
		Order("effective_from DESC, id").Find(&rates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch rates", err)
	}

	rates = engine.Reconcile(rates, engine.RateReconcileOptions())

	return c.JSON(utils.SuccessResponse(rates))
}

// CreateRate adds a charge rate to a contract
func (pc *PaymentController) CreateRate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	contractID := utils.ParseUint(c.Params("id"))

	var input struct {
		Name          string  `json:"name" validate:"required,min=2,max=200"`
		Unit          string  `json:"unit" validate:"omitempty,oneof=hour week night session"`
		Amount        float64 `json:"amount" validate:"required,gt=0"`
		EffectiveFrom string  `json:"effective_from" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	effectiveFrom, err := utils.ParseDate(input.EffectiveFrom)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "effective_from must be YYYY-MM-DD", nil)
	}

	contract, errResp := pc.loadContractForAccess(c, contractID, true)
	if contract == nil {
		return errResp
	}

	unit := input.Unit
	if unit == "" {
		unit = "hour"
	}

	rate := models.Rate{
		OrganisationID: user.OrganisationID,
		ContractID:     contract.ID,
		Name:           input.Name,
		Unit:           unit,
		Amount:         input.Amount,
		EffectiveFrom:  effectiveFrom,
	}

	if err := pc.DB.Create(&rate).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create rate", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(rate))
}

// DeleteRate removes a charge rate
func (pc *PaymentController) DeleteRate(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	rateID := utils.ParseUint(c.Params("id"))

	var rate models.Rate
	if err := pc.DB.Where("id = ? AND organisation_id = ?", rateID, user.OrganisationID).
		First(&rate).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Rate not found", nil)
	}

	contract, errResp := pc.loadContractForAccess(c, rate.ContractID, true)
	if contract == nil {
		return errResp
	}

	if err := pc.DB.Delete(&rate).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete rate", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Rate deleted"}))
}
