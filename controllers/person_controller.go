package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"contracthub/engine"
	"contracthub/models"
	"contracthub/utils"
)

type PersonController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewPersonController(db *gorm.DB, logger *log.Logger) *PersonController {
	return &PersonController{
		DB:     db,
		Logger: logger,
	}
}

type personInput struct {
	FirstName      string `json:"first_name" validate:"required,min=1,max=100"`
	LastName       string `json:"last_name" validate:"required,min=1,max=100"`
	DateOfBirth    string `json:"date_of_birth"`
	LocalAuthority string `json:"local_authority" validate:"omitempty,max=200"`
}

// GetPeople lists the organisation's people, reconciled. Legacy imports left
// duplicate rows behind and the list view hides them the same way the
// contract list does.
func (pc *PersonController) GetPeople(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := pc.DB.Where("organisation_id = ?", user.OrganisationID)
	if search := c.Query("search"); search != "" {
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var people []models.Person
	if err := query.Order("last_name, first_name, id").Find(&people).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch people", err)
	}

	people = engine.Reconcile(people, engine.PersonReconcileOptions())

	return c.JSON(utils.SuccessResponse(people))
}

// GetPerson returns one person
func (pc *PersonController) GetPerson(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	personID := utils.ParseUint(c.Params("id"))

	var person models.Person
	if err := pc.DB.Where("id = ? AND organisation_id = ?", personID, user.OrganisationID).
		First(&person).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Person not found", nil)
	}

	return c.JSON(utils.SuccessResponse(person))
}

// CreatePerson adds a person record
func (pc *PersonController) CreatePerson(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input personInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	dob, err := utils.ParseOptionalDate(input.DateOfBirth)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "date_of_birth must be YYYY-MM-DD", nil)
	}

	person := models.Person{
		OrganisationID: user.OrganisationID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		DateOfBirth:    dob,
		LocalAuthority: input.LocalAuthority,
	}

	if err := pc.DB.Create(&person).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create person", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(person))
}

// UpdatePerson updates a person record
func (pc *PersonController) UpdatePerson(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	personID := utils.ParseUint(c.Params("id"))

	var person models.Person
	if err := pc.DB.Where("id = ? AND organisation_id = ?", personID, user.OrganisationID).
		First(&person).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Person not found", nil)
	}

	var input personInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	dob, err := utils.ParseOptionalDate(input.DateOfBirth)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "date_of_birth must be YYYY-MM-DD", nil)
	}

	person.FirstName = input.FirstName
	person.LastName = input.LastName
	person.DateOfBirth = dob
	person.LocalAuthority = input.LocalAuthority

	if err := pc.DB.Save(&person).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update person", err)
	}

	return c.JSON(utils.SuccessResponse(person))
}

// DeletePerson removes a person record
func (pc *PersonController) DeletePerson(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	personID := utils.ParseUint(c.Params("id"))

	var person models.Person
	if err := pc.DB.Where("id = ? AND organisation_id = ?", personID, user.OrganisationID).
		First(&person).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Person not found", nil)
	}

	if err := pc.DB.Delete(&person).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete person", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Person deleted"}))
}
