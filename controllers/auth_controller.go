package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"contracthub/config"
	"contracthub/models"
	"contracthub/utils"
)

type RegisterRequest struct {
	OrganisationName string `json:"organisation_name" validate:"required,min=2,max=200"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	Name             string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Register creates a new organisation with its first (admin) user and the
// default team roles
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Check if user already exists
	var existingUser models.User
	if err := config.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	var user models.User
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		organisation := models.Organisation{Name: req.OrganisationName, IsActive: true}
		if err := tx.Create(&organisation).Error; err != nil {
			return err
		}

		user = models.User{
			Email:          req.Email,
			PasswordHash:   string(hash),
			OrganisationID: organisation.ID,
			IsActive:       true,
			IsAdmin:        true,
		}
		if req.Name != "" {
			user.Name = &req.Name
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		return models.CreateDefaultTeamRoles(tx, organisation.ID)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create organisation", err)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue tokens", err)
	}

	utils.LogEvent("user_registered", map[string]interface{}{
		"user_id":         user.ID,
		"organisation_id": user.OrganisationID,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	}))
}

// Login verifies credentials and issues an access/refresh token pair
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.LogEvent("login_failed", map[string]interface{}{
			"email": req.Email,
			"ip":    c.IP(),
		})
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	}

	if !user.IsActive {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Account is not active", nil)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue tokens", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(15 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(utils.SuccessResponse(AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	}))
}

// RefreshToken exchanges a valid refresh token for a new pair
func RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	accessToken, refreshToken, err := utils.RefreshTokens(req.RefreshToken)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid refresh token", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}))
}

// Logout bumps the token version, invalidating every outstanding token
func Logout(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := config.DB.Model(user).Update("token_version", user.TokenVersion+1).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to log out", err)
	}

	c.ClearCookie("access_token")
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Logged out"}))
}

// GetCurrentUser returns the authenticated user with their assignments
func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var loaded models.User
	if err := config.DB.Preload("Assignments.Team").Preload("Assignments.TeamRole").
		First(&loaded, user.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load user", err)
	}

	return c.JSON(utils.SuccessResponse(loaded))
}
