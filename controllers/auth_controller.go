package controllers

import (
	"net/http"
	"strings"

	"hotel-pms/middleware"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	Users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{Users: users}
}

// ---------------------------
// POST /api/auth/login
// ---------------------------

func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "username and password required")
		return
	}

	result, err := ctrl.Users.Login(c.Request.Context(), strings.TrimSpace(payload.Username), payload.Password)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			utils.JSONError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ---------------------------
// GET /api/auth/me
// ---------------------------

func (ctrl *AuthController) Me(c *gin.Context) {
	current, ok := middleware.GetUserContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := ctrl.Users.GetByID(c.Request.Context(), current.UserID)
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, user)
}
