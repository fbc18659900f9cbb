package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

// UserController manages staff accounts; each handler is bound to the
// role of the sub-resource it is mounted on.
type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

func (ctrl *UserController) List(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := ctrl.Users.List(c.Request.Context(), role)
		if err != nil {
			respondError(c, err, "Failed to load users")
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func (ctrl *UserController) Get(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		user, err := ctrl.Users.Get(c.Request.Context(), role, id)
		if err != nil {
			respondError(c, err, "Failed to load user")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func (ctrl *UserController) Create(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.UserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badPayload(c, err)
			return
		}
		user, err := ctrl.Users.Create(c.Request.Context(), role, input)
		if err != nil {
			respondError(c, err, "Failed to create user")
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func (ctrl *UserController) Update(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input services.UserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badPayload(c, err)
			return
		}
		user, err := ctrl.Users.Update(c.Request.Context(), role, id, input)
		if err != nil {
			respondError(c, err, "Failed to update user")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func (ctrl *UserController) Delete(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := ctrl.Users.Delete(c.Request.Context(), role, id); err != nil {
			respondError(c, err, "Failed to delete user")
			return
		}
		utils.JSONMessage(c, http.StatusOK, "User deleted successfully")
	}
}
