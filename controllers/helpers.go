package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrRoomUnavailable),
		errors.Is(err, services.ErrFolioNotOpen),
		errors.Is(err, services.ErrBalanceOutstanding),
		services.IsDuplicateKey(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are
// logged and hidden behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error(fallback)
		_ = c.Error(err)
		utils.JSONError(c, code, fallback)
		return
	}
	utils.JSONError(c, code, err.Error())
}

func badPayload(c *gin.Context, err error) {
	utils.JSONErrorDetails(c, http.StatusBadRequest, "Invalid request payload", err)
}

// paramID parses a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name+": "+raw)
		return 0, false
	}
	return uint(id), true
}
