package controllers

import (
	"net/http"
	"strconv"

	"hotel-pms/middleware"
	"hotel-pms/services"

	"github.com/gin-gonic/gin"
)

type assignPayload struct {
	AssignedTo string `json:"assignedTo" binding:"required"`
}

// OperationsController serves service requests, housekeeping and fraud alerts.
type OperationsController struct {
	Requests     *services.ServiceRequestService
	Housekeeping *services.HousekeepingService
	Fraud        *services.FraudService
}

func NewOperationsController(requests *services.ServiceRequestService, housekeeping *services.HousekeepingService, fraud *services.FraudService) *OperationsController {
	return &OperationsController{Requests: requests, Housekeeping: housekeeping, Fraud: fraud}
}

// ---------------------------
// Service requests
// ---------------------------

func (ctrl *OperationsController) ListServiceRequests(c *gin.Context) {
	requests, err := ctrl.Requests.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err, "Failed to load service requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (ctrl *OperationsController) CreateServiceRequest(c *gin.Context) {
	var input services.ServiceRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badPayload(c, err)
		return
	}
	req, err := ctrl.Requests.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to create service request")
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (ctrl *OperationsController) UpdateServiceRequestStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload statusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	req, err := ctrl.Requests.UpdateStatus(c.Request.Context(), id, payload.Status, middleware.Actor(c))
	if err != nil {
		respondError(c, err, "Failed to update service request")
		return
	}
	c.JSON(http.StatusOK, req)
}

func (ctrl *OperationsController) AssignServiceRequest(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload assignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	req, err := ctrl.Requests.Assign(c.Request.Context(), id, payload.AssignedTo)
	if err != nil {
		respondError(c, err, "Failed to assign service request")
		return
	}
	c.JSON(http.StatusOK, req)
}

// ---------------------------
// Housekeeping
// ---------------------------

func (ctrl *OperationsController) ListTasks(c *gin.Context) {
	var roomID uint
	if raw := c.Query("roomId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badPayload(c, err)
			return
		}
		roomID = uint(v)
	}
	tasks, err := ctrl.Housekeeping.List(c.Request.Context(), c.Query("status"), roomID)
	if err != nil {
		respondError(c, err, "Failed to load housekeeping tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (ctrl *OperationsController) CreateTask(c *gin.Context) {
	var input services.HousekeepingTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badPayload(c, err)
		return
	}
	task, err := ctrl.Housekeeping.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to create housekeeping task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (ctrl *OperationsController) UpdateTaskStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload statusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	task, err := ctrl.Housekeeping.UpdateStatus(c.Request.Context(), id, payload.Status)
	if err != nil {
		respondError(c, err, "Failed to update housekeeping task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// ---------------------------
// Fraud alerts
// ---------------------------

func (ctrl *OperationsController) ListFraudAlerts(c *gin.Context) {
	alerts, err := ctrl.Fraud.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err, "Failed to load fraud alerts")
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (ctrl *OperationsController) UpdateFraudAlertStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload statusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	alert, err := ctrl.Fraud.UpdateStatus(c.Request.Context(), id, payload.Status, middleware.Actor(c))
	if err != nil {
		respondError(c, err, "Failed to update fraud alert")
		return
	}
	c.JSON(http.StatusOK, alert)
}
