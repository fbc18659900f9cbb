package controllers

import (
	"net/http"
	"strconv"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type AutomationController struct {
	Automation *services.AutomationService
	Scheduler  *services.Scheduler
}

func NewAutomationController(automation *services.AutomationService, scheduler *services.Scheduler) *AutomationController {
	return &AutomationController{Automation: automation, Scheduler: scheduler}
}

func (ctrl *AutomationController) GetConfig(c *gin.Context) {
	cfg, err := ctrl.Automation.Config(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load automation config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (ctrl *AutomationController) UpdateConfig(c *gin.Context) {
	var cfg models.AutomationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badPayload(c, err)
		return
	}
	saved, err := ctrl.Automation.UpdateConfig(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, err, "Failed to update automation config")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// POST /api/automation/trigger/:job
func (ctrl *AutomationController) Trigger(c *gin.Context) {
	job, ok := services.JobForSlug(c.Param("job"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Unknown automation job: "+c.Param("job"))
		return
	}
	run, err := ctrl.Automation.Run(c.Request.Context(), job, models.TriggerManual)
	if err != nil {
		if run != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Automation job failed",
				"run":     run,
			})
			return
		}
		respondError(c, err, "Failed to run automation job")
		return
	}
	c.JSON(http.StatusOK, run)
}

// GET /api/automation/runs?job=&limit=
func (ctrl *AutomationController) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	job := c.Query("job")
	if mapped, ok := services.JobForSlug(job); ok {
		job = mapped
	}
	runs, err := ctrl.Automation.Runs(c.Request.Context(), job, limit)
	if err != nil {
		respondError(c, err, "Failed to load automation runs")
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GET /api/automation/schedule
func (ctrl *AutomationController) Schedule(c *gin.Context) {
	if ctrl.Scheduler == nil {
		c.JSON(http.StatusOK, gin.H{"running": false, "jobs": []any{}})
		return
	}
	entries := ctrl.Scheduler.Entries()
	c.JSON(http.StatusOK, gin.H{"running": len(entries) > 0, "jobs": entries})
}
