package controller

import (
	"net/http"

	"approcciala/service"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	dashboard *service.Dashboard
}

func NewDashboardController(dashboard *service.Dashboard) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// Show returns the trial status and the chat list, most recent first.
func (d *DashboardController) Show(c *gin.Context) {
	userID := c.GetString("UserId")

	trial, err := d.dashboard.FetchProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load trial status")
		return
	}
	chats, err := d.dashboard.FetchChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load chats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":      trial.Profile,
		"days_left":    trial.DaysLeft,
		"trial_active": trial.Active,
		"chats":        chats,
	})
}

func Landing(c *gin.Context) {
	c.JSON(http.StatusOK, service.LandingPage())
}
