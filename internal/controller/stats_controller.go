package controller

import (
	"net/http"

	"freshbasket-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	Service *service.StatsService
}

func NewStatsController(s *service.StatsService) *StatsController {
	return &StatsController{Service: s}
}

// GET /api/stats — admin only
func (ctl *StatsController) GetStats(c *gin.Context) {
	stats, err := ctl.Service.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
