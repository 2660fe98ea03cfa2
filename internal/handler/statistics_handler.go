package handler

import (
	"net/http"
	"time"

	"receipts/internal/middleware"
	"receipts/internal/service"
	"receipts/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	auth              middleware.UserResolver
	now               func() time.Time
}

func NewStatisticsHandler(statisticsService service.StatisticsService, auth middleware.UserResolver, now func() time.Time) *StatisticsHandler {
	if now == nil {
		now = time.Now
	}
	return &StatisticsHandler{statisticsService: statisticsService, auth: auth, now: now}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/receipt/statistics", middleware.RequireAuth(h.auth), h.GetStatistics)
}

// @Summary      Get receipt statistics
// @Description  Receipt count, turnover, per payment type totals and top 5 products for the caller
// @Tags         Statistics
// @Produce      json
// @Param        start_date query string false "Start Date (RFC3339), defaults to the start of the current month"
// @Param        end_date   query string false "End Date (RFC3339), defaults to now"
// @Success      200 {object} response.Response{data=model.StatisticsResponse}
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Failure      422 {object} response.Response
// @Security     BearerAuth
// @Router       /receipt/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	now := h.now().UTC()

	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if start, err := timeQuery(c, "start_date"); err != nil {
		respondBindError(c, err)
		return
	} else if start != nil {
		startDate = *start
	}

	endDate := now
	if end, err := timeQuery(c, "end_date"); err != nil {
		respondBindError(c, err)
		return
	} else if end != nil {
		endDate = *end
	}

	user, _ := middleware.CurrentUser(c)
	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), user.ID, startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Write(c, http.StatusOK, stats)
}
