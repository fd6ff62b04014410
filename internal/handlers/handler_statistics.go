package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/explit/internal/core/domain"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type statisticsHandler struct {
	reportingService portssvc.ReportingService
	location         *time.Location
	now              func() time.Time
}

// registerStatisticsRoutes registers the statistics page.
func registerStatisticsRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	h := &statisticsHandler{reportingService: reportingService, location: loc, now: time.Now}
	rg.GET("/statistics", h.show)
}

// currentMonth returns the calendar month containing now, in the configured location.
func (h *statisticsHandler) currentMonth() (string, domain.DateWindow) {
	now := h.now().In(h.location)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.location)
	to := from.AddDate(0, 1, 0)
	return from.Format("January 2006"), domain.DateWindow{From: &from, To: &to}
}

func (h *statisticsHandler) show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	monthLabel, monthWindow := h.currentMonth()
	var month, allTime *domain.TeamStatistics
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		month, err = h.reportingService.TeamStatistics(ctx, user.UserID, monthLabel, monthWindow)
		return err
	})
	g.Go(func() error {
		var err error
		allTime, err = h.reportingService.TeamStatistics(ctx, user.UserID, "All time", domain.DateWindow{})
		return err
	})
	if err := g.Wait(); err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "statistics", gin.H{
		"Title":   "Statistics",
		"Section": "statistics",
		"Month":   month,
		"AllTime": allTime,
	})
}
