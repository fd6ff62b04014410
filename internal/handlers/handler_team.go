package handlers

import (
	"net/http"

	"github.com/SscSPs/explit/internal/core/domain"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/gin-gonic/gin"
)

type teamHandler struct {
	teamService portssvc.TeamSvcFacade
	posthog     *utils.PosthogClientWrapper
}

// registerTeamRoutes registers the team page and its settings form.
func registerTeamRoutes(rg *gin.RouterGroup, teamService portssvc.TeamSvcFacade, posthog *utils.PosthogClientWrapper) {
	h := &teamHandler{teamService: teamService, posthog: posthog}

	rg.GET("/team", h.show)
	rg.POST("/team/settings", h.updateSettings)
}

func teamPageData(team *domain.Team) gin.H {
	return gin.H{
		"Title":   "Team " + team.TeamID,
		"Section": "team",
		"Team":    team,
		"Fields": map[string]string{
			"icon":        team.Icon,
			"description": team.Description,
		},
	}
}

func (h *teamHandler) show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	team, err := h.teamService.GetTeamForUser(c.Request.Context(), user.UserID)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "team", teamPageData(team))
}

// updateSettings saves icon and description, then switches the balancing mode.
// A refused switch keeps the other changes.
func (h *teamHandler) updateSettings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	team, err := h.teamService.GetTeamForUser(ctx, user.UserID)
	if err != nil {
		renderError(c, err)
		return
	}

	var req dto.UpdateTeamRequest
	var toggle dto.BalanceByIncomeRequest
	data := teamPageData(team)
	if err := c.ShouldBind(&req); err != nil {
		renderForm(c, "team", bindingFieldErrors(err), data)
		return
	}
	if err := c.ShouldBind(&toggle); err != nil {
		renderForm(c, "team", bindingFieldErrors(err), data)
		return
	}
	data["Fields"] = map[string]string{"icon": req.Icon, "description": req.Description}

	updated, err := h.teamService.UpdateTeam(ctx, user.UserID, req)
	if err != nil {
		renderForm(c, "team", err, data)
		return
	}
	data["Team"] = updated

	if toggle.Enabled != updated.BalanceByIncome {
		if _, err := h.teamService.SetBalanceByIncome(ctx, user.UserID, toggle.Enabled); err != nil {
			renderForm(c, "team", err, data)
			return
		}
		middleware.PosthogEvent(c, h.posthog, "team_balance_mode_changed", map[string]any{"balance_by_income": toggle.Enabled})
	}

	c.Redirect(http.StatusSeeOther, "/team")
}
