package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/explit/internal/core/domain"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/gin-gonic/gin"
)

// MsgAccountUpdated is flashed after the account settings were saved.
const MsgAccountUpdated = "Your account has been updated"

// accountHandler serves the account pages of the logged in user.
type accountHandler struct {
	userService portssvc.UserSvcFacade
	cookie      middleware.SessionCookie
	posthog     *utils.PosthogClientWrapper
}

// registerAccountRoutes registers the account pages under /account.
func registerAccountRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, cookie middleware.SessionCookie, posthog *utils.PosthogClientWrapper) {
	h := &accountHandler{userService: userService, cookie: cookie, posthog: posthog}

	account := rg.Group("/account")
	{
		account.GET("", h.show)
		account.GET("/manage", h.showManage)
		account.POST("/manage", h.manage)
		account.GET("/preferences", h.showPreferences)
		account.POST("/preferences", h.preferences)
		account.GET("/delete", h.showDelete)
		account.POST("/delete", h.delete)
	}
}

func (h *accountHandler) show(c *gin.Context) {
	render(c, http.StatusOK, "account", gin.H{"Title": "Account", "Section": "account"})
}

func manageFields(user *domain.User) map[string]string {
	fields := map[string]string{"icon": user.Icon, "teamId": user.TeamID}
	if user.AvgIncome != nil {
		fields["avgIncome"] = utils.FormatAmount(*user.AvgIncome)
	}
	return fields
}

func (h *accountHandler) showManage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "account_manage", gin.H{
		"Title":   "Manage account",
		"Section": "account",
		"Fields":  manageFields(user),
	})
}

func (h *accountHandler) manage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	bindErr := c.ShouldBind(&req)
	data := gin.H{
		"Title":   "Manage account",
		"Section": "account",
		"Fields": map[string]string{
			"icon":      req.Icon,
			"teamId":    req.TeamID,
			"avgIncome": req.AvgIncome,
		},
	}
	if bindErr != nil {
		renderForm(c, "account_manage", bindingFieldErrors(bindErr), data)
		return
	}

	updated, err := h.userService.UpdateAccount(c.Request.Context(), user.UserID, req)
	if err != nil {
		renderForm(c, "account_manage", err, data)
		return
	}
	if updated.TeamID != user.TeamID {
		middleware.PosthogEvent(c, h.posthog, "user_changed_team", map[string]any{"team_id": updated.TeamID})
	}

	data["User"] = updated
	data["Theme"] = updated.Theme
	data["Fields"] = manageFields(updated)
	data["Flash"] = MsgAccountUpdated
	render(c, http.StatusOK, "account_manage", data)
}

func (h *accountHandler) showPreferences(c *gin.Context) {
	render(c, http.StatusOK, "account_preferences", gin.H{"Title": "Preferences", "Section": "account"})
}

func (h *accountHandler) preferences(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdatePreferencesRequest
	data := gin.H{"Title": "Preferences", "Section": "account"}
	if err := c.ShouldBind(&req); err != nil {
		renderForm(c, "account_preferences", bindingFieldErrors(err), data)
		return
	}

	updated, err := h.userService.UpdatePreferences(c.Request.Context(), user.UserID, req)
	if err != nil {
		renderForm(c, "account_preferences", err, data)
		return
	}

	data["User"] = updated
	data["Theme"] = updated.Theme
	data["Flash"] = MsgAccountUpdated
	render(c, http.StatusOK, "account_preferences", data)
}

func (h *accountHandler) showDelete(c *gin.Context) {
	render(c, http.StatusOK, "account_delete", gin.H{"Title": "Delete account", "Section": "account"})
}

func (h *accountHandler) delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteAccount(c.Request.Context(), user.UserID); err != nil {
		renderError(c, err)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "user_deleted", nil)
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account deleted", slog.String("user_id", user.UserID))
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, "/")
}
