package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/gin-gonic/gin"
)

// apiHandler exposes the team, balance and expense operations as JSON.
type apiHandler struct {
	expenseService   portssvc.ExpenseSvcFacade
	reportingService portssvc.ReportingService
	teamService      portssvc.TeamSvcFacade
	location         *time.Location
	posthog          *utils.PosthogClientWrapper
}

// registerAPIRoutes registers the JSON API. rg is expected to require a session.
func registerAPIRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, loc *time.Location, posthog *utils.PosthogClientWrapper) {
	h := &apiHandler{
		expenseService:   services.Expense,
		reportingService: services.Reporting,
		teamService:      services.Team,
		location:         loc,
		posthog:          posthog,
	}

	rg.GET("/team", h.getTeam)
	rg.GET("/team/balances", h.getBalances)

	expenses := rg.Group("/expenses")
	{
		expenses.GET("", h.listExpenses)
		expenses.POST("", h.createExpense)
		expenses.GET("/:expenseID", h.getExpense)
		expenses.DELETE("/:expenseID", h.deleteExpense)
	}
	rg.POST("/transfers", h.createTransfer)
}

// getTeam godoc
// @Summary Get the caller's team
// @Description Retrieves the team of the authenticated user with all its members.
// @Tags teams
// @Produce  json
// @Success 200 {object} dto.TeamResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /team [get]
func (h *apiHandler) getTeam(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	team, err := h.teamService.GetTeamForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTeamResponse(team))
}

// getBalances godoc
// @Summary Get the team balance
// @Description Computes what each member of the caller's team owes or is owed. Dates are calendar days, both inclusive.
// @Tags reports
// @Produce  json
// @Param   from query string false "First day (YYYY-MM-DD)"
// @Param   to   query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.BalanceReportResponse
// @Failure 400 {object} map[string]string "Invalid dates"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Team has no members"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /team/balances [get]
func (h *apiHandler) getBalances(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var params dto.BalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, bindingFieldErrors(err))
		return
	}
	window, err := dto.ParseDateWindow(params.From, params.To, h.location)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.reportingService.TeamBalanceReport(c.Request.Context(), userID, window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceReportResponse(report))
}

// listExpenses godoc
// @Summary List team expenses
// @Description Retrieves one page of the caller's team expenses, newest first.
// @Tags expenses
// @Produce  json
// @Param   page        query int    false "Page number" default(1)
// @Param   description query string false "Case-insensitive description filter"
// @Param   dateFrom    query string false "First day (YYYY-MM-DD)"
// @Param   dateTo      query string false "Last day (YYYY-MM-DD)"
// @Param   user        query string false "Only expenses of this member"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} map[string]string "Invalid filters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /expenses [get]
func (h *apiHandler) listExpenses(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, bindingFieldErrors(err))
		return
	}
	filter, err := params.Filter(h.location)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.expenseService.ListExpenses(c.Request.Context(), userID, filter, params.PageOrFirst())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListExpensesResponse(page))
}

// createExpense godoc
// @Summary Record an expense
// @Description Records an expense paid by the caller. Negative amounts are allowed.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /expenses [post]
func (h *apiHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, _ := middleware.GetUserIDFromContext(c)

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		respondError(c, bindingFieldErrors(err))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "expense_created", map[string]any{"amount": expense.Amount.String()})
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// createTransfer godoc
// @Summary Record a transfer
// @Description Records money handed from the caller to a teammate as two opposite expenses.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   transfer body dto.CreateTransferRequest true "Transfer details"
// @Success 201 {array} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /transfers [post]
func (h *apiHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, _ := middleware.GetUserIDFromContext(c)

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransfer", slog.String("error", err.Error()))
		respondError(c, bindingFieldErrors(err))
		return
	}

	pair, err := h.expenseService.CreateTransfer(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ExpenseResponse, len(pair))
	for i := range pair {
		out[i] = dto.ToExpenseResponse(&pair[i])
	}
	middleware.PosthogEvent(c, h.posthog, "transfer_created", map[string]any{"amount": req.Amount.String()})
	c.JSON(http.StatusCreated, out)
}

// getExpense godoc
// @Summary Get an expense
// @Tags expenses
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /expenses/{expenseID} [get]
func (h *apiHandler) getExpense(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("expenseID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// deleteExpense godoc
// @Summary Delete an expense
// @Description Deletes an expense owned by the caller. Deleting half of a transfer deletes both halves.
// @Tags expenses
// @Param   expenseID path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /expenses/{expenseID} [delete]
func (h *apiHandler) deleteExpense(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("expenseID"), userID); err != nil {
		respondError(c, err)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "expense_deleted", nil)
	c.Status(http.StatusNoContent)
}
