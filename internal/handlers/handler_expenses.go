package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/SscSPs/explit/internal/utils/accounting"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// recentExpensesLimit is the number of expenses shown on the dashboard.
const recentExpensesLimit = 25

// expenseHandler serves the expense pages.
type expenseHandler struct {
	expenseService   portssvc.ExpenseSvcFacade
	reportingService portssvc.ReportingService
	teamService      portssvc.TeamSvcFacade
	location         *time.Location
	posthog          *utils.PosthogClientWrapper
}

func newExpenseHandler(services *portssvc.ServiceContainer, loc *time.Location, posthog *utils.PosthogClientWrapper) *expenseHandler {
	return &expenseHandler{
		expenseService:   services.Expense,
		reportingService: services.Reporting,
		teamService:      services.Team,
		location:         loc,
		posthog:          posthog,
	}
}

// registerExpenseRoutes registers the expense pages under /expenses.
func registerExpenseRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, loc *time.Location, posthog *utils.PosthogClientWrapper) {
	h := newExpenseHandler(services, loc, posthog)

	expenses := rg.Group("/expenses")
	{
		expenses.GET("", h.dashboard)
		expenses.GET("/list", h.list)
		expenses.GET("/new", h.showNew)
		expenses.POST("/new", h.create)
		expenses.GET("/transfer", h.showTransfer)
		expenses.POST("/transfer", h.transfer)
		expenses.GET("/:id", h.detail)
		expenses.GET("/:id/edit", h.showEdit)
		expenses.POST("/:id/edit", h.edit)
		expenses.POST("/:id/delete", h.delete)
	}
}

// dashboard shows the team balance next to the latest expenses.
func (h *expenseHandler) dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		report       *domain.BalanceReport
		recent       []domain.Expense
		emptyMessage string
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		r, err := h.reportingService.TeamBalanceReport(ctx, user.UserID, domain.DateWindow{})
		if errors.Is(err, accounting.ErrEmptyTeam) {
			emptyMessage = apperrors.Message(err, "Your team has no members yet")
			return nil
		}
		report = r
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = h.expenseService.ListRecentExpenses(ctx, user.UserID, recentExpensesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "expenses_dashboard", gin.H{
		"Title":        "Expenses",
		"Section":      "expenses",
		"Report":       report,
		"Expenses":     recent,
		"EmptyMessage": emptyMessage,
	})
}

// list shows one filtered page of the team's expenses.
func (h *expenseHandler) list(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		renderError(c, bindingFieldErrors(err))
		return
	}
	data := gin.H{
		"Title":      "List expenses",
		"Section":    "list",
		"Params":     params,
		"HasFilters": params.Description != "" || params.DateFrom != "" || params.DateTo != "" || params.User != "",
	}

	filter, filterErr := params.Filter(h.location)

	var (
		team *domain.Team
		page = &domain.ExpensePage{Page: 1, PageSize: 10}
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		team, err = h.teamService.GetTeamForUser(ctx, user.UserID)
		return err
	})
	if filterErr == nil {
		g.Go(func() error {
			var err error
			page, err = h.expenseService.ListExpenses(ctx, user.UserID, filter, params.PageOrFirst())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		renderError(c, err)
		return
	}

	data["Members"] = team.Members
	data["Page"] = page
	if filterErr != nil {
		renderForm(c, "expenses_list", filterErr, data)
		return
	}
	render(c, http.StatusOK, "expenses_list", data)
}

func (h *expenseHandler) showNew(c *gin.Context) {
	render(c, http.StatusOK, "expense_form", gin.H{
		"Title":  "Add an expense",
		"Action": "/expenses/new",
	})
}

func (h *expenseHandler) create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var form dto.ExpenseForm
	bindErr := c.ShouldBind(&form)
	data := gin.H{
		"Title":  "Add an expense",
		"Action": "/expenses/new",
		"Fields": map[string]string{"description": form.Description, "amount": form.Amount},
	}
	if bindErr != nil {
		renderForm(c, "expense_form", bindingFieldErrors(bindErr), data)
		return
	}
	req, err := form.ToRequest()
	if err != nil {
		renderForm(c, "expense_form", err, data)
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), user.UserID, req)
	if err != nil {
		renderForm(c, "expense_form", err, data)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "expense_created", map[string]any{"amount": expense.Amount.String()})
	c.Redirect(http.StatusSeeOther, "/expenses/"+expense.ExpenseID)
}

// teammates returns the members of the caller's team other than the caller.
func (h *expenseHandler) teammates(c *gin.Context, user *domain.User) ([]domain.User, error) {
	team, err := h.teamService.GetTeamForUser(c.Request.Context(), user.UserID)
	if err != nil {
		return nil, err
	}
	others := make([]domain.User, 0, len(team.Members))
	for _, m := range team.Members {
		if m.UserID != user.UserID {
			others = append(others, m)
		}
	}
	return others, nil
}

func (h *expenseHandler) showTransfer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	teammates, err := h.teammates(c, user)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "transfer_form", gin.H{
		"Title":     "Transfer money",
		"Teammates": teammates,
		"Fields":    map[string]string{"toUserId": c.Query("to")},
	})
}

func (h *expenseHandler) transfer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	teammates, err := h.teammates(c, user)
	if err != nil {
		renderError(c, err)
		return
	}

	var form dto.TransferForm
	bindErr := c.ShouldBind(&form)
	data := gin.H{
		"Title":     "Transfer money",
		"Teammates": teammates,
		"Fields": map[string]string{
			"toUserId":    form.ToUserID,
			"amount":      form.Amount,
			"description": form.Description,
		},
	}
	if bindErr != nil {
		renderForm(c, "transfer_form", bindingFieldErrors(bindErr), data)
		return
	}
	req, err := form.ToRequest()
	if err != nil {
		renderForm(c, "transfer_form", err, data)
		return
	}

	pair, err := h.expenseService.CreateTransfer(c.Request.Context(), user.UserID, req)
	if err != nil {
		renderForm(c, "transfer_form", err, data)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "transfer_created", map[string]any{"amount": req.Amount.String()})
	c.Redirect(http.StatusSeeOther, "/expenses/"+pair[0].ExpenseID)
}

func (h *expenseHandler) detail(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"), user.UserID)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "expense_detail", gin.H{
		"Title":   expense.Description,
		"Expense": expense,
		"IsOwner": expense.IsOwnedBy(user.UserID),
	})
}

func (h *expenseHandler) showEdit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"), user.UserID)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "expense_form", gin.H{
		"Title":  "Edit expense",
		"Action": "/expenses/" + expense.ExpenseID + "/edit",
		"Fields": map[string]string{
			"description": expense.Description,
			"amount":      utils.FormatAmount(expense.Amount),
		},
	})
}

func (h *expenseHandler) edit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	expenseID := c.Param("id")

	var form dto.ExpenseForm
	bindErr := c.ShouldBind(&form)
	data := gin.H{
		"Title":  "Edit expense",
		"Action": "/expenses/" + expenseID + "/edit",
		"Fields": map[string]string{"description": form.Description, "amount": form.Amount},
	}
	if bindErr != nil {
		renderForm(c, "expense_form", bindingFieldErrors(bindErr), data)
		return
	}
	req, err := form.ToRequest()
	if err != nil {
		renderForm(c, "expense_form", err, data)
		return
	}

	// Expenses never change once recorded, editing records the corrected copy.
	expense, err := h.expenseService.CreateExpense(c.Request.Context(), user.UserID, req)
	if err != nil {
		renderForm(c, "expense_form", err, data)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "expense_created", map[string]any{"amount": req.Amount.String(), "from": expenseID})
	c.Redirect(http.StatusSeeOther, "/expenses/"+expense.ExpenseID)
}

func (h *expenseHandler) delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("id"), user.UserID); err != nil {
		renderError(c, err)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "expense_deleted", nil)
	c.Redirect(http.StatusSeeOther, "/expenses")
}
