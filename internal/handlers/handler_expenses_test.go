package handlers_test

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) sampleExpense(id, ownerID string) *domain.Expense {
	return &domain.Expense{
		ExpenseID:   id,
		Amount:      decimal.RequireFromString("42.5"),
		Description: "Spesa Esselunga",
		UserID:      ownerID,
		TeamID:      "Famiglia",
		CreatedAt:   time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC),
		Username:    "nicola",
		UserIcon:    "N",
	}
}

func (suite *HandlerTestSuite) TestDashboard_ShowsBalanceAndRecentExpenses() {
	cookie := suite.sessionFor(suite.nicola)
	report := &domain.BalanceReport{
		TeamID:     "Famiglia",
		TotalSpent: decimal.NewFromInt(40),
		Balances: []domain.MemberBalance{
			{UserID: "u-1", Username: "nicola", Icon: "N", Count: 0, TotalAmount: decimal.Zero, FairShare: decimal.NewFromInt(20), DueAmount: decimal.NewFromInt(20)},
			{UserID: "u-2", Username: "shahra", Icon: "s", Count: 1, TotalAmount: decimal.NewFromInt(40), FairShare: decimal.NewFromInt(20), DueAmount: decimal.NewFromInt(-20)},
		},
	}
	suite.mockReporting.On("TeamBalanceReport", mock.Anything, "u-1", domain.DateWindow{}).Return(report, nil).Once()
	suite.mockExpenses.On("ListRecentExpenses", mock.Anything, "u-1", 25).
		Return([]domain.Expense{*suite.sampleExpense("e-1", "u-1")}, nil).Once()

	w := suite.get("/expenses", cookie)

	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Contains(body, "owes 20.00 €")
	suite.Contains(body, "is owed 20.00 €")
	suite.Contains(body, "Spesa Esselunga")
	suite.Contains(body, "09/03/2024 18:30")
	suite.NotContains(body, "split evenly")
}

func (suite *HandlerTestSuite) TestDashboard_WeightedFallbackNotice() {
	cookie := suite.sessionFor(suite.nicola)
	report := &domain.BalanceReport{TeamID: "Famiglia", WeightedFallback: true, TotalSpent: decimal.Zero}
	suite.mockReporting.On("TeamBalanceReport", mock.Anything, "u-1", domain.DateWindow{}).Return(report, nil).Once()
	suite.mockExpenses.On("ListRecentExpenses", mock.Anything, "u-1", 25).Return([]domain.Expense{}, nil).Once()

	w := suite.get("/expenses", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "split evenly")
	suite.Contains(w.Body.String(), "There are no expenses to display.")
}

func (suite *HandlerTestSuite) TestDashboard_EmptyTeam() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockReporting.On("TeamBalanceReport", mock.Anything, "u-1", domain.DateWindow{}).
		Return(nil, apperrors.NewAppError(http.StatusUnprocessableEntity, "Your team has no members yet", accounting.ErrEmptyTeam)).Once()
	suite.mockExpenses.On("ListRecentExpenses", mock.Anything, "u-1", 25).Return([]domain.Expense{}, nil).Once()

	w := suite.get("/expenses", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Your team has no members yet")
}

func (suite *HandlerTestSuite) TestDashboard_Failure() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockReporting.On("TeamBalanceReport", mock.Anything, "u-1", domain.DateWindow{}).
		Return(&domain.BalanceReport{}, nil).Maybe()
	suite.mockExpenses.On("ListRecentExpenses", mock.Anything, "u-1", 25).Return(nil, errors.New("db down")).Once()

	w := suite.get("/expenses", cookie)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "I did a whoopsies.")
}

func (suite *HandlerTestSuite) TestList_FiltersAndPaginates() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()
	suite.mockExpenses.On("ListExpenses", mock.Anything, "u-1", mock.MatchedBy(func(f domain.ExpenseFilter) bool {
		return f.Description == "pizza" && f.UserID == "u-2" &&
			f.Window.From != nil && f.Window.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			f.Window.To != nil && f.Window.To.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	}), 2).Return(&domain.ExpensePage{
		Expenses:   []domain.Expense{*suite.sampleExpense("e-1", "u-2")},
		TotalCount: 25,
		Page:       2,
		PageSize:   10,
	}, nil).Once()

	w := suite.get("/expenses/list?description=pizza&dateFrom=2024-01-01&dateTo=2024-01-31&user=u-2&page=2", cookie)

	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Contains(body, "Page 2 of 3")
	suite.Contains(body, "page=3")
	suite.Contains(body, "page=1")
	suite.Contains(body, `<option value="u-2" selected>shahra</option>`)
	suite.Contains(body, `href="/expenses/list" class="btn btn-ghost">Reset`)
}

func (suite *HandlerTestSuite) TestList_InvalidDate() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()

	w := suite.get("/expenses/list?dateFrom=yesterday", cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgDateInvalid)
	suite.mockExpenses.AssertNotCalled(suite.T(), "ListExpenses", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateExpense_Success() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("CreateExpense", mock.Anything, "u-1", mock.MatchedBy(func(req dto.CreateExpenseRequest) bool {
		return req.Description == "Pizza" && req.Amount.Equal(decimal.RequireFromString("12.5"))
	})).Return(suite.sampleExpense("e-9", "u-1"), nil).Once()

	w := suite.postForm("/expenses/new", url.Values{"description": {" Pizza "}, "amount": {"12,50"}}, cookie)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/expenses/e-9", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestCreateExpense_InvalidAmount() {
	cookie := suite.sessionFor(suite.nicola)

	w := suite.postForm("/expenses/new", url.Values{"description": {"Pizza"}, "amount": {"abc"}}, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgAmountInvalid)
	suite.Contains(w.Body.String(), `value="abc"`)
	suite.mockExpenses.AssertNotCalled(suite.T(), "CreateExpense", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateExpense_RejectedByService() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("CreateExpense", mock.Anything, "u-1", mock.Anything).
		Return(nil, apperrors.ValidationErrors{"amount": dto.MsgAmountZero}).Once()

	w := suite.postForm("/expenses/new", url.Values{"description": {"Pizza"}, "amount": {"0"}}, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgAmountZero)
}

func (suite *HandlerTestSuite) TestTransferPage_ListsTeammatesOnly() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()

	w := suite.get("/expenses/transfer?to=u-2", cookie)

	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Contains(body, `<option value="u-2" selected>`)
	suite.NotContains(body, `<option value="u-1"`)
}

func (suite *HandlerTestSuite) TestTransfer_Success() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()
	suite.mockExpenses.On("CreateTransfer", mock.Anything, "u-1", mock.MatchedBy(func(req dto.CreateTransferRequest) bool {
		return req.ToUserID == "u-2" && req.Amount.Equal(decimal.NewFromInt(30))
	})).Return([]domain.Expense{{ExpenseID: "t-1"}, {ExpenseID: "t-2"}}, nil).Once()

	w := suite.postForm("/expenses/transfer", url.Values{"toUserId": {"u-2"}, "amount": {"30"}}, cookie)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/expenses/t-1", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestTransfer_ToSelf() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()
	suite.mockExpenses.On("CreateTransfer", mock.Anything, "u-1", mock.Anything).
		Return(nil, apperrors.ValidationErrors{"toUserId": dto.MsgTransferToSelf}).Once()

	w := suite.postForm("/expenses/transfer", url.Values{"toUserId": {"u-1"}, "amount": {"30"}}, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgTransferToSelf)
}

func (suite *HandlerTestSuite) TestExpenseDetail_Owner() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("GetExpense", mock.Anything, "e-1", "u-1").Return(suite.sampleExpense("e-1", "u-1"), nil).Once()

	w := suite.get("/expenses/e-1", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `href="/expenses/e-1/edit"`)
	suite.Contains(w.Body.String(), `action="/expenses/e-1/delete"`)
	suite.Contains(w.Body.String(), "42.50 €")
}

func (suite *HandlerTestSuite) TestExpenseDetail_Teammate() {
	cookie := suite.sessionFor(suite.shahra)
	suite.mockExpenses.On("GetExpense", mock.Anything, "e-1", "u-2").Return(suite.sampleExpense("e-1", "u-1"), nil).Once()

	w := suite.get("/expenses/e-1", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "/expenses/e-1/edit")
	suite.NotContains(w.Body.String(), "/expenses/e-1/delete")
}

func (suite *HandlerTestSuite) TestExpenseDetail_TransferCannotBeEdited() {
	cookie := suite.sessionFor(suite.nicola)
	transfer := suite.sampleExpense("e-1", "u-1")
	transferID := "tr-1"
	transfer.TransferID = &transferID
	suite.mockExpenses.On("GetExpense", mock.Anything, "e-1", "u-1").Return(transfer, nil).Once()

	w := suite.get("/expenses/e-1", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "/expenses/e-1/edit")
	suite.Contains(w.Body.String(), "/expenses/e-1/delete")
}

func (suite *HandlerTestSuite) TestExpenseDetail_NotFound() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("GetExpense", mock.Anything, "missing", "u-1").
		Return(nil, apperrors.NewNotFoundError("What an expense! Not found.")).Once()

	w := suite.get("/expenses/missing", cookie)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "What an expense! Not found.")
}

func (suite *HandlerTestSuite) TestEditPage_Teammate() {
	cookie := suite.sessionFor(suite.shahra)
	suite.mockExpenses.On("GetExpense", mock.Anything, "e-1", "u-2").Return(suite.sampleExpense("e-1", "u-1"), nil).Once()

	w := suite.get("/expenses/e-1/edit", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `value="Spesa Esselunga"`)
}

func (suite *HandlerTestSuite) TestEditPage_Prefilled() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("GetExpense", mock.Anything, "e-1", "u-1").Return(suite.sampleExpense("e-1", "u-1"), nil).Once()

	w := suite.get("/expenses/e-1/edit", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `value="Spesa Esselunga"`)
	suite.Contains(w.Body.String(), `value="42.50"`)
	suite.Contains(w.Body.String(), `action="/expenses/e-1/edit"`)
}

func (suite *HandlerTestSuite) TestEdit_RecordsNewExpense() {
	cookie := suite.sessionFor(suite.nicola)
	created := suite.sampleExpense("e-9", "u-1")
	created.Description = "Spesa Coop"
	suite.mockExpenses.On("CreateExpense", mock.Anything, "u-1", mock.MatchedBy(func(req dto.CreateExpenseRequest) bool {
		return req.Description == "Spesa Coop" && req.Amount.Equal(decimal.NewFromInt(50))
	})).Return(created, nil).Once()

	w := suite.postForm("/expenses/e-1/edit", url.Values{"description": {"Spesa Coop"}, "amount": {"50"}}, cookie)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/expenses/e-9", w.Header().Get("Location"))
	suite.mockExpenses.AssertNotCalled(suite.T(), "DeleteExpense", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestEdit_InvalidAmount() {
	cookie := suite.sessionFor(suite.nicola)

	w := suite.postForm("/expenses/e-1/edit", url.Values{"description": {"Spesa Coop"}, "amount": {"abc"}}, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), `action="/expenses/e-1/edit"`)
	suite.mockExpenses.AssertNotCalled(suite.T(), "CreateExpense", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestDelete_Owner() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("DeleteExpense", mock.Anything, "e-1", "u-1").Return(nil).Once()

	w := suite.postForm("/expenses/e-1/delete", url.Values{}, cookie)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/expenses", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestDelete_NotOwner() {
	cookie := suite.sessionFor(suite.shahra)
	suite.mockExpenses.On("DeleteExpense", mock.Anything, "e-1", "u-2").
		Return(apperrors.NewUnauthorizedError("Pssh, nice try. That's not your expense")).Once()

	w := suite.postForm("/expenses/e-1/delete", url.Values{}, cookie)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Pssh, nice try")
}
