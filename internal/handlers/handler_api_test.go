package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestAPI_RequiresSession() {
	w := suite.sendJSON(http.MethodGet, "/api/v1/team", "", nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.JSONEq(`{"error":"Unauthorized"}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestAPI_GetTeam() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()

	w := suite.sendJSON(http.MethodGet, "/api/v1/team", "", cookie)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TeamResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Famiglia", resp.TeamID)
	suite.Require().Len(resp.Members, 2)
	suite.Equal("s", resp.Members[1].Icon)
}

func (suite *HandlerTestSuite) TestAPI_Balances() {
	cookie := suite.sessionFor(suite.nicola)
	report := &domain.BalanceReport{
		TeamID:     "Famiglia",
		TotalSpent: decimal.NewFromInt(40),
		Balances: []domain.MemberBalance{
			{UserID: "u-1", Username: "nicola", DueAmount: decimal.NewFromInt(20)},
			{UserID: "u-2", Username: "shahra", DueAmount: decimal.NewFromInt(-20)},
		},
	}
	suite.mockReporting.On("TeamBalanceReport", mock.Anything, "u-1", mock.MatchedBy(func(w domain.DateWindow) bool {
		return w.From != nil && w.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			w.To != nil && w.To.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	})).Return(report, nil).Once()

	w := suite.sendJSON(http.MethodGet, "/api/v1/team/balances?from=2024-01-01&to=2024-01-31", "", cookie)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceReportResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Balances, 2)
	suite.True(resp.Balances[0].DueAmount.Equal(decimal.NewFromInt(20)))
	suite.True(resp.Balances[1].DueAmount.Equal(decimal.NewFromInt(-20)))
	suite.True(resp.TotalSpent.Equal(decimal.NewFromInt(40)))
}

func (suite *HandlerTestSuite) TestAPI_BalancesInvalidDate() {
	cookie := suite.sessionFor(suite.nicola)

	w := suite.sendJSON(http.MethodGet, "/api/v1/team/balances?to=31/01/2024", "", cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("Invalid request", body["error"])
	suite.Equal(map[string]any{"dateTo": dto.MsgDateInvalid}, body["fields"])
}

func (suite *HandlerTestSuite) TestAPI_BalancesEmptyTeam() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockReporting.On("TeamBalanceReport", mock.Anything, "u-1", domain.DateWindow{}).
		Return(nil, apperrors.NewAppError(http.StatusUnprocessableEntity, "Your team has no members yet", accounting.ErrEmptyTeam)).Once()

	w := suite.sendJSON(http.MethodGet, "/api/v1/team/balances", "", cookie)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.JSONEq(`{"error":"Your team has no members yet"}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestAPI_ListExpenses() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("ListExpenses", mock.Anything, "u-1", domain.ExpenseFilter{}, 2).Return(&domain.ExpensePage{
		Expenses:   []domain.Expense{*suite.sampleExpense("e-1", "u-1")},
		TotalCount: 11,
		Page:       2,
		PageSize:   10,
	}, nil).Once()

	w := suite.sendJSON(http.MethodGet, "/api/v1/expenses?page=2", "", cookie)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListExpensesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(2, resp.Page)
	suite.Equal(2, resp.PageCount)
	suite.Equal(11, resp.TotalCount)
	suite.Require().Len(resp.Expenses, 1)
	suite.Equal("e-1", resp.Expenses[0].ExpenseID)
}

func (suite *HandlerTestSuite) TestAPI_CreateExpense() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("CreateExpense", mock.Anything, "u-1", mock.MatchedBy(func(req dto.CreateExpenseRequest) bool {
		return req.Description == "Pizza" && req.Amount.Equal(decimal.RequireFromString("12.5"))
	})).Return(suite.sampleExpense("e-9", "u-1"), nil).Once()

	w := suite.sendJSON(http.MethodPost, "/api/v1/expenses", `{"description":"Pizza","amount":"12.5"}`, cookie)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ExpenseResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("e-9", resp.ExpenseID)
}

func (suite *HandlerTestSuite) TestAPI_CreateExpenseMissingDescription() {
	cookie := suite.sessionFor(suite.nicola)

	w := suite.sendJSON(http.MethodPost, "/api/v1/expenses", `{"amount":12}`, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockExpenses.AssertNotCalled(suite.T(), "CreateExpense", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestAPI_CreateTransfer() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("CreateTransfer", mock.Anything, "u-1", mock.MatchedBy(func(req dto.CreateTransferRequest) bool {
		return req.ToUserID == "u-2" && req.Amount.Equal(decimal.NewFromInt(30))
	})).Return([]domain.Expense{
		{ExpenseID: "t-1", UserID: "u-1", Amount: decimal.NewFromInt(30)},
		{ExpenseID: "t-2", UserID: "u-2", Amount: decimal.NewFromInt(-30)},
	}, nil).Once()

	w := suite.sendJSON(http.MethodPost, "/api/v1/transfers", `{"toUserID":"u-2","amount":30}`, cookie)

	suite.Equal(http.StatusCreated, w.Code)
	var resp []dto.ExpenseResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 2)
	suite.True(resp[0].Amount.Add(resp[1].Amount).IsZero())
}

func (suite *HandlerTestSuite) TestAPI_GetExpenseOfOtherTeam() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("GetExpense", mock.Anything, "e-77", "u-1").
		Return(nil, apperrors.NewNotFoundError("What an expense! Not found.")).Once()

	w := suite.sendJSON(http.MethodGet, "/api/v1/expenses/e-77", "", cookie)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.JSONEq(`{"error":"What an expense! Not found."}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestAPI_DeleteExpense() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockExpenses.On("DeleteExpense", mock.Anything, "e-1", "u-1").Return(nil).Once()

	w := suite.sendJSON(http.MethodDelete, "/api/v1/expenses/e-1", "", cookie)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestAPI_DeleteExpenseNotOwner() {
	cookie := suite.sessionFor(suite.shahra)
	suite.mockExpenses.On("DeleteExpense", mock.Anything, "e-1", "u-2").
		Return(apperrors.NewUnauthorizedError("Pssh, nice try. That's not your expense")).Once()

	w := suite.sendJSON(http.MethodDelete, "/api/v1/expenses/e-1", "", cookie)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.JSONEq(`{"error":"Pssh, nice try. That's not your expense"}`, w.Body.String())
}
