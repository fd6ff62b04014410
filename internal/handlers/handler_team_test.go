package handlers_test

import (
	"net/http"
	"net/url"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/core/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/utils/accounting"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestTeamPage() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()

	w := suite.get("/team", cookie)

	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Contains(body, "Famiglia")
	suite.Contains(body, "nicola")
	suite.Contains(body, "shahra")
	suite.Contains(body, "No average income declared")
}

func (suite *HandlerTestSuite) TestTeamSettings_EnableBalanceByIncome() {
	cookie := suite.sessionFor(suite.nicola)
	updated := *suite.team
	updated.Description = "Casa"
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()
	suite.mockTeams.On("UpdateTeam", mock.Anything, "u-1", dto.UpdateTeamRequest{Icon: "F", Description: "Casa"}).Return(&updated, nil).Once()
	suite.mockTeams.On("SetBalanceByIncome", mock.Anything, "u-1", true).Return(&updated, nil).Once()

	w := suite.postForm("/team/settings", url.Values{
		"icon":            {"F"},
		"description":     {"Casa"},
		"balanceByIncome": {"true"},
	}, cookie)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/team", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestTeamSettings_UnchangedModeIsNotToggled() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()
	suite.mockTeams.On("UpdateTeam", mock.Anything, "u-1", mock.Anything).Return(suite.team, nil).Once()

	w := suite.postForm("/team/settings", url.Values{"icon": {"F"}}, cookie)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.mockTeams.AssertNotCalled(suite.T(), "SetBalanceByIncome", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestTeamSettings_MissingIncome() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()
	suite.mockTeams.On("UpdateTeam", mock.Anything, "u-1", mock.Anything).Return(suite.team, nil).Once()
	suite.mockTeams.On("SetBalanceByIncome", mock.Anything, "u-1", true).
		Return(nil, apperrors.NewAppError(http.StatusBadRequest, services.MsgBalanceByIncomeUnavailable,
			&accounting.MissingIncomeError{UserIDs: []string{"u-1"}})).Once()

	w := suite.postForm("/team/settings", url.Values{"icon": {"F"}, "balanceByIncome": {"true"}}, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), services.MsgBalanceByIncomeUnavailable)
}

func (suite *HandlerTestSuite) TestTeamSettings_IconTooLong() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-1").Return(suite.team, nil).Once()

	w := suite.postForm("/team/settings", url.Values{"icon": {"ABC"}}, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Icons must be a single character")
	suite.mockTeams.AssertNotCalled(suite.T(), "UpdateTeam", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestStatisticsPage() {
	cookie := suite.sessionFor(suite.nicola)
	month := &domain.TeamStatistics{Label: "This month", Members: []domain.MemberStatistics{{UserID: "u-1", Username: "nicola", Icon: "N", Count: 2}}}
	allTime := &domain.TeamStatistics{Label: "All time", Count: 7}
	suite.mockReporting.On("TeamStatistics", mock.Anything, "u-1", mock.Anything, mock.MatchedBy(func(w domain.DateWindow) bool {
		return w.From != nil && w.To != nil && w.From.Day() == 1 && w.To.Sub(*w.From) > 0
	})).Return(month, nil).Once()
	suite.mockReporting.On("TeamStatistics", mock.Anything, "u-1", "All time", domain.DateWindow{}).Return(allTime, nil).Once()

	w := suite.get("/statistics", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "This month")
	suite.Contains(w.Body.String(), "All time")
	suite.Contains(w.Body.String(), "7 expenses")
}
