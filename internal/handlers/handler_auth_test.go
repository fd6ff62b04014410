package handlers_test

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/core/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestLoginPage_KeepsRedirectTarget() {
	w := suite.get("/login?redirectTo=/team", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `name="redirectTo" value="/team"`)
	suite.NotContains(w.Body.String(), "Continue with Google")
}

func (suite *HandlerTestSuite) TestLoginPage_RedirectsLoggedInUser() {
	w := suite.get("/login", suite.sessionFor(suite.nicola))

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/expenses", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestLogin_Success() {
	suite.mockUsers.On("AuthenticateUser", mock.Anything, "nicola", "secret1").Return(suite.nicola, nil).Once()

	w := suite.postForm("/login", url.Values{
		"username":   {"nicola"},
		"password":   {"secret1"},
		"redirectTo": {"/team"},
	}, nil)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/team", w.Header().Get("Location"))
	cookie := suite.cookieNamed(w, testCookieName)
	suite.Require().NotNil(cookie)
	suite.NotEmpty(cookie.Value)
	suite.True(cookie.HttpOnly)

	userID, err := suite.sessions.ParseSession(suite.T().Context(), cookie.Value)
	suite.NoError(err)
	suite.Equal("u-1", userID)
}

func (suite *HandlerTestSuite) TestLogin_IgnoresForeignRedirect() {
	suite.mockUsers.On("AuthenticateUser", mock.Anything, "nicola", "secret1").Return(suite.nicola, nil).Once()

	w := suite.postForm("/login", url.Values{
		"username":   {"nicola"},
		"password":   {"secret1"},
		"redirectTo": {"//evil.example.com"},
	}, nil)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/expenses", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestLogin_WrongPassword() {
	suite.mockUsers.On("AuthenticateUser", mock.Anything, "nicola", "wrong-one").
		Return(nil, apperrors.NewUnauthorizedError(services.MsgInvalidCredentials)).Once()

	w := suite.postForm("/login", url.Values{"username": {"nicola"}, "password": {"wrong-one"}}, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), services.MsgInvalidCredentials)
	suite.Contains(w.Body.String(), `value="nicola"`)
	suite.Nil(suite.cookieNamed(w, testCookieName))
}

func (suite *HandlerTestSuite) TestLogin_ShortUsername() {
	w := suite.postForm("/login", url.Values{"username": {"ni"}, "password": {"secret1"}}, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgUsernameTooShort)
	suite.mockUsers.AssertNotCalled(suite.T(), "AuthenticateUser", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestLogin_MissingFields() {
	w := suite.postForm("/login", url.Values{"username": {"nicola"}}, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "This field is required")
}

func (suite *HandlerTestSuite) TestLogin_ServiceFailure() {
	suite.mockUsers.On("AuthenticateUser", mock.Anything, "nicola", "secret1").Return(nil, errors.New("db down")).Once()

	w := suite.postForm("/login", url.Values{"username": {"nicola"}, "password": {"secret1"}}, nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "I did a whoopsies.")
	suite.NotContains(w.Body.String(), "db down")
}

func (suite *HandlerTestSuite) TestSignin_Success() {
	created := &domain.User{UserID: "u-9", Username: "marta", TeamID: "Famiglia", Theme: domain.DefaultTheme}
	suite.mockUsers.On("Register", mock.Anything, mock.MatchedBy(func(req dto.RegisterRequest) bool {
		return req.Username == "marta" && req.TeamID == "Famiglia" && req.Password == "secret1" && req.ConfirmPassword == "secret1"
	})).Return(created, nil).Once()

	w := suite.postForm("/signin", url.Values{
		"username":        {"marta"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
		"teamId":          {"Famiglia"},
	}, nil)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/expenses", w.Header().Get("Location"))
	suite.NotNil(suite.cookieNamed(w, testCookieName))
}

func (suite *HandlerTestSuite) TestSignin_UsernameTaken() {
	suite.mockUsers.On("Register", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewConflictError("User marta already exists")).Once()

	w := suite.postForm("/signin", url.Values{
		"username":        {"marta"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
		"teamId":          {"Famiglia"},
	}, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "User marta already exists")
	suite.Contains(w.Body.String(), `value="Famiglia"`)
}

func (suite *HandlerTestSuite) TestSignin_FieldErrors() {
	suite.mockUsers.On("Register", mock.Anything, mock.Anything).
		Return(nil, apperrors.ValidationErrors{"confirmPassword": dto.MsgPasswordMismatch}).Once()

	w := suite.postForm("/signin", url.Values{
		"username":        {"marta"},
		"password":        {"secret1"},
		"confirmPassword": {"secret2"},
		"teamId":          {"Famiglia"},
	}, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgPasswordMismatch)
}

func (suite *HandlerTestSuite) TestSignin_IncomeRequiredKeepsInput() {
	suite.mockUsers.On("Register", mock.Anything, mock.MatchedBy(func(req dto.RegisterRequest) bool {
		return req.AvgIncome == "0"
	})).Return(nil, apperrors.ValidationErrors{"avgIncome": dto.MsgIncomeRequired}).Once()

	w := suite.postForm("/signin", url.Values{
		"username":        {"marta"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
		"teamId":          {"Famiglia"},
		"avgIncome":       {"0"},
	}, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "balances expenses by income")
	suite.Contains(w.Body.String(), `name="avgIncome" value="0"`)
}

func (suite *HandlerTestSuite) TestLogout_ClearsSession() {
	w := suite.postForm("/logout", url.Values{}, suite.sessionFor(suite.nicola))

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/login", w.Header().Get("Location"))
	cookie := suite.cookieNamed(w, testCookieName)
	suite.Require().NotNil(cookie)
	suite.Less(cookie.MaxAge, 0)
}

func (suite *HandlerTestSuite) TestProtectedPage_RedirectsAnonymous() {
	w := suite.get("/expenses/list?page=2", nil)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/login?redirectTo="+url.QueryEscape("/expenses/list?page=2"), w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestProtectedPage_InvalidCookie() {
	w := suite.get("/expenses", &http.Cookie{Name: testCookieName, Value: "not-a-token"})

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Contains(w.Header().Get("Location"), "/login")
	cookie := suite.cookieNamed(w, testCookieName)
	suite.Require().NotNil(cookie)
	suite.Less(cookie.MaxAge, 0)
}

func (suite *HandlerTestSuite) TestProtectedPage_DeletedUser() {
	ghost := &domain.User{UserID: "u-gone", Username: "ghost", TeamID: "Famiglia"}
	token, _, err := suite.sessions.IssueSession(suite.T().Context(), ghost)
	suite.Require().NoError(err)
	suite.mockUsers.On("GetUserByID", mock.Anything, "u-gone").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.get("/team", &http.Cookie{Name: testCookieName, Value: token})

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Contains(w.Header().Get("Location"), "/login")
}
