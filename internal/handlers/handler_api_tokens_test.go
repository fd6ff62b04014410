package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/core/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testAPIKey = "xpl_8b0c6a52-3f0e-4c8e-9d7a-3c2a1b7f9e10.cafe"

func (suite *HandlerTestSuite) withAPIKey(method, path, body, key string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	return suite.do(req, nil)
}

// --- x-api-key authentication ---
func (suite *HandlerTestSuite) TestAPI_APIKeyAuthenticates() {
	suite.mockTokens.On("ValidateToken", mock.Anything, testAPIKey).Return(suite.shahra, nil).Once()
	suite.mockTeams.On("GetTeamForUser", mock.Anything, "u-2").Return(suite.team, nil).Once()

	w := suite.withAPIKey(http.MethodGet, "/api/v1/team", "", testAPIKey)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockUsers.AssertNotCalled(suite.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestAPI_InvalidAPIKeyRejected() {
	suite.mockTokens.On("ValidateToken", mock.Anything, "xpl_bogus").
		Return(nil, apperrors.NewUnauthorizedError(services.MsgAPITokenInvalid)).Once()

	w := suite.withAPIKey(http.MethodGet, "/api/v1/team", "", "xpl_bogus")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.JSONEq(`{"error":"Invalid API key"}`, w.Body.String())
	suite.mockTeams.AssertNotCalled(suite.T(), "GetTeamForUser", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestAPI_InvalidAPIKeyDoesNotFallBackToSession() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTokens.On("ValidateToken", mock.Anything, "xpl_bogus").
		Return(nil, apperrors.NewUnauthorizedError(services.MsgAPITokenInvalid)).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/team", nil)
	req.Header.Set("x-api-key", "xpl_bogus")
	w := suite.do(req, cookie)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestAPI_APIKeyValidationFailure() {
	suite.mockTokens.On("ValidateToken", mock.Anything, testAPIKey).Return(nil, assert.AnError).Once()

	w := suite.withAPIKey(http.MethodGet, "/api/v1/team", "", testAPIKey)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), assert.AnError.Error())
}

func (suite *HandlerTestSuite) TestAPIKeyIgnoredOnPages() {
	w := suite.withAPIKey(http.MethodGet, "/expenses", "", testAPIKey)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.mockTokens.AssertNotCalled(suite.T(), "ValidateToken", mock.Anything, mock.Anything)
}

// --- JSON token management ---
func (suite *HandlerTestSuite) TestAPI_ListTokens() {
	cookie := suite.sessionFor(suite.nicola)
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	suite.mockTokens.On("ListTokens", mock.Anything, "u-1").Return([]domain.APIToken{
		{TokenID: "t-1", UserID: "u-1", Name: "cron", TokenHash: "$2a$secret", CreatedAt: created},
	}, nil).Once()

	w := suite.sendJSON(http.MethodGet, "/api/v1/tokens", "", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "$2a$secret")
	var resp []dto.APITokenResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 1)
	suite.Equal("cron", resp[0].Name)
}

func (suite *HandlerTestSuite) TestAPI_ListTokensEmpty() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTokens.On("ListTokens", mock.Anything, "u-1").Return(nil, nil).Once()

	w := suite.sendJSON(http.MethodGet, "/api/v1/tokens", "", cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())
}

func (suite *HandlerTestSuite) TestAPI_CreateToken() {
	cookie := suite.sessionFor(suite.nicola)
	token := &domain.APIToken{TokenID: "t-1", UserID: "u-1", Name: "cron", CreatedAt: time.Now()}
	suite.mockTokens.On("CreateToken", mock.Anything, "u-1", dto.CreateAPITokenRequest{Name: "cron", ExpiresInDays: 30}).
		Return(testAPIKey, token, nil).Once()

	w := suite.sendJSON(http.MethodPost, "/api/v1/tokens", `{"name":"cron","expiresInDays":30}`, cookie)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.CreateAPITokenResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(testAPIKey, resp.Token)
	suite.Equal("t-1", resp.Details.TokenID)
}

func (suite *HandlerTestSuite) TestAPI_CreateTokenWithAPIKeyForbidden() {
	suite.mockTokens.On("ValidateToken", mock.Anything, testAPIKey).Return(suite.nicola, nil).Once()

	w := suite.withAPIKey(http.MethodPost, "/api/v1/tokens", `{"name":"another"}`, testAPIKey)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), handlers.MsgAPITokenNeedsSession)
	suite.mockTokens.AssertNotCalled(suite.T(), "CreateToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestAPI_CreateTokenValidation() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTokens.On("CreateToken", mock.Anything, "u-1", mock.Anything).
		Return("", nil, apperrors.ValidationErrors{"name": dto.MsgTokenNameLength}).Once()

	w := suite.sendJSON(http.MethodPost, "/api/v1/tokens", `{"name":"x"}`, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgTokenNameLength)
}

func (suite *HandlerTestSuite) TestAPI_RevokeTokenWithAPIKey() {
	suite.mockTokens.On("ValidateToken", mock.Anything, testAPIKey).Return(suite.nicola, nil).Once()
	suite.mockTokens.On("RevokeToken", mock.Anything, "u-1", "t-1").Return(nil).Once()

	w := suite.withAPIKey(http.MethodDelete, "/api/v1/tokens/t-1", "", testAPIKey)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestAPI_RevokeTokenNotFound() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTokens.On("RevokeToken", mock.Anything, "u-1", "t-9").
		Return(apperrors.NewNotFoundError(services.MsgAPITokenNotFound)).Once()

	w := suite.sendJSON(http.MethodDelete, "/api/v1/tokens/t-9", "", cookie)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.JSONEq(`{"error":"API token not found"}`, w.Body.String())
}

// --- account pages ---
func (suite *HandlerTestSuite) TestTokensPage_Lists() {
	cookie := suite.sessionFor(suite.nicola)
	used := time.Date(2024, 5, 2, 9, 15, 0, 0, time.UTC)
	suite.mockTokens.On("ListTokens", mock.Anything, "u-1").Return([]domain.APIToken{
		{TokenID: "t-1", Name: "Home Assistant", CreatedAt: used.Add(-24 * time.Hour), LastUsedAt: &used},
	}, nil).Once()

	w := suite.get("/account/tokens", cookie)

	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Contains(body, "Home Assistant")
	suite.Contains(body, "02/05/2024 09:15")
	suite.Contains(body, `action="/account/tokens/t-1/revoke"`)
}

func (suite *HandlerTestSuite) TestTokensPage_CreateShowsTokenOnce() {
	cookie := suite.sessionFor(suite.nicola)
	token := &domain.APIToken{TokenID: "t-1", UserID: "u-1", Name: "cron"}
	suite.mockTokens.On("CreateToken", mock.Anything, "u-1", dto.CreateAPITokenRequest{Name: "cron"}).
		Return(testAPIKey, token, nil).Once()
	suite.mockTokens.On("ListTokens", mock.Anything, "u-1").Return([]domain.APIToken{*token}, nil).Once()

	w := suite.postForm("/account/tokens", url.Values{"name": {"cron"}, "expiresInDays": {""}}, cookie)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), testAPIKey)
	suite.Contains(w.Body.String(), handlers.MsgAPITokenCreated)
}

func (suite *HandlerTestSuite) TestTokensPage_CreateFieldErrors() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTokens.On("CreateToken", mock.Anything, "u-1", mock.Anything).
		Return("", nil, apperrors.ValidationErrors{"expiresInDays": dto.MsgTokenExpiry}).Once()
	suite.mockTokens.On("ListTokens", mock.Anything, "u-1").Return(nil, nil).Once()

	w := suite.postForm("/account/tokens", url.Values{"name": {"cron"}, "expiresInDays": {"900"}}, cookie)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), dto.MsgTokenExpiry)
	suite.Contains(w.Body.String(), `value="cron"`)
}

func (suite *HandlerTestSuite) TestTokensPage_Revoke() {
	cookie := suite.sessionFor(suite.nicola)
	suite.mockTokens.On("RevokeToken", mock.Anything, "u-1", "t-1").Return(nil).Once()

	w := suite.postForm("/account/tokens/t-1/revoke", url.Values{}, cookie)

	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/account/tokens?revoked=1", w.Header().Get("Location"))
}

func (suite *HandlerTestSuite) TestTokensPage_RevokeSomeoneElses() {
	cookie := suite.sessionFor(suite.shahra)
	suite.mockTokens.On("RevokeToken", mock.Anything, "u-2", "t-1").
		Return(apperrors.NewNotFoundError(services.MsgAPITokenNotFound)).Once()

	w := suite.postForm("/account/tokens/t-1/revoke", url.Values{}, cookie)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), services.MsgAPITokenNotFound)
}
