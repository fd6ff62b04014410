package handlers

import (
	"errors"
	"net/http"

	"github.com/SscSPs/explit/internal/apperrors"
	portssvc "github.com/SscSPs/explit/internal/core/ports/services"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	// MsgAPITokenCreated is flashed above the plaintext token, which is shown only once.
	MsgAPITokenCreated = "Copy your new token now, it will not be shown again"
	// MsgAPITokenRevoked is flashed after a token was revoked.
	MsgAPITokenRevoked = "The token has been revoked"
	// MsgAPITokenNeedsSession rejects token management authenticated by another token.
	MsgAPITokenNeedsSession = "Sign in to create API tokens"
)

// apiTokenHandler manages the caller's API tokens, on the account pages and as JSON.
type apiTokenHandler struct {
	tokenService portssvc.APITokenSvc
	posthog      *utils.PosthogClientWrapper
}

// registerAPITokenRoutes registers the token pages under /account/tokens. rg requires a user.
func registerAPITokenRoutes(rg *gin.RouterGroup, tokenService portssvc.APITokenSvc, posthog *utils.PosthogClientWrapper) {
	h := &apiTokenHandler{tokenService: tokenService, posthog: posthog}

	tokens := rg.Group("/account/tokens")
	{
		tokens.GET("", h.showTokens)
		tokens.POST("", h.createToken)
		tokens.POST("/:id/revoke", h.revokeToken)
	}
}

// registerAPITokenAPIRoutes registers /tokens on the JSON API.
func registerAPITokenAPIRoutes(rg *gin.RouterGroup, tokenService portssvc.APITokenSvc, posthog *utils.PosthogClientWrapper) {
	h := &apiTokenHandler{tokenService: tokenService, posthog: posthog}

	tokens := rg.Group("/tokens")
	{
		tokens.GET("", h.listTokensJSON)
		tokens.POST("", h.createTokenJSON)
		tokens.DELETE("/:tokenID", h.revokeTokenJSON)
	}
}

// tokensPage renders the token list with data merged in.
func (h *apiTokenHandler) tokensPage(c *gin.Context, status int, userID string, data gin.H) {
	tokens, err := h.tokenService.ListTokens(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	data["Title"] = "API tokens"
	data["Section"] = "account"
	data["Tokens"] = tokens
	render(c, status, "account_tokens", data)
}

func (h *apiTokenHandler) showTokens(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	data := gin.H{}
	if c.Query("revoked") != "" {
		data["Flash"] = MsgAPITokenRevoked
	}
	h.tokensPage(c, http.StatusOK, user.UserID, data)
}

func (h *apiTokenHandler) createToken(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBind(&req); err != nil {
		h.tokenFormError(c, user.UserID, req, bindingFieldErrors(err))
		return
	}
	plaintext, _, err := h.tokenService.CreateToken(c.Request.Context(), user.UserID, req)
	if err != nil {
		h.tokenFormError(c, user.UserID, req, err)
		return
	}

	middleware.PosthogEvent(c, h.posthog, "api_token_created", map[string]any{"expires_in_days": req.ExpiresInDays})
	h.tokensPage(c, http.StatusOK, user.UserID, gin.H{
		"Flash":    MsgAPITokenCreated,
		"NewToken": plaintext,
	})
}

// tokenFormError re-renders the token page with err next to the create form.
func (h *apiTokenHandler) tokenFormError(c *gin.Context, userID string, req dto.CreateAPITokenRequest, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		renderError(c, err)
		return
	}
	data := gin.H{"Fields": map[string]string{"name": req.Name}}
	var fieldErrs apperrors.ValidationErrors
	if errors.As(err, &fieldErrs) {
		data["FieldErrors"] = fieldErrs
	} else {
		data["FormError"] = messageFromError(err, status)
	}
	h.tokensPage(c, http.StatusBadRequest, userID, data)
}

func (h *apiTokenHandler) revokeToken(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.tokenService.RevokeToken(c.Request.Context(), user.UserID, c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "api_token_revoked", nil)
	c.Redirect(http.StatusSeeOther, "/account/tokens?revoked=1")
}

// listTokensJSON godoc
// @Summary List API tokens
// @Description Lists the caller's API tokens, newest first. Secrets are never returned.
// @Tags tokens
// @Produce  json
// @Success 200 {array} dto.APITokenResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /tokens [get]
func (h *apiTokenHandler) listTokensJSON(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	tokens, err := h.tokenService.ListTokens(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAPITokenResponses(tokens))
}

// createTokenJSON godoc
// @Summary Create an API token
// @Description Creates a token for the x-api-key header. The token is only returned by this call. Requires a session.
// @Tags tokens
// @Accept  json
// @Produce  json
// @Param   token body dto.CreateAPITokenRequest true "Token name and optional lifetime in days"
// @Success 201 {object} dto.CreateAPITokenResponse
// @Failure 400 {object} map[string]string "Invalid name or lifetime"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Authenticated with an API token"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Router /tokens [post]
func (h *apiTokenHandler) createTokenJSON(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	if middleware.GetAuthMethod(c) == middleware.AuthMethodAPIToken {
		respondError(c, apperrors.NewForbiddenError(MsgAPITokenNeedsSession))
		return
	}

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingFieldErrors(err))
		return
	}

	plaintext, token, err := h.tokenService.CreateToken(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "api_token_created", map[string]any{"expires_in_days": req.ExpiresInDays})
	c.JSON(http.StatusCreated, dto.CreateAPITokenResponse{Token: plaintext, Details: dto.ToAPITokenResponse(*token)})
}

// revokeTokenJSON godoc
// @Summary Revoke an API token
// @Description Deletes one of the caller's API tokens.
// @Tags tokens
// @Param   tokenID path string true "Token ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Token not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security SessionCookie
// @Security ApiKeyAuth
// @Router /tokens/{tokenID} [delete]
func (h *apiTokenHandler) revokeTokenJSON(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.tokenService.RevokeToken(c.Request.Context(), userID, c.Param("tokenID")); err != nil {
		respondError(c, err)
		return
	}
	middleware.PosthogEvent(c, h.posthog, "api_token_revoked", nil)
	c.Status(http.StatusNoContent)
}
