package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/SscSPs/explit/internal/middleware"
	"github.com/SscSPs/explit/internal/utils"
	"github.com/SscSPs/explit/web"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// msgUnexpected is shown for server-side failures.
const msgUnexpected = "I did a whoopsies."

// newTemplates parses the embedded page templates. Dates are rendered in loc.
func newTemplates(loc *time.Location) *template.Template {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"amount":    utils.FormatAmount,
		"absAmount": utils.FormatAbsAmount,
		"deref": func(d *decimal.Decimal) decimal.Decimal {
			if d == nil {
				return decimal.Zero
			}
			return *d
		},
		"datetime": func(t time.Time) string {
			return t.In(loc).Format("02/01/2006 15:04")
		},
		"themes": func() []domain.Theme { return domain.Themes },
		"add":    func(a, b int) int { return a + b },
		"sub":    func(a, b int) int { return a - b },
		"pageURL": func(p dto.ListExpensesParams, page int) string {
			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			for key, value := range map[string]string{
				"description": p.Description,
				"dateFrom":    p.DateFrom,
				"dateTo":      p.DateTo,
				"user":        p.User,
			} {
				if value != "" {
					q.Set(key, value)
				}
			}
			return "/expenses/list?" + q.Encode()
		},
	}
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(web.TemplatesFS, "templates/*.html"))
}

// render executes the named page with data, adding the values every page expects.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	user, _ := middleware.GetUserFromContext(c)
	theme := domain.DefaultTheme
	if user != nil && user.Theme.IsValid() {
		theme = user.Theme
	}
	defaults := gin.H{
		"User":          user,
		"Theme":         theme,
		"Title":         "",
		"Section":       "",
		"Flash":         "",
		"FormError":     "",
		"RedirectTo":    "",
		"GoogleEnabled": false,
		"Fields":        map[string]string{},
		"FieldErrors":   apperrors.ValidationErrors{},
	}
	for key, value := range defaults {
		if _, ok := data[key]; !ok {
			data[key] = value
		}
	}
	c.HTML(status, name, data)
}

// statusFromError maps service errors onto HTTP status codes.
func statusFromError(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// messageFromError returns the text shown to the user for err.
func messageFromError(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return msgUnexpected
	}
	return apperrors.Message(err, http.StatusText(status))
}

// renderError shows the error page for err.
func renderError(c *gin.Context, err error) {
	status := statusFromError(err)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	render(c, status, "error", gin.H{"Status": status, "Message": messageFromError(err, status)})
}

// renderForm re-renders a form page after err. Field errors are shown next to their
// inputs, other client errors above the form; server errors use the error page.
func renderForm(c *gin.Context, name string, err error, data gin.H) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		renderError(c, err)
		return
	}
	var fieldErrs apperrors.ValidationErrors
	if errors.As(err, &fieldErrs) {
		data["FieldErrors"] = fieldErrs
	} else {
		data["FormError"] = messageFromError(err, status)
	}
	if status == http.StatusUnauthorized || status == http.StatusConflict {
		status = http.StatusBadRequest
	}
	render(c, status, name, data)
}

// respondError writes err as a JSON error body.
func respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("API request failed", slog.String("error", err.Error()))
	}
	body := gin.H{"error": messageFromError(err, status)}
	var fieldErrs apperrors.ValidationErrors
	if errors.As(err, &fieldErrs) {
		body["error"] = "Invalid request"
		body["fields"] = fieldErrs
	}
	c.JSON(status, body)
}

// currentUser returns the user loaded by the session middleware. Routes using it
// sit behind RequireUser.
func currentUser(c *gin.Context) (*domain.User, bool) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
	return user, ok
}
