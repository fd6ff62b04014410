package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Analytics receives product analytics events. *utils.PosthogClientWrapper implements it,
// including when it is nil or has no API key.
type Analytics interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// untrackedPaths are health checks and assets requested by machines rather than members.
var untrackedPaths = map[string]bool{
	"/health":                  true,
	"/metrics":                 true,
	"/resources/manifest.json": true,
}

// PosthogMiddleware records one event per successful request made by a signed-in member.
// The event is named after the matched route, e.g. "/expenses/:id/delete" becomes
// "expenses_id_delete", so every expense shares the same event.
func PosthogMiddleware(analytics Analytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !analyticsEnabled(analytics) || !trackable(c.Request) {
			c.Next()
			return
		}

		c.Next()

		// Failed requests are not product usage
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// Anonymous visitors have no distinct id
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		// Unmatched routes have an empty FullPath
		eventName := routeEventName(c.FullPath())
		if eventName == "" {
			return
		}

		props := requestProperties(c)
		props["status_code"] = c.Writer.Status()
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
			props["params"] = params
		}

		analytics.Enqueue(userID, eventName, props)
	}
}

// PosthogEvent sends a named event, e.g. "expense_created", on behalf of the current member.
// properties may be nil; request details are added to it.
func PosthogEvent(c *gin.Context, analytics Analytics, eventName string, properties map[string]any) {
	if !analyticsEnabled(analytics) {
		return
	}

	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	props := requestProperties(c)
	for k, v := range properties {
		props[k] = v
	}
	analytics.Enqueue(userID, eventName, props)
}

func analyticsEnabled(analytics Analytics) bool {
	return analytics != nil && analytics.IsInitialized()
}

// trackable skips CORS preflights, HEAD checks and untracked paths.
func trackable(r *http.Request) bool {
	if r.Method == http.MethodOptions || r.Method == http.MethodHead {
		return false
	}
	return !untrackedPaths[r.URL.Path]
}

// routeEventName turns a route pattern into an event name: path separators become
// underscores and parameter markers are dropped.
func routeEventName(fullPath string) string {
	segments := strings.Split(strings.Trim(fullPath, "/"), "/")
	for i, s := range segments {
		segments[i] = strings.TrimLeft(s, ":*")
	}
	return strings.Join(segments, "_")
}

// requestProperties describes where an event came from. Events from /api carry
// surface "api", page requests carry "web".
func requestProperties(c *gin.Context) map[string]any {
	surface := "web"
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		surface = "api"
	}
	props := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"surface": surface,
	}
	if user, ok := GetUserFromContext(c); ok {
		props["team_id"] = user.TeamID
	}
	return props
}
