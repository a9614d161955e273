package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"customer-addressbook/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	defaultCookieName = "PHPSESSID"
	sessionCtxKey     = "session"
	loginPath         = "/customer/account/login"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
		)
	}
}

// sessionMiddleware loads the visitor session before the handler runs and
// saves it afterwards. The cookie is re-issued on every request so its
// expiry slides with the Redis TTL.
func sessionMiddleware(store *session.Store, cookie CookieConfig, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookie.Name)
		sess, err := store.Load(c.Request.Context(), id)
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "load session", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session storage unavailable"})
			return
		}
		setSessionCookie(c, store, cookie, sess.ID())
		c.Set(sessionCtxKey, sess)

		c.Next()

		if err := store.Save(c.Request.Context(), sess); err != nil {
			logger.ErrorContext(c.Request.Context(), "save session", slog.String("session_id", sess.ID()), slog.Any("error", err))
		}
	}
}

func setSessionCookie(c *gin.Context, store *session.Store, cookie CookieConfig, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, id, int(store.TTL().Seconds()), "/", "", cookie.Secure, true)
}

func clearSessionCookie(c *gin.Context, cookie CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, "", -1, "/", "", cookie.Secure, true)
}

// requireCustomer sends guests to the login page.
func requireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentSession(c).LoggedIn() {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionCtxKey).(*session.Session)
}
