package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"customer-addressbook/internal/domain"
	"customer-addressbook/internal/formkey"
	customersvc "customer-addressbook/internal/service/customer"
	"customer-addressbook/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	msgLoginRequired   = "A login and a password are required."
	msgLoginIncorrect  = "The account sign-in was incorrect or your account is disabled temporarily. Please wait and try again later."
	msgAccountExists   = "There is already an account with this email address."
	msgRegistered      = "Thank you for registering."
	msgUnexpectedError = "An unspecified error occurred. Please contact us for assistance."
)

type accountHandler struct {
	svc      CustomerService
	sessions *session.Store
	cookie   CookieConfig
	logger   *slog.Logger
}

func (h *accountHandler) loginForm(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"loggedIn": sess.LoggedIn(),
		"formKey":  sess.FormKey(),
		"messages": sess.DrainMessages(),
	})
}

func (h *accountHandler) loginPost(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()
	if sess.LoggedIn() {
		c.Redirect(http.StatusFound, addressIndexPath)
		return
	}
	if !formkey.Valid(sess.FormKey(), c.PostForm("form_key")) {
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	username := strings.TrimSpace(c.PostForm("login[username]"))
	password := c.PostForm("login[password]")
	if username == "" || password == "" {
		sess.AddError(msgLoginRequired)
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	customer, err := h.svc.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, customersvc.ErrInvalidCredentials) {
			sess.AddError(msgLoginIncorrect)
		} else {
			h.logger.ErrorContext(ctx, "login", slog.Any("error", err))
			sess.AddError(msgUnexpectedError)
		}
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	if !h.startCustomerSession(c, sess, customer.ID) {
		return
	}
	c.Redirect(http.StatusFound, addressIndexPath)
}

func (h *accountHandler) createPost(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()
	if sess.LoggedIn() {
		c.Redirect(http.StatusFound, addressIndexPath)
		return
	}
	if !formkey.Valid(sess.FormKey(), c.PostForm("form_key")) {
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	var in customersvc.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		sess.AddError(msgUnexpectedError)
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	customer, err := h.svc.Register(ctx, in)
	if err != nil {
		var inputErr *domain.InputError
		switch {
		case errors.As(err, &inputErr):
			sess.AddError(inputErr.Message)
			for _, fe := range inputErr.Errors {
				sess.AddError(fe.Message)
			}
		case errors.Is(err, domain.ErrAlreadyExists):
			sess.AddError(msgAccountExists)
		default:
			h.logger.ErrorContext(ctx, "register customer", slog.Any("error", err))
			sess.AddError(msgUnexpectedError)
		}
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	if !h.startCustomerSession(c, sess, customer.ID) {
		return
	}
	sess.AddSuccess(msgRegistered)
	c.Redirect(http.StatusFound, addressIndexPath)
}

func (h *accountHandler) logout(c *gin.Context) {
	sess := currentSession(c)
	if err := h.sessions.Destroy(c.Request.Context(), sess); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "destroy session", slog.Any("error", err))
	}
	clearSessionCookie(c, h.cookie)
	c.Redirect(http.StatusFound, loginPath)
}

// startCustomerSession moves the session to a fresh id and binds the customer.
func (h *accountHandler) startCustomerSession(c *gin.Context, sess *session.Session, customerID string) bool {
	if err := h.sessions.Regenerate(c.Request.Context(), sess); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "regenerate session", slog.Any("error", err))
		sess.AddError(msgUnexpectedError)
		c.Redirect(http.StatusFound, loginPath)
		return false
	}
	sess.SetCustomerID(customerID)
	setSessionCookie(c, h.sessions, h.cookie, sess.ID())
	return true
}
