package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"customer-addressbook/internal/domain"
	customersvc "customer-addressbook/internal/service/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPost_StartsCustomerSessionUnderNewID(t *testing.T) {
	env := newTestEnv(t)
	env.customer.customer = &domain.Customer{ID: "cust-1", Email: "customer@example.com"}
	sess := env.newSession(t, "")

	rec := env.do(sess, http.MethodPost, "/customer/account/loginPost", url.Values{
		"form_key":        {sess.FormKey()},
		"login[username]": {"customer@example.com"},
		"login[password]": {"password"},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, addressIndexPath, rec.Header().Get("Location"))
	cookie := lastSessionCookie(t, rec)
	assert.NotEqual(t, sess.ID(), cookie.Value)
	assert.False(t, env.redis.Exists("session:"+sess.ID()))
	after := env.reload(t, cookie.Value)
	assert.Equal(t, "cust-1", after.CustomerID())
	assert.NotEqual(t, sess.FormKey(), after.FormKey())
}

func TestLoginPost_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.customer.loginErr = customersvc.ErrInvalidCredentials
	sess := env.newSession(t, "")

	rec := env.do(sess, http.MethodPost, "/customer/account/loginPost", url.Values{
		"form_key":        {sess.FormKey()},
		"login[username]": {"customer@example.com"},
		"login[password]": {"bad"},
	})

	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	after := env.reload(t, sess.ID())
	assert.False(t, after.LoggedIn())
	assert.Equal(t, []string{msgLoginIncorrect}, messageTexts(after.Messages()))
}

func TestLoginPost_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, "")

	env.do(sess, http.MethodPost, "/customer/account/loginPost", url.Values{"form_key": {sess.FormKey()}})

	assert.Equal(t, []string{msgLoginRequired}, messageTexts(env.reload(t, sess.ID()).Messages()))
}

func TestCreatePost_InputErrors(t *testing.T) {
	env := newTestEnv(t)
	env.customer.registerErr = domain.NewInputError(domain.FieldError{Field: "email", Message: `"Email" is a required value.`})
	sess := env.newSession(t, "")

	rec := env.do(sess, http.MethodPost, "/customer/account/createPost", url.Values{"form_key": {sess.FormKey()}})

	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	assert.Equal(t, []string{domain.DefaultInputMessage, `"Email" is a required value.`},
		messageTexts(env.reload(t, sess.ID()).Messages()))
}

func TestCreatePost_Registered(t *testing.T) {
	env := newTestEnv(t)
	env.customer.customer = &domain.Customer{ID: "cust-9"}
	sess := env.newSession(t, "")

	rec := env.do(sess, http.MethodPost, "/customer/account/createPost", url.Values{
		"form_key":  {sess.FormKey()},
		"email":     {"new@example.com"},
		"password":  {"Abcdefg1"},
		"firstname": {"New"},
		"lastname":  {"Shopper"},
	})

	assert.Equal(t, addressIndexPath, rec.Header().Get("Location"))
	after := env.reload(t, lastSessionCookie(t, rec).Value)
	assert.Equal(t, "cust-9", after.CustomerID())
	assert.Equal(t, []string{msgRegistered}, messageTexts(after.Messages()))
}

func TestCreatePost_DuplicateAndUnexpected(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, "")

	env.customer.registerErr = domain.ErrAlreadyExists
	env.do(sess, http.MethodPost, "/customer/account/createPost", url.Values{"form_key": {sess.FormKey()}})
	env.customer.registerErr = errors.New("boom")
	env.do(sess, http.MethodPost, "/customer/account/createPost", url.Values{"form_key": {sess.FormKey()}})

	assert.Equal(t, []string{msgAccountExists, msgUnexpectedError}, messageTexts(env.reload(t, sess.ID()).Messages()))
}

func TestLogout_DestroysSession(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t, "cust-1")

	rec := env.do(sess, http.MethodPost, "/customer/account/logout", nil)

	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	assert.False(t, env.redis.Exists("session:"+sess.ID()))
	cookie := lastSessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}
