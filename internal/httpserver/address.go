package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"customer-addressbook/internal/domain"
	"customer-addressbook/internal/formkey"
	addresssvc "customer-addressbook/internal/service/address"
	"github.com/gin-gonic/gin"
)

const (
	addressIndexPath = "/customer/address/"
	addressEditPath  = "/customer/address/edit"

	msgAddressSaved        = "You saved the address."
	msgAddressSaveFailed   = "We can't save the address."
	msgAddressDeleted      = "You deleted the address."
	msgAddressDeleteFailed = "We can't delete the address right now."
	msgAddressLoadFailed   = "We can't load your addresses right now."
	msgAddressNotFound     = "address not found"
)

type addressHandler struct {
	svc     AddressService
	logger  *slog.Logger
	metrics *metrics
}

func (h *addressHandler) index(c *gin.Context) {
	sess := currentSession(c)
	list, err := h.svc.List(c.Request.Context(), sess.CustomerID())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list addresses", slog.String("customer_id", sess.CustomerID()), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAddressLoadFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"addresses": list,
		"formKey":   sess.FormKey(),
		"messages":  sess.DrainMessages(),
	})
}

// edit returns what the address form needs: the stored address (when id is
// given), values stashed by a failed submit, the regions of the selected
// country, the form key and messages.
func (h *addressHandler) edit(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()
	var address *domain.Address
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		a, err := h.svc.Get(ctx, sess.CustomerID(), id)
		if err != nil {
			if errors.Is(err, addresssvc.ErrAddressNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": msgAddressNotFound})
				return
			}
			h.logger.ErrorContext(ctx, "load address", slog.String("address_id", id), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgAddressLoadFailed})
			return
		}
		address = a
	}

	formData := sess.TakeAddressForm()
	if formData == nil {
		formData = url.Values{}
	}

	// Country precedence: explicit query, then the re-displayed submit,
	// then the stored address.
	country := c.Query("country_id")
	if country == "" {
		country = formData.Get("country_id")
	}
	if country == "" && address != nil {
		country = address.CountryID
	}
	regions, err := h.svc.Regions(ctx, country)
	if err != nil {
		h.logger.ErrorContext(ctx, "list regions", slog.String("country_id", country), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAddressLoadFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":  address,
		"formData": formData,
		"regions":  regions,
		"formKey":  sess.FormKey(),
		"messages": sess.DrainMessages(),
	})
}

func (h *addressHandler) formPost(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()
	if !formkey.Valid(sess.FormKey(), formValue(c, "form_key")) {
		c.Redirect(http.StatusFound, addressIndexPath)
		return
	}

	if c.Request.Method != http.MethodPost {
		sess.StashAddressForm(c.Request.PostForm)
		c.Redirect(http.StatusFound, addressEditPath)
		return
	}

	var req addresssvc.FormRequest
	if err := c.ShouldBind(&req); err != nil {
		h.metrics.addressOp("save", "error")
		h.logger.WarnContext(ctx, "bind address form", slog.Any("error", err))
		sess.AddError(msgAddressSaveFailed)
		sess.StashAddressForm(c.Request.PostForm)
		c.Redirect(http.StatusFound, addressEditPath)
		return
	}
	form := req.Form()
	id := form.ID

	_, err := h.svc.Save(ctx, sess.CustomerID(), form)
	if err == nil {
		h.metrics.addressOp("save", "success")
		sess.AddSuccess(msgAddressSaved)
		c.Redirect(http.StatusFound, addressIndexPath)
		return
	}

	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		h.metrics.addressOp("save", "invalid")
		sess.AddError(inputErr.Message)
		for _, fe := range inputErr.Errors {
			sess.AddError(fe.Message)
		}
	} else {
		h.metrics.addressOp("save", "error")
		h.logger.ErrorContext(ctx, "save address",
			slog.String("customer_id", sess.CustomerID()),
			slog.String("address_id", id),
			slog.Any("error", err),
		)
		sess.AddError(msgAddressSaveFailed)
	}

	sess.StashAddressForm(c.Request.PostForm)
	c.Redirect(http.StatusFound, editURL(id))
}

func (h *addressHandler) delete(c *gin.Context) {
	sess := currentSession(c)
	ctx := c.Request.Context()
	const target = "/customer/address/index"

	id := strings.TrimSpace(formValue(c, "id"))
	if id == "" || !formkey.Valid(sess.FormKey(), formValue(c, "form_key")) {
		c.Redirect(http.StatusFound, target)
		return
	}

	if err := h.svc.Delete(ctx, sess.CustomerID(), id); err != nil {
		if !errors.Is(err, addresssvc.ErrAddressNotFound) {
			h.logger.ErrorContext(ctx, "delete address", slog.String("address_id", id), slog.Any("error", err))
		}
		h.metrics.addressOp("delete", "error")
		sess.AddError(msgAddressDeleteFailed)
	} else {
		h.metrics.addressOp("delete", "success")
		sess.AddSuccess(msgAddressDeleted)
	}
	c.Redirect(http.StatusFound, target)
}

// formValue reads key from the request body (urlencoded or multipart),
// falling back to the query string.
func formValue(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return v
	}
	return c.Query(key)
}

func editURL(id string) string {
	if id == "" {
		return addressEditPath
	}
	return addressEditPath + "?id=" + url.QueryEscape(id)
}
