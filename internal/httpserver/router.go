package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"customer-addressbook/internal/domain"
	addresssvc "customer-addressbook/internal/service/address"
	customersvc "customer-addressbook/internal/service/customer"
	"customer-addressbook/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// AddressService is the address book behavior the handlers need.
type AddressService interface {
	List(ctx context.Context, customerID string) ([]domain.Address, error)
	Get(ctx context.Context, customerID, addressID string) (*domain.Address, error)
	Save(ctx context.Context, customerID string, f addresssvc.Form) (*domain.Address, error)
	Delete(ctx context.Context, customerID, addressID string) error
	Regions(ctx context.Context, countryID string) ([]domain.Region, error)
}

// CustomerService is the account behavior the handlers need.
type CustomerService interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, error)
}

// Deps groups the collaborators wired into the router.
type Deps struct {
	Sessions    *session.Store
	Cookie      CookieConfig
	AddressSvc  AddressService
	CustomerSvc CustomerService
	// ReadyChecks are pinged by /readyz, keyed by backend name.
	ReadyChecks map[string]Pinger
	CORSOrigins []string
	// Registry receives the HTTP metrics; a fresh registry is used when nil.
	Registry *prometheus.Registry
}

// buildRouter wires routes for the storefront.
func buildRouter(logger *slog.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if deps.AddressSvc == nil || deps.CustomerSvc == nil {
		return nil, errors.New("address and customer services are required")
	}
	if deps.Cookie.Name == "" {
		deps.Cookie.Name = defaultCookieName
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), m.middleware())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyChecks))
	router.GET("/metrics", metricsHandler(reg))

	storefront := router.Group("/customer")
	storefront.Use(sessionMiddleware(deps.Sessions, deps.Cookie, logger))

	accounts := &accountHandler{svc: deps.CustomerSvc, sessions: deps.Sessions, cookie: deps.Cookie, logger: logger}
	account := storefront.Group("/account")
	account.GET("/login", accounts.loginForm)
	account.POST("/loginPost", accounts.loginPost)
	account.POST("/createPost", accounts.createPost)
	account.POST("/logout", accounts.logout)

	addresses := &addressHandler{svc: deps.AddressSvc, logger: logger, metrics: m}
	address := storefront.Group("/address")
	address.Use(requireCustomer())
	address.GET("/", addresses.index)
	address.GET("/index", addresses.index)
	address.GET("/edit", addresses.edit)
	address.GET("/formPost", addresses.formPost)
	address.POST("/formPost", addresses.formPost)
	address.POST("/delete", addresses.delete)

	return router, nil
}
