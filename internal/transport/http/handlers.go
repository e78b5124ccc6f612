// @title Keygate Identity API
// @version 2.0
// @description Identity service issuing and validating bearer tokens for a
// @description multi-service deployment.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0

// @host localhost:35357
// @BasePath /v2.0

// @securityDefinitions.apikey XAuthToken
// @in header
// @name X-Auth-Token

package http

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/observability/logger"
	"github.com/keygate/keygate/internal/wire"
)

// maxBodyBytes bounds request documents; identity entities are small.
const maxBodyBytes = 1 << 20

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identity *identity.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(identityService *identity.Service) *Handler {
	return &Handler{identity: identityService}
}

func baseMiddleware(r *chi.Mux) {
	r.Use(middleware.RequestID)
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
}

// NewAdminRouter builds the administrative API surface. Everything except
// the health check lives under /v2.0 and expects X-Auth-Token.
func NewAdminRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()
	baseMiddleware(r)

	r.Get("/health", h.HealthCheck)

	r.Route("/v2.0", func(r chi.Router) {
		// Authentication is the only unauthenticated write; it gets the
		// per-IP limiter.
		r.With(RateLimitMiddleware(rateLimiter)).Post("/tokens", h.Authenticate)
		r.Route("/tokens/{tokenID}", func(r chi.Router) {
			r.Get("/", h.ValidateToken)
			r.Head("/", h.CheckToken)
			r.Delete("/", h.RevokeToken)
			r.Get("/endpoints", h.TokenEndpoints)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", h.ListTenants)
			r.Post("/", h.CreateTenant)
			r.Route("/{tenantID}", func(r chi.Router) {
				r.Get("/", h.GetTenant)
				r.Put("/", h.UpdateTenant)
				r.Delete("/", h.DeleteTenant)
				r.Get("/users", h.ListTenantUsers)
				r.Route("/OS-KSCATALOG/endpoints", func(r chi.Router) {
					r.Get("/", h.ListTenantEndpoints)
					r.Post("/", h.AddTenantEndpoint)
					r.Delete("/{endpointID}", h.RemoveTenantEndpoint)
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Delete("/", h.DeleteUser)
				r.Put("/password", h.SetUserPassword)
				r.Put("/enabled", h.SetUserEnabled)
				r.Put("/tenant", h.SetUserTenant)
				r.Get("/roles", h.ListUserRoles)
				r.Route("/roles/OS-KSADM/{roleID}", func(r chi.Router) {
					r.Put("/", h.GrantRole)
					r.Delete("/", h.RevokeRole)
					r.Put("/tenant/{tenantID}", h.GrantRole)
					r.Delete("/tenant/{tenantID}", h.RevokeRole)
				})
				r.Route("/OS-KSADM/credentials", func(r chi.Router) {
					r.Get("/", h.ListCredentials)
					r.Post("/", h.CreateCredentials)
					r.Route("/passwordCredentials", func(r chi.Router) {
						r.Get("/", h.GetPasswordCredentials)
						r.Put("/", h.UpdatePasswordCredentials)
						r.Delete("/", h.DeletePasswordCredentials)
					})
					r.Route("/ec2Credentials/{accessKey}", func(r chi.Router) {
						r.Get("/", h.GetEC2Credentials)
						r.Delete("/", h.DeleteEC2Credentials)
					})
				})
			})
		})

		r.Route("/OS-KSADM/roles", func(r chi.Router) {
			r.Get("/", h.ListRoles)
			r.Post("/", h.CreateRole)
			r.Get("/{roleID}", h.GetRole)
			r.Delete("/{roleID}", h.DeleteRole)
		})

		r.Route("/OS-KSADM/services", func(r chi.Router) {
			r.Get("/", h.ListServices)
			r.Post("/", h.CreateService)
			r.Get("/{serviceID}", h.GetService)
			r.Delete("/{serviceID}", h.DeleteService)
		})

		r.Route("/OS-KSCATALOG/endpointTemplates", func(r chi.Router) {
			r.Get("/", h.ListEndpointTemplates)
			r.Post("/", h.CreateEndpointTemplate)
			r.Route("/{templateID}", func(r chi.Router) {
				r.Get("/", h.GetEndpointTemplate)
				r.Put("/", h.UpdateEndpointTemplate)
				r.Delete("/", h.DeleteEndpointTemplate)
			})
		})
	})

	return r
}

// NewServiceRouter builds the service API surface: authentication plus
// tenant discovery for the caller's own token.
func NewServiceRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()
	baseMiddleware(r)

	r.Get("/health", h.HealthCheck)

	r.Route("/v2.0", func(r chi.Router) {
		r.With(RateLimitMiddleware(rateLimiter)).Post("/tokens", h.Authenticate)
		r.Get("/tenants", h.ListTenants)
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"keygate"}`))
}

// authToken extracts the caller's token from the admin header.
func authToken(r *http.Request) string {
	return r.Header.Get("X-Auth-Token")
}

// readBody drains and bounds the request document, returning the body and
// the format its Content-Type declares.
func readBody(r *http.Request) ([]byte, wire.Format, error) {
	f, err := wire.NegotiateContentType(r)
	if err != nil {
		return nil, wire.JSON, err
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, f, fault.BadRequest("cannot read request body").WithCause(err)
	}
	if len(body) == 0 {
		return nil, f, fault.BadRequest("request body is empty")
	}
	return body, f, nil
}

// pageParams reads the marker/limit paging parameters; limit 0 lets the
// core apply its default.
func pageParams(r *http.Request) (string, int) {
	marker := r.URL.Query().Get("marker")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	return marker, limit
}

// respond writes a rendered document in the negotiated format.
func respond(w http.ResponseWriter, r *http.Request, status int, body []byte, f wire.Format) {
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", logger.Error(err))
	}
}

// respondDoc renders and writes a document via the entity marshaller.
func respondDoc(w http.ResponseWriter, r *http.Request, status int, marshal func(wire.Format) ([]byte, error)) {
	f := wire.NegotiateAccept(r)
	body, err := marshal(f)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	respond(w, r, status, body, f)
}

// respondFault renders any error as a fault document with its HTTP status.
func respondFault(w http.ResponseWriter, r *http.Request, err error) {
	f := wire.NegotiateAccept(r)
	flt := fault.As(err)
	if flt.Code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
		)
	}
	body, code, merr := wire.MarshalFault(err, f)
	if merr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	respond(w, r, code, body, f)
}
