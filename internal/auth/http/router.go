package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/studyhall-app/studyhall/pkg/httpx"
	"github.com/studyhall-app/studyhall/pkg/jwtx"
	"github.com/studyhall-app/studyhall/pkg/slogx"

	_ "github.com/studyhall-app/studyhall/api/identity" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService      *service.AuthService
	TokenService     *service.TokenService
	PasswordService  *service.PasswordService
	TenantService    *service.TenantService
	ProvisionService *service.ProvisionService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTenants()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			StudyHall Identity Service API
//	@version		0.1.0
//	@description	Authentication, tenant resolution and role derivation for the StudyHall
//	@description	platform. Access tokens are HS256 JWTs; roles are derived per login from
//	@description	the admin extension record and subject role assignments.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (credential guessing surface)
	loginHandler := &LoginHandler{AuthService: r.AuthService, TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit by IP
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /change-password - authenticated, moderate rate limit by subject
	changeHandler := &ChangePasswordHandler{PasswordService: r.PasswordService}
	r.Mux.Handle("POST /v1/auth/change-password",
		httpx.Chain(changeHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)

	// POST /forgot-password - strict rate limit by IP (email-sending surface)
	forgotHandler := &ForgotPasswordHandler{PasswordService: r.PasswordService}
	r.Mux.Handle("POST /v1/auth/forgot-password",
		httpx.Chain(forgotHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /reset-password - strict rate limit by IP (code guessing surface)
	resetHandler := &ResetPasswordHandler{PasswordService: r.PasswordService, TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(resetHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerTenants() {
	// GET /resolve - public pre-login endpoint, lenient rate limit
	resolveHandler := &ResolveTenantHandler{TenantService: r.TenantService}
	r.Mux.Handle("GET /v1/tenants/resolve",
		httpx.Chain(resolveHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /tenants - system admin only, moderate rate limit by subject
	createHandler := &CreateTenantHandler{TenantService: r.TenantService}
	r.Mux.Handle("POST /v1/tenants",
		httpx.Chain(createHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleStrings(domain.RolesSystemAdminOnly)...),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	adminGate := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleStrings(domain.RolesTenantAdminOrAbove)...),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	}

	provisionHandler := &ProvisionUserHandler{ProvisionService: r.ProvisionService}
	r.Mux.Handle("POST /v1/tenants/{id}/users",
		httpx.Chain(provisionHandler, adminGate...),
	)

	statusHandler := &UserStatusHandler{ProvisionService: r.ProvisionService}
	r.Mux.Handle("PATCH /v1/tenants/{id}/users/{userID}/status",
		httpx.Chain(statusHandler, adminGate...),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
