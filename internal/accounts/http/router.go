package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/cache"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/unrolled/secure"

	_ "github.com/aussiebroadwan/accounts/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options tunes the outer middleware chain.
type Options struct {
	// RequestTimeout bounds every request's context. Zero disables it.
	RequestTimeout time.Duration

	// AllowedHosts restricts the Host header. Empty allows any host.
	AllowedHosts []string

	// Production turns on HSTS and the HTTPS redirect.
	Production bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache cache.Cache

	AuthService      *service.AuthService
	ProfileService   *service.ProfileService
	AdminService     *service.AdminService
	BootstrapService *service.BootstrapService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	c cache.Cache,
	logger *slog.Logger,
	opts Options,
) *Router {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        c,
		logger:       logger,
	}

	secureOpts := secure.Options{
		AllowedHosts:          opts.AllowedHosts,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	}
	if opts.Production {
		secureOpts.SSLRedirect = true
		secureOpts.STSSeconds = 31536000
		secureOpts.STSIncludeSubdomains = true
	}
	secureMiddleware := secure.New(secureOpts)
	secureMiddleware.SetBadHostHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		authsdk.ErrValidation.WithMessage("host not allowed").WriteError(w)
	}))

	// Set default middleware chain, outermost first
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		secureMiddleware.Handler,
	}
	if opts.RequestTimeout > 0 {
		r.middlewares = append(r.middlewares, httpx.Timeout(opts.RequestTimeout))
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAdmin()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// Anything unmatched gets the error envelope rather than the plain-text 404.
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		authsdk.ErrNotFound.WithMessage("route not found").WriteError(w)
	})
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	User registration, login with rotating refresh tokens, self-service profiles and user administration.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
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
//	@description				Access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authenticate(ctx context.Context, token string) (httpx.Principal, error) {
	id, err := r.AuthService.Identify(ctx, token)
	if err != nil {
		return httpx.Principal{}, err
	}
	return httpx.Principal{ID: id.ID, Email: id.Email}, nil
}

// secured wraps h with bearer authentication and a per-user rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.authenticate),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// POST /register - moderate rate limit by IP (account creation)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.ParseRateLimitFromEnv("REGISTER", httpx.ModerateLimit)),
		),
	)

	// POST /login - strict rate limit by IP (5 attempts per 15 minutes)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.ParseRateLimitFromEnv("LOGIN", httpx.StrictLimit)),
		),
	)

	r.Mux.Handle("POST /api/auth/refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ParseRateLimitFromEnv("REFRESH", httpx.ModerateLimit)),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/profile", r.secured(h.HandleProfile, httpx.LenientLimit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /api/users/me", r.secured(h.HandleGetMe, httpx.LenientLimit))
	r.Mux.Handle("PUT /api/users/me", r.secured(h.HandleUpdateMe, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /api/users/me", r.secured(h.HandleDeleteMe, httpx.ModerateLimit))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}

	// The admin role is checked by AdminService on every call.
	r.Mux.Handle("GET /api/users/admin", r.secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /api/users/admin/users/{id}", r.secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("DELETE /api/users/admin/users/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - strict rate limit by IP (one-time setup endpoint)
	r.Mux.Handle("POST /api/bootstrap",
		httpx.Chain(&BootstrapHandler{BootstrapService: r.BootstrapService},
			httpx.RateLimitByIP(httpx.ParseRateLimitFromEnv("BOOTSTRAP", httpx.StrictLimit)),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
