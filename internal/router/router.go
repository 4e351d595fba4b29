package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-adoption-portal/docs"
	"pet-adoption-portal/internal/adapters/auth/session"
	"pet-adoption-portal/internal/adapters/capabilities/staff"
	mem "pet-adoption-portal/internal/adapters/storage/memory"
	pg "pet-adoption-portal/internal/adapters/storage/postgres"
	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/config"
	"pet-adoption-portal/internal/domain/accounts"
	"pet-adoption-portal/internal/domain/adoptions"
	"pet-adoption-portal/internal/domain/pets"
	"pet-adoption-portal/internal/domain/publications"
	"pet-adoption-portal/internal/middleware"
	"pet-adoption-portal/internal/platform/blob"
	"pet-adoption-portal/internal/platform/logger"
	"pet-adoption-portal/internal/platform/metrics"
	"pet-adoption-portal/internal/ports/auth"
)

type Options struct {
	// nil = config.Default()
	Config *config.Config
	Logger logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Catalog *catalog.Catalog
	Photos  blob.Store
	Metrics *metrics.Metrics

	// Si ambos son nil se crean con la sesión JWT de Config.Auth.
	Verifier auth.AuthVerifier
	Issuer   auth.TokenIssuer
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	photos := opts.Photos
	if photos == nil {
		photos = blob.NewMemory()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	verifier, issuer := opts.Verifier, opts.Issuer
	if verifier == nil && issuer == nil {
		verifier, issuer = sessionAuth(cfg.Auth, log)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))
	r.Use(m.Middleware)

	r.Use(middleware.AuthContext(verifier, middleware.AuthOptions{
		CookieName: cfg.Auth.CookieName,
		DevHeaders: cfg.Auth.DevHeaders,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Handle("/media/*", blob.Handler(photos, "/media/"))

	var (
		petRepo         pets.Repository
		adoptionRepo    adoptions.Repository
		publicationRepo publications.Repository
		userRepo        accounts.Repository
	)

	if opts.DB != nil {
		petRepo = pg.NewPetsRepo(opts.DB)
		adoptionRepo = pg.NewAdoptionsRepo(opts.DB)
		publicationRepo = pg.NewPublicationsRepo(opts.DB)
		userRepo = pg.NewUsersRepo(opts.DB)
	} else {
		store := mem.New()
		petRepo = store.Pets()
		adoptionRepo = store.Adoptions()
		publicationRepo = store.Publications()
		userRepo = store.Users()
	}

	// Services por módulo
	accountOpts := []accounts.Option{accounts.WithLogger(log.With(map[string]any{"module": "accounts"}))}
	if n := cfg.Auth.AttemptsPerMinute; n > 0 {
		accountOpts = append(accountOpts, accounts.WithLimiter(accounts.NewLimiter(time.Minute/time.Duration(n), n)))
	}
	accountsSvc := accounts.NewService(userRepo, issuer, accountOpts...)

	caps := staff.NewResolver(accountsSvc, cfg.Auth.ModeratorIDs)

	petsSvc := pets.NewService(petRepo, pets.NewEngine(cat),
		pets.WithLogger(log.With(map[string]any{"module": "pets"})))
	adoptionsSvc := adoptions.NewService(adoptionRepo, petsSvc,
		adoptions.WithLogger(log.With(map[string]any{"module": "adoptions"})),
		adoptions.WithRecorder(m))
	publicationsSvc := publications.NewService(publicationRepo, cat,
		publications.WithLogger(log.With(map[string]any{"module": "publications"})),
		publications.WithRecorder(m))

	// Rutas por módulo
	accounts.RegisterRoutes(r, accountsSvc, accounts.HandlerOptions{
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
	})
	pets.RegisterRoutes(r, petsSvc, caps)
	adoptions.RegisterRoutes(r, adoptionsSvc)
	publications.RegisterRoutes(r, publicationsSvc, publications.HandlerOptions{
		Photos:         photos,
		Capabilities:   caps,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         log.With(map[string]any{"module": "publications"}),
	})

	return r
}

// sessionAuth arma issuer y verifier JWT. Sin secreto queda en modo dev (sin verifier).
func sessionAuth(cfg config.AuthConfig, log logger.Logger) (auth.AuthVerifier, auth.TokenIssuer) {
	sc := session.Config{Secret: cfg.SessionSecret, TTL: cfg.SessionTTL}
	iss, err := session.NewIssuer(sc)
	if err != nil {
		log.Warn("session auth disabled", map[string]any{"err": err})
		return nil, nil
	}
	ver, err := session.NewVerifier(sc)
	if err != nil {
		log.Warn("session auth disabled", map[string]any{"err": err})
		return nil, nil
	}
	return ver, iss
}
