package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/farxc/gestao-fretes/internal/logger"
	"github.com/farxc/gestao-fretes/internal/service"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const component = "API"

type application struct {
	config    config
	store     *store.Storage
	services  *service.Services
	logger    *logger.Logger
	startedAt time.Time
}

type config struct {
	addr     string
	env      string
	logLevel string
	db       dbConfig
	cache    cacheConfig
	uploads  uploadConfig
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  time.Duration
	migrate      bool
}

type cacheConfig struct {
	redisURL     string
	ttl          time.Duration
	warmSchedule string
}

type uploadConfig struct {
	dir      string
	maxBytes int64
}

// uploadsPrefix is where stored receipts are served from.
const uploadsPrefix = "/uploads"

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  app.logger.StdLogger("HTTP"),
		NoColor: true,
	}))

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "route not found: "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/", app.healthCheckHandler)
		r.Get("/db", app.dbHealthHandler)
		r.Get("/full", app.fullHealthHandler)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/kpis", app.handleGetKPIs)
		r.Get("/estatisticas-rotas", app.handleGetRouteStats)
	})

	r.Route("/frota", func(r chi.Router) {
		r.Get("/", app.handleListVehicles)
		r.Post("/", app.handleCreateVehicle)
		r.Get("/{id}", app.handleGetVehicle)
		r.Put("/{id}", app.handleUpdateVehicle)
		r.Delete("/{id}", app.handleDeleteVehicle)
	})

	r.Route("/motoristas", func(r chi.Router) {
		r.Get("/", app.handleListDrivers)
		r.Post("/", app.handleCreateDriver)
		r.Get("/{id}", app.handleGetDriver)
		r.Put("/{id}", app.handleUpdateDriver)
		r.Delete("/{id}", app.handleDeleteDriver)
	})

	r.Route("/fretes", func(r chi.Router) {
		r.Get("/", app.handleListFreights)
		r.Post("/", app.handleCreateFreight)
		r.Get("/pendentes", app.handleListPendingFreights)
		r.Get("/{id}", app.handleGetFreight)
		r.Put("/{id}", app.handleUpdateFreight)
		r.Delete("/{id}", app.handleDeleteFreight)
		r.Get("/{id}/custos", app.handleListFreightCosts)
	})

	r.Route("/custos", func(r chi.Router) {
		r.Get("/", app.handleListCosts)
		r.Post("/", app.handleCreateCost)
		r.Get("/{id}", app.handleGetCost)
		r.Put("/{id}", app.handleUpdateCost)
		r.Delete("/{id}", app.handleDeleteCost)
	})

	r.Route("/pagamentos", func(r chi.Router) {
		r.Get("/", app.handleListPayments)
		r.Post("/", app.handleCreatePayment)
		r.Get("/{id}", app.handleGetPayment)
		r.Put("/{id}", app.handleUpdatePayment)
		r.Delete("/{id}", app.handleDeletePayment)
		r.Post("/{id}/comprovante", app.handleUploadReceipt)
		r.Get("/{id}/anexos", app.handleListPaymentAttachments)
	})

	r.Route("/fazendas", func(r chi.Router) {
		r.Get("/", app.handleListFarms)
		r.Post("/", app.handleCreateFarm)
		r.Get("/{id}", app.handleGetFarm)
		r.Put("/{id}", app.handleUpdateFarm)
		r.Delete("/{id}", app.handleDeleteFarm)
		r.Post("/{id}/incrementar-volume", app.handleIncrementFarmVolume)
	})

	if app.config.uploads.dir != "" {
		files := http.StripPrefix(uploadsPrefix, http.FileServer(http.Dir(app.config.uploads.dir)))
		r.Handle(uploadsPrefix+"/*", downloadOnly(files))
	}

	return r
}

// downloadOnly stops browsers from rendering stored uploads inline.
func downloadOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Disposition", "attachment")
		next.ServeHTTP(w, r)
	})
}

// run serves mux until ctx is cancelled, then drains in-flight requests
// for up to ten seconds.
func (app *application) run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(component, "server started on %s (env %s)", app.config.addr, app.config.env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(component, "shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
