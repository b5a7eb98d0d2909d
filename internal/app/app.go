package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/cineseat/cineseat/internal/mailer"
	"github.com/cineseat/cineseat/internal/payment"
	"github.com/cineseat/cineseat/internal/repository"
	"github.com/cineseat/cineseat/internal/reservation"
	"github.com/cineseat/cineseat/internal/sweeper"
	appvalidator "github.com/cineseat/cineseat/internal/validator"
	"github.com/cineseat/cineseat/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
)

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	mailer    mailer.Mailer
	wg        sync.WaitGroup

	showRepo    domain.ShowRepository
	bookingRepo domain.BookingRepository
	orderStore  domain.OrderContextStore

	paymentProvider domain.PaymentProvider
	engine          *reservation.Engine
}

type Config struct {
	Port int
	Env  string

	DB      DBConfig
	Redis   RedisConfig
	Gateway GatewayConfig
	Auth    AuthConfig
	SMTP    SMTPConfig
	Sweep   SweepConfig

	OtelCollectorURL string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type GatewayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
	OrderTTL  time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type SweepConfig struct {
	Interval time.Duration
}

func Run() error {
	// Optional; secrets usually arrive via the environment in dev.
	_ = godotenv.Load()

	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.Gateway.KeyID, "gateway-key-id", os.Getenv("RAZORPAY_KEY_ID"), "Razorpay key id")
	flag.StringVar(&cfg.Gateway.KeySecret, "gateway-key-secret", os.Getenv("RAZORPAY_KEY_SECRET"), "Razorpay key secret")
	flag.StringVar(&cfg.Gateway.Currency, "gateway-currency", "INR", "Payment currency (ISO code)")
	flag.DurationVar(&cfg.Gateway.Timeout, "gateway-timeout", 10*time.Second, "Payment gateway request timeout")
	flag.DurationVar(&cfg.Gateway.OrderTTL, "gateway-order-ttl", 30*time.Minute, "Server-held payment order context TTL")

	flag.StringVar(&cfg.Auth.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret for bearer tokens")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "CineSeat <no-reply@cineseat.example>", "SMTP sender")

	flag.DurationVar(&cfg.Sweep.Interval, "sweep-interval", 30*time.Minute, "Expired show sweep interval")

	flag.StringVar(&cfg.OtelCollectorURL, "otel-collector-url", os.Getenv("OTEL_COLLECTOR_URL"), "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	app, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	telemetryShutdown, err := app.initTelemetry()
	if err != nil {
		return err
	}
	defer telemetryShutdown(context.Background())

	showSweeper, err := sweeper.New(app.showRepo, logger, cfg.Sweep.Interval)
	if err != nil {
		return err
	}

	err = showSweeper.Start()
	if err != nil {
		return err
	}
	defer showSweeper.Stop()

	return app.serve()
}

// Option overrides a dependency before the reservation engine is built,
// mainly so tests can swap out the remote gateway and the mailer.
type Option func(*Application)

func WithPaymentProvider(provider domain.PaymentProvider) Option {
	return func(app *Application) {
		app.paymentProvider = provider
	}
}

func WithMailer(m mailer.Mailer) Option {
	return func(app *Application) {
		app.mailer = m
	}
}

// New connects to the stores, applies pending migrations, and wires the
// repositories, payment provider and reservation engine together.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	db, err := newDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	err = repository.RunMigrations(cfg.DB.DSN)
	if err != nil {
		db.Close()
		return nil, err
	}

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	app := &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       appvalidator.NewValidator(),
		mailer:          mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		showRepo:        repository.NewPostgresShowRepository(db),
		bookingRepo:     repository.NewPostgresBookingRepository(db),
		orderStore:      repository.NewRedisOrderContextStore(redisClient, cfg.Gateway.OrderTTL),
		paymentProvider: payment.NewRazorpayProvider(cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.engine = reservation.NewEngine(
		app.showRepo,
		app.bookingRepo,
		app.orderStore,
		app.paymentProvider,
		logger,
		cfg.Gateway.Currency,
	)

	return app, nil
}

func (app *Application) Close() {
	app.redis.Close()
	app.db.Close()
}

func newRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("cineseat-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/shows", app.GetShowsHandler)
	r.Get("/shows/{showId}", app.GetShowHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication)

		r.Post("/payments/order", app.CreatePaymentOrderHandler)
		r.Post("/payments/verify", app.VerifyPaymentHandler)

		r.Get("/bookings/user", app.GetUserBookingsHandler)
		r.Delete("/bookings/user", app.DeleteUserBookingsHandler)
		r.Get("/bookings/user/{bookingId}", app.GetUserBookingByIdHandler)
	})

	return r
}
