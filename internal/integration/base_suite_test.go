package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cineseat/cineseat/internal/app"
	"github.com/cineseat/cineseat/internal/mailer"
	"github.com/cineseat/cineseat/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "cineseat"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"

	testJWTSecret     = "integration-test-secret"
	testGatewaySecret = "integration-gateway-secret"
)

type BaseSuite struct {
	suite.Suite
	app            *app.Application
	gateway        *stubGateway
	mailer         *mailer.MockMailer
	db             *pgxpool.Pool
	cache          *redis.Client
	shows          *repository.PostgresShowRepository
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	s.Require().NoError(err, "failed to start DB container")
	s.dbContainer = postgresContainer

	redisContainer, err := getCacheContainer(ctx)
	s.Require().NoError(err, "failed to start cache container")
	s.cacheContainer = redisContainer

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			DSN:          postgresContainer.ConnectionString,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Gateway: app.GatewayConfig{
			Currency: "INR",
			Timeout:  5 * time.Second,
			OrderTTL: 30 * time.Minute,
		},
		Auth: app.AuthConfig{JWTSecret: testJWTSecret},
	}

	s.gateway = newStubGateway(testGatewaySecret)
	s.mailer = mailer.NewMockMailer()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testApp, err := app.New(cfg, logger,
		app.WithPaymentProvider(s.gateway),
		app.WithMailer(s.mailer),
	)
	s.Require().NoError(err, "cannot initialize app")
	s.app = testApp

	// Direct handles for seeding and asserting on stored state.
	s.db, err = pgxpool.New(ctx, postgresContainer.ConnectionString)
	s.Require().NoError(err)
	s.shows = repository.NewPostgresShowRepository(s.db)

	s.cache = redis.NewClient(&redis.Options{Addr: redisContainer.ConnectionString})
}

func (s *BaseSuite) TearDownSuite() {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	if s.app != nil {
		s.app.Close()
	}
	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			s.T().Logf("failed to terminate container: %s", err)
		}
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
			s.T().Logf("failed to terminate container: %s", err)
		}
	}
}

type Scenario struct {
	Name             string
	Method           string
	URL              string
	Body             io.Reader
	Headers          map[string]string
	ExpectedStatus   int
	ExpectedResponse string
	BeforeTestFunc   func(t testing.TB, s *BaseSuite)
	AfterTestFunc    func(t testing.TB, s *BaseSuite, res *http.Response)
}

func (sc Scenario) Run(t *testing.T, s *BaseSuite) {
	t.Run(sc.Name, func(t *testing.T) {
		req := prepareRequest(sc.Method, sc.URL, sc.Body, sc.Headers)

		if sc.BeforeTestFunc != nil {
			sc.BeforeTestFunc(t, s)
		}

		rec := httptest.NewRecorder()
		s.app.Routes().ServeHTTP(rec, req)

		res := rec.Result()
		defer res.Body.Close()

		assert.Equal(t, sc.ExpectedStatus, res.StatusCode)

		if sc.ExpectedResponse != "" {
			compareResponse(t, res.Body, sc.ExpectedResponse)
		}

		if sc.AfterTestFunc != nil {
			sc.AfterTestFunc(t, s, res)
		}
	})
}
