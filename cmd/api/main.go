package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"luggo/internal/auth"
	"luggo/internal/db"
	"luggo/internal/domain/storage"
	"luggo/internal/memstore"
	"luggo/internal/ratelimiter"
	"luggo/internal/session"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %s\n", key, fallback)
	}
	return fallback
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: getEnvInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              getEnvBool("RATE_LIMITER_ENABLED", false),
	}
}

func loadConfig() config {
	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return config{
		addr:        getEnv("ADDR", ":8080"),
		env:         getEnv("ENV", "development"),
		apiURL:      getEnv("EXTERNAL_URL", "localhost:8080"),
		storeDriver: getEnv("STORE_DRIVER", "postgres"),
		corsOrigins: origins,
		db: dbConfig{
			addr:         os.Getenv("DB_ADDR"),
			maxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 30),
			maxIdleTime:  getEnv("DB_MAX_IDLE_TIME", "15m"),
		},
		redis: redisConfig{
			url:        os.Getenv("REDIS_URL"),
			sessionTTL: getEnvDuration("SESSION_TTL", 10*time.Minute),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    time.Hour * 24 * 3, // 3 days
				iss:    getEnv("AUTH_TOKEN_ISS", "luggo"),
				aud:    getEnv("AUTH_TOKEN_AUD", "luggo"),
			},
		},
		seed: seedConfig{
			enabled: getEnvBool("SEED_DEFAULTS", true),
			account: storage.SeedConfig{
				Username:    getEnv("DEFAULT_USER_USERNAME", "demo"),
				Password:    getEnv("DEFAULT_USER_PASSWORD", "demo1234"),
				DisplayName: getEnv("DEFAULT_USER_DISPLAY_NAME", "Demo User"),
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), lvl)

	return zap.New(core).Sugar(), nil
}

var version = "0.4.0"

//	@title			Luggo API
//	@description	Places, reviews, votes and reputation.

//	@contact.name	API Support

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the identity service or /auth/token

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfig()

	logger, err := NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if cfg.auth.token.secret == "" {
		logger.Fatal("AUTH_TOKEN_SECRET must be set")
	}

	ctx := context.Background()

	var (
		store *storage.Container
		pool  *pgxpool.Pool
	)
	switch cfg.storeDriver {
	case "memory":
		store = memstore.New()
		logger.Warn("using in-memory store, data is lost on restart")
	case "postgres":
		pool, err = db.New(ctx, db.Config{
			Addr:         cfg.db.addr,
			MaxOpenConns: int32(cfg.db.maxOpenConns),
			MaxIdleTime:  cfg.db.maxIdleTime,
		})
		if err != nil {
			logger.Fatal(err)
		}
		defer pool.Close()
		logger.Info("database connection pool established")

		if err := storage.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal(err)
		}
		store = storage.NewContainer(pool)
	default:
		logger.Fatalf("unknown STORE_DRIVER %q", cfg.storeDriver)
	}

	if cfg.seed.enabled {
		account, err := storage.Seed(ctx, store, cfg.seed.account)
		if err != nil {
			logger.Fatal(err)
		}
		logger.Infow("default data seeded", "account", account.Username)
	}

	// Session cache
	var sessions *session.RedisStore
	if cfg.redis.url != "" {
		sessions, err = session.NewRedisStore(cfg.redis.url, cfg.redis.sessionTTL)
		if err != nil {
			logger.Fatal(err)
		}
		defer sessions.Close()
		logger.Info("session cache connected")
	}

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.aud,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
	)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		authenticator: jwtAuthenticator,
		verifier:      session.NewVerifier(jwtAuthenticator, sessions, logger),
		rateLimiter:   rateLimiter,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.NewString("store").Set(cfg.storeDriver)
	if pool != nil {
		expvar.Publish("database", expvar.Func(func() any {
			s := pool.Stat()
			return map[string]any{
				"total_conns":    s.TotalConns(),
				"idle_conns":     s.IdleConns(),
				"acquired_conns": s.AcquiredConns(),
				"max_conns":      s.MaxConns(),
			}
		}))
	}
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
