package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/vine/config"
	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/events"
	"github.com/Ramsey-B/vine/pkg/graph"
	"github.com/Ramsey-B/vine/pkg/kafka"
	"github.com/Ramsey-B/vine/pkg/middleware"
	"github.com/Ramsey-B/vine/pkg/redis"
	"github.com/Ramsey-B/vine/pkg/routes/health"
	"github.com/Ramsey-B/vine/pkg/routes/inventory"
	"github.com/Ramsey-B/vine/pkg/routes/location"
	"github.com/Ramsey-B/vine/pkg/routes/network"
	"github.com/Ramsey-B/vine/pkg/routes/product"
	"github.com/Ramsey-B/vine/pkg/routes/riskevent"
	"github.com/Ramsey-B/vine/pkg/routes/shipmentroute"
	"github.com/Ramsey-B/vine/pkg/routes/supplier"
	"github.com/Ramsey-B/vine/pkg/routes/tenant"
	"github.com/Ramsey-B/vine/pkg/routes/user"
	"github.com/Ramsey-B/vine/pkg/startup"
	"github.com/Ramsey-B/vine/pkg/tracing"
	"github.com/Ramsey-B/vine/pkg/tracing/exporters"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := buildZapLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)
	logger.WithField("version", cfg.Version).Infof("Starting %s", cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tracerProvider *sdktrace.TracerProvider
	if cfg.TracingEnabled {
		tracerProvider, err = setupTracing(ctx, cfg)
		if err != nil {
			logger.WithError(err).Error("Failed to set up tracing")
			os.Exit(1)
		}
	}

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		logger.WithError(err).Error("Failed to create DI container")
		os.Exit(1)
	}

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
	}
	emitter := events.NewEmitter(producer, logger)

	var (
		db          database.DB
		redisClient *redis.Client
		graphClient *graph.Client
		networkSvc  *graph.NetworkService
		querySvc    *graph.QueryService
		consumer    *kafka.Consumer
	)

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	boot.AddDependency(&startup.Dependency{
		Name: "database",
		StartFunc: func(ctx context.Context) error {
			conn, err := database.Connect(database.ConnectionConfig{
				Driver:          cfg.DatabaseDriver,
				Host:            cfg.DatabaseHost,
				Port:            cfg.DatabasePort,
				UserName:        cfg.DatabaseUserName,
				Password:        cfg.DatabasePassword,
				Name:            cfg.DatabaseName,
				SSLMode:         cfg.DatabaseSSLMode,
				MaxOpenConns:    cfg.DatabaseMaxOpenConns,
				MaxIdleConns:    cfg.DatabaseMaxIdleConns,
				ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
			}, logger)
			if err != nil {
				return err
			}

			driver, err := migratepg.WithInstance(conn.Unsafe().DB, &migratepg.Config{})
			if err != nil {
				return err
			}
			migrations := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
				AutoRollback:        cfg.DatabaseMigrationAutoRollback,
			})
			if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
				return err
			}

			db = conn
			return nil
		},
		StopFunc: func(_ context.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
	})

	if cfg.RedisEnabled {
		boot.AddDependency(&startup.Dependency{
			Name: "redis",
			StartFunc: func(_ context.Context) error {
				client, err := redis.NewClient(redis.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				if err != nil {
					return err
				}
				redisClient = client
				return nil
			},
			StopFunc: func(_ context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Close()
			},
		})
	}

	if cfg.GraphDBEnabled {
		boot.AddDependency(&startup.Dependency{
			Name: "graph",
			StartFunc: func(ctx context.Context) error {
				client, err := graph.NewClient(graph.Config{
					Host:     cfg.GraphDBHost,
					Port:     cfg.GraphDBPort,
					Username: cfg.GraphDBUser,
					Password: cfg.GraphDBPassword,
				}, logger)
				if err != nil {
					return err
				}
				if err := client.VerifyConnectivity(ctx); err != nil {
					_ = client.Close(ctx)
					return err
				}
				graphClient = client
				networkSvc = graph.NewNetworkService(client, logger)
				querySvc = graph.NewQueryService(client, logger)
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if graphClient == nil {
					return nil
				}
				return graphClient.Close(ctx)
			},
		})

		if cfg.KafkaConsumerEnabled {
			boot.AddDependency(&startup.Dependency{
				Name:  "graph-projector",
				Needs: []string{"graph"},
				StartFunc: func(ctx context.Context) error {
					projector := graph.NewProjector(networkSvc, logger)
					consumer = kafka.NewConsumer(kafka.ConsumerConfig{
						Brokers:       cfg.KafkaBrokers,
						Topic:         cfg.KafkaTopic,
						ConsumerGroup: cfg.KafkaConsumerGroup,
					}, logger, projector.HandleMessage)
					return consumer.Start(ctx)
				},
				StopFunc: func(_ context.Context) error {
					if consumer == nil {
						return nil
					}
					return consumer.Stop()
				},
			})
		}
	}

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}

	if err := registerDependencies(container, logger, db, emitter, networkSvc, querySvc, redisClient); err != nil {
		logger.WithError(err).Error("Failed to register dependencies")
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(middleware.Context(!cfg.AuthEnabled))
	if cfg.AuthEnabled {
		e.Use(middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID))
	}
	if cfg.RateLimitEnabled {
		if redisClient != nil {
			limiter := redis.NewRateLimiter(redisClient, "")
			window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
			e.Use(middleware.RateLimit(limiter, cfg.RateLimitRequests, window, logger))
		} else {
			logger.Warn("Rate limiting requires Redis, skipping")
		}
	}
	e.Use(middleware.Logger(logger))

	var graphPinger health.GraphPinger
	if graphClient != nil {
		graphPinger = graphClient
	}
	var redisPinger health.RedisPinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	checker := health.NewChecker(db, graphPinger, redisPinger, cfg.Version)
	checker.Register(e)

	api := e.Group("/api/v1")
	supplier.Register(api.Group("/suppliers"))
	product.Register(api.Group("/products"))
	location.Register(api.Group("/locations"))
	shipmentroute.Register(api.Group("/shipment-routes"))
	riskevent.Register(api.Group("/risk-events"))
	inventory.Register(api.Group("/inventory"))
	user.Register(api.Group("/users"))
	tenant.Register(api.Group("/tenants"))
	network.NewHandler(querySvc, logger).Register(api.Group("/network"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	checker.SetReady(true)
	go func() {
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server stopped unexpectedly")
			stop()
		}
	}()
	logger.Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	<-ctx.Done()
	logger.Info("Shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down server cleanly")
	}
	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to stop dependencies cleanly")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Error("Failed to close Kafka producer")
		}
	}
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to flush traces")
		}
	}
	logger.Info("Shutdown complete")
}

func buildZapLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

func setupTracing(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter
	if cfg.TracingOTLPEndpoint == "" {
		// Spans still record locally without a collector
		exporter = &exporters.NoopExporter{}
	} else {
		var err error
		exporter, err = exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingOTLPEndpoint,
			Protocol: cfg.TracingOTLPProtocol,
			Insecure: cfg.TracingOTLPInsecure,
		})
		if err != nil {
			return nil, err
		}
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.AppName),
		semconv.ServiceVersion(cfg.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return tp, nil
}

// registerDependencies makes the request scoped dependencies available to the
// route handlers, which resolve them from the context.
func registerDependencies(
	container *ectoinject.DIContainer,
	logger ectologger.Logger,
	db database.DB,
	emitter *events.Emitter,
	networkSvc *graph.NetworkService,
	querySvc *graph.QueryService,
	redisClient *redis.Client,
) error {
	if err := ectoinject.AddSingletonInstance[ectologger.Logger](container, logger); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[database.DB](container, db); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*events.Emitter](container, emitter); err != nil {
		return err
	}

	if err := ectoinject.AddSingletonInstance[*repositories.SupplierRepository](container, repositories.NewSupplierRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*repositories.ProductRepository](container, repositories.NewProductRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*repositories.LocationRepository](container, repositories.NewLocationRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*repositories.ShipmentRouteRepository](container, repositories.NewShipmentRouteRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*repositories.RiskEventRepository](container, repositories.NewRiskEventRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*repositories.InventoryRepository](container, repositories.NewInventoryRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*repositories.UserRepository](container, repositories.NewUserRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.AddSingletonInstance[*repositories.TenantRepository](container, repositories.NewTenantRepository(db, logger)); err != nil {
		return err
	}

	if networkSvc != nil {
		if err := ectoinject.AddSingletonInstance[*graph.NetworkService](container, networkSvc); err != nil {
			return err
		}
	}
	if querySvc != nil {
		if err := ectoinject.AddSingletonInstance[*graph.QueryService](container, querySvc); err != nil {
			return err
		}
	}
	if redisClient != nil {
		if err := ectoinject.AddSingletonInstance[*redis.Locker](container, redis.NewLocker(redisClient, "")); err != nil {
			return err
		}
	}

	return nil
}
