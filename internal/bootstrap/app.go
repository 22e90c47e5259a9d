package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gunagantinikhil/code-cast1/internal/execution"
	httpHandler "github.com/gunagantinikhil/code-cast1/internal/handler/http"
	wsHandler "github.com/gunagantinikhil/code-cast1/internal/handler/websocket"
	"github.com/gunagantinikhil/code-cast1/internal/hub"
	"github.com/gunagantinikhil/code-cast1/internal/infra/setup"
	"github.com/gunagantinikhil/code-cast1/internal/middleware"
	"github.com/gunagantinikhil/code-cast1/internal/registry"
	"github.com/gunagantinikhil/code-cast1/internal/service"
)

// App holds the assembled server.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	RedisClient *redis.Client
	Registry    *registry.Registry
	Hub         *hub.Hub
	Router      *gin.Engine
	HttpServer  *http.Server
	LocalIP     string
}

// NewApp wires every component from cfg. Redis is only contacted when REDIS_ADDR is set.
func NewApp(ctx context.Context, cfg *Config) (*App, error) {
	log := newLogger(cfg)
	log.Info("Configuration loaded successfully")

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		client, err := setup.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
		redisClient = client
	} else {
		log.Warn("REDIS_ADDR not set, /compile is not rate limited")
	}

	rooms := registry.New(cfg.ActivityHistoryLimit)

	// The hub is both the dispatcher's transport and the sync service's caller.
	var hubInstance *hub.Hub
	dispatcher := service.NewDispatcher(service.TransportFunc(func(connID string, frame []byte) bool {
		return hubInstance.Deliver(connID, frame)
	}))
	syncService := service.NewSyncService(rooms, dispatcher)
	hubInstance = hub.NewHub(syncService, hub.Config{
		MaxMessageBytes: cfg.WSMaxMessageBytes,
		EventsPerSecond: cfg.WSEventsPerSecond,
		EventBurst:      cfg.WSEventBurst,
	})

	var executor service.Executor
	if cfg.ExecutionConfigured() {
		executor = execution.NewClient(cfg.JDoodleEndpoint, cfg.JDoodleClientID, cfg.JDoodleClientSecret, cfg.ExecTimeout)
	} else {
		log.Warn("JDoodle credentials missing, /compile will report the compiler as not configured")
	}
	execService := service.NewExecutionService(executor, cfg.ExecTimeout)

	localIP := LocalNetworkIP()
	origins := middleware.NewOriginPolicy(localIP, cfg.CORSAllowedOrigins)

	router := newRouter(cfg, log, routerDeps{
		origins:     origins,
		redisClient: redisClient,
		ws:          wsHandler.NewWebSocketHandler(hubInstance, origins.Allow),
		compile:     httpHandler.NewCompileHandler(execService),
		room:        httpHandler.NewRoomHandler(syncService),
	})

	return &App{
		Config:      cfg,
		Log:         log,
		RedisClient: redisClient,
		Registry:    rooms,
		Hub:         hubInstance,
		Router:      router,
		HttpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		LocalIP: localIP,
	}, nil
}

func newLogger(cfg *Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	log.Infof("Logger initialized (Level: %s, Format: %T)", level.String(), log.Formatter)
	return log
}

type routerDeps struct {
	origins     *middleware.OriginPolicy
	redisClient *redis.Client
	ws          *wsHandler.WebSocketHandler
	compile     *httpHandler.CompileHandler
	room        *httpHandler.RoomHandler
}

func newRouter(cfg *Config, log *logrus.Logger, deps routerDeps) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(middleware.CORS(deps.origins))

	router.GET("/ws", deps.ws.HandleConnection)

	compile := []gin.HandlerFunc{deps.compile.Compile}
	if deps.redisClient != nil {
		compile = append([]gin.HandlerFunc{middleware.RateLimit(deps.redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow)}, compile...)
	}
	router.POST("/compile", compile...)

	api := router.Group("/api")
	{
		api.GET("/rooms", deps.room.ListRooms)
		api.GET("/rooms/:roomId", deps.room.GetRoom)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// Run serves until ctx is cancelled, then shuts the HTTP server down, stops the hub and
// closes Redis.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.Log.Infof("Server is running on port %s", a.Config.ServerPort)
		a.Log.Infof("Local access: http://localhost:%s", a.Config.ServerPort)
		if a.LocalIP != "" {
			a.Log.Infof("LAN access: http://%s:%s", a.LocalIP, a.Config.ServerPort)
		}
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down application...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.HttpServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Errorf("Error shutting down HTTP server: %v", err)
		} else {
			a.Log.Info("HTTP server shut down gracefully.")
		}
		if a.RedisClient != nil {
			if err := a.RedisClient.Close(); err != nil {
				a.Log.Errorf("Error closing Redis connection: %v", err)
			}
		}
		return nil
	})

	err := g.Wait()
	a.Log.Info("Application shutdown complete.")
	return err
}

// LoggerMiddleware logs every request through logrus.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
