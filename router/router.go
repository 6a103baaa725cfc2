package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/vela-games/lfsgate/config"
	"github.com/vela-games/lfsgate/exporter"
	"github.com/vela-games/lfsgate/handlers"
	"go.uber.org/zap"
)

// WriteTimeout bounds a whole batch request, URL signing included.
const WriteTimeout = 30 * time.Second

type Router struct {
	engine   *gin.Engine
	logger   *zap.Logger
	registry stdprometheus.Registerer
}

func NewRouter(logger *zap.Logger) Router {
	if viper.GetBool("debug_mode") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	gin := gin.Default()
	gin.Use(cors.Default())
	gin.Use(handlers.RequestID())

	return Router{
		engine:   gin,
		logger:   logger,
		registry: stdprometheus.DefaultRegisterer,
	}
}

func (r Router) InitRoutes(ctx context.Context, cfg *config.Config) error {
	healthHandler := handlers.HealthHandler{Backend: cfg.StorageBackend}

	promCollector := exporter.NewCollector(r.registry)

	lfsHandler, err := handlers.NewLFSHandler(ctx, cfg, promCollector, r.logger)
	if err != nil {
		return err
	}

	r.engine.Use(gzip.Gzip(gzip.DefaultCompression))
	r.engine.GET("/health", healthHandler.Get)
	r.engine.POST("/objects/batch", timeout(WriteTimeout), lfsHandler.PostBatch)
	r.engine.POST("/info/lfs/objects/batch", timeout(WriteTimeout), lfsHandler.PostBatch)

	if cfg.EnablePrometheusExporter {
		r.engine.GET("/metrics", exporter.PrometheusHandler())
	}

	return nil
}

// timeout gives the request context a deadline so signing stops when the
// server would no longer be able to write the response.
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (r Router) Handler() http.Handler {
	return r.engine
}

func (r Router) Run(ctx context.Context, portBinding string) error {
	srv := &http.Server{
		Addr:              portBinding,
		Handler:           r.engine,
		IdleTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      WriteTimeout + 5*time.Second,
	}

	go r.listen(srv)
	<-ctx.Done()
	r.logger.Info("shutting down server")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(timeoutCtx); err != nil {
		return err
	}

	return nil
}

func (r Router) listen(srv *http.Server) {
	r.logger.Info("listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		r.logger.Fatal("error trying to listen", zap.Error(err))
	}
}
