package exporter

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type GatewayCollector struct {
	CacheHits     metrics.Counter
	CacheMiss     metrics.Counter
	BatchRequests metrics.Counter
	ObjectsSigned metrics.Counter
	Rejections    metrics.Counter
}

// NewCollector registers the gateway counters on reg. Passing a fresh
// stdprometheus.NewRegistry() keeps tests independent of the default registry.
func NewCollector(reg stdprometheus.Registerer) *GatewayCollector {
	return &GatewayCollector{
		CacheHits: counter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsgate",
			Name:      "url_cache_hit",
			Help:      "Signed URL Cache Hits",
		}),
		CacheMiss: counter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsgate",
			Name:      "url_cache_miss",
			Help:      "Signed URL Cache Misses",
		}),
		BatchRequests: counter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsgate",
			Name:      "batch_requests_total",
			Help:      "Batch requests by operation",
		}, "operation"),
		ObjectsSigned: counter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsgate",
			Name:      "objects_signed_total",
			Help:      "Objects that received a signed URL, by operation",
		}, "operation"),
		Rejections: counter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsgate",
			Name:      "batch_rejections_total",
			Help:      "Rejected batch requests by error kind",
		}, "kind"),
	}
}

func counter(reg stdprometheus.Registerer, opts stdprometheus.CounterOpts, labels ...string) metrics.Counter {
	cv := stdprometheus.NewCounterVec(opts, labels)
	reg.MustRegister(cv)
	return prometheus.NewCounter(cv)
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
