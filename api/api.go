package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/semanticallynull/pipeline-backend/customer"
	"github.com/semanticallynull/pipeline-backend/ingest"
	"github.com/semanticallynull/pipeline-backend/internal/middleware"
	"github.com/semanticallynull/pipeline-backend/internal/o11y"
)

type API struct {
	r   *gin.Engine
	cr  *customer.Repository
	ing *ingest.Ingestor
}

func New(cr *customer.Repository, ing *ingest.Ingestor, obs *o11y.Observability, metricsUsername, metricsPassword string) *API {
	a := &API{
		r:   gin.New(),
		cr:  cr,
		ing: ing,
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.RequestID())
	a.r.Use(middleware.Logging(obs.Logger))
	a.r.Use(middleware.Metrics(obs.Registry))

	a.r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	a.r.POST("/api/ingest", a.ingestHandler)
	a.r.GET("/api/customers", a.listCustomersHandler)
	a.r.GET("/api/customers/:id", a.getCustomerHandler)

	metricsHandler := gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	if metricsUsername != "" {
		a.r.GET("/metrics", gin.BasicAuth(gin.Accounts{metricsUsername: metricsPassword}), metricsHandler)
	} else {
		a.r.GET("/metrics", metricsHandler)
	}

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}
