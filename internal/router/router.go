// Package router builds the echo instance of the query API: global
// middleware, the error handler and the route groups.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oddstable/internal/handler"
	"github.com/deppfellow/oddstable/internal/middleware"
	"github.com/deppfellow/oddstable/internal/server"
)

// NewRouter wires middleware and routes. The request ID comes first since
// tracing, the request logger and the rate limiter all read it.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.CORS(),
		mw.Global.Secure(),
		mw.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerOddsRoutes(v1, h)

	return router
}

func registerOddsRoutes(g *echo.Group, h *handler.Handlers) {
	g.GET("/odds", handler.Handle(
		h.Odds.Handler,
		h.Odds.ScanOdds,
		http.StatusOK,
		func() *handler.ScanOddsRequest { return &handler.ScanOddsRequest{} },
	))

	g.GET("/odds/:rowkey", handler.Handle(
		h.Odds.Handler,
		h.Odds.GetOdds,
		http.StatusOK,
		func() *handler.GetOddsRequest { return &handler.GetOddsRequest{} },
	))
}
