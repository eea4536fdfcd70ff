package handler

import (
	"github.com/deppfellow/oddstable/internal/server"
	"github.com/deppfellow/oddstable/internal/service"
)

// Handlers groups every HTTP handler so the router takes a single value.
type Handlers struct {
	Health *HealthHandler
	Odds   *OddsHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Odds:   NewOddsHandler(s, services.Query),
	}
}
