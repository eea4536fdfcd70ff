package repository

import (
	"github.com/deppfellow/oddstable/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Odds *OddsRepository
}

// NewRepositories constructs the repository container on the server's
// database handle.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Odds: NewOddsRepository(s.DB),
	}
}
