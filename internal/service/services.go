package service

import (
	"github.com/deppfellow/oddstable/internal/repository"
	"github.com/deppfellow/oddstable/internal/server"
)

type Services struct {
	Ingest *IngestService
	Query  *QueryService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	ingest, err := NewIngestService(s, repos.Odds)
	if err != nil {
		return nil, err
	}

	return &Services{
		Ingest: ingest,
		Query:  NewQueryService(s, repos.Odds),
	}, nil
}
