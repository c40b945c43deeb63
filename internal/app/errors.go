package service

import (
	"errors"

	"github.com/okian/ratecards/internal/adapters/repository"
)

// Sentinel kinds for the pipeline service.
var (
	ErrRunInProgress = repository.ErrRunInProgress
	ErrNoSource      = errors.New("no extraction engine configured")
	ErrDocuments     = errors.New("documents failed structural checks")
	ErrNoSilver      = errors.New("no silver dataset configured")
)
