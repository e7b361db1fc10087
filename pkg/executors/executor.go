package executors

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/lunchsync/pkg/models"
)

// Uploader sends transactions to a budgeting service.
//
//go:generate mockgen -destination=mocks/mock_uploader.go -package=mocks -source=executor.go Uploader
type Uploader interface {
	Name() string
	Upload(ctx context.Context, uploads []models.Upload) (*models.UploadResult, error)
}

type Executor struct {
	logger   *log.Logger
	uploader Uploader
}

func New(logger *log.Logger, uploader Uploader) *Executor {
	return &Executor{
		logger:   logger,
		uploader: uploader,
	}
}
