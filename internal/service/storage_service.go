package service

import (
	"context"
	"fmt"
	"net/http"

	config "github.com/maheshrc27/postbridge/configs"
	"github.com/maheshrc27/postbridge/internal/models"
)

// StorageSession is an authenticated view of one account's media folder.
type StorageSession interface {
	ListEligibleFiles(ctx context.Context) ([]models.MediaFile, error)
	// TemporaryLink may return "" with a nil error when the provider has no link.
	TemporaryLink(ctx context.Context, file models.MediaFile) (string, error)
	Delete(ctx context.Context, file models.MediaFile) error
}

type StorageProvider interface {
	Open(ctx context.Context, acc models.Account) (StorageSession, error)
}

type storageProvider struct {
	dropbox *DropboxService
	r2      *R2Service
}

func NewStorageProvider(cfg config.Config, client *http.Client) StorageProvider {
	return &storageProvider{
		dropbox: NewDropboxService(cfg.DropboxTokenURL, client),
		r2:      NewR2Service(cfg.R2, client),
	}
}

func (p *storageProvider) Open(ctx context.Context, acc models.Account) (StorageSession, error) {
	switch acc.StorageProvider {
	case models.StorageDropbox, "":
		return p.dropbox.Open(ctx, acc)
	case models.StorageR2:
		return p.r2.Open(ctx, acc)
	default:
		return nil, fmt.Errorf("%w: unknown storage provider %q", ErrAuth, acc.StorageProvider)
	}
}
