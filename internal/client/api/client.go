// Package api implements the REST client for the Omnisent backend.
// This file defines the transport-agnostic client interface; http.go holds
// the HTTP implementation.
package api

import (
	"context"
	"io"

	"github.com/omnisent/omnisent/internal/client/models"
)

// Client defines the backend operations used by the rest of the client.
//
// Contract:
//   - Login: exchange username/password for a bearer token and user record.
//   - Me / Refresh / Logout: session lifecycle.
//   - ListFiles and the file CRUD calls operate on resource records; the
//     backend is the permission authority and may refuse any of them.
//   - Upload streams a file as multipart form data; progress (0–100) is
//     reported through the callback as request bytes go out, and the
//     transfer aborts when ctx is cancelled.
//   - CreateShare / ListVersions / ListActivity / Stats cover sharing,
//     version history, the activity log and storage usage.
//
// All methods honor context cancellation and map transport failures onto
// the sentinel errors in internal/common.
type Client interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Me(ctx context.Context) (*models.User, error)
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error

	ListFiles(ctx context.Context, path, filter, search string) ([]*models.Resource, error)
	GetFile(ctx context.Context, id string) (*models.Resource, error)
	DeleteFile(ctx context.Context, id string) error
	RenameFile(ctx context.Context, id, name string) error
	MoveFile(ctx context.Context, id, parentID string) error
	CreateFolder(ctx context.Context, parentID, name string) (*models.Resource, error)

	Upload(ctx context.Context, folderID, name string, src io.Reader, size int64, progress func(int)) (*models.Resource, error)

	CreateShare(ctx context.Context, id string, opts models.ShareOptions) (*models.Share, error)
	ListVersions(ctx context.Context, id string) ([]*models.Version, error)
	ListActivity(ctx context.Context, id string) ([]*models.Activity, error)
	Stats(ctx context.Context) (*models.StorageStats, error)

	Close() error
}
