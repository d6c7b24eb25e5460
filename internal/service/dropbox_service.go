package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/maheshrc27/postbridge/internal/models"
	"golang.org/x/oauth2"
)

// dropboxFiles is the subset of files.Client the session needs.
type dropboxFiles interface {
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	GetTemporaryLink(arg *files.GetTemporaryLinkArg) (*files.GetTemporaryLinkResult, error)
	DeleteV2(arg *files.DeleteArg) (*files.DeleteResult, error)
}

type DropboxService struct {
	tokenURL string
	client   *http.Client
}

func NewDropboxService(tokenURL string, client *http.Client) *DropboxService {
	if client == nil {
		client = http.DefaultClient
	}
	return &DropboxService{tokenURL: tokenURL, client: client}
}

// RefreshAccessToken exchanges a long-lived refresh token for a short-lived
// access token.
func (s *DropboxService) RefreshAccessToken(ctx context.Context, refreshToken, appKey, appSecret string) (string, error) {
	conf := &oauth2.Config{
		ClientID:     appKey,
		ClientSecret: appSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}

	return token.AccessToken, nil
}

func (s *DropboxService) Open(ctx context.Context, acc models.Account) (StorageSession, error) {
	accessToken, err := s.RefreshAccessToken(ctx, acc.DropboxRefreshToken, acc.DropboxAppKey, acc.DropboxAppSecret)
	if err != nil {
		return nil, err
	}

	// The SDK ignores Token when a Client is set, so the client carries it.
	authClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, s.client),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)
	authClient.Timeout = s.client.Timeout

	api := files.New(dropbox.Config{
		Token:    accessToken,
		LogLevel: dropbox.LogOff,
		Client:   authClient,
	})

	return newDropboxSession(acc.Folder, api), nil
}

type dropboxSession struct {
	folder string
	api    dropboxFiles
}

func newDropboxSession(folder string, api dropboxFiles) *dropboxSession {
	// The API addresses the root folder as "".
	if folder == "/" {
		folder = ""
	}
	return &dropboxSession{folder: folder, api: api}
}

func (d *dropboxSession) ListEligibleFiles(ctx context.Context) ([]models.MediaFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrList, err)
	}

	res, err := d.api.ListFolder(files.NewListFolderArg(d.folder))
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %s: %w", ErrList, d.folder, err)
	}

	var eligible []models.MediaFile
	for {
		for _, entry := range res.Entries {
			meta, ok := entry.(*files.FileMetadata)
			if !ok {
				continue
			}
			path := meta.PathLower
			if path == "" {
				path = meta.PathDisplay
			}
			if f, ok := NewMediaFile(meta.Name, path); ok {
				eligible = append(eligible, f)
			}
		}

		if !res.HasMore {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrList, err)
		}
		res, err = d.api.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("%w: %s: %w", ErrList, d.folder, err)
		}
	}

	return eligible, nil
}

func (d *dropboxSession) TemporaryLink(ctx context.Context, file models.MediaFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := d.api.GetTemporaryLink(files.NewGetTemporaryLinkArg(file.Path))
	if err != nil {
		return "", fmt.Errorf("error getting temporary link for %s: %w", file.Name, err)
	}
	if res == nil {
		return "", nil
	}
	return res.Link, nil
}

func (d *dropboxSession) Delete(ctx context.Context, file models.MediaFile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	if _, err := d.api.DeleteV2(files.NewDeleteArg(file.Path)); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: %s: %w", ErrDelete, file.Path, err)
	}
	return nil
}
