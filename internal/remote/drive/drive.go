// Package drive implements the remote.Store contract on top of the Google
// Drive v3 API. The client is scoped to drive.file, so it only ever sees
// files this application created.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/coacherp/coacherp/internal/remote"
)

// Ensure Client implements remote.Store
var _ remote.Store = (*Client)(nil)

// Client talks to Google Drive through an OAuth-authorized HTTP client.
type Client struct {
	svc *drivev3.Service
}

// New creates a Drive client. httpClient must carry the user's grant
// (typically an oauth2 client backed by the auth session's token source).
func New(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := drivev3.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// List returns the non-trashed files matching the exact name.
func (c *Client) List(ctx context.Context, name string) ([]remote.File, error) {
	q := fmt.Sprintf("name='%s' and trashed=false", escapeQuery(name))
	res, err := c.svc.Files.List().
		Q(q).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapErr("list files", err)
	}

	files := make([]remote.File, len(res.Files))
	for i, f := range res.Files {
		files[i] = remote.File{ID: f.Id, Name: f.Name}
	}
	return files, nil
}

// Download returns the full content of the file.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	res, err := c.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, wrapErr("download file", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("download file: read body: %w", err)
	}
	return data, nil
}

// Create creates a new empty file and returns its id.
func (c *Client) Create(ctx context.Context, name, mimeType string) (string, error) {
	f, err := c.svc.Files.Create(&drivev3.File{Name: name, MimeType: mimeType}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapErr("create file", err)
	}
	return f.Id, nil
}

// Upload overwrites the file's content entirely.
func (c *Client) Upload(ctx context.Context, id string, content []byte, contentType string) error {
	_, err := c.svc.Files.Update(id, &drivev3.File{}).
		Media(bytes.NewReader(content), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("upload file", err)
	}
	return nil
}

// wrapErr maps provider errors onto the remote error taxonomy. A 401 from
// the API or a token refresh failure both mean the grant is dead.
func wrapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w: %v", op, remote.ErrUnauthorized, err)
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%s: %w: %v", op, remote.ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func escapeQuery(name string) string {
	return strings.ReplaceAll(name, `'`, `\'`)
}
