package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/omnisent/omnisent/internal/client/models"
	"github.com/omnisent/omnisent/internal/common"
)

// TokenSource supplies the current bearer token on every request; an empty
// string means no credential is attached. Wiring it as a function keeps the
// client decoupled from the session manager.
type TokenSource func() string

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, token TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		token:   token,
	}
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token == nil {
		return
	}
	if t := c.token(); t != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+t)
	}
}

// do performs one JSON round trip. in and out may be nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatus(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// get performs an idempotent GET with a short backoff on server
// unavailability. Auth and client errors are never retried.
func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(250*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if errors.Is(err, common.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	in := map[string]string{"username": username, "password": password}
	var out struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return "", nil, err
	}
	return out.Token, out.User, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, "/api/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Refresh(ctx context.Context) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *HTTPClient) ListFiles(ctx context.Context, path, filter, search string) ([]*models.Resource, error) {
	q := url.Values{}
	if path != "" {
		q.Set("path", path)
	}
	if filter != "" {
		q.Set("filter", filter)
	}
	if search != "" {
		q.Set("search", search)
	}

	endpoint := "/api/files"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var out struct {
		Files []*models.Resource `json:"files"`
	}
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *HTTPClient) GetFile(ctx context.Context, id string) (*models.Resource, error) {
	var out models.Resource
	if err := c.get(ctx, "/api/files/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) RenameFile(ctx context.Context, id, name string) error {
	in := map[string]string{"name": name}
	return c.do(ctx, http.MethodPatch, "/api/files/"+url.PathEscape(id), in, nil)
}

func (c *HTTPClient) MoveFile(ctx context.Context, id, parentID string) error {
	in := map[string]string{"parent_id": parentID}
	return c.do(ctx, http.MethodPatch, "/api/files/"+url.PathEscape(id), in, nil)
}

func (c *HTTPClient) CreateFolder(ctx context.Context, parentID, name string) (*models.Resource, error) {
	in := map[string]string{"parent_id": parentID, "name": name}
	var out models.Resource
	if err := c.do(ctx, http.MethodPost, "/api/files/folders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload streams src as multipart form data. Progress is observed on the
// outgoing file bytes; cancelling ctx aborts the transfer mid-flight.
func (c *HTTPClient) Upload(ctx context.Context, folderID, name string, src io.Reader, size int64, progress func(int)) (*models.Resource, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if folderID != "" {
				if err := writer.WriteField("folder_id", folderID); err != nil {
					return err
				}
			}
			part, err := writer.CreateFormFile("file", name)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, newProgressReader(src, size, progress)); err != nil {
				return err
			}
			return writer.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapStatus(resp)
	}

	var res models.Resource
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) CreateShare(ctx context.Context, id string, opts models.ShareOptions) (*models.Share, error) {
	var out models.Share
	if err := c.do(ctx, http.MethodPost, "/api/files/"+url.PathEscape(id)+"/share", opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListVersions(ctx context.Context, id string) ([]*models.Version, error) {
	var out struct {
		Versions []*models.Version `json:"versions"`
	}
	if err := c.get(ctx, "/api/files/"+url.PathEscape(id)+"/versions", &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

func (c *HTTPClient) ListActivity(ctx context.Context, id string) ([]*models.Activity, error) {
	var out struct {
		Activities []*models.Activity `json:"activities"`
	}
	if err := c.get(ctx, "/api/files/"+url.PathEscape(id)+"/activity", &out); err != nil {
		return nil, err
	}
	return out.Activities, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (*models.StorageStats, error) {
	var out models.StorageStats
	if err := c.get(ctx, "/api/files/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
