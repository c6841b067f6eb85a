// Package graph stores documents in a OneDrive drive through the Microsoft Graph API,
// authenticating with the OAuth2 client-credentials grant.
package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
)

var _ model.DocumentStorage = (*Client)(nil)

// maxErrorBody bounds how much of an error response is kept in error messages.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scope        string
	BaseURL      string
	DriveUser    string
	ContentType  string
	Timeout      time.Duration
}

// Client downloads and uploads whole documents addressed by drive path.
// A token is requested for every operation; none is kept between calls.
type Client struct {
	credentials *clientcredentials.Config
	httpClient  *http.Client
	baseURL     string
	driveUser   string
	contentType string
	logger      *logger.Logger
}

// NewClient creates a new Graph document client.
func NewClient(opts Options, logger *logger.Logger) *Client {
	return &Client{
		credentials: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			Scopes:       []string{opts.Scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		driveUser:   opts.DriveUser,
		contentType: opts.ContentType,
		logger:      logger,
	}
}

// Download fetches the document at key. It returns model.ErrNotFound on 404.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download document: %w", model.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, model.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		defer resp.Body.Close()
		return nil, statusError("download", resp)
	}

	c.logger.Debug("Graph client: document downloaded",
		"path", key,
		"status", resp.StatusCode)

	return resp.Body, nil
}

// Upload overwrites the document at key with the content of reader.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentURL(key), reader)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	token.SetAuthHeader(req)
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to upload document: %w", model.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("upload", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("Graph client: document uploaded",
		"path", key,
		"status", resp.StatusCode)

	return nil
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.credentials.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			c.logger.Error("Graph client: identity provider rejected credentials",
				"status", retrieveErr.Response.StatusCode,
				"error_code", retrieveErr.ErrorCode)
		}
		return nil, fmt.Errorf("%w: failed to obtain access token: %w", model.ErrAuth, err)
	}
	return token, nil
}

// contentURL addresses a drive item by path: /users/{user}/drive/root:/{path}:/content.
func (c *Client) contentURL(key string) string {
	segments := strings.Split(strings.Trim(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/users/%s/drive/root:/%s:/content",
		c.baseURL, url.PathEscape(c.driveUser), strings.Join(segments, "/"))
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("%w: %s failed with status %d", model.ErrTransport, op, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s failed with status %d: %s", model.ErrTransport, op, resp.StatusCode, msg)
}
