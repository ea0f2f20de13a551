package webdav

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/krau/ocw-saver/pkg/enums/ctxkey"
)

// Client speaks the small WebDAV subset needed to lay out a download tree.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	httpClient *http.Client
}

type WebdavMethod string

const (
	WebdavMethodMkcol    WebdavMethod = "MKCOL"
	WebdavMethodPropfind WebdavMethod = "PROPFIND"
	WebdavMethodPut      WebdavMethod = "PUT"
)

func NewClient(baseURL, username, password string, httpClient *http.Client) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:    baseURL,
		Username:   username,
		Password:   password,
		httpClient: httpClient,
	}
}

// urlFor appends remotePath to the base url; url.URL takes care of escaping.
func (c *Client) urlFor(remotePath string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(u.Path, strings.Trim(remotePath, "/"))
	return u.String(), nil
}

func (c *Client) doRequest(ctx context.Context, method WebdavMethod, remotePath string, body io.Reader) (*http.Response, error) {
	target, err := c.urlFor(remotePath)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, string(method), target, body)
	if err != nil {
		return nil, err
	}
	if c.Username != "" && c.Password != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}
	if method == WebdavMethodPropfind {
		req.Header.Set("Depth", "0")
	}
	if method == WebdavMethodPut {
		if l, ok := ctx.Value(ctxkey.ContentLength).(int64); ok && l > 0 {
			req.ContentLength = l
		}
	}
	return c.httpClient.Do(req)
}

func (c *Client) Exists(ctx context.Context, remotePath string) (bool, error) {
	resp, err := c.doRequest(ctx, WebdavMethodPropfind, remotePath, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("PROPFIND: %s", resp.Status)
}

// MkDir creates every missing level of dirPath and reports whether the last one was created by this call.
func (c *Client) MkDir(ctx context.Context, dirPath string) (bool, error) {
	dirPath = strings.Trim(dirPath, "/")
	if dirPath == "" {
		return false, nil
	}
	parts := strings.Split(dirPath, "/")
	currentPath := ""
	created := false
	for i, part := range parts {
		if i > 0 {
			currentPath += "/"
		}
		currentPath += part

		exists, err := c.Exists(ctx, currentPath)
		if err != nil {
			return false, err
		}
		if exists {
			created = false
			continue
		}
		created, err = c.mkcol(ctx, currentPath)
		if err != nil {
			return false, err
		}
	}
	return created, nil
}

// mkcol treats 405 as "already exists", which is what servers answer when a concurrent MKCOL won.
func (c *Client) mkcol(ctx context.Context, dirPath string) (bool, error) {
	resp, err := c.doRequest(ctx, WebdavMethodMkcol, dirPath, nil)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusMethodNotAllowed:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("MKCOL %s: %s", dirPath, resp.Status)
	}
	return true, nil
}

func (c *Client) WriteFile(ctx context.Context, remotePath string, content io.Reader) error {
	resp, err := c.doRequest(ctx, WebdavMethodPut, remotePath, content)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("PUT: %s", resp.Status)
}
