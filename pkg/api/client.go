package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/crlszmr/vuln-scanner-sub000/pkg/stream"
)

// Client talks to the platform backend. All import, matching and
// deletion work happens server-side; this client only issues control
// calls and reads results.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	token string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken attaches a bearer token to every request. An expired token
// is still attached; the backend is the authority on rejection.
func (c *Client) SetToken(token string) {
	c.token = token

	if exp, err := TokenExpiry(token); err == nil && time.Now().After(exp) {
		logrus.Warnf("stored session token expired at %s, log in again", exp.Format(time.RFC3339))
	}
}

func (c *Client) Token() string {
	return c.token
}

// Header returns the request headers a stream connection should carry.
func (c *Client) Header() http.Header {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	return header
}

// URL joins a backend path onto the base URL.
func (c *Client) URL(path string) string {
	return c.BaseURL + path
}

// TokenExpiry reads the exp claim without verifying the signature. The
// console never validates tokens, it only warns before the backend
// rejects one.
func TokenExpiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}

	return exp.Time, nil
}

// Login authenticates against the backend and returns the access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	body, err := c.do(ctx, http.MethodPost, "/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", fmt.Errorf("no access token received")
	}

	c.token = token
	return token, nil
}

// StartImport launches the backend import job behind path. A non-2xx
// response is a failure to launch.
func (c *Client) StartImport(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// StopImport asks the backend to halt the import job. Callers treat the
// result as best-effort.
func (c *Client) StopImport(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// JobStatus is the poll-endpoint snapshot of a running job, used to
// bridge a reconnect until the stream delivers fresh data.
type JobStatus struct {
	Running    bool
	Imported   int
	Total      int
	Percentage float64
	Label      string
	Count      string
	Current    string
}

// ImportStatus queries the companion status endpoint of a stream.
func (c *Client) ImportStatus(ctx context.Context, path string) (JobStatus, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return JobStatus{}, err
	}

	value := gjson.ParseBytes(body)
	status := JobStatus{
		Running:    value.Get("running").Bool(),
		Imported:   stream.LocaleInt(value.Get("imported")),
		Total:      stream.LocaleInt(value.Get("total")),
		Percentage: stream.LocaleFloat(value.Get("percentage")),
		Label:      value.Get("label").String(),
		Count:      value.Get("count").String(),
		Current:    value.Get("current").String(),
	}

	return status, nil
}

// Count returns the number of stored entries behind a count endpoint.
func (c *Client) Count(ctx context.Context, path string) (int, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	return stream.LocaleInt(gjson.GetBytes(body, "count")), nil
}

// DeleteAll removes every stored entry of a resource kind.
func (c *Client) DeleteAll(ctx context.Context, path string) error {
	body, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	if status := gjson.GetBytes(body, "status").String(); status != "" && status != "deleted" {
		return fmt.Errorf("unexpected delete status %q", status)
	}

	return nil
}

// Platform is one CPE dictionary entry as listed by the backend.
type Platform struct {
	ID           int
	CpeURI       string
	Deprecated   bool
	LastModified string
}

// ListPlatforms fetches the stored CPE entries.
func (c *Client) ListPlatforms(ctx context.Context) ([]Platform, error) {
	body, err := c.do(ctx, http.MethodGet, "/nvd/cpe-list", nil)
	if err != nil {
		return nil, err
	}

	var platforms []Platform
	gjson.ParseBytes(body).ForEach(func(_, item gjson.Result) bool {
		platforms = append(platforms, Platform{
			ID:           int(item.Get("id").Int()),
			CpeURI:       item.Get("cpe_uri").String(),
			Deprecated:   item.Get("deprecated").Bool(),
			LastModified: item.Get("last_modified").String(),
		})
		return true
	})

	return platforms, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), payload)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = res.Status
		}
		return nil, fmt.Errorf("%s %s: %s", method, path, detail)
	}

	return body, nil
}
