// Package api is the REST side of the game server contract. Calls use the
// session cookie; state changes caused by commands arrive later as push
// messages, so command responses are only inspected for errors and ids.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxBody = 1 << 20

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Upload *Upload
}

func (r Request) String() string { return r.Method + " " + r.Path }

type Upload struct {
	Field    string
	Filename string
	Content  []byte
	Fields   map[string]string
}

type Client struct {
	base    *url.URL
	http    *http.Client
	log     *zap.Logger
	timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{base: base, log: zap.NewNop(), timeout: 10 * time.Second}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http = &http.Client{Jar: jar}
	}
	return c, nil
}

// HTTPClient is shared with the websocket dialer so both carry the session cookie.
func (c *Client) HTTPClient() *http.Client { return c.http }

// SetSession stores a session cookie for the API host.
func (c *Client) SetSession(name, value string) {
	if c.http.Jar == nil || value == "" {
		return
	}
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

// Do performs the request. On success and a non-nil out the body is decoded
// into out; the raw body is returned either way.
func (c *Client) Do(ctx context.Context, req Request, out any) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	hreq, err := c.build(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req, err)
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		c.log.Debug("request failed", zap.Stringer("request", req), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", req, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", req, err)
	}
	c.log.Debug("request",
		zap.Stringer("request", req),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if apiErr := parseError(resp.StatusCode, body); apiErr != nil {
		return body, apiErr
	}
	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return body, fmt.Errorf("%s: decode: %w", req, err)
		}
	}
	return body, nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	// Paths carry escaped ids, so parse rather than assign to URL.Path.
	ref, err := url.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return nil, err
	}
	u := c.base.ResolveReference(ref)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Upload != nil:
		buf, ct, err := encodeMultipart(req.Upload)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Accept", "application/json")
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	return hreq, nil
}

func encodeMultipart(up *Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range up.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	field := up.Field
	if field == "" {
		field = "file"
	}
	fw, err := w.CreateFormFile(field, up.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(up.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
