package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/medassist/medchat/internal/config"
	"github.com/medassist/medchat/internal/metrics"
)

// FieldName is the form field the inference endpoint reads the question from.
const FieldName = "msg"

// Sender delivers one user message and returns the assistant's reply.
type Sender interface {
	Send(ctx context.Context, text string) Result
}

// Client posts messages to the inference endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a client from the client config. A zero timeout leaves
// the request bounded only by ctx.
func NewClient(cfg config.ClientConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP lets tests supply their own http.Client.
func NewClientWithHTTP(cfg config.ClientConfig, httpClient *http.Client) *Client {
	return &Client{
		url:        strings.TrimRight(cfg.BaseURL, "/") + cfg.Endpoint,
		httpClient: httpClient,
	}
}

// URL returns the full endpoint address.
func (c *Client) URL() string {
	return c.url
}

// Send posts text as a single multipart field.
func (c *Client) Send(ctx context.Context, text string) Result {
	start := time.Now()
	res := c.send(ctx, text)

	outcome, status := "success", http.StatusOK
	if f, ok := res.(Failure); ok {
		outcome, status = "failure", f.StatusCode
	}
	metrics.ObserveTransport(outcome, status, time.Since(start))
	return res
}

func (c *Client) send(ctx context.Context, text string) Result {
	body, contentType, err := encodeForm(text)
	if err != nil {
		return Failure{Kind: NetworkError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return Failure{Kind: NetworkError, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failure{Kind: NetworkError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Failure{
			Kind:       NetworkError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failure{Kind: NetworkError, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return Success{Text: string(reply)}
}

func encodeForm(text string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField(FieldName, text); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("encode form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
