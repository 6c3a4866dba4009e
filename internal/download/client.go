// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ProgressFunc receives transfer progress. total is -1 when the origin
// does not announce a content length.
type ProgressFunc func(loaded, total int64)

// Client talks to the Flowmart gateway on behalf of the orchestrator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a gateway client rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// TransferResult is the outcome of a successful product transfer.
type TransferResult struct {
	Data     []byte
	FileName string
}

// Transfer fetches the product payload, reporting progress as bytes
// arrive. The suggested file name comes from Content-Disposition when
// the gateway sends one.
func (c *Client) Transfer(ctx context.Context, productID string, onProgress ProgressFunc) (*TransferResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/downloads/"+productID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	var loaded int64
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			loaded += int64(n)
			if onProgress != nil {
				onProgress(loaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transfer interrupted: %w", err)
		}
	}

	return &TransferResult{
		Data:     buf.Bytes(),
		FileName: fileNameFromDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

func fileNameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// TrackDownload records a download event for the product. Callers treat
// failures as best effort.
func (c *Client) TrackDownload(ctx context.Context, productID string) error {
	return c.postJSON(ctx, "/downloads/track", map[string]string{
		"productId": productID,
	})
}

// CaptureUser records the gate email against the product. Callers treat
// failures as best effort.
func (c *Client) CaptureUser(ctx context.Context, email, productID, productTitle string) error {
	return c.postJSON(ctx, "/users/capture", map[string]string{
		"email":        email,
		"productId":    productID,
		"productTitle": productTitle,
	})
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return nil
}
