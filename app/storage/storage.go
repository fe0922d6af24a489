// Package storage talks to the Supabase-compatible object store holding
// article images. Object identifiers are derived from stored public URLs
// by decoding the path segment after the bucket marker.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ImageStore is the object storage surface the handlers and the
// reconciliation task consume.
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	ObjectNameFromURL(rawURL string) (string, error)
}

var _ ImageStore = (*Client)(nil)

// Client implements ImageStore against the Supabase Storage HTTP API.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewClient(baseURL, serviceKey, bucket string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores an object and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return c.PublicURL(name), nil
}

// PublicURL returns the public URL an uploaded object is served from.
func (c *Client) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, name)
}

func (c *Client) Delete(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// List returns the names of all objects in the bucket.
func (c *Client) List(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", c.baseURL, c.bucket)

	payload, err := json.Marshal(map[string]any{
		"prefix": "",
		"limit":  10000,
		"offset": 0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("list failed with status %d: %s", resp.StatusCode, string(body))
	}

	var objects []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, fmt.Errorf("failed to decode object list: %w", err)
	}

	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}

	return names, nil
}

// ObjectNameFromURL decodes the object name from a stored public URL. The
// name is the path segment following the "/<bucket>/" marker.
func (c *Client) ObjectNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse image URL: %w", err)
	}

	marker := "/" + c.bucket + "/"
	parts := strings.SplitN(u.EscapedPath(), marker, 2)
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("image URL %q does not contain bucket marker %q", rawURL, marker)
	}

	name, err := url.PathUnescape(parts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode object name: %w", err)
	}

	return name, nil
}
