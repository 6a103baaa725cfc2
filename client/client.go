// Package client talks to an LFS batch endpoint and moves object bytes
// through the returned links with the basic transfer adapter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vela-games/lfsgate/lfs"
)

// ErrNoAction is returned when an object carries no usable link for the transfer.
var ErrNoAction = errors.New("object has no link for this action")

// ResponseError is a non-200 reply from the batch endpoint.
type ResponseError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *ResponseError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("batch request failed with status %d: %s (request %s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("batch request failed with status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New returns a client for the LFS server at endpoint, e.g.
// https://lfs.example.com or https://git.example.com/repo.git/info/lfs.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: httpClient,
	}
}

// Batch posts req and returns the decoded response.
func (c *Client) Batch(ctx context.Context, req *lfs.BatchRequest) (*lfs.BatchResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, fmt.Errorf("client.Batch encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/objects/batch", &buf)
	if err != nil {
		return nil, fmt.Errorf("client.Batch http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Content-Type", lfs.MediaType)
	httpReq.Header.Set("Accept", lfs.MediaType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client.Batch http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var batchResponse lfs.BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batchResponse); err != nil {
		return nil, fmt.Errorf("client.Batch decode: %w", err)
	}

	return &batchResponse, nil
}

func decodeError(resp *http.Response) error {
	respErr := &ResponseError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}

	data, _ := io.ReadAll(resp.Body)

	var errorResponse lfs.ErrorResponse
	if err := json.Unmarshal(data, &errorResponse); err == nil && errorResponse.Message != "" {
		respErr.Message = errorResponse.Message
		if errorResponse.RequestID != "" {
			respErr.RequestID = errorResponse.RequestID
		}
	} else {
		respErr.Message = strings.TrimSpace(string(data))
	}

	return respErr
}

// Upload PUTs size bytes from r to the object's upload link.
func (c *Client) Upload(ctx context.Context, obj *lfs.ObjectResponse, r io.Reader) error {
	if obj.Actions == nil || obj.Actions.Upload == nil || obj.Actions.Upload.Href == "" {
		return fmt.Errorf("%w: upload %s", ErrNoAction, obj.Oid)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, obj.Actions.Upload.Href, r)
	if err != nil {
		return fmt.Errorf("client.Upload http.NewRequestWithContext: %w", err)
	}
	req.ContentLength = obj.Size
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client.Upload http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("client.Upload %s: unexpected status %d: %s", obj.Oid, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

// Download GETs the object's download link. The caller closes the body.
func (c *Client) Download(ctx context.Context, obj *lfs.ObjectResponse) (io.ReadCloser, error) {
	if obj.Actions == nil || obj.Actions.Download == nil || obj.Actions.Download.Href == "" {
		return nil, fmt.Errorf("%w: download %s", ErrNoAction, obj.Oid)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, obj.Actions.Download.Href, nil)
	if err != nil {
		return nil, fmt.Errorf("client.Download http.NewRequestWithContext: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return nil, fmt.Errorf("client.Download http.Do: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("client.Download %s: unexpected status %d", obj.Oid, resp.StatusCode)
	}

	return resp.Body, nil
}
