package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vela-games/lfsgate/lfs"
)

func TestBatch(t *testing.T) {
	t.Run("it should post the batch and decode the response", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("POST", "https://lfs.example.com/objects/batch",
			func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, lfs.MediaType, req.Header.Get("Content-Type"))

				batchRequest, err := io.ReadAll(req.Body)
				require.NoError(t, err)
				assert.JSONEq(t, `{"operation":"upload","transfers":["basic"],"objects":[{"oid":"abc123","size":1024}],"hash_algo":"sha256"}`, string(batchRequest))

				return httpmock.NewJsonResponse(200, map[string]interface{}{
					"transfer": "basic",
					"objects": []map[string]interface{}{
						{
							"oid":           "abc123",
							"size":          1024,
							"authenticated": true,
							"actions": map[string]interface{}{
								"upload":   map[string]interface{}{"href": "https://storage.example.com/abc123", "expires_in": 86400},
								"download": map[string]interface{}{"href": ""},
							},
						},
					},
				})
			},
		)

		c := New("https://lfs.example.com/", http.DefaultClient)

		resp, err := c.Batch(context.Background(), &lfs.BatchRequest{
			Operation: "upload",
			Transfers: []string{"basic"},
			Objects:   []lfs.Pointer{{Oid: "abc123", Size: 1024}},
			HashAlgo:  "sha256",
		})
		require.NoError(t, err)

		assert.Equal(t, "basic", resp.Transfer)
		require.Len(t, resp.Objects, 1)
		assert.Equal(t, "https://storage.example.com/abc123", resp.Objects[0].Actions.Upload.Href)
		assert.Equal(t, 86400, resp.Objects[0].Actions.Upload.ExpiresIn)
	})

	t.Run("it should surface protocol errors", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("POST", "https://lfs.example.com/objects/batch",
			httpmock.NewStringResponder(501, `{"message":"unsupported operation: verify is not implemented","request_id":"req-9"}`))

		c := New("https://lfs.example.com", http.DefaultClient)

		_, err := c.Batch(context.Background(), &lfs.BatchRequest{
			Operation: "verify",
			Objects:   []lfs.Pointer{{Oid: "x", Size: 1}},
		})

		var respErr *ResponseError
		require.True(t, errors.As(err, &respErr))
		assert.Equal(t, 501, respErr.StatusCode)
		assert.Equal(t, "unsupported operation: verify is not implemented", respErr.Message)
		assert.Equal(t, "req-9", respErr.RequestID)
	})

	t.Run("it should keep a non json error body", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("POST", "https://lfs.example.com/objects/batch",
			httpmock.NewStringResponder(502, "bad gateway\n"))

		_, err := New("https://lfs.example.com", nil).Batch(context.Background(), &lfs.BatchRequest{Operation: "download"})

		var respErr *ResponseError
		require.True(t, errors.As(err, &respErr))
		assert.Equal(t, "bad gateway", respErr.Message)
	})
}

func uploadObject(href string) *lfs.ObjectResponse {
	return &lfs.ObjectResponse{
		Pointer:       lfs.Pointer{Oid: "abc123", Size: 5},
		Authenticated: true,
		Actions: &lfs.Actions{
			Upload:   &lfs.Link{Href: href, ExpiresIn: 86400},
			Download: &lfs.Link{Href: ""},
		},
	}
}

func TestUpload(t *testing.T) {
	t.Run("it should put the bytes to the upload link", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		var uploaded string
		httpmock.RegisterResponder("PUT", "https://storage.example.com/lfs-objects/abc123",
			func(req *http.Request) (*http.Response, error) {
				data, err := io.ReadAll(req.Body)
				require.NoError(t, err)
				uploaded = string(data)
				return httpmock.NewStringResponse(200, ""), nil
			},
		)

		c := New("https://lfs.example.com", http.DefaultClient)

		err := c.Upload(context.Background(), uploadObject("https://storage.example.com/lfs-objects/abc123"), strings.NewReader("hello"))
		require.NoError(t, err)
		assert.Equal(t, "hello", uploaded)
	})

	t.Run("it should report a failed put", func(t *testing.T) {
		httpmock.Activate()
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("PUT", "https://storage.example.com/lfs-objects/abc123",
			httpmock.NewStringResponder(403, "SignatureDoesNotMatch"))

		c := New("https://lfs.example.com", http.DefaultClient)

		err := c.Upload(context.Background(), uploadObject("https://storage.example.com/lfs-objects/abc123"), strings.NewReader("hello"))
		assert.ErrorContains(t, err, "403")
	})

	t.Run("it should refuse an empty upload link", func(t *testing.T) {
		c := New("https://lfs.example.com", http.DefaultClient)

		err := c.Upload(context.Background(), uploadObject(""), strings.NewReader("hello"))
		assert.ErrorIs(t, err, ErrNoAction)
	})
}

func TestDownload(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://storage.example.com/lfs-objects/abc123",
		httpmock.NewStringResponder(200, "hello"))

	c := New("https://lfs.example.com", http.DefaultClient)

	obj := &lfs.ObjectResponse{
		Pointer: lfs.Pointer{Oid: "abc123", Size: 5},
		Actions: &lfs.Actions{
			Upload:   &lfs.Link{Href: ""},
			Download: &lfs.Link{Href: "https://storage.example.com/lfs-objects/abc123", ExpiresIn: 86400},
		},
	}

	body, err := c.Download(context.Background(), obj)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = c.Download(context.Background(), uploadObject("https://storage.example.com/lfs-objects/abc123"))
	assert.ErrorIs(t, err, ErrNoAction)
}
