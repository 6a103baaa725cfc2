// Package lfs holds the Git LFS Batch API schema and builds batch responses.
//
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md
package lfs

const (
	// MediaType is the content type of every batch request and response body.
	MediaType = "application/vnd.git-lfs+json"

	// TransferBasic is the only transfer adapter this server offers.
	TransferBasic = "basic"

	// DefaultExpiresIn is the expires_in advertised when none is configured.
	DefaultExpiresIn = 86400
)

// BatchRequest contains multiple requests processed in one batch operation.
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#requests
type BatchRequest struct {
	Operation string     `json:"operation"`
	Transfers []string   `json:"transfers,omitempty"`
	Ref       *Reference `json:"ref,omitempty"`
	Objects   []Pointer  `json:"objects"`
	HashAlgo  string     `json:"hash_algo,omitempty"`
}

// Reference contains a git reference. It is accepted and ignored.
type Reference struct {
	Name string `json:"name"`
}

// Pointer identifies an LFS object.
type Pointer struct {
	Oid  string `json:"oid"`
	Size int64  `json:"size"`
}

// BatchResponse represents a batch response payload.
//
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#successful-responses
type BatchResponse struct {
	Transfer string            `json:"transfer"`
	Objects  []*ObjectResponse `json:"objects"`
}

// ObjectResponse is the object item of a BatchResponse
type ObjectResponse struct {
	Pointer
	Authenticated bool     `json:"authenticated"`
	Actions       *Actions `json:"actions"`
}

// Actions always carries both links; the one not granted has an empty href.
type Actions struct {
	Upload   *Link `json:"upload"`
	Download *Link `json:"download"`
}

// Link is the action item of an ObjectResponse
type Link struct {
	Href      string `json:"href"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// ErrorResponse describes the error to the client.
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#response-errors
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

func emptyLink() *Link {
	return &Link{Href: ""}
}
