package lfs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseBatchRequest decodes and validates a batch request body. It never
// decides whether the operation is supported; that happens at dispatch.
func ParseBatchRequest(body []byte) (*BatchRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}

	var batchRequest BatchRequest
	if err := json.Unmarshal(body, &batchRequest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	if err := batchRequest.Validate(); err != nil {
		return nil, err
	}

	return &batchRequest, nil
}

func (r *BatchRequest) Validate() error {
	if r.Operation == "" {
		return fmt.Errorf("%w: operation is required", ErrMalformedJSON)
	}
	if len(r.Objects) == 0 {
		return fmt.Errorf("%w: objects must not be empty", ErrMalformedJSON)
	}

	for i, obj := range r.Objects {
		if obj.Oid == "" {
			return fmt.Errorf("%w: objects[%d].oid is required", ErrMalformedJSON, i)
		}
		if obj.Size < 0 {
			return fmt.Errorf("%w: objects[%d].size must not be negative", ErrMalformedJSON, i)
		}
	}

	return nil
}
