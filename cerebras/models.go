package cerebras

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Known model identifiers. The service adds models over time; any string
// accepted by the API works, these are just the stable names.
const (
	ModelLlama3_1_8B  = "llama3.1-8b"
	ModelLlama3_1_70B = "llama3.1-70b"
	ModelLlama3_3_70B = "llama-3.3-70b"
)

// Model describes one model available to the caller.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the response of the model listing endpoint.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// ListModels returns the models available to the authenticated account.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	raw, err := c.tr.DoJSON(ctx, http.MethodGet, modelsPath, c.authHeader(), nil)
	if err != nil {
		return nil, classify(err, nil)
	}
	var out ModelList
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{
			Kind:    ErrKindDecode,
			Message: "failed to decode model list",
			Raw:     raw,
			Cause:   err,
		}
	}
	return &out, nil
}

// GetModel fetches a single model by id. Unknown ids surface as
// ErrKindNotFound.
func (c *Client) GetModel(ctx context.Context, id string) (*Model, error) {
	if id == "" {
		return nil, &Error{Kind: ErrKindBadRequest, Message: "model id is required"}
	}
	raw, err := c.tr.DoJSON(ctx, http.MethodGet, modelsPath+"/"+url.PathEscape(id), c.authHeader(), nil)
	if err != nil {
		return nil, classify(err, nil)
	}
	var out Model
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{
			Kind:    ErrKindDecode,
			Message: "failed to decode model",
			Raw:     raw,
			Cause:   err,
		}
	}
	return &out, nil
}
