package quoter

import (
	"context"
	"encoding/json"
	"time"
)

// Record is a single resource as returned by the API. Resource schemas are
// not modelled; fields are passed through as decoded JSON.
type Record map[string]interface{}

// ID returns the record's id field as a string, or "".
func (r Record) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}

	return ""
}

// ListResponse is the paginated envelope of list endpoints.
type ListResponse struct {
	Data       []Record `json:"data"                  yaml:"data"`
	HasMore    bool     `json:"has_more"              yaml:"has_more"`
	TotalCount *int     `json:"total_count,omitempty" yaml:"total_count,omitempty"`
}

// DecodeListResponse reads a list envelope from an already decoded body.
// Missing or non-array data yields an empty page; has_more is true only when
// the body carries the boolean true.
func DecodeListResponse(body interface{}) *ListResponse {
	list := &ListResponse{}

	object, ok := body.(map[string]interface{})
	if !ok {
		return list
	}

	if items, ok := object["data"].([]interface{}); ok {
		list.Data = make([]Record, 0, len(items))
		for _, item := range items {
			if record, ok := item.(map[string]interface{}); ok {
				list.Data = append(list.Data, record)
			}
		}
	}

	hasMore, _ := object["has_more"].(bool)
	list.HasMore = hasMore

	if total, ok := object["total_count"].(float64); ok {
		count := int(total)
		list.TotalCount = &count
	}

	return list
}

// Token is the cached OAuth token state of a credential set.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the token can be used at the given instant without
// contacting the API.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" || t.ExpiresAt.IsZero() {
		return false
	}

	return t.ExpiresAt.After(now)
}

type storedToken struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// MarshalJSON stores expires_at as absolute epoch milliseconds.
func (t Token) MarshalJSON() ([]byte, error) {
	stored := storedToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if !t.ExpiresAt.IsZero() {
		stored.ExpiresAt = t.ExpiresAt.UnixMilli()
	}

	return json.Marshal(stored)
}

// UnmarshalJSON reads the epoch millisecond form written by MarshalJSON.
func (t *Token) UnmarshalJSON(data []byte) error {
	var stored storedToken

	err := json.Unmarshal(data, &stored)
	if err != nil {
		return err
	}

	t.AccessToken = stored.AccessToken
	t.RefreshToken = stored.RefreshToken
	t.ExpiresAt = time.Time{}

	if stored.ExpiresAt != 0 {
		t.ExpiresAt = time.UnixMilli(stored.ExpiresAt)
	}

	return nil
}

// TokenStore holds the mutable token state of one credential set. Get returns
// nil and no error when nothing is cached. Implementations are owned by the
// host; the token manager is the only writer.
type TokenStore interface {
	Get(ctx context.Context) (*Token, error)
	Set(ctx context.Context, token *Token) error
	Clear(ctx context.Context) error
}

// BatchItem is one operation of a batch run.
type BatchItem struct {
	Resource  string          `json:"resource"  yaml:"resource"`
	Operation Operation       `json:"operation" yaml:"operation"`
	Params    OperationParams `json:"params"    yaml:"params"`
}

// BatchResult is the outcome of one batch item. Index refers to the position
// of the item in the input.
type BatchResult struct {
	Index int         `json:"index"           yaml:"index"`
	Data  interface{} `json:"data,omitempty"  yaml:"data,omitempty"`
	Error string      `json:"error,omitempty" yaml:"error,omitempty"`
}
