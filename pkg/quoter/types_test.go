package quoter_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		token    *quoter.Token
		expected bool
	}{
		{name: "nil token", token: nil, expected: false},
		{name: "empty access token", token: &quoter.Token{ExpiresAt: now.Add(time.Hour)}, expected: false},
		{name: "missing expiry", token: &quoter.Token{AccessToken: "tok"}, expected: false},
		{name: "future expiry", token: &quoter.Token{AccessToken: "tok", ExpiresAt: now.Add(time.Minute)}, expected: true},
		{name: "expiry equal to now", token: &quoter.Token{AccessToken: "tok", ExpiresAt: now}, expected: false},
		{name: "past expiry", token: &quoter.Token{AccessToken: "tok", ExpiresAt: now.Add(-time.Minute)}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.token.Valid(now))
		})
	}
}

func TestToken_JSONUsesEpochMillis(t *testing.T) {
	t.Parallel()

	expiresAt := time.UnixMilli(1714564800123)
	token := quoter.Token{AccessToken: "a", RefreshToken: "r", ExpiresAt: expiresAt}

	data, err := json.Marshal(token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"a","refresh_token":"r","expires_at":1714564800123}`, string(data))

	var decoded quoter.Token

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "a", decoded.AccessToken)
	assert.Equal(t, "r", decoded.RefreshToken)
	assert.True(t, expiresAt.Equal(decoded.ExpiresAt))
}

func TestDecodeListResponse(t *testing.T) {
	t.Parallel()

	var body interface{}

	require.NoError(t, json.Unmarshal([]byte(`{
		"data": [{"id": "a"}, "skip-me", {"id": "b"}],
		"has_more": true,
		"total_count": 7
	}`), &body))

	list := quoter.DecodeListResponse(body)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "a", list.Data[0].ID())
	assert.Equal(t, "b", list.Data[1].ID())
	assert.True(t, list.HasMore)
	require.NotNil(t, list.TotalCount)
	assert.Equal(t, 7, *list.TotalCount)

	t.Run("has_more must be the boolean true", func(t *testing.T) {
		t.Parallel()

		list := quoter.DecodeListResponse(map[string]interface{}{"has_more": "true", "data": "nope"})
		assert.False(t, list.HasMore)
		assert.Empty(t, list.Data)
	})

	t.Run("non object body", func(t *testing.T) {
		t.Parallel()

		list := quoter.DecodeListResponse([]interface{}{})
		assert.Empty(t, list.Data)
		assert.False(t, list.HasMore)
	})
}

func TestResources(t *testing.T) {
	t.Parallel()

	assert.Len(t, quoter.Resources, 15)

	tier, ok := quoter.LookupResource("itemTier")
	require.True(t, ok)
	assert.Equal(t, "/item_tiers", tier.Path)
	assert.Equal(t, "/item_tiers/tier_1", tier.ItemPath("tier_1"))
	assert.Equal(t, []string{"item_id", "lower_boundary", "price_decimal"}, tier.CreateRequired)
	assert.Equal(t, []string{quoter.ListParamItemID}, tier.ListRequired)

	lineItem, ok := quoter.LookupResource("lineItem")
	require.True(t, ok)
	assert.True(t, lineItem.Supports(quoter.OperationCreate))
	assert.False(t, lineItem.Supports(quoter.OperationGetAll))

	_, ok = quoter.LookupResource("invoice")
	assert.False(t, ok)

	names := quoter.ResourceNames()
	assert.Equal(t, "category", names[0])
	assert.Equal(t, "supplier", names[len(names)-1])
}
