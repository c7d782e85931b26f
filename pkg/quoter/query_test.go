package quoter_test

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"name", "name"},
		{"created", "created"},
		{"itemId", "item_id"},
		{"itemID", "item_id"},
		{"parentCategoryId", "parent_category_id"},
		{"quoteTemplateID", "quote_template_id"},
		{"ItemGroup", "item_group"},
		{"HTTPStatus", "http_status"},
		{"ID", "id"},
		{"line2Name", "line2_name"},
		{"already_snake", "already_snake"},
		{"mixed_CaseValue", "mixed_case_value"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, quoter.ToSnakeCase(tt.input))
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestBuildFilterParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filters  quoter.Filters
		expected quoter.Params
	}{
		{
			name:    "contains and created after",
			filters: quoter.Filters{"nameContains": "acme", "createdAfter": "2024-01-01"},
			expected: quoter.Params{
				"filter[name]":       "cont:acme",
				"filter[created_at]": "gt:2024-01-01",
			},
		},
		{
			name:     "modified before",
			filters:  quoter.Filters{"modifiedBefore": "2024-06-30"},
			expected: quoter.Params{"filter[modified_at]": "lt:2024-06-30"},
		},
		{
			name:     "date field already carrying the at suffix",
			filters:  quoter.Filters{"createdAtAfter": "2024-01-01"},
			expected: quoter.Params{"filter[created_at]": "gt:2024-01-01"},
		},
		{
			name:     "multi word contains",
			filters:  quoter.Filters{"firstNameContains": "jo"},
			expected: quoter.Params{"filter[first_name]": "cont:jo"},
		},
		{
			name:    "id suffixes",
			filters: quoter.Filters{"itemId": "itm_1", "parentCategoryID": "cat_9"},
			expected: quoter.Params{
				"filter[item_id]":            "eq:itm_1",
				"filter[parent_category_id]": "eq:cat_9",
			},
		},
		{
			name:     "plain string defaults to contains",
			filters:  quoter.Filters{"sku": "ABC"},
			expected: quoter.Params{"filter[sku]": "cont:ABC"},
		},
		{
			name:    "non string defaults to exact match",
			filters: quoter.Filters{"isActive": true, "quantity": 3, "priceDecimal": 9.5},
			expected: quoter.Params{
				"filter[is_active]":     "eq:true",
				"filter[quantity]":      "eq:3",
				"filter[price_decimal]": "eq:9.5",
			},
		},
		{
			name:     "empty values are skipped",
			filters:  quoter.Filters{"nameContains": "", "itemId": nil, "": "x"},
			expected: quoter.Params{},
		},
		{
			name:     "bare suffix is treated as a plain key",
			filters:  quoter.Filters{"After": "x"},
			expected: quoter.Params{"filter[after]": "cont:x"},
		},
		{
			name:     "time values are formatted as RFC3339",
			filters:  quoter.Filters{"createdAfter": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
			expected: quoter.Params{"filter[created_at]": "gt:2024-01-02T03:04:05Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, quoter.BuildFilterParams(tt.filters))
		})
	}
}

func TestBuildQueryParams(t *testing.T) {
	t.Parallel()

	t.Run("limit is clamped and page forced", func(t *testing.T) {
		t.Parallel()

		params := quoter.BuildQueryParams(quoter.Filters{}, &quoter.QueryOptions{}, false, 500)
		assert.Equal(t, quoter.Params{"page": 1, "limit": 100}, params)
	})

	t.Run("zero limit uses default", func(t *testing.T) {
		t.Parallel()

		params := quoter.BuildQueryParams(nil, nil, false, 0)
		assert.Equal(t, 50, params["limit"])
	})

	t.Run("negative limit is raised to minimum", func(t *testing.T) {
		t.Parallel()

		params := quoter.BuildQueryParams(nil, nil, false, -4)
		assert.Equal(t, 1, params["limit"])
	})

	t.Run("return all omits pagination", func(t *testing.T) {
		t.Parallel()

		params := quoter.BuildQueryParams(nil, nil, true, 10)
		assert.NotContains(t, params, "page")
		assert.NotContains(t, params, "limit")
	})

	t.Run("fields sort and filters are composed", func(t *testing.T) {
		t.Parallel()

		params := quoter.BuildQueryParams(
			quoter.Filters{"nameContains": "widget"},
			&quoter.QueryOptions{Fields: []string{"id", "name"}, SortBy: "-created_at"},
			false,
			25,
		)

		assert.Equal(t, quoter.Params{
			"filter[name]": "cont:widget",
			"fields":       "id,name",
			"sort_by":      "-created_at",
			"page":         1,
			"limit":        25,
		}, params)
	})
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50, quoter.ClampLimit(0))
	assert.Equal(t, 1, quoter.ClampLimit(-1))
	assert.Equal(t, 42, quoter.ClampLimit(42))
	assert.Equal(t, 100, quoter.ClampLimit(101))
}
