package client

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestFetch = errors.New("fetch failed")

// pagedHandler serves pages of the given sizes; has_more is set on all but
// the last page.
func pagedHandler(sizes ...int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 || page > len(sizes) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}, "has_more": false})

			return
		}

		first := 0
		for _, size := range sizes[:page-1] {
			first += size
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data":     records(first, sizes[page-1]),
			"has_more": page < len(sizes),
		})
	}
}

func TestClient_RequestAllItems(t *testing.T) {
	t.Parallel()

	t.Run("concatenates pages in order", func(t *testing.T) {
		t.Parallel()

		client, fake := NewTestClient(t, pagedHandler(100, 100, 40))

		all, err := client.RequestAllItems(context.Background(), http.MethodGet, "/items", quoter.Params{
			"filter[name]": "cont:Widget",
			"page":         7,
		})
		require.NoError(t, err)
		require.Len(t, all, 240)

		for i, record := range all {
			assert.Equal(t, strconv.Itoa(i), record.ID())
		}

		requests := fake.recorded()
		require.Len(t, requests, 3)

		for i, request := range requests {
			assert.Equal(t, "/v1/items", request.Path)
			assert.Equal(t, strconv.Itoa(i+1), request.Query.Get("page"))
			assert.Equal(t, "100", request.Query.Get("limit"))
			assert.Equal(t, "cont:Widget", request.Query.Get("filter[name]"))
		}
	})

	t.Run("missing data and non boolean has_more", func(t *testing.T) {
		t.Parallel()

		client, fake := NewTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": "nope", "has_more": "true"})
		})

		all, err := client.RequestAllItems(context.Background(), http.MethodGet, "/items", nil)
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.NotNil(t, all)
		assert.Len(t, fake.recorded(), 1)
	})

	t.Run("stops at the page cap", func(t *testing.T) {
		t.Parallel()

		fake := newFakeQuoter(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": records(0, 1), "has_more": true})
		})

		config := fake.config()
		config.MaxPages = 2

		client, err := New(config)
		require.NoError(t, err)

		_, err = client.RequestAllItems(context.Background(), http.MethodGet, "/items", nil)
		require.ErrorIs(t, err, constants.ErrTooManyPages)

		apiErr := &quoter.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Message, "2 pages")
		assert.Len(t, fake.recorded(), 2)
	})

	t.Run("page error aborts", func(t *testing.T) {
		t.Parallel()

		client, _ := NewTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
					"errors": []map[string]string{{"title": "Internal Server Error"}},
				})

				return
			}

			writeJSON(w, http.StatusOK, map[string]interface{}{"data": records(0, 100), "has_more": true})
		})

		all, err := client.RequestAllItems(context.Background(), http.MethodGet, "/items", nil)
		require.Error(t, err)
		assert.Nil(t, all)

		apiErr := &quoter.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPCode)
	})
}

// staticPages is a PageFetcher over fixed pages.
func staticPages(pages ...[]quoter.Record) PageFetcher {
	return func(ctx context.Context, query quoter.Params) (*quoter.ListResponse, error) {
		page := query["page"].(int)
		if page > len(pages) {
			return &quoter.ListResponse{}, nil
		}

		return &quoter.ListResponse{Data: pages[page-1], HasMore: page < len(pages)}, nil
	}
}

func TestPaginationIterator_HasNext(t *testing.T) {
	t.Parallel()

	iterator := NewPaginationIterator(context.Background(), staticPages(
		[]quoter.Record{{"id": "1"}, {"id": "2"}},
		[]quoter.Record{},
		[]quoter.Record{{"id": "3"}},
	), nil, 0)

	var ids []string

	for iterator.HasNext() {
		record, err := iterator.Next()
		require.NoError(t, err)

		ids = append(ids, record.ID())
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.False(t, iterator.HasNext())

	_, err := iterator.Next()
	require.ErrorIs(t, err, quoter.ErrNoMoreItems)
	assert.NoError(t, iterator.Err())
}

func TestPaginationIterator_All(t *testing.T) {
	t.Parallel()

	iterator := NewPaginationIterator(context.Background(), staticPages(
		[]quoter.Record{{"id": "1"}},
		[]quoter.Record{{"id": "2"}},
	), quoter.Params{"sort_by": "name"}, 0)

	all, err := iterator.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPaginationIterator_ForEach(t *testing.T) {
	t.Parallel()

	t.Run("stops on callback error", func(t *testing.T) {
		t.Parallel()

		iterator := NewPaginationIterator(context.Background(), staticPages(
			[]quoter.Record{{"id": "1"}, {"id": "2"}},
		), nil, 0)

		count := 0
		err := iterator.ForEach(func(record quoter.Record) error {
			count++

			return errTestFetch
		})
		require.ErrorIs(t, err, errTestFetch)
		assert.Equal(t, 1, count)
	})

	t.Run("reports fetch errors", func(t *testing.T) {
		t.Parallel()

		iterator := NewPaginationIterator(context.Background(), func(ctx context.Context, query quoter.Params) (*quoter.ListResponse, error) {
			return nil, errTestFetch
		}, nil, 0)

		err := iterator.ForEach(func(quoter.Record) error { return nil })
		require.ErrorIs(t, err, errTestFetch)
		assert.False(t, iterator.HasNext())
		require.ErrorIs(t, iterator.Err(), errTestFetch)
	})
}

func TestResourceClient_Iterate(t *testing.T) {
	t.Parallel()

	client, fake := NewTestClient(t, pagedHandler(2, 1))

	resource, err := client.Resource("category")
	require.NoError(t, err)

	all, err := resource.(*ResourceClient).Iterate(context.Background(), quoter.Params{"sort_by": "name"}).All()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	for _, request := range fake.recorded() {
		assert.Equal(t, "/v1/categories", request.Path)
		assert.Equal(t, "name", request.Query.Get("sort_by"))
	}
}
