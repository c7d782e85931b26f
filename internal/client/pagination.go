package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// RequestAllItems implements quoter.Client.RequestAllItems. Pages of
// constants.PageSize records are requested starting at page one and
// concatenated in order until has_more is no longer true.
func (c *Client) RequestAllItems(ctx context.Context, method, path string, query quoter.Params) ([]quoter.Record, error) {
	var records []quoter.Record

	iterator := NewPaginationIterator(ctx, c.pageFetcher(method, path), query, c.maxPages)

	err := iterator.ForEachPage(func(page *quoter.ListResponse) error {
		records = append(records, page.Data...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []quoter.Record{}
	}

	return records, nil
}

func (c *Client) pageFetcher(method, path string) PageFetcher {
	return func(ctx context.Context, query quoter.Params) (*quoter.ListResponse, error) {
		body, err := c.Request(ctx, method, path, nil, query)
		if err != nil {
			return nil, err
		}

		return quoter.DecodeListResponse(body), nil
	}
}

// PageFetcher requests one page of a collection.
type PageFetcher func(ctx context.Context, query quoter.Params) (*quoter.ListResponse, error)

// PaginationIterator walks a paginated collection one record at a time,
// fetching pages on demand.
type PaginationIterator struct {
	ctx      context.Context //nolint:containedctx // Iterator is bound to one walk
	fetch    PageFetcher
	query    quoter.Params
	maxPages int

	fetched int
	current []quoter.Record
	index   int
	hasMore bool
	err     error
}

// NewPaginationIterator creates an iterator over the collection served by
// fetch. A maxPages of zero leaves the walk unbounded.
func NewPaginationIterator(ctx context.Context, fetch PageFetcher, query quoter.Params, maxPages int) *PaginationIterator {
	return &PaginationIterator{
		ctx:      ctx,
		fetch:    fetch,
		query:    query,
		maxPages: maxPages,
		hasMore:  true,
	}
}

// HasNext reports whether another record is available. It fetches the next
// page when the current one is exhausted; a fetch error makes it return
// false and is reported by Err and Next.
func (p *PaginationIterator) HasNext() bool {
	for p.index >= len(p.current) {
		if !p.hasMore || p.err != nil {
			return false
		}

		_, err := p.nextPage()
		if err != nil {
			return false
		}
	}

	return true
}

// Next returns the next record.
func (p *PaginationIterator) Next() (quoter.Record, error) {
	if !p.HasNext() {
		if p.err != nil {
			return nil, p.err
		}

		return nil, quoter.ErrNoMoreItems
	}

	record := p.current[p.index]
	p.index++

	return record, nil
}

// Err returns the error that stopped the iteration, if any.
func (p *PaginationIterator) Err() error {
	return p.err
}

// All fetches every remaining record.
func (p *PaginationIterator) All() ([]quoter.Record, error) {
	var all []quoter.Record

	err := p.ForEach(func(record quoter.Record) error {
		all = append(all, record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// ForEach calls fn for every remaining record and stops at the first error.
func (p *PaginationIterator) ForEach(fn func(quoter.Record) error) error {
	for p.HasNext() {
		record, err := p.Next()
		if err != nil {
			return err
		}

		err = fn(record)
		if err != nil {
			return err
		}
	}

	return p.err
}

// ForEachPage calls fn for every remaining page, including empty ones.
func (p *PaginationIterator) ForEachPage(fn func(*quoter.ListResponse) error) error {
	for p.hasMore && p.err == nil {
		page, err := p.nextPage()
		if err != nil {
			return err
		}

		p.index = len(p.current)

		err = fn(page)
		if err != nil {
			return err
		}
	}

	return p.err
}

func (p *PaginationIterator) nextPage() (*quoter.ListResponse, error) {
	if p.maxPages > 0 && p.fetched >= p.maxPages {
		p.err = &quoter.APIError{
			Message: fmt.Sprintf("pagination exceeded %d pages", p.maxPages),
			Err:     constants.ErrTooManyPages,
		}

		return nil, p.err
	}

	query := p.query.Clone()
	query["page"] = constants.FirstPage + p.fetched
	query["limit"] = constants.PageSize

	page, err := p.fetch(p.ctx, query)
	if err != nil {
		p.err = err

		return nil, err
	}

	p.fetched++
	p.current = page.Data
	p.index = 0
	p.hasMore = page.HasMore

	return page, nil
}
