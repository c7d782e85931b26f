package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// ResourceClient implements quoter.ResourceClient for one row of the
// resource table.
type ResourceClient struct {
	client   *Client
	resource *quoter.Resource
}

// NewResourceClient creates a new resource client.
func NewResourceClient(client *Client, resource *quoter.Resource) *ResourceClient {
	return &ResourceClient{
		client:   client,
		resource: resource,
	}
}

// Definition returns the resource table row the client serves.
func (r *ResourceClient) Definition() *quoter.Resource {
	return r.resource
}

// Create implements quoter.ResourceClient.Create.
func (r *ResourceClient) Create(ctx context.Context, body map[string]interface{}, options *quoter.QueryOptions) (interface{}, error) {
	err := r.supports(quoter.OperationCreate)
	if err != nil {
		return nil, err
	}

	if body == nil {
		body = map[string]interface{}{}
	}

	result, err := r.client.Request(ctx, http.MethodPost, r.resource.Path, body, fieldsQuery(options))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.resource.Name, err)
	}

	return result, nil
}

// Get implements quoter.ResourceClient.Get.
func (r *ResourceClient) Get(ctx context.Context, id string, options *quoter.QueryOptions) (interface{}, error) {
	err := r.supportsWithID(quoter.OperationGet, id)
	if err != nil {
		return nil, err
	}

	result, err := r.client.Request(ctx, http.MethodGet, r.resource.ItemPath(id), nil, fieldsQuery(options))
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", r.resource.Name, err)
	}

	return result, nil
}

// List implements quoter.ResourceClient.List. The params are sent as given,
// so callers choose page and limit.
func (r *ResourceClient) List(ctx context.Context, params quoter.Params) (*quoter.ListResponse, error) {
	err := r.supports(quoter.OperationGetAll)
	if err != nil {
		return nil, err
	}

	body, err := r.client.Request(ctx, http.MethodGet, r.resource.Path, nil, params)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.resource.Name, err)
	}

	return quoter.DecodeListResponse(body), nil
}

// ListAll implements quoter.ResourceClient.ListAll.
func (r *ResourceClient) ListAll(ctx context.Context, params quoter.Params) ([]quoter.Record, error) {
	err := r.supports(quoter.OperationGetAll)
	if err != nil {
		return nil, err
	}

	records, err := r.client.RequestAllItems(ctx, http.MethodGet, r.resource.Path, params)
	if err != nil {
		return nil, fmt.Errorf("listing all %s: %w", r.resource.Name, err)
	}

	return records, nil
}

// Iterate returns an iterator over the collection.
func (r *ResourceClient) Iterate(ctx context.Context, params quoter.Params) *PaginationIterator {
	return NewPaginationIterator(ctx, r.client.pageFetcher(http.MethodGet, r.resource.Path), params, r.client.maxPages)
}

// Update implements quoter.ResourceClient.Update.
func (r *ResourceClient) Update(ctx context.Context, id string, body map[string]interface{}, options *quoter.QueryOptions) (interface{}, error) {
	err := r.supportsWithID(quoter.OperationUpdate, id)
	if err != nil {
		return nil, err
	}

	if body == nil {
		body = map[string]interface{}{}
	}

	result, err := r.client.Request(ctx, http.MethodPatch, r.resource.ItemPath(id), body, fieldsQuery(options))
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", r.resource.Name, err)
	}

	return result, nil
}

// Delete implements quoter.ResourceClient.Delete.
func (r *ResourceClient) Delete(ctx context.Context, id string) (interface{}, error) {
	err := r.supportsWithID(quoter.OperationDelete, id)
	if err != nil {
		return nil, err
	}

	result, err := r.client.Request(ctx, http.MethodDelete, r.resource.ItemPath(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", r.resource.Name, err)
	}

	return result, nil
}

func (r *ResourceClient) supports(operation quoter.Operation) error {
	if !r.resource.Supports(operation) {
		return fmt.Errorf("%w: %s on %s", quoter.ErrUnsupportedOperation, operation, r.resource.Name)
	}

	return nil
}

func (r *ResourceClient) supportsWithID(operation quoter.Operation, id string) error {
	err := r.supports(operation)
	if err != nil {
		return err
	}

	if strings.TrimSpace(id) == "" {
		return quoter.NewRequiredError("id")
	}

	return nil
}

// fieldsQuery selects the returned fields of a single record.
func fieldsQuery(options *quoter.QueryOptions) quoter.Params {
	if options == nil || len(options.Fields) == 0 {
		return nil
	}

	return quoter.Params{"fields": strings.Join(options.Fields, ",")}
}
