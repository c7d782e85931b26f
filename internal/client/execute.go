package client

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// Execute implements quoter.Client.Execute. Required parameters are checked
// before any request is sent. getAll returns []quoter.Record; with ReturnAll
// unset it is the single requested page.
func (c *Client) Execute(ctx context.Context, resourceName string, operation quoter.Operation, params *quoter.OperationParams) (interface{}, error) {
	resource, ok := c.resources[resourceName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", quoter.ErrUnknownResource, resourceName)
	}

	err := resource.supports(operation)
	if err != nil {
		return nil, err
	}

	if params == nil {
		params = &quoter.OperationParams{}
	}

	c.logger.Debug("Executing operation", map[string]interface{}{
		"resource":  resourceName,
		"operation": string(operation),
	})

	switch operation {
	case quoter.OperationCreate:
		required := resource.Definition().CreateRequired
		for _, field := range required {
			if quoter.IsEmptyValue(params.Body[field]) {
				return nil, quoter.NewRequiredError(field)
			}
		}

		return resource.Create(ctx, mergeBody(params.Body, params.AdditionalFields), &params.Options)
	case quoter.OperationGet:
		return resource.Get(ctx, params.ID, &params.Options)
	case quoter.OperationGetAll:
		records, err := c.executeList(ctx, resource, params)
		if err != nil {
			return nil, err
		}

		return records, nil
	case quoter.OperationUpdate:
		return resource.Update(ctx, params.ID, mergeBody(params.Body, params.AdditionalFields), &params.Options)
	case quoter.OperationDelete:
		return resource.Delete(ctx, params.ID)
	}

	return nil, fmt.Errorf("%w: %s", quoter.ErrUnsupportedOperation, operation)
}

func (c *Client) executeList(ctx context.Context, resource *ResourceClient, params *quoter.OperationParams) ([]quoter.Record, error) {
	filters := quoter.Filters{}
	maps.Copy(filters, params.Filters)

	required := resource.Definition().ListRequired

	if slices.Contains(required, quoter.ListParamItemID) {
		if strings.TrimSpace(params.ItemID) == "" {
			return nil, quoter.NewRequiredError(quoter.ListParamItemID)
		}

		filters[quoter.ListParamItemID] = params.ItemID
	}

	query := quoter.BuildQueryParams(filters, &params.Options, params.ReturnAll, params.Limit)

	if slices.Contains(required, quoter.ListParamMPNs) {
		mpns := SplitList(params.MPNs)
		if len(mpns) == 0 {
			return nil, quoter.NewRequiredError(quoter.ListParamMPNs)
		}

		query[quoter.ListParamMPNs] = mpns
	}

	if params.ReturnAll {
		return resource.ListAll(ctx, query)
	}

	page, err := resource.List(ctx, query)
	if err != nil {
		return nil, err
	}

	if page.Data == nil {
		return []quoter.Record{}, nil
	}

	return page.Data, nil
}

// mergeBody overlays additional fields on the base body.
func mergeBody(body, additional map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(body)+len(additional))
	maps.Copy(merged, body)
	maps.Copy(merged, additional)

	return merged
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(list string) []string {
	var values []string

	for _, value := range strings.Split(list, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}

	return values
}
