package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// RunBatch implements quoter.Client.RunBatch. Items run strictly in order.
func (c *Client) RunBatch(ctx context.Context, items []quoter.BatchItem, continueOnFail bool) ([]quoter.BatchResult, error) {
	results := make([]quoter.BatchResult, 0, len(items))

	for index, item := range items {
		err := ctx.Err()
		if err != nil {
			return results, fmt.Errorf("batch cancelled before item %d: %w", index, err)
		}

		params := item.Params

		data, err := c.Execute(ctx, item.Resource, item.Operation, &params)
		if err != nil {
			if !continueOnFail {
				return results, fmt.Errorf("batch item %d (%s %s): %w", index, item.Operation, item.Resource, err)
			}

			c.logger.Warn("Batch item failed", map[string]interface{}{
				"index":     index,
				"resource":  item.Resource,
				"operation": string(item.Operation),
				"error":     err.Error(),
			})

			results = append(results, quoter.BatchResult{Index: index, Error: err.Error()})

			continue
		}

		results = append(results, quoter.BatchResult{Index: index, Data: data})
	}

	return results, nil
}
