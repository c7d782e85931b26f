package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	var continueOnFail bool

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run a batch of operations",
		Long: `Run the operations listed in a JSON or YAML file in order.

Each entry names a resource, an operation and its params, for example:

  - resource: item
    operation: create
    params:
      body: {name: Widget}
  - resource: quote
    operation: getAll
    params:
      filters: {nameContains: Acme}
      return_all: true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := loadBatchFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			client, closeClient, err := createClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = closeClient() }()

			results, runErr := client.RunBatch(ctx, items, continueOnFail)

			err = renderOutput(cmd.OutOrStdout(), viper.GetString("output"), results)
			if runErr != nil {
				return runErr
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "record failures and keep going")

	return cmd
}

// loadBatchFile reads batch items from a .json, .yml or .yaml file.
func loadBatchFile(path string) ([]quoter.BatchItem, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var items []quoter.BatchItem

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &items)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &items)
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}

	if len(items) == 0 {
		return nil, constants.ErrEmptyBatch
	}

	return items, nil
}
