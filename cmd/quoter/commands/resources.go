package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Static errors for err113 compliance.
var (
	ErrInvalidKeyValue = errors.New("expected KEY=VALUE")
)

// operationFlags are the flag values shared by the resource subcommands.
type operationFlags struct {
	data      string
	fields    []string
	setFields []string
	filters   []string
	sortBy    string
	limit     int
	all       bool
	itemID    string
	mpns      string
}

// NewResourceCommands creates one command per resource of the resource table.
func NewResourceCommands() []*cobra.Command {
	commands := make([]*cobra.Command, 0, len(quoter.Resources))

	for i := range quoter.Resources {
		commands = append(commands, newResourceCommand(&quoter.Resources[i]))
	}

	return commands
}

// CommandName is the kebab-case command name of a resource, e.g. "item-group".
func CommandName(resource *quoter.Resource) string {
	return strings.ReplaceAll(quoter.ToSnakeCase(resource.Name), "_", "-")
}

func newResourceCommand(resource *quoter.Resource) *cobra.Command {
	name := CommandName(resource)

	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Manage %s records", name),
		Long:  fmt.Sprintf("Create, read, update and delete Quoter %s records (%s)", name, resource.Path),
	}

	if name != resource.Name {
		cmd.Aliases = []string{resource.Name}
	}

	for _, operation := range resource.Operations {
		cmd.AddCommand(newOperationCommand(resource, operation))
	}

	return cmd
}

func newOperationCommand(resource *quoter.Resource, operation quoter.Operation) *cobra.Command {
	flags := &operationFlags{}
	name := CommandName(resource)

	cmd := &cobra.Command{
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params(args)
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

			return runOperation(ctx, client, cmd.OutOrStdout(), resource.Name, operation, params)
		},
	}

	switch operation {
	case quoter.OperationCreate:
		cmd.Use = "create"
		cmd.Short = "Create a " + name
		cmd.Args = cobra.NoArgs
		addBodyFlags(cmd, flags)
		cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")

		if len(resource.CreateRequired) > 0 {
			cmd.Long = fmt.Sprintf("Create a %s. Required fields: %s", name, strings.Join(resource.CreateRequired, ", "))
		}
	case quoter.OperationGet:
		cmd.Use = "get ID"
		cmd.Short = "Get a " + name
		cmd.Args = cobra.ExactArgs(1)
		cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")
	case quoter.OperationGetAll:
		cmd.Use = "list"
		cmd.Short = "List " + name + " records"
		cmd.Args = cobra.NoArgs
		addListFlags(cmd, resource, flags)
	case quoter.OperationUpdate:
		cmd.Use = "update ID"
		cmd.Short = "Update a " + name
		cmd.Args = cobra.ExactArgs(1)
		addBodyFlags(cmd, flags)
		cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")
	case quoter.OperationDelete:
		cmd.Use = "delete ID"
		cmd.Short = "Delete a " + name
		cmd.Args = cobra.ExactArgs(1)
	}

	return cmd
}

func addBodyFlags(cmd *cobra.Command, flags *operationFlags) {
	cmd.Flags().StringVarP(&flags.data, "data", "d", "", "JSON object with the record fields")
	cmd.Flags().StringArrayVarP(&flags.setFields, "set", "s", nil, "field as KEY=VALUE, repeatable; VALUE is parsed as JSON when possible")
}

func addListFlags(cmd *cobra.Command, resource *quoter.Resource, flags *operationFlags) {
	cmd.Flags().StringArrayVarP(&flags.filters, "filter", "f", nil, "filter as KEY=VALUE, e.g. nameContains=Acme or createdAfter=2024-01-01")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "fields to return")
	cmd.Flags().StringVar(&flags.sortBy, "sort-by", "", "sort field, prefix with - for descending")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "page size when --all is not set (default 50, max 100)")
	cmd.Flags().BoolVar(&flags.all, "all", false, "fetch every page")

	for _, required := range resource.ListRequired {
		switch required {
		case quoter.ListParamItemID:
			cmd.Flags().StringVar(&flags.itemID, "item-id", "", "item to list records of")
			_ = cmd.MarkFlagRequired("item-id")
		case quoter.ListParamMPNs:
			cmd.Flags().StringVar(&flags.mpns, "mpns", "", "comma separated manufacturer part numbers")
			_ = cmd.MarkFlagRequired("mpns")
		}
	}
}

// params converts the flag values into operation parameters.
func (f *operationFlags) params(args []string) (*quoter.OperationParams, error) {
	params := &quoter.OperationParams{
		Options:   quoter.QueryOptions{Fields: f.fields, SortBy: f.sortBy},
		ReturnAll: f.all,
		Limit:     f.limit,
		ItemID:    f.itemID,
		MPNs:      f.mpns,
	}

	if len(args) > 0 {
		params.ID = args[0]
	}

	if f.data != "" {
		err := json.Unmarshal([]byte(f.data), &params.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
	}

	if len(f.setFields) > 0 {
		fields, err := parseKeyValues(f.setFields)
		if err != nil {
			return nil, err
		}

		params.AdditionalFields = fields
	}

	if len(f.filters) > 0 {
		filters, err := parseKeyValues(f.filters)
		if err != nil {
			return nil, err
		}

		params.Filters = quoter.Filters(filters)
	}

	return params, nil
}

// parseKeyValues parses KEY=VALUE pairs. Values that are valid JSON keep
// their JSON type, anything else is a string.
func parseKeyValues(pairs []string) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(pairs))

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKeyValue, pair)
		}

		var value interface{}

		err := json.Unmarshal([]byte(raw), &value)
		if err != nil {
			value = raw
		}

		values[key] = value
	}

	return values, nil
}

// runOperation executes one operation and renders its result.
func runOperation(ctx context.Context, client quoter.Client, out io.Writer, resource string, operation quoter.Operation, params *quoter.OperationParams) error {
	result, err := client.Execute(ctx, resource, operation, params)
	if err != nil {
		return err
	}

	return renderOutput(out, viper.GetString("output"), result)
}
