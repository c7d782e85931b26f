package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// renderOutput writes value in the requested format. Tables are used for
// records, record lists and batch results; anything else falls back to JSON.
func renderOutput(out io.Writer, format string, value interface{}) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	case "", constants.FormatTable:
		return renderTable(out, value)
	}

	return fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, format)
}

func renderTable(out io.Writer, value interface{}) error {
	table := tablewriter.NewWriter(out)

	switch v := value.(type) {
	case []quoter.Record:
		if len(v) == 0 {
			_, err := fmt.Fprintln(out, "No records found")

			return err
		}

		columns := recordColumns(v)

		header := make([]interface{}, len(columns))
		for i, column := range columns {
			header[i] = column
		}

		table.Header(header...)

		for _, record := range v {
			row := make([]interface{}, len(columns))
			for i, column := range columns {
				row[i] = cellValue(record[column])
			}

			_ = table.Append(row...)
		}
	case map[string]interface{}:
		addPropertyRows(table, v)
	case quoter.Record:
		addPropertyRows(table, v)
	case []quoter.BatchResult:
		table.Header("Index", "Status", "Detail")

		for _, result := range v {
			if result.Error != "" {
				_ = table.Append(fmt.Sprintf("%d", result.Index), "failed", result.Error)

				continue
			}

			_ = table.Append(fmt.Sprintf("%d", result.Index), "ok", recordSummary(result.Data))
		}
	case nil:
		_, err := fmt.Fprintln(out, "OK")

		return err
	default:
		return renderOutput(out, constants.FormatJSON, value)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func addPropertyRows(table *tablewriter.Table, record map[string]interface{}) {
	table.Header("Property", "Value")

	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		_ = table.Append(key, cellValue(record[key]))
	}
}

// recordColumns returns the union of record keys with id first.
func recordColumns(records []quoter.Record) []string {
	seen := make(map[string]bool)

	var columns []string

	for _, record := range records {
		for key := range record {
			if key != "id" && !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	sort.Strings(columns)

	return append([]string{"id"}, columns...)
}

func cellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	default:
		return quoter.FormatValue(v)
	}
}

func recordSummary(data interface{}) string {
	switch v := data.(type) {
	case map[string]interface{}:
		return cellValue(v["id"])
	case []quoter.Record:
		return fmt.Sprintf("%d records", len(v))
	default:
		return ""
	}
}
