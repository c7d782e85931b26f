package commands

import (
	"bytes"
	"testing"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOutput(t *testing.T) {
	t.Parallel()

	records := []quoter.Record{
		{"id": "itm_1", "name": "Widget", "price": 9.5},
		{"id": "itm_2", "name": "Gadget", "tags": []interface{}{"a", "b"}},
	}

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		require.NoError(t, renderOutput(&out, constants.FormatJSON, records))
		assert.Contains(t, out.String(), `"name": "Widget"`)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		require.NoError(t, renderOutput(&out, constants.FormatYAML, records))
		assert.Contains(t, out.String(), "name: Widget")
	})

	t.Run("table of records", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		require.NoError(t, renderOutput(&out, constants.FormatTable, records))

		output := out.String()
		assert.Contains(t, output, "itm_1")
		assert.Contains(t, output, "Gadget")
		assert.Contains(t, output, `["a","b"]`)
	})

	t.Run("table of one record", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		require.NoError(t, renderOutput(&out, "", map[string]interface{}{"id": "q_1", "total": 12.0}))
		assert.Contains(t, out.String(), "q_1")
		assert.Contains(t, out.String(), "12")
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		require.NoError(t, renderOutput(&out, constants.FormatTable, []quoter.Record{}))
		assert.Contains(t, out.String(), "No records found")
	})

	t.Run("batch results", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		require.NoError(t, renderOutput(&out, constants.FormatTable, []quoter.BatchResult{
			{Index: 0, Data: map[string]interface{}{"id": "cat_1"}},
			{Index: 1, Error: "name: is required"},
		}))
		assert.Contains(t, out.String(), "cat_1")
		assert.Contains(t, out.String(), "name: is required")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		err := renderOutput(&bytes.Buffer{}, "xml", records)
		require.ErrorIs(t, err, constants.ErrUnknownOutputFormat)
	})
}

func TestRecordColumns(t *testing.T) {
	t.Parallel()

	columns := recordColumns([]quoter.Record{{"name": "a", "id": "1"}, {"created_at": "x"}})
	assert.Equal(t, []string{"id", "created_at", "name"}, columns)
}
