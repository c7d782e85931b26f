package commands

import (
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBatchFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "batch.yml")
		mustWrite(t, path, `- resource: item
  operation: create
  params:
    body:
      name: Widget
- resource: quote
  operation: getAll
  params:
    filters:
      nameContains: Acme
    return_all: true
`)

		items, err := loadBatchFile(path)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "item", items[0].Resource)
		assert.Equal(t, quoter.OperationCreate, items[0].Operation)
		assert.Equal(t, "Widget", items[0].Params.Body["name"])
		assert.Equal(t, quoter.OperationGetAll, items[1].Operation)
		assert.Equal(t, "Acme", items[1].Params.Filters["nameContains"])
		assert.True(t, items[1].Params.ReturnAll)
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "batch.json")
		mustWrite(t, path, `[{"resource":"item","operation":"delete","params":{"id":"itm_1"}}]`)

		items, err := loadBatchFile(path)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "itm_1", items[0].Params.ID)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "batch.txt")
		mustWrite(t, path, "item create")

		_, err := loadBatchFile(path)
		require.ErrorIs(t, err, constants.ErrUnsupportedFormat)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "empty.json")
		mustWrite(t, path, "[]")

		_, err := loadBatchFile(path)
		require.ErrorIs(t, err, constants.ErrEmptyBatch)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "broken.json")
		mustWrite(t, path, "[{")

		_, err := loadBatchFile(path)
		require.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := loadBatchFile(filepath.Join(dir, "missing.json"))
		require.Error(t, err)
	})
}
