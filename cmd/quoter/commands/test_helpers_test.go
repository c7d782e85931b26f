package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// withTempConfig points viper at a config file in a temporary directory and
// resets viper when the test ends. Tests using it must not run in parallel.
func withTempConfig(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(path)

	return path
}

// runRoot executes the root command with args and returns its output.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := NewRootCommand("1.2.3", "abc123", "2024-01-01")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

// MockClient records Execute calls.
type MockClient struct {
	resource  string
	operation quoter.Operation
	params    *quoter.OperationParams
	result    interface{}
	err       error
}

func (m *MockClient) Resource(name string) (quoter.ResourceClient, error) {
	return nil, quoter.ErrUnknownResource
}

func (m *MockClient) Execute(ctx context.Context, resource string, operation quoter.Operation, params *quoter.OperationParams) (interface{}, error) {
	m.resource = resource
	m.operation = operation
	m.params = params

	return m.result, m.err
}

func (m *MockClient) RunBatch(ctx context.Context, items []quoter.BatchItem, continueOnFail bool) ([]quoter.BatchResult, error) {
	return nil, nil
}

func (m *MockClient) Request(ctx context.Context, method, path string, body interface{}, query quoter.Params) (interface{}, error) {
	return nil, nil
}

func (m *MockClient) RequestAllItems(ctx context.Context, method, path string, query quoter.Params) ([]quoter.Record, error) {
	return nil, nil
}

func (m *MockClient) TestCredentials(ctx context.Context) error {
	return nil
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
