package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/logicflow/internal/config"
	"github.com/aretw0/logicflow/internal/testutils"
	"github.com/aretw0/logicflow/pkg/domain"
	"github.com/aretw0/logicflow/pkg/ports"
)

const validFlow = `INPUT: Order | cart contents
DECISION: In stock?
  YES -> Ship
  NO -> Backorder
OUTPUT: Ship
OUTPUT: Backorder
`

// execute runs the root command with stdin and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "logicflow version "))
}

func TestParseCommand(t *testing.T) {
	out, _, err := execute(t, validFlow, "parse", "--format", "json")
	require.NoError(t, err)

	var g domain.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Nodes, 4)
	assert.Len(t, g.Edges, 3)

	out, _, err = execute(t, validFlow, "parse", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "nodes:")

	_, _, err = execute(t, validFlow, "parse", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestFmtCommand(t *testing.T) {
	path := filepath.Join(testutils.WriteTree(t, map[string]string{"flow.md": "input: Order\noutput: Done"}), "flow.md")

	out, _, err := execute(t, "", "fmt", "--write=false", path)
	require.NoError(t, err)
	assert.Equal(t, "INPUT: Order\nOUTPUT: Done\n", out)

	_, _, err = execute(t, "", "fmt", "--write", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INPUT: Order\nOUTPUT: Done\n", string(data))

	_, _, err = execute(t, "", "fmt", "--write", "-")
	assert.ErrorContains(t, err, "--write needs a file")
}

func TestValidateCommand(t *testing.T) {
	out, _, err := execute(t, validFlow, "validate", "--deep=false", "--format", "json")
	require.NoError(t, err)
	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)

	_, _, err = execute(t, "INPUT: Order\nPROCESS: Pack", "validate", "--deep=false", "--format", "text")
	assert.ErrorIs(t, err, errInvalid)

	out, _, err = execute(t, validFlow, "validate", "--deep", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "complexity")
}

func TestGraphCommand(t *testing.T) {
	out, _, err := execute(t, validFlow, "graph")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))
}

func TestChatLoop(t *testing.T) {
	var out bytes.Buffer
	var seen []string
	in := strings.NewReader("make it shorter\n\n  /flow  \n/quit\nnever read\n")

	err := chatLoop(context.Background(), in, &out, func(_ context.Context, line string) error {
		seen = append(seen, line)
		if line == "/flow" {
			return assert.AnError
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"make it shorter", "/flow"}, seen)
	assert.Contains(t, out.String(), "error: "+assert.AnError.Error())

	t.Run("EOF", func(t *testing.T) {
		var out bytes.Buffer
		err := chatLoop(context.Background(), strings.NewReader("hello"), &out, func(context.Context, string) error { return nil })
		assert.NoError(t, err)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		err := chatLoop(ctx, strings.NewReader("one\ntwo\n"), &bytes.Buffer{}, func(context.Context, string) error {
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		b, err := openBackends(ctx, config.StoreConfig{Backend: "memory"})
		require.NoError(t, err)
		defer b.Close()
		assert.NotNil(t, b.flows)
		assert.NotNil(t, b.sessions)
		assert.Nil(t, b.locker)
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		b, err := openBackends(ctx, config.StoreConfig{Backend: "file", Path: dir})
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.flows.Save(ctx, ports.ContractFlow("cli")))
		_, err = os.Stat(filepath.Join(dir, "flows"))
		assert.NoError(t, err)
	})

	t.Run("SealedSessions", func(t *testing.T) {
		key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
		b, err := openBackends(ctx, config.StoreConfig{Backend: "memory", EncryptionKey: key, Redact: []string{`\d{4}`}})
		require.NoError(t, err)
		defer b.Close()

		conv := domain.NewConversation("s")
		conv.Turns = append(conv.Turns, domain.Turn{Role: domain.RoleUser, Content: "pin 1234"})
		require.NoError(t, b.sessions.Save(ctx, "s", conv))
		loaded, err := b.sessions.Load(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, "pin ***", loaded.Turns[0].Content)

		_, err = openBackends(ctx, config.StoreConfig{Backend: "memory", Redact: []string{"("}})
		assert.Error(t, err)
	})

	t.Run("Misconfigured", func(t *testing.T) {
		_, err := openBackends(ctx, config.StoreConfig{Backend: "redis"})
		assert.ErrorContains(t, err, "redis_url")
		_, err = openBackends(ctx, config.StoreConfig{Backend: "postgres"})
		assert.ErrorContains(t, err, "postgres_dsn")
		_, err = openBackends(ctx, config.StoreConfig{Backend: "etcd"})
		assert.ErrorContains(t, err, "unknown store backend")
	})
}
