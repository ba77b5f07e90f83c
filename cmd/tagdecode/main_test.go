package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gum/tagged"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeApp(t, newApp(), args...)
}

func executeApp(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := a.newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	err := a.run(cmd)
	return out.String(), err
}

// syncRecorder records log output and whether it was flushed.
type syncRecorder struct {
	bytes.Buffer
	synced bool
}

func (s *syncRecorder) Sync() error {
	s.synced = true
	return nil
}

func TestDecodeCommand(t *testing.T) {
	dir := t.TempDir()

	first := writeFile(t, dir, "first.json", `{"messages": [
		{"type": "text", "id": 1, "body": "hi"},
		{"type": "link", "id": 2, "href": "https://example.com"}
	]}`)

	second := writeFile(t, dir, "second.yaml", `
messages:
  - type: image
    id: 3
    url: http://x/y
    width: 10
`)

	out, err := execute(t, "decode", "--workers", "2", first, second)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	require.JSONEq(t, `{"messages": [
		{"type": "text", "id": 1, "body": "hi"},
		{"type": "link", "id": 2, "href": "https://example.com"}
	]}`, lines[0])

	require.JSONEq(t, `{"messages": [
		{"type": "image", "id": 3, "url": "http://x/y", "asset_id": "00000000-0000-0000-0000-000000000000", "width": 10}
	]}`, lines[1])
}

func TestDecodeCommandTopLevelArray(t *testing.T) {
	path := writeFile(t, t.TempDir(), "feed.json", `[{"kind": "text", "id": 1, "body": "hi"}]`)

	out, err := execute(t, "decode", "--field", "", "--discriminator", "kind", path)
	require.NoError(t, err)
	require.JSONEq(t, `[{"kind": "text", "id": 1, "body": "hi"}]`, out)
}

func TestDecodeCommandUnknownType(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.json", `{"messages": []}`)
	bad := writeFile(t, dir, "bad.json", `{"messages": [{"type": "audio", "id": 3}]}`)

	_, err := execute(t, "decode", good, bad)
	require.ErrorIs(t, err, tagged.ErrUnknownDiscriminator)
	require.ErrorContains(t, err, "bad.json")
	require.ErrorContains(t, err, "$.messages[0].type")
}

func TestDecodeCommandFlushesLogOnFailure(t *testing.T) {
	bad := writeFile(t, t.TempDir(), "bad.json", `{"messages": [{"type": "audio", "id": 3}]}`)

	var recorder syncRecorder

	a := newApp()
	a.buildLogger = func(verbose bool) (*zap.Logger, error) {
		encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		return zap.New(zapcore.NewCore(encoder, zapcore.Lock(&recorder), zapcore.DebugLevel)), nil
	}

	_, err := executeApp(t, a, "decode", bad)
	require.ErrorIs(t, err, tagged.ErrUnknownDiscriminator)

	require.True(t, recorder.synced)
	require.Contains(t, recorder.String(), "Decoding file failed")
}

func TestDecodeCommandValidation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "feed.json", `{"messages": [{"type": "text", "id": 0, "body": "hi"}]}`)

	_, err := execute(t, "decode", path)
	require.ErrorIs(t, err, tagged.ErrFieldDecode)

	_, err = execute(t, "decode", "--validate=false", path)
	require.NoError(t, err)
}

func TestDecodeCommandInvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "feed.json", `{"messages": [`)

	_, err := execute(t, "decode", path)
	require.ErrorContains(t, err, "invalid json")
}

func TestDecodeCommandConfig(t *testing.T) {
	dir := t.TempDir()

	config := writeFile(t, dir, "config.yaml", "field: items\ndiscriminator: kind\n")
	path := writeFile(t, dir, "feed.json", `{"items": [{"kind": "text", "id": 1, "body": "hi"}]}`)

	out, err := execute(t, "--config", config, "decode", path)
	require.NoError(t, err)
	require.JSONEq(t, `{"items": [{"kind": "text", "id": 1, "body": "hi"}]}`, out)
}

func TestTagsCommand(t *testing.T) {
	t.Setenv("TAGDECODE_DISCRIMINATOR", "kind")

	out, err := execute(t, "tags")
	require.NoError(t, err)
	require.Equal(t, "kind=text\nkind=image\nkind=link\n", out)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "messages", config.Field)
	require.Equal(t, "type", config.Discriminator)
	require.True(t, config.Validate)
	require.GreaterOrEqual(t, config.Workers, 1)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
