package generator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const writesOutput = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
echo "writing $out"
printf 'export interface paths {}\n' > "$out"
`

// installFakeTool writes an executable script onto a fresh PATH entry.
func installFakeTool(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunner_Args(t *testing.T) {
	r := NewRunner(Config{
		Runner:    "bun",
		Generator: "openapi-typescript",
		Schema:    "./limbus-openapi/limbus.yaml",
		Output:    "oapi-gen.ts",
		Flags:     []string{"--alphabetize", "--make-paths-enum"},
	}, nil)

	assert.Equal(t, []string{
		"openapi-typescript", "./limbus-openapi/limbus.yaml",
		"-o", "oapi-gen.ts",
		"--alphabetize", "--make-paths-enum",
	}, r.Args())
}

func TestRunner_CheckAvailable(t *testing.T) {
	r := NewRunner(Config{Runner: "bun"}, nil)

	r.lookPath = func(string) (string, error) { return "/usr/local/bin/bun", nil }
	assert.NoError(t, r.CheckAvailable())

	r.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	err := r.CheckAvailable()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolMissing)
	assert.Contains(t, err.Error(), "https://bun.sh/")
}

func TestRunner_GenerateMissingTool(t *testing.T) {
	r := NewRunner(Config{Runner: "typegen-no-such-tool-xyz"}, nil)

	err := r.Generate(context.Background())
	assert.ErrorIs(t, err, ErrToolMissing)
}

func TestRunner_GenerateWritesOutput(t *testing.T) {
	installFakeTool(t, "fakebun", writesOutput)
	out := filepath.Join(t.TempDir(), "nested", "oapi-gen.ts")

	r := NewRunner(Config{
		Runner:    "fakebun",
		Generator: "openapi-typescript",
		Schema:    "schema.yaml",
		Output:    out,
		Flags:     []string{"--alphabetize"},
		Timeout:   10 * time.Second,
	}, nil)

	require.NoError(t, r.Generate(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "export interface paths {}\n", string(data))
}

func TestRunner_GenerateNonZeroExit(t *testing.T) {
	installFakeTool(t, "fakebun", "#!/bin/sh\necho boom >&2\nexit 3\n")

	r := NewRunner(Config{
		Runner:    "fakebun",
		Generator: "openapi-typescript",
		Schema:    "schema.yaml",
		Output:    filepath.Join(t.TempDir(), "oapi-gen.ts"),
	}, nil)

	err := r.Generate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerateFailed)
	assert.Contains(t, err.Error(), "i -D openapi-typescript typescript")
}

func TestRunner_GenerateWithoutOutput(t *testing.T) {
	installFakeTool(t, "fakebun", "#!/bin/sh\nexit 0\n")

	r := NewRunner(Config{
		Runner: "fakebun",
		Schema: "schema.yaml",
		Output: filepath.Join(t.TempDir(), "oapi-gen.ts"),
	}, nil)

	err := r.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerateFailed)
}

func TestRunner_GenerateTimeout(t *testing.T) {
	installFakeTool(t, "fakebun", "#!/bin/sh\nexec sleep 5\n")

	r := NewRunner(Config{
		Runner:  "fakebun",
		Schema:  "schema.yaml",
		Output:  filepath.Join(t.TempDir(), "oapi-gen.ts"),
		Timeout: 100 * time.Millisecond,
	}, nil)

	start := time.Now()
	err := r.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerateFailed)
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_GenerateLongOutputLines(t *testing.T) {
	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
head -c 70000 /dev/zero | tr '\0' 'a'; echo
head -c 200000 /dev/zero | tr '\0' 'b' >&2; echo >&2
echo done
printf 'export interface paths {}\n' > "$out"
`
	installFakeTool(t, "fakebun", script)

	logs := &bytes.Buffer{}
	r := NewRunner(Config{
		Runner:  "fakebun",
		Schema:  "schema.yaml",
		Output:  filepath.Join(t.TempDir(), "oapi-gen.ts"),
		Timeout: 10 * time.Second,
	}, slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	require.NoError(t, r.Generate(context.Background()))
	assert.Contains(t, logs.String(), "msg=done")
	assert.Contains(t, logs.String(), strings.Repeat("b", maxLineLength))
}

func TestRunner_GenerateTimeoutWithLingeringChild(t *testing.T) {
	installFakeTool(t, "fakebun", "#!/bin/sh\nsleep 5 &\nexec sleep 5\n")

	r := NewRunner(Config{
		Runner:  "fakebun",
		Schema:  "schema.yaml",
		Output:  filepath.Join(t.TempDir(), "oapi-gen.ts"),
		Timeout: 100 * time.Millisecond,
	}, nil)

	start := time.Now()
	err := r.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerateFailed)
	assert.Less(t, time.Since(start), waitDelay+2*time.Second)
}

func TestLineWriter(t *testing.T) {
	logs := &bytes.Buffer{}
	w := &lineWriter{
		logger: slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		level:  slog.LevelInfo,
	}

	for _, chunk := range []string{"first pa", "rt\r\n\nsecond\nthi", "rd"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		assert.Equal(t, len(chunk), n)
	}
	assert.NotContains(t, logs.String(), "third")

	w.Flush()
	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `msg="first part"`)
	assert.Contains(t, lines[1], "msg=second")
	assert.Contains(t, lines[2], "msg=third")
}
