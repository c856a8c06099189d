package command

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/core/service"
)

// syncBuffer is a bytes.Buffer safe for the watch command's goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestApp returns the CLI app writing to a buffer, isolated from the
// user's CLI settings.
func newTestApp(t *testing.T) (*cli.App, *syncBuffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CONFHELPER_CLI_CONFIG", "")

	app := App()
	out := &syncBuffer{}
	app.Writer = out
	app.ErrWriter = io.Discard
	return app, out
}

// runApp runs the CLI with args and returns its standard output.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app, out := newTestApp(t)
	err := app.Run(append([]string{"confhelper"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimLeft(content, "\n")), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

const schemaDescriptor = `
children:
  server:
    defaults_if_not_set: true
    children:
      host:
        type: scalar
        default: localhost
      port:
        type: integer
        default: 8080
        min: 1
        max: 65535
        info: Listen port.
  debug:
    type: boolean
    default: false
  password: scalar
  url: scalar
`

const appConfig = `
server:
  host: example.com
debug: true
password: hunter2
url: http://${server.host}/api
`

// fixture writes the schema descriptor and one config file.
func fixture(t *testing.T) (schemaPath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	return writeFile(t, dir, "schema.yaml", schemaDescriptor),
		writeFile(t, dir, "app.yaml", appConfig)
}

// hasRow reports whether a table output has a line with exactly these
// whitespace-separated cells.
func hasRow(out string, cells ...string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != len(cells) {
			continue
		}
		match := true
		for i := range cells {
			if fields[i] != cells[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// newConfigHelperForTest parses args as global flags and returns the
// helper newConfigHelper builds from them.
func newConfigHelperForTest(t *testing.T, args ...string) (*service.ConfigHelper, error) {
	t.Helper()
	app, _ := newTestApp(t)

	var (
		h    *service.ConfigHelper
		herr error
	)
	app.Commands = []*cli.Command{{
		Name: "capture",
		Action: func(c *cli.Context) error {
			h, herr = newConfigHelper(c)
			return nil
		},
	}}
	if err := app.Run(append(append([]string{"confhelper"}, args...), "capture")); err != nil {
		return nil, err
	}
	return h, herr
}
