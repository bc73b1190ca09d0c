package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/salmonumbrella/reshape-cli/internal/logging"
	"github.com/salmonumbrella/reshape-cli/internal/table"
	"github.com/salmonumbrella/reshape-cli/internal/tableio"
)

// readInputSource reads content from a file path or stdin when source is "-".
func readInputSource(source string, stdin io.Reader) (string, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", fmt.Errorf("empty input source")
	}

	var r io.Reader
	if trimmed == "-" {
		if stdin != nil {
			r = stdin
		} else {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(trimmed)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", trimmed, err)
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func inputHasData(r io.Reader) bool {
	if r == nil {
		r = os.Stdin
	}
	if file, ok := r.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	return true
}

// readTable loads the table named by path using the global input settings.
func readTable(ctx context.Context, path string) (*table.Table, error) {
	t, err := tableio.ReadFile(path, stdinFromContext(ctx), readOptions())
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("table loaded", "source", path, "rows", t.Len(), "columns", len(t.Headers()))
	return t, nil
}

// readTableArg loads the optional [file] argument. Without one, stdin is read
// when something is piped into it.
func readTableArg(ctx context.Context, args []string) (*table.Table, error) {
	if len(args) > 0 {
		return readTable(ctx, args[0])
	}
	if !stdinHasData(stdinFromContext(ctx)) {
		return nil, fmt.Errorf("no input: pass a file or pipe a table on stdin")
	}
	return readTable(ctx, "-")
}
