package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/reshape-cli/internal/output"
	"github.com/salmonumbrella/reshape-cli/internal/table"
)

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := errorFormatFromContext(ctx)
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
}

func buildErrorEnvelope(err error) map[string]interface{} {
	payload := map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
		},
	}

	errMap := payload["error"].(map[string]interface{})
	errMap["category"] = "system"
	errMap["type"] = "error"

	var notFoundErr table.NotFoundError
	if errors.As(err, &notFoundErr) {
		errMap["type"] = "not_found"
		errMap["category"] = "user"
	}

	var validationErr table.InvalidArgumentError
	if errors.As(err, &validationErr) {
		errMap["type"] = "validation"
		errMap["category"] = "user"
	}

	var schemaErr table.EmptySchemaError
	if errors.As(err, &schemaErr) {
		errMap["type"] = "empty_schema"
		errMap["category"] = "user"
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		errMap["type"] = "io"
		errMap["path"] = pathErr.Path
		if errors.Is(err, fs.ErrNotExist) {
			errMap["category"] = "user"
		}
	}

	return payload
}
