package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError(fmt.Errorf("encode output: %w", err))
	}
	return nil
}

// emit prints v as JSON in --json mode and the text message otherwise.
func (a *app) emit(w io.Writer, text string, v any) error {
	if a.flags.jsonMode {
		return printJSON(w, v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// parseJSONArg checks that a command-line argument is valid JSON.
func parseJSONArg(arg string) (json.RawMessage, error) {
	raw := json.RawMessage(arg)
	if !json.Valid(raw) {
		return nil, userError(fmt.Errorf("argument is not valid JSON: %s", arg))
	}
	return raw, nil
}
