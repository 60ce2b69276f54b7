package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// payloadFlags holds the mutually exclusive sources of a request body.
type payloadFlags struct {
	data string
	file string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.data, "data", "", "request body as inline JSON")
	cmd.Flags().StringVar(&p.file, "file", "", "request body file (.json, .jsonc, .yaml, .yml)")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

// read returns the payload as compact JSON bytes.
func (p *payloadFlags) read() ([]byte, error) {
	switch {
	case p.data != "":
		return parseJSONPayload([]byte(p.data), "--data")
	case p.file != "":
		return readPayloadFile(p.file)
	default:
		return nil, errors.New("one of --data or --file is required")
	}
}

// readPayloadFile loads a payload file, choosing the decoder by extension.
func readPayloadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jsonc":
		return parseJSONPayload(raw, path)
	case ".yaml", ".yml":
		return parseYAMLPayload(raw, path)
	default:
		return nil, fmt.Errorf("payload %s: unsupported extension %q (want .json, .jsonc, .yaml or .yml)", path, ext)
	}
}

// parseJSONPayload accepts JSON with comments and trailing commas. The
// document is only compacted, so numbers and strings reach the backend
// exactly as written.
func parseJSONPayload(raw []byte, source string) ([]byte, error) {
	data := bytes.TrimSpace(jsonc.ToJSON(raw))
	if !json.Valid(data) {
		return nil, fmt.Errorf("payload %s: invalid JSON", source)
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("payload %s: must be a JSON object", source)
	}
	var out bytes.Buffer
	if err := json.Compact(&out, data); err != nil {
		return nil, fmt.Errorf("payload %s: %w", source, err)
	}
	return out.Bytes(), nil
}

func parseYAMLPayload(raw []byte, source string) ([]byte, error) {
	var v map[string]any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("payload %s: %w", source, err)
	}
	if v == nil {
		return nil, fmt.Errorf("payload %s: must be a mapping", source)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("payload %s: %w", source, err)
	}
	return data, nil
}
