package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	// ReadError: the input file is missing or unreadable. Fatal.
	ReadError ErrorCode = "ReadError"
	// ParseError: the input is not a decodable document. Fatal.
	ParseError ErrorCode = "ParseError"
	// ConversionError: a swagger 2.0 document could not be converted to v3.
	// Recovered by parsing the legacy shape directly.
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured loader error.
type SpecError struct {
	Code     ErrorCode
	Message  string
	Location string // file path
	Cause    error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	Logger *slog.Logger
	// YAML forces YAML decoding regardless of the file extension.
	YAML bool
}

// Option mutates Settings.
type Option func(*Settings)

func WithLogger(l *slog.Logger) Option { return func(s *Settings) { s.Logger = l } }
func WithYAML(yes bool) Option         { return func(s *Settings) { s.YAML = yes } }

// Load reads and decodes the document at path. Only a missing/unreadable file
// or undecodable content is an error; everything else is accepted as-is.
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// Swagger 2.0 documents are converted to OpenAPI v3 first.
func Load(ctx context.Context, path string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &SpecError{Code: ReadError, Message: "spec: input is empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &SpecError{Code: ReadError, Message: fmt.Sprintf("resolve path: %v", err), Location: path, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: ReadError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	ext := strings.ToLower(filepath.Ext(abs))
	if ext == ".yaml" || ext == ".yml" {
		opts = append([]Option{WithYAML(true)}, opts...)
	}
	return Parse(ctx, raw, abs, opts...)
}

// Read decodes a document from r. location is used in messages only.
func Read(ctx context.Context, r io.Reader, location string, opts ...Option) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &SpecError{Code: ReadError, Message: fmt.Sprintf("read %s: %v", location, err), Location: location, Cause: err}
	}
	return Parse(ctx, raw, location, opts...)
}

// Parse decodes raw document bytes.
func Parse(ctx context.Context, raw []byte, location string, opts ...Option) (*Document, error) {
	_ = ctx
	settings := Settings{}
	for _, opt := range opts {
		opt(&settings)
	}
	logger := settings.Logger
	if logger == nil {
		logger = discardLogger()
	}

	data := raw
	if settings.YAML {
		converted, err := yamlToJSON(raw)
		if err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
		}
		data = converted
	}
	if !json.Valid(data) {
		err := json.Unmarshal(data, new(any))
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: not valid JSON: %v", location, err), Location: location, Cause: err}
	}

	if detectSpecVersion(data) == 2 {
		converted, err := convertV2ToV3(data)
		if err != nil {
			se := &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
			logger.Warn("swagger 2.0 conversion failed, reading legacy shape directly", "location", location, "error", se)
			data = liftLegacyShapes(data)
		} else {
			data = converted
		}
	}

	if lowered, changed := lowerTypeArrays(data); changed {
		logger.Debug("lowered array-valued schema types", "location", location)
		data = lowered
	}

	doc, err := decodeDocument(data, logger)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
	}
	doc.Location = location
	return doc, nil
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else 0.
// Unknown versions are still parsed as v3.
func detectSpecVersion(data []byte) int {
	var root struct {
		OpenAPI any `json:"openapi"`
		Swagger any `json:"swagger"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return 0
	}
	if s, _ := root.OpenAPI.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
		return 3
	}
	if s, _ := root.Swagger.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
		return 2
	}
	return 0
}

// yamlToJSON re-encodes a YAML document as JSON. Non-string mapping keys
// (e.g. unquoted response codes) are stringified.
func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(stringifyKeys(v))
}

func stringifyKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			val[k] = stringifyKeys(elem)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = stringifyKeys(elem)
		}
		return out
	case []any:
		for i, elem := range val {
			val[i] = stringifyKeys(elem)
		}
		return val
	default:
		return v
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
