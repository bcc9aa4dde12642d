package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/local-mcps/devtools-mcp/internal/common"
)

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Param declares one named argument of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

func StringParam(name, description string, required bool) Param {
	return Param{Name: name, Type: ParamString, Description: description, Required: required}
}

func IntParam(name, description string, required bool) Param {
	return Param{Name: name, Type: ParamInteger, Description: description, Required: required}
}

func NumberParam(name, description string, required bool) Param {
	return Param{Name: name, Type: ParamNumber, Description: description, Required: required}
}

func BoolParam(name, description string, required bool) Param {
	return Param{Name: name, Type: ParamBoolean, Description: description, Required: required}
}

// InputSchema renders params as a JSON Schema object.
func InputSchema(params []Param) map[string]interface{} {
	properties := make(map[string]interface{}, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		properties[p.Name] = map[string]interface{}{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// compileSchema compiles the InputSchema of a tool so arguments can be
// validated against it on every call.
func compileSchema(tool *Tool) (*jsonschema.Schema, error) {
	doc, err := toJSONValue(InputSchema(tool.Params))
	if err != nil {
		return nil, fmt.Errorf("tool %s: encoding schema: %w", tool.Name, err)
	}

	url := "https://devtools-mcp.local/tools/" + tool.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("tool %s: %w", tool.Name, err)
	}
	schema, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("tool %s: compiling schema: %w", tool.Name, err)
	}
	return schema, nil
}

// validateArgs checks args against the compiled schema before a handler
// sees them. A JSON null for a declared parameter counts as absent.
func validateArgs(schema *jsonschema.Schema, params []Param, args map[string]interface{}) error {
	present := make(map[string]interface{}, len(args))
	for k, v := range args {
		present[k] = v
	}
	for _, p := range params {
		if v, ok := present[p.Name]; ok && v == nil {
			delete(present, p.Name)
		}
	}

	doc, err := toJSONValue(present)
	if err != nil {
		return fmt.Errorf("%w: arguments are not valid JSON: %v", common.ErrInvalidArgument, err)
	}

	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", common.ErrInvalidArgument, describeViolation(verr))
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	return nil
}

// toJSONValue re-decodes v so numbers reach the validator as json.Number.
func toJSONValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// describeViolation flattens the validator's multi-line report, dropping
// the header line that names the schema URL.
func describeViolation(verr *jsonschema.ValidationError) string {
	lines := strings.Split(strings.TrimSpace(verr.Error()), "\n")
	if len(lines) > 1 {
		lines = lines[1:]
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(strings.TrimSpace(line), "- ")
	}
	return "invalid arguments: " + strings.Join(lines, "; ")
}
