package mcp

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/local-mcps/devtools-mcp/internal/common"
)

const maxLoggedArgLength = 120

type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

type ResourceHandler func(ctx context.Context) (interface{}, error)

type Tool struct {
	Name        string
	Description string
	Params      []Param
	// ReadOnly is false for tools with side effects on the host.
	ReadOnly bool
	Handler  ToolHandler
}

type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	Handler     ResourceHandler
}

// Builder collects tools and resources during startup.
type Builder struct {
	tools     map[string]*Tool
	resources map[string]*Resource
	errs      []error
}

func NewBuilder() *Builder {
	return &Builder{
		tools:     make(map[string]*Tool),
		resources: make(map[string]*Resource),
	}
}

func (b *Builder) RegisterTool(tool *Tool) {
	switch {
	case tool == nil || tool.Name == "":
		b.errs = append(b.errs, errors.New("tool without a name"))
	case tool.Handler == nil:
		b.errs = append(b.errs, fmt.Errorf("tool %s has no handler", tool.Name))
	case b.tools[tool.Name] != nil:
		b.errs = append(b.errs, fmt.Errorf("duplicate tool: %s", tool.Name))
	default:
		seen := make(map[string]bool, len(tool.Params))
		for _, p := range tool.Params {
			if seen[p.Name] {
				b.errs = append(b.errs, fmt.Errorf("tool %s declares parameter %s twice", tool.Name, p.Name))
				return
			}
			seen[p.Name] = true
		}
		b.tools[tool.Name] = tool
	}
}

func (b *Builder) RegisterResource(res *Resource) {
	switch {
	case res == nil || res.URI == "":
		b.errs = append(b.errs, errors.New("resource without a URI"))
	case res.Handler == nil:
		b.errs = append(b.errs, fmt.Errorf("resource %s has no handler", res.URI))
	case b.resources[res.URI] != nil:
		b.errs = append(b.errs, fmt.Errorf("duplicate resource: %s", res.URI))
	default:
		b.resources[res.URI] = res
	}
}

// Build freezes the registrations. The builder must not be used afterwards.
func (b *Builder) Build(logger *common.Logger, metricsEnabled bool) (*Registry, error) {
	schemas := make(map[string]*jsonschema.Schema, len(b.tools))
	for name, tool := range b.tools {
		schema, err := compileSchema(tool)
		if err != nil {
			b.errs = append(b.errs, err)
			continue
		}
		schemas[name] = schema
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("invalid registry: %w", errors.Join(b.errs...))
	}
	return &Registry{
		tools:     b.tools,
		schemas:   schemas,
		resources: b.resources,
		logger:    logger.WithField("component", "registry"),
		metrics:   metricsEnabled,
	}, nil
}

// Registry maps operation names to handlers. It is read-only once built,
// so concurrent dispatches need no locking.
type Registry struct {
	tools     map[string]*Tool
	schemas   map[string]*jsonschema.Schema
	resources map[string]*Resource
	logger    *common.Logger
	metrics   bool
}

func (r *Registry) Tools() []*Tool {
	tools := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

func (r *Registry) Resources() []*Resource {
	resources := make([]*Resource, 0, len(r.resources))
	for _, res := range r.resources {
		resources = append(resources, res)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].URI < resources[j].URI })
	return resources
}

// Dispatch runs the named tool. Every failure, including a handler panic,
// comes back as an error-shaped Result.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]interface{}) *Result {
	if args == nil {
		args = map[string]interface{}{}
	}
	log := r.logger.WithFields(map[string]interface{}{
		"call_id": uuid.NewString(),
		"tool":    name,
	})
	start := time.Now()

	var result *Result
	tool, ok := r.tools[name]
	switch {
	case !ok:
		result = Failure(common.CodeNotFound, fmt.Sprintf("unknown tool '%s'", name))
	default:
		if err := validateArgs(r.schemas[name], tool.Params, args); err != nil {
			result = r.errorResult(log, err)
		} else {
			result = r.invoke(log, func() (interface{}, error) {
				return tool.Handler(ctx, args)
			})
		}
	}

	r.audit(log, start, result, "args", summarizeArgs(args))
	return result
}

func (r *Registry) ReadResource(ctx context.Context, uri string) *Result {
	log := r.logger.WithFields(map[string]interface{}{
		"call_id":  uuid.NewString(),
		"resource": uri,
	})
	start := time.Now()

	var result *Result
	res, ok := r.resources[uri]
	if !ok {
		result = Failure(common.CodeNotFound, fmt.Sprintf("unknown resource '%s'", uri))
	} else {
		result = r.invoke(log, func() (interface{}, error) {
			return res.Handler(ctx)
		})
	}

	r.audit(log, start, result)
	return result
}

func (r *Registry) invoke(log *common.Logger, call func() (interface{}, error)) (result *Result) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("handler panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			result = Failure(common.CodeInternalFault, internalFaultMessage)
		}
	}()

	payload, err := call()
	if err != nil {
		return r.errorResult(log, err)
	}
	return Success(payload)
}

func (r *Registry) errorResult(log *common.Logger, err error) *Result {
	code := common.CodeOf(err)
	if code == common.CodeInternalFault {
		log.Error("unclassified handler error", "error", err)
		return Failure(code, internalFaultMessage)
	}

	var mcpErr *common.MCPError
	if errors.As(err, &mcpErr) {
		return Failure(code, mcpErr.Message)
	}
	return Failure(code, err.Error())
}

func (r *Registry) audit(log *common.Logger, start time.Time, result *Result, keyvals ...interface{}) {
	outcome := "ok"
	if result.IsError() {
		outcome = string(result.Kind())
	}
	keyvals = append(keyvals, "outcome", outcome)
	if r.metrics {
		keyvals = append(keyvals, "duration_ms", time.Since(start).Milliseconds())
	}
	log.Info("call completed", keyvals...)
}

func summarizeArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxLoggedArgLength {
			v = s[:maxLoggedArgLength] + "..."
		}
		out[k] = v
	}
	return out
}
