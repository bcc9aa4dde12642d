package transport

import (
	"context"
	"errors"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/local-mcps/devtools-mcp/internal/prompts"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

func integerType(schema map[string]any) {
	schema["type"] = "integer"
}

func toMCPTool(tool *mcp.Tool) mcpgo.Tool {
	opts := []mcpgo.ToolOption{mcpgo.WithDescription(tool.Description)}

	for _, p := range tool.Params {
		propOpts := []mcpgo.PropertyOption{mcpgo.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcpgo.Required())
		}
		switch p.Type {
		case mcp.ParamString:
			opts = append(opts, mcpgo.WithString(p.Name, propOpts...))
		case mcp.ParamBoolean:
			opts = append(opts, mcpgo.WithBoolean(p.Name, propOpts...))
		case mcp.ParamInteger:
			opts = append(opts, mcpgo.WithNumber(p.Name, append(propOpts, integerType)...))
		case mcp.ParamNumber:
			opts = append(opts, mcpgo.WithNumber(p.Name, propOpts...))
		}
	}

	if tool.ReadOnly {
		opts = append(opts, mcpgo.WithToolAnnotation(mcpgo.ToolAnnotation{
			ReadOnlyHint:    mcpgo.ToBoolPtr(true),
			DestructiveHint: mcpgo.ToBoolPtr(false),
			OpenWorldHint:   mcpgo.ToBoolPtr(false),
		}))
	} else {
		opts = append(opts, mcpgo.WithToolAnnotation(mcpgo.ToolAnnotation{
			ReadOnlyHint:    mcpgo.ToBoolPtr(false),
			DestructiveHint: mcpgo.ToBoolPtr(true),
			OpenWorldHint:   mcpgo.ToBoolPtr(false),
		}))
	}

	return mcpgo.NewTool(tool.Name, opts...)
}

// toolHandler relays the registry's Result as the text content of the
// tool result, with isError set for the error shape.
func toolHandler(registry *mcp.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		result := registry.Dispatch(ctx, name, request.GetArguments())
		if result.IsError() {
			return mcpgo.NewToolResultError(result.Text()), nil
		}
		return mcpgo.NewToolResultText(result.Text()), nil
	}
}

func toMCPResource(res *mcp.Resource) mcpgo.Resource {
	return mcpgo.NewResource(res.URI, res.Name,
		mcpgo.WithResourceDescription(res.Description),
		mcpgo.WithMIMEType(res.MIMEType),
	)
}

// resourceHandler reports failures as protocol errors since resource reads
// have no error flag.
func resourceHandler(registry *mcp.Registry, res *mcp.Resource) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcpgo.ReadResourceRequest) ([]mcpgo.ResourceContents, error) {
		result := registry.ReadResource(ctx, res.URI)
		if result.IsError() {
			return nil, errors.New(result.Text())
		}
		return []mcpgo.ResourceContents{
			mcpgo.TextResourceContents{
				URI:      res.URI,
				MIMEType: res.MIMEType,
				Text:     result.Text(),
			},
		}, nil
	}
}

func promptHandler(catalog *prompts.Catalog, name string) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcpgo.GetPromptRequest) (*mcpgo.GetPromptResult, error) {
		p, err := catalog.Get(name)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		return mcpgo.NewGetPromptResult(p.Description, []mcpgo.PromptMessage{
			mcpgo.NewPromptMessage(mcpgo.RoleUser, mcpgo.NewTextContent(p.Text)),
		}), nil
	}
}
