package math

import (
	"context"
	"fmt"
	stdmath "math"

	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

type operands struct {
	A float64
	B float64
}

func operandParams() []mcp.Param {
	return []mcp.Param{
		mcp.NumberParam("a", "First number", true),
		mcp.NumberParam("b", "Second number", true),
	}
}

func decodeOperands(params map[string]interface{}) (operands, error) {
	a, err := mcp.GetNumberParam(params, "a", true, 0)
	if err != nil {
		return operands{}, err
	}
	b, err := mcp.GetNumberParam(params, "b", true, 0)
	if err != nil {
		return operands{}, err
	}
	return operands{A: a, B: b}, nil
}

// finite rejects results that JSON cannot carry.
func finite(op string, v float64) error {
	if stdmath.IsInf(v, 0) || stdmath.IsNaN(v) {
		return fmt.Errorf("%w: %s result is not a finite number", common.ErrInvalidArgument, op)
	}
	return nil
}

func (s *Server) addTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add",
		Description: "Add two numbers",
		Params:      operandParams(),
		ReadOnly:    true,
		Handler:     s.handleAdd,
	}
}

func (s *Server) handleAdd(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	args, err := decodeOperands(params)
	if err != nil {
		return nil, err
	}

	sum := args.A + args.B
	if err := finite("sum", sum); err != nil {
		return nil, err
	}

	s.logger.Debug("add", "a", args.A, "b", args.B, "sum", sum)
	return map[string]interface{}{
		"a":   args.A,
		"b":   args.B,
		"sum": sum,
	}, nil
}

func (s *Server) multiplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "multiply",
		Description: "Multiply two numbers",
		Params:      operandParams(),
		ReadOnly:    true,
		Handler:     s.handleMultiply,
	}
}

func (s *Server) handleMultiply(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	args, err := decodeOperands(params)
	if err != nil {
		return nil, err
	}

	product := args.A * args.B
	if err := finite("product", product); err != nil {
		return nil, err
	}

	s.logger.Debug("multiply", "a", args.A, "b", args.B, "product", product)
	return map[string]interface{}{
		"a":       args.A,
		"b":       args.B,
		"product": product,
	}, nil
}
