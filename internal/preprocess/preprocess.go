// Package preprocess evaluates author-written JavaScript expressions embedded
// in test cases as "@javascript:<expr>" before a harness is generated.
package preprocess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

const Prefix = "@javascript:"

// MaxResultSize bounds the text an expression may produce.
const MaxResultSize = 8 << 20

type Options struct {
	Timeout     time.Duration
	MaxExprSize int
}

// Evaluator runs each expression in a fresh runtime with no host bindings.
type Evaluator struct {
	opts   Options
	logger *zerolog.Logger
}

func NewEvaluator(opts Options, logger *zerolog.Logger) *Evaluator {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.MaxExprSize <= 0 {
		opts.MaxExprSize = 4096
	}
	return &Evaluator{opts: opts, logger: logger}
}

// Eval returns the expression's value as text: strings verbatim, objects
// and arrays as JSON, anything else in its JavaScript string form.
func (e *Evaluator) Eval(ctx context.Context, expr string) (string, error) {
	if len(expr) > e.opts.MaxExprSize {
		return "", fmt.Errorf("expression is %d bytes, limit is %d", len(expr), e.opts.MaxExprSize)
	}

	vm := goja.New()
	timer := time.AfterFunc(e.opts.Timeout, func() {
		vm.Interrupt("evaluation timed out")
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	v, err := vm.RunString(expr)
	if err != nil {
		return "", err
	}

	var out string
	switch {
	case v == nil || goja.IsUndefined(v):
		out = "undefined"
	case goja.IsNull(v):
		out = "null"
	default:
		if s, ok := v.Export().(string); ok {
			out = s
			break
		}
		if _, isObject := v.(*goja.Object); isObject {
			if _, isFunc := goja.AssertFunction(v); !isFunc {
				out, err = stringify(vm, v)
				if err != nil {
					return "", err
				}
				break
			}
		}
		out = v.String()
	}

	if len(out) > MaxResultSize {
		return "", fmt.Errorf("result is %d bytes, limit is %d", len(out), MaxResultSize)
	}
	return out, nil
}

func stringify(vm *goja.Runtime, v goja.Value) (string, error) {
	fn, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return "", fmt.Errorf("JSON.stringify is not callable")
	}
	res, err := fn(goja.Undefined(), v)
	if err != nil {
		return "", err
	}
	if goja.IsUndefined(res) {
		return "undefined", nil
	}
	return res.String(), nil
}

// Expand returns a copy of tc with every expression field replaced by its
// value. A field that fails to evaluate keeps its text without the prefix.
func (e *Evaluator) Expand(ctx context.Context, tc map[string]any) map[string]any {
	out := make(map[string]any, len(tc))
	for k, v := range tc {
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, Prefix) {
			out[k] = v
			continue
		}
		expr := strings.TrimPrefix(s, Prefix)
		val, err := e.Eval(ctx, expr)
		if err != nil {
			e.logger.Warn().Err(err).Str("field", k).Msg("test case expression failed")
			out[k] = expr
			continue
		}
		out[k] = val
	}
	return out
}
