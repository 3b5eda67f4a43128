package wasmgen

import (
	"context"
	"io"
	"strconv"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

type runConfig struct {
	out io.Writer
}

// Option configures Run.
type Option func(*runConfig)

// WithOutput writes every printed value to w, one per line, in addition to
// collecting it in Result.Output.
func WithOutput(w io.Writer) Option {
	return func(c *runConfig) {
		c.out = w
	}
}

// Result is the outcome of a run.
type Result struct {
	Output []int64
	Value  int64
}

// Run instantiates bin and calls the exported function entry with args.
// Cancelling ctx aborts the call.
func Run(ctx context.Context, bin []byte, entry string, args []int64, opts ...Option) (*Result, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithMemoryLimitPages(MemoryPages))
	defer r.Close(ctx)

	res := &Result{}
	var writeErr error
	_, err := r.NewHostModuleBuilder(HostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			v := int64(stack[0])
			res.Output = append(res.Output, v)
			if cfg.out != nil && writeErr == nil {
				_, writeErr = io.WriteString(cfg.out, strconv.FormatInt(v, 10)+"\n")
			}
		}), []api.ValueType{api.ValueTypeI64}, nil).
		Export(PrintName).
		Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvariant, err, "instantiate host module")
	}

	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "compile failed")
	}
	def, ok := compiled.ExportedFunctions()[entry]
	if !ok {
		return nil, errors.NotFound(errors.PhaseRuntime, "exported function", entry)
	}
	for _, t := range def.ParamTypes() {
		if t != api.ValueTypeI64 {
			return nil, errors.New(errors.PhaseRuntime, errors.KindUnsupported).
				Symbol(entry).
				Detail("entry point takes a variable by reference").
				Build()
		}
	}
	if len(args) != len(def.ParamTypes()) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindArity).
			Symbol(entry).
			Detail("expected %d arguments, got %d", len(def.ParamTypes()), len(args)).
			Build()
	}

	// The start function runs the global initializers here.
	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindTrap, err, "instantiate failed")
	}

	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = uint64(a)
	}
	results, err := mod.ExportedFunction(entry).Call(ctx, params...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindLimit, ctx.Err(), "call cancelled")
		}
		return nil, errors.New(errors.PhaseRuntime, errors.KindTrap).
			Symbol(entry).
			Cause(err).
			Detail("call trapped").
			Build()
	}
	if writeErr != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindTrap, writeErr, "write output")
	}
	if len(results) > 0 {
		res.Value = int64(results[0])
	}

	Logger().Debug("wasm call finished",
		zap.String("entry", entry),
		zap.Int("printed", len(res.Output)),
		zap.Int64("value", res.Value))
	return res, nil
}

// RunModule compiles m and runs entry, a function of m.
func RunModule(ctx context.Context, m *ir.Module, entry string, args []int64, opts ...Option) (*Result, error) {
	bin, err := Compile(m)
	if err != nil {
		return nil, err
	}
	return Run(ctx, bin, entry, args, opts...)
}
