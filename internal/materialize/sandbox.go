package materialize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
)

const DefaultSandboxTimeout = 5 * time.Second

// Sandbox evaluates catalog fragments in a throwaway goja runtime. The
// runtime's global object stands in for the page's window; host objects are
// either absent or inert.
type Sandbox struct {
	Timeout time.Duration
}

// Run evaluates fragments in order in one runtime, reading both bindings
// after each fragment.
func (s *Sandbox) Run(ctx context.Context, fragments []string) (*Bindings, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(1024)
	isolate(vm)

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSandboxTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	b := newBindings(MethodSandbox)
	for i, src := range fragments {
		if _, err := vm.RunScript(fmt.Sprintf("fragment-%d.js", i+1), src); err != nil {
			return nil, fmt.Errorf("%w: fragment %d: %v", ErrParseFailed, i+1, err)
		}

		if err := capture(vm, b); err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i+1, err)
		}
	}

	return b, nil
}

func isolate(vm *goja.Runtime) {
	global := vm.GlobalObject()
	vm.Set("window", global)
	vm.Set("self", global)

	for _, name := range []string{"require", "process", "module", "exports"} {
		vm.Set(name, goja.Undefined())
	}

	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	null := func(goja.FunctionCall) goja.Value { return goja.Null() }

	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval", "fetch"} {
		vm.Set(name, noop)
	}

	console := vm.NewObject()
	for _, name := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(name, noop)
	}
	vm.Set("console", console)

	document := vm.NewObject()
	document.Set("addEventListener", noop)
	document.Set("querySelector", null)
	document.Set("getElementById", null)
	document.Set("querySelectorAll", func(goja.FunctionCall) goja.Value { return vm.NewArray() })
	vm.Set("document", document)
}

func capture(vm *goja.Runtime, b *Bindings) error {
	global := vm.GlobalObject()

	if v := global.Get(YearModelsBinding); defined(v) {
		if err := b.setYearModels(v.Export()); err != nil {
			return err
		}
	}

	if v := global.Get(CatalogBinding); defined(v) {
		if err := b.mergeCatalog(v.Export()); err != nil {
			return err
		}
	}

	return nil
}

func defined(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}
