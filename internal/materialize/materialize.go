package materialize

import (
	"context"
	"errors"
)

type Logger interface {
	Debugf(string, ...any)
}

type Materializer struct {
	sandbox *Sandbox
	log     Logger
}

func New(log Logger) *Materializer {
	return &Materializer{
		sandbox: &Sandbox{Timeout: DefaultSandboxTimeout},
		log:     log,
	}
}

// Materialize reads the bindings statically when every fragment is literal
// data and falls back to the sandbox otherwise.
func (m *Materializer) Materialize(ctx context.Context, fragments []string) (*Bindings, error) {
	b, err := ParseLiteral(fragments)
	if err == nil {
		m.log.Debugf("Materialized %d catalog entries from literals", len(b.Catalog))
		return b, nil
	}
	if !errors.Is(err, errNotLiteral) {
		return nil, err
	}

	m.log.Debugf("Literal read declined (%v); evaluating in sandbox", err)

	b, err = m.sandbox.Run(ctx, fragments)
	if err != nil {
		return nil, err
	}

	m.log.Debugf("Materialized %d catalog entries in sandbox", len(b.Catalog))
	return b, nil
}
