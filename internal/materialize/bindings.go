package materialize

import (
	"errors"
	"fmt"
)

const (
	YearModelsBinding = "yearNameCombos"
	CatalogBinding    = "quizFunctionData"
)

var ErrParseFailed = errors.New("catalog script could not be materialized")

// Method records how the bindings were produced.
type Method string

const (
	MethodLiteral Method = "literal"
	MethodSandbox Method = "sandbox"
)

// Bindings are the values the catalog scripts define.
type Bindings struct {
	YearModels []any
	Catalog    map[string]any
	Method     Method

	catalogDefined bool
}

func newBindings(m Method) *Bindings {
	return &Bindings{
		YearModels: []any{},
		Catalog:    map[string]any{},
		Method:     m,
	}
}

func (b *Bindings) setYearModels(v any) error {
	arr, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%w: %s is %T, want an array", ErrParseFailed, YearModelsBinding, v)
	}

	b.YearModels = arr
	return nil
}

func (b *Bindings) mergeCatalog(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s is %T, want an object", ErrParseFailed, CatalogBinding, v)
	}

	for k, entry := range m {
		b.Catalog[k] = entry
	}
	b.catalogDefined = true

	return nil
}
