package materialize

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

var errNotLiteral = errors.New("not a literal data assignment")

// globals that alias the page's global object.
var receivers = map[string]bool{"window": true, "self": true, "globalThis": true}

type assignment struct {
	binding string
	member  bool
	key     string
	value   any
}

// ParseLiteral materializes fragments whose statements are all literal
// assignments. It returns an error wrapping errNotLiteral when a fragment
// needs to be executed to be understood.
func ParseLiteral(fragments []string) (*Bindings, error) {
	b := newBindings(MethodLiteral)

	for i, src := range fragments {
		prg, err := goja.Parse(fmt.Sprintf("fragment-%d.js", i+1), src)
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %d: %v", ErrParseFailed, i+1, err)
		}

		var ops []assignment
		for _, st := range prg.Body {
			as, err := literalStatement(st)
			if err != nil {
				return nil, fmt.Errorf("fragment %d: %w", i+1, err)
			}
			ops = append(ops, as...)
		}

		for _, op := range ops {
			if err := b.apply(op); err != nil {
				return nil, fmt.Errorf("fragment %d: %w", i+1, err)
			}
		}
	}

	return b, nil
}

func (b *Bindings) apply(op assignment) error {
	switch {
	case op.binding == YearModelsBinding:
		return b.setYearModels(op.value)

	case op.member:
		if !b.catalogDefined {
			// A member write to an undefined object throws in a browser.
			return fmt.Errorf("%w: %s[%q] assigned before %s", errNotLiteral, CatalogBinding, op.key, CatalogBinding)
		}
		b.Catalog[op.key] = op.value
		return nil

	default:
		return b.mergeCatalog(op.value)
	}
}

func literalStatement(st ast.Statement) ([]assignment, error) {
	switch s := st.(type) {
	case *ast.EmptyStatement:
		return nil, nil

	case *ast.ExpressionStatement:
		return literalExpression(s.Expression)

	case *ast.VariableStatement:
		var out []assignment
		for _, decl := range s.List {
			id, ok := decl.Target.(*ast.Identifier)
			if !ok {
				return nil, fmt.Errorf("%w: destructuring declaration", errNotLiteral)
			}
			if decl.Initializer == nil {
				continue
			}

			v, err := literalValue(decl.Initializer)
			if err != nil {
				return nil, err
			}

			if name := id.Name.String(); isBinding(name) {
				out = append(out, assignment{binding: name, value: v})
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %T", errNotLiteral, st)
	}
}

func literalExpression(expr ast.Expression) ([]assignment, error) {
	switch e := expr.(type) {
	case *ast.SequenceExpression:
		var out []assignment
		for _, item := range e.Sequence {
			as, err := literalExpression(item)
			if err != nil {
				return nil, err
			}
			out = append(out, as...)
		}
		return out, nil

	case *ast.AssignExpression:
		if e.Operator != token.ASSIGN {
			return nil, fmt.Errorf("%w: compound assignment", errNotLiteral)
		}

		v, err := literalValue(e.Right)
		if err != nil {
			return nil, err
		}

		as, ok := target(e.Left)
		if !ok {
			return nil, fmt.Errorf("%w: assignment target %T", errNotLiteral, e.Left)
		}
		if as.binding == "" {
			// Some other global; a literal there has no effect on the catalog.
			return nil, nil
		}

		as.value = v
		return []assignment{as}, nil

	default:
		return nil, fmt.Errorf("%w: %T", errNotLiteral, expr)
	}
}

// target resolves an assignment target to one of the two bindings. It
// returns an empty binding for other plain globals and ok=false for
// anything it cannot resolve statically.
func target(expr ast.Expression) (assignment, bool) {
	switch t := expr.(type) {
	case *ast.Identifier:
		return globalName(t.Name.String()), true

	case *ast.DotExpression:
		if id, ok := t.Left.(*ast.Identifier); ok && receivers[id.Name.String()] {
			return globalName(t.Identifier.Name.String()), true
		}
		if isCatalogRef(t.Left) {
			return assignment{binding: CatalogBinding, member: true, key: t.Identifier.Name.String()}, true
		}

	case *ast.BracketExpression:
		if !isCatalogRef(t.Left) {
			return assignment{}, false
		}
		key, err := propertyKey(t.Member)
		if err != nil {
			return assignment{}, false
		}
		return assignment{binding: CatalogBinding, member: true, key: key}, true
	}

	return assignment{}, false
}

func globalName(name string) assignment {
	if isBinding(name) {
		return assignment{binding: name}
	}
	return assignment{}
}

func isBinding(name string) bool {
	return name == YearModelsBinding || name == CatalogBinding
}

// isCatalogRef reports whether expr reads the catalog global.
func isCatalogRef(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name.String() == CatalogBinding
	case *ast.DotExpression:
		id, ok := e.Left.(*ast.Identifier)
		return ok && receivers[id.Name.String()] && e.Identifier.Name.String() == CatalogBinding
	}
	return false
}

func literalValue(expr ast.Expression) (any, error) {
	switch v := expr.(type) {
	case *ast.StringLiteral:
		return v.Value.String(), nil

	case *ast.NumberLiteral:
		return numberValue(v)

	case *ast.BooleanLiteral:
		return v.Value, nil

	case *ast.NullLiteral:
		return nil, nil

	case *ast.UnaryExpression:
		n, ok := v.Operand.(*ast.NumberLiteral)
		if !ok || (v.Operator != token.MINUS && v.Operator != token.PLUS) {
			break
		}
		num, err := numberValue(n)
		if err != nil || v.Operator == token.PLUS {
			return num, err
		}
		switch x := num.(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}

	case *ast.ArrayLiteral:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			if item == nil {
				return nil, fmt.Errorf("%w: array hole", errNotLiteral)
			}
			x, err := literalValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil

	case *ast.ObjectLiteral:
		out := make(map[string]any, len(v.Value))
		for _, prop := range v.Value {
			p, ok := prop.(*ast.PropertyKeyed)
			if !ok || p.Computed || p.Kind != ast.PropertyKindValue {
				return nil, fmt.Errorf("%w: object property %T", errNotLiteral, prop)
			}
			key, err := propertyKey(p.Key)
			if err != nil {
				return nil, err
			}
			x, err := literalValue(p.Value)
			if err != nil {
				return nil, err
			}
			out[key] = x
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %T", errNotLiteral, expr)
}

func numberValue(n *ast.NumberLiteral) (any, error) {
	switch x := n.Value.(type) {
	case int64:
		return x, nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x), nil
		}
		return x, nil
	}

	return nil, fmt.Errorf("%w: number %s", errNotLiteral, n.Literal)
}

// propertyKey returns the string form JavaScript uses for an object key.
func propertyKey(expr ast.Expression) (string, error) {
	switch k := expr.(type) {
	case *ast.StringLiteral:
		return k.Value.String(), nil
	case *ast.Identifier:
		return k.Name.String(), nil
	case *ast.NumberLiteral:
		num, err := numberValue(k)
		if err != nil {
			return "", err
		}
		switch x := num.(type) {
		case int64:
			return strconv.FormatInt(x, 10), nil
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		}
	}

	return "", fmt.Errorf("%w: property key %T", errNotLiteral, expr)
}
