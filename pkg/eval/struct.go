package eval

import (
	"github.com/kraitlang/krait/internal/value"
	"github.com/kraitlang/krait/pkg/diag"
)

// builtinStruct implements the generic `__struct__(name, ctor, field_factory,
// extra_pairs)` lowering that the `struct` declaration sugar reduces to
// conceptually (evalStructDecl builds its instances directly for
// efficiency, but source can call this built-in the same way and get
// identical semantics):
//
//   - name: a string, the struct's display name
//   - ctor: a function(args...) -> tuple of alternating field name/value
//     pairs, called once per instantiation to produce that instance's own
//     fields
//   - field_factory: a function(self, field_name) -> value, consulted only
//     for fields ctor didn't supply; its result is memoized per
//     (instance, field) pair so it never runs twice for the same field
//   - extra_pairs: a function(self) -> tuple of alternating name/value
//     pairs, evaluated once per instance to produce non-overridable extra
//     members (typically methods closing over self)
//
// __struct__ itself returns the constructor: a built-in function that
// takes the instantiation arguments and returns the StructInstance.
func builtinStruct(e *Evaluator) value.BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 4 {
			return nil, newError(diag.Runtime1, "__struct__ expects exactly 4 arguments", "")
		}
		name, ok := args[0].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "__struct__'s first argument must be a string", "")
		}
		ctor, fieldFactory, extraPairs := args[1], args[2], args[3]
		st := value.NewStructType(string(name), nil)

		construct := value.BuiltinFunc(func(callArgs []value.Value) (value.Value, error) {
			fieldsResult, err := e.Apply(ctor, callArgs)
			if err != nil {
				return nil, err
			}
			pairs, err := alternatingPairs(fieldsResult)
			if err != nil {
				return nil, err
			}

			inst := &value.StructInstance{Type: st, Fields: make(map[string]*value.Thunk), Extra: make(map[string]value.Value)}
			for fname, fval := range pairs {
				inst.Fields[fname] = value.Resolved(fval)
			}
			inst.WithFieldFactory(func(self *value.StructInstance, field string) (value.Value, bool, error) {
				if isUnit(fieldFactory) {
					return nil, false, nil
				}
				v, err := e.Apply(fieldFactory, []value.Value{self, value.String(field)})
				if err != nil {
					return nil, false, err
				}
				if _, isUnit := v.(value.Unit); isUnit {
					return nil, false, nil
				}
				return v, true, nil
			})

			if !isUnit(extraPairs) {
				extraResult, err := e.Apply(extraPairs, []value.Value{inst})
				if err != nil {
					return nil, err
				}
				extraFields, err := alternatingPairs(extraResult)
				if err != nil {
					return nil, err
				}
				for k, v := range extraFields {
					inst.Extra[k] = v
				}
			}
			return inst, nil
		})
		return value.NewBuiltin(string(name), construct), nil
	}
}

func isUnit(v value.Value) bool {
	_, ok := v.(value.Unit)
	return ok
}

// alternatingPairs reads a *value.Tuple of alternating string-keyed
// name/value pairs (the same shape __module__ takes), as produced by
// ctor/extra_pairs.
func alternatingPairs(v value.Value) (map[string]value.Value, error) {
	if isUnit(v) {
		return map[string]value.Value{}, nil
	}
	t, ok := v.(*value.Tuple)
	if !ok {
		return nil, newError(diag.Runtime2, "expected a tuple of name/value pairs", "")
	}
	if len(t.Elements)%2 != 0 {
		return nil, newError(diag.Runtime2, "name/value tuple must have an even number of elements", "")
	}
	out := make(map[string]value.Value, len(t.Elements)/2)
	for i := 0; i < len(t.Elements); i += 2 {
		name, ok := t.Elements[i].(value.String)
		if !ok {
			return nil, newError(diag.Runtime2, "field name must be a string", "")
		}
		out[string(name)] = t.Elements[i+1]
	}
	return out, nil
}
