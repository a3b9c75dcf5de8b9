// Package q builds predicates to be used with the Find methods of a repository.
//
//	repo.Find(ctx, q.Where[User]("Name").Is("John"))
//	repo.FindAll(ctx, q.Or(q.Where[User]("Age").Gt(30), q.F(User{Name: "John"})))
//
// Fields are accessed by name via reflection. A field that does not exist or
// a value that is not comparable to the field never matches, for any Operator.
package q

import (
	"cmp"
	"reflect"
)

// Operator represents comparison operators.
type Operator string

const (
	Eq  Operator = "="
	Ne  Operator = "!="
	Gt  Operator = ">"
	Gte Operator = ">="
	Lt  Operator = "<"
	Lte Operator = "<="
)

// Predicate reports whether an entity matches.
type Predicate[E any] func(E) bool

// Where starts a predicate on the exported struct field with the given name.
func Where[E any](field string) *WhereQuery[E] {
	return &WhereQuery[E]{field: field}
}

type WhereQuery[E any] struct {
	field string
}

func (w *WhereQuery[E]) Is(value any) Predicate[E]    { return Cond[E](w.field, Eq, value) }
func (w *WhereQuery[E]) IsNot(value any) Predicate[E] { return Cond[E](w.field, Ne, value) }
func (w *WhereQuery[E]) Gt(value any) Predicate[E]    { return Cond[E](w.field, Gt, value) }
func (w *WhereQuery[E]) Gte(value any) Predicate[E]   { return Cond[E](w.field, Gte, value) }
func (w *WhereQuery[E]) Lt(value any) Predicate[E]    { return Cond[E](w.field, Lt, value) }
func (w *WhereQuery[E]) Lte(value any) Predicate[E]   { return Cond[E](w.field, Lte, value) }

// Cond returns a predicate comparing the field of an entity with value using op.
func Cond[E any](field string, op Operator, value any) Predicate[E] {
	want := reflect.ValueOf(value)

	return func(e E) bool {
		got := fieldByName(reflect.ValueOf(e), field)
		if !got.IsValid() || !want.IsValid() {
			return false
		}

		c, ok := compare(got, want)
		if !ok {
			return false
		}

		switch op {
		case Eq:
			return c == 0
		case Ne:
			return c != 0
		case Gt:
			return c > 0
		case Gte:
			return c >= 0
		case Lt:
			return c < 0
		case Lte:
			return c <= 0
		default:
			return false
		}
	}
}

// F matches all entities, which have the same values as m for each non zero field of m.
// A zero value m matches every entity.
func F[E any](m E) Predicate[E] {
	fv := reflect.Indirect(reflect.ValueOf(m))
	if !fv.IsValid() || fv.Kind() != reflect.Struct {
		return func(E) bool { return false }
	}

	ft := fv.Type()
	conds := []Predicate[E]{}

	for i := range fv.NumField() {
		if !ft.Field(i).IsExported() || fv.Field(i).IsZero() {
			continue
		}

		conds = append(conds, Cond[E](ft.Field(i).Name, Eq, fv.Field(i).Interface()))
	}

	return And(conds...)
}

// And matches if all predicates match. Without predicates it matches every entity.
func And[E any](preds ...Predicate[E]) Predicate[E] {
	return func(e E) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}

		return true
	}
}

// Or matches if at least one of the predicates matches.
func Or[E any](preds ...Predicate[E]) Predicate[E] {
	return func(e E) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}

		return false
	}
}

func Not[E any](pred Predicate[E]) Predicate[E] {
	return func(e E) bool {
		return !pred(e)
	}
}

func fieldByName(v reflect.Value, name string) reflect.Value {
	v = reflect.Indirect(v)
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return reflect.Value{}
	}

	f, ok := v.Type().FieldByName(name)
	if !ok || !f.IsExported() {
		return reflect.Value{}
	}

	return v.FieldByIndex(f.Index)
}

// compare returns -1, 0, +1 like cmp.Compare.
// ok is false, if a and b cannot be compared.
func compare(a, b reflect.Value) (int, bool) {
	switch {
	case a.Kind() == reflect.String && b.Kind() == reflect.String:
		return cmp.Compare(a.String(), b.String()), true
	case a.Kind() == reflect.Bool && b.Kind() == reflect.Bool:
		return cmp.Compare(boolToInt(a.Bool()), boolToInt(b.Bool())), true
	case isNumber(a) && isNumber(b):
		return compareNumbers(a, b), true
	default:
		return 0, false
	}
}

func compareNumbers(a, b reflect.Value) int {
	switch {
	case isFloat(a) || isFloat(b):
		return cmp.Compare(toFloat(a), toFloat(b))
	case isSigned(a) && isSigned(b):
		return cmp.Compare(a.Int(), b.Int())
	case !isSigned(a) && !isSigned(b):
		return cmp.Compare(a.Uint(), b.Uint())
	case isSigned(a):
		if a.Int() < 0 {
			return -1
		}

		return cmp.Compare(uint64(a.Int()), b.Uint())
	default:
		if b.Int() < 0 {
			return 1
		}

		return cmp.Compare(a.Uint(), uint64(b.Int()))
	}
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() { //nolint:exhaustive // only numbers are relevant
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() { //nolint:exhaustive // only signed integers are relevant
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v):
		return v.Float()
	case isSigned(v):
		return float64(v.Int())
	default:
		return float64(v.Uint())
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
