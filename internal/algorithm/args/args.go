// Package args decodes the loosely typed positional parameters an algorithm
// receives (numbers, nested slices, json.Number from HTTP bodies) into the Go
// types its implementation declares, and adapts typed functions to registry.Func.
package args

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/seantiz/algolab/internal/registry"
)

// ErrArgument is matched by every decoding and arity error.
var ErrArgument = errors.New("args: invalid argument")

// ArgumentError reports which positional argument failed to decode.
type ArgumentError struct {
	Index  int
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %d: %s", e.Index+1, e.Reason)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrArgument }

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Want, Got int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expected %d arguments, got %d", e.Want, e.Got)
}

func (e *ArityError) Is(target error) bool { return target == ErrArgument }

// As converts v into T. Supported targets are integer, float, string and bool
// kinds, slices of those (nested to any depth) and interface types.
func As[T any](v any) (T, error) {
	var out T
	if err := assign(reflect.ValueOf(&out).Elem(), v); err != nil {
		return out, err
	}
	return out, nil
}

func assign(dst reflect.Value, v any) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(v)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(v)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %s", describe(v))
		}
		dst.SetString(s)
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %s", describe(v))
		}
		dst.SetBool(b)
	case reflect.Slice:
		src := reflect.ValueOf(v)
		if !src.IsValid() || (src.Kind() != reflect.Slice && src.Kind() != reflect.Array) {
			return fmt.Errorf("expected array, got %s", describe(v))
		}
		n := src.Len()
		out := reflect.MakeSlice(dst.Type(), n, n)
		for i := 0; i < n; i++ {
			if err := assign(out.Index(i), src.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
	case reflect.Interface:
		if v == nil {
			return nil
		}
		val := reflect.ValueOf(v)
		if !val.Type().AssignableTo(dst.Type()) {
			return fmt.Errorf("%s is not assignable to %s", describe(v), dst.Type())
		}
		dst.Set(val)
	default:
		return fmt.Errorf("unsupported target type %s", dst.Type())
	}
	return nil
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}
		return int64(n), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", string(n))
		}
		return floatToInt(f)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	default:
		return 0, fmt.Errorf("expected integer, got %s", describe(v))
	}
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v overflows int64", f)
	}
	return int64(f), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", string(n))
		}
		return f, nil
	default:
		i, err := toInt(v)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %s", describe(v))
		}
		return float64(i), nil
	}
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func arg[T any](params []any, i int) (T, error) {
	v, err := As[T](params[i])
	if err != nil {
		return v, &ArgumentError{Index: i, Reason: err.Error()}
	}
	return v, nil
}

func arity(params []any, want int) error {
	if len(params) != want {
		return &ArityError{Want: want, Got: len(params)}
	}
	return nil
}

// Fn1 adapts a one-argument function.
func Fn1[A, R any](fn func(A) (R, error)) registry.Func {
	return func(params []any) (any, error) {
		if err := arity(params, 1); err != nil {
			return nil, err
		}
		a, err := arg[A](params, 0)
		if err != nil {
			return nil, err
		}
		return fn(a)
	}
}

// Fn2 adapts a two-argument function.
func Fn2[A, B, R any](fn func(A, B) (R, error)) registry.Func {
	return func(params []any) (any, error) {
		if err := arity(params, 2); err != nil {
			return nil, err
		}
		a, err := arg[A](params, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](params, 1)
		if err != nil {
			return nil, err
		}
		return fn(a, b)
	}
}

// Fn3 adapts a three-argument function.
func Fn3[A, B, C, R any](fn func(A, B, C) (R, error)) registry.Func {
	return func(params []any) (any, error) {
		if err := arity(params, 3); err != nil {
			return nil, err
		}
		a, err := arg[A](params, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](params, 1)
		if err != nil {
			return nil, err
		}
		c, err := arg[C](params, 2)
		if err != nil {
			return nil, err
		}
		return fn(a, b, c)
	}
}
