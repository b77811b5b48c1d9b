package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// KeyVersion prefixes every key. Bump it when the encoding below changes so
// old and new keys can never collide.
const KeyVersion = "v1"

// maxDepth bounds nesting; cyclic values exceed it and fall back.
const maxDepth = 64

// ErrUnsupportedParam is returned by Serializable for params outside the
// closed set of cacheable shapes.
var ErrUnsupportedParam = errors.New("cache: unsupported parameter type")

var fallbackSeq atomic.Uint64

// MakeKey derives a cache key from an algorithm path and its parameters.
// Deep-equal params produce the same key; integers and integral floats encode
// identically so 2 and 2.0 share an entry. Params that cannot be encoded get a
// unique key and ok=false: such calls always miss instead of failing.
func MakeKey(path string, params []any) (key string, ok bool) {
	d := xxhash.New()
	n, err := encodeParams(d, params)
	if err != nil {
		return fmt.Sprintf("%s|%s|nocache|%d|%d", KeyVersion, path, fallbackSeq.Add(1), time.Now().UnixNano()), false
	}
	return fmt.Sprintf("%s|%s|%016x|%d", KeyVersion, path, d.Sum64(), n), true
}

// Serializable reports whether every param has a cacheable shape.
func Serializable(params []any) error {
	_, err := encodeParams(io.Discard, params)
	return err
}

type encoder struct {
	w io.Writer
	n int
}

func (e *encoder) write(s string) error {
	n, err := io.WriteString(e.w, s)
	e.n += n
	return err
}

func encodeParams(w io.Writer, params []any) (int, error) {
	e := &encoder{w: w}
	if err := e.write("["); err != nil {
		return e.n, err
	}
	for i, p := range params {
		if i > 0 {
			if err := e.write(","); err != nil {
				return e.n, err
			}
		}
		if err := e.encode(reflect.ValueOf(p), 0); err != nil {
			return e.n, fmt.Errorf("param %d: %w", i, err)
		}
	}
	return e.n, e.write("]")
}

func (e *encoder) encode(v reflect.Value, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d (cyclic value?)", ErrUnsupportedParam, maxDepth)
	}
	if !v.IsValid() {
		return e.write("n")
	}

	if v.Type() == reflect.TypeOf(json.Number("")) {
		return e.encodeNumber(json.Number(v.String()))
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return e.write("t")
		}
		return e.write("f")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.write("d" + strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.write("d" + strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return e.write("d" + formatFloat(v.Float()))
	case reflect.String:
		s := v.String()
		return e.write("s" + strconv.Itoa(len(s)) + ":" + s)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return e.write("n")
		}
		if err := e.write("["); err != nil {
			return err
		}
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				if err := e.write(","); err != nil {
					return err
				}
			}
			if err := e.encode(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return e.write("]")
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key %s", ErrUnsupportedParam, v.Type().Key())
		}
		if v.IsNil() {
			return e.write("n")
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		if err := e.write("{"); err != nil {
			return err
		}
		for i, k := range keys {
			if i > 0 {
				if err := e.write(","); err != nil {
					return err
				}
			}
			if err := e.write("s" + strconv.Itoa(len(k)) + ":" + k + "="); err != nil {
				return err
			}
			mv := v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key()))
			if err := e.encode(mv, depth+1); err != nil {
				return err
			}
		}
		return e.write("}")
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return e.write("n")
		}
		return e.encode(v.Elem(), depth+1)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedParam, v.Type())
	}
}

func (e *encoder) encodeNumber(n json.Number) error {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return e.write("d" + strconv.FormatInt(i, 10))
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("%w: malformed number %q", ErrUnsupportedParam, string(n))
	}
	return e.write("d" + formatFloat(f))
}

// formatFloat renders integral floats in integer form so 2.0 and 2 match.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
