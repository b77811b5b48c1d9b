package registry_test

import (
	"errors"
	"testing"

	"github.com/seantiz/algolab/internal/registry"
)

func constant(v any) registry.Func {
	return func(_ []any) (any, error) { return v, nil }
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(map[string]registry.Category{
		"histograms": {
			"expand":     constant("expand"),
			"cumulative": constant("cumulative"),
		},
		"cryptography": {
			"gcd": func(args []any) (any, error) { return len(args), nil },
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return reg
}

func TestLookupExact(t *testing.T) {
	reg := newTestRegistry(t)

	fn, err := reg.Lookup("histograms.expand")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	got, _ := fn(nil)
	if got != "expand" {
		t.Errorf("resolved function returned %v, want expand", got)
	}
}

func TestLookupUnknown(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []string{
		"nonexistent.thing",
		"histograms.Expand", // case-sensitive
		"Histograms.expand",
		"histograms.",
		"histograms.expand.extra",
		"",
	}
	for _, path := range tests {
		_, err := reg.Lookup(path)
		if !errors.Is(err, registry.ErrUnknownAlgorithm) {
			t.Errorf("Lookup(%q) error = %v, want ErrUnknownAlgorithm", path, err)
			continue
		}
		var unknown *registry.UnknownAlgorithmError
		if !errors.As(err, &unknown) || unknown.Path != path {
			t.Errorf("Lookup(%q) error path = %v, want %q", path, unknown, path)
		}
	}
}

func TestLookupBareCategoryDispatches(t *testing.T) {
	reg := newTestRegistry(t)

	fn, err := reg.Lookup("cryptography")
	if err != nil {
		t.Fatalf("Lookup(category): %v", err)
	}
	got, err := fn([]any{"gcd", 12, 18})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != 2 {
		t.Errorf("dispatched gcd saw %v args, want 2", got)
	}

	if _, err := fn([]any{"missing"}); !errors.Is(err, registry.ErrUnknownAlgorithm) {
		t.Errorf("dispatch to missing method error = %v, want ErrUnknownAlgorithm", err)
	}
	if _, err := fn(nil); err == nil {
		t.Error("dispatch without method name should fail")
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name   string
		tables map[string]registry.Category
	}{
		{"no categories", nil},
		{"empty category name", map[string]registry.Category{"": {"a": constant(1)}}},
		{"dotted category", map[string]registry.Category{"a.b": {"c": constant(1)}}},
		{"empty category", map[string]registry.Category{"a": {}}},
		{"dotted method", map[string]registry.Category{"a": {"b.c": constant(1)}}},
		{"nil function", map[string]registry.Category{"a": {"b": nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.New(tt.tables)
			if !errors.Is(err, registry.ErrInvalidTable) {
				t.Errorf("New error = %v, want ErrInvalidTable", err)
			}
		})
	}
}

func TestListSorted(t *testing.T) {
	reg := newTestRegistry(t)

	list := reg.List()
	want := []string{"cryptography.gcd", "histograms.cumulative", "histograms.expand"}
	if len(list) != len(want) {
		t.Fatalf("List() returned %d entries, want %d", len(list), len(want))
	}
	for i, info := range list {
		if info.Path != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, info.Path, want[i])
		}
	}
	if list[0].Category != "cryptography" || list[0].Method != "gcd" {
		t.Errorf("List()[0] = %+v, want cryptography/gcd", list[0])
	}
}

func TestNewCopiesTables(t *testing.T) {
	table := registry.Category{"a": constant(1)}
	reg, err := registry.New(map[string]registry.Category{"cat": table})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table["b"] = constant(2)
	if reg.Has("cat.b") {
		t.Error("registry should not observe mutations of the source table")
	}
	if _, ok := reg.LookupCategory("cat"); !ok {
		t.Error("LookupCategory(cat) = false, want true")
	}
}
