// Package registry maps dotted algorithm paths ("category.method") to the pure
// functions that implement them. A Registry is validated once at construction and
// is read-only afterwards.
package registry
