package domain

import (
	"fmt"
	"reflect"
	"time"
)

// Env carries the values a rule or payload builder may depend on besides the fields.
type Env struct {
	Now time.Time
	Pet *PetRef
}

// PetRef identifies the pet an applicant is applying for.
type PetRef struct {
	ID   string
	Name string
}

// Rule returns the labels of the fields it finds missing or invalid.
type Rule[F any] func(env Env, f *F) []string

// Missing reports whether v is empty under form semantics: nil, "", false, 0 and empty
// collections are all missing. Pointers are judged by what they point to.
func Missing(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}
	return rv.IsZero()
}

// Required reports label when value(f) is missing.
func Required[F any](label string, value func(f *F) any) Rule[F] {
	return func(_ Env, f *F) []string {
		if Missing(value(f)) {
			return []string{label}
		}
		return nil
	}
}

// When applies rules only while cond holds.
func When[F any](cond func(f *F) bool, rules ...Rule[F]) Rule[F] {
	return func(env Env, f *F) []string {
		if !cond(f) {
			return nil
		}
		return evaluate(env, f, rules)
	}
}

// Each applies per-item checks to every element returned by items. Labels are formatted with the
// 1-based index, e.g. "Pet %d Name".
func Each[F, T any](items func(f *F) []T, checks ...ItemCheck[T]) Rule[F] {
	return func(_ Env, f *F) []string {
		var labels []string
		for i, item := range items(f) {
			for _, check := range checks {
				if Missing(check.Value(item)) {
					labels = append(labels, fmt.Sprintf(check.Label, i+1))
				}
			}
		}
		return labels
	}
}

// ItemCheck is one required sub-field of a list entry.
type ItemCheck[T any] struct {
	Label string
	Value func(item T) any
}

// Check wraps an arbitrary rule.
func Check[F any](fn func(env Env, f *F) []string) Rule[F] {
	return fn
}

func evaluate[F any](env Env, f *F, rules []Rule[F]) []string {
	var labels []string
	for _, rule := range rules {
		labels = append(labels, rule(env, f)...)
	}
	return labels
}
