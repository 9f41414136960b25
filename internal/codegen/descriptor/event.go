// Package descriptor loads and normalizes the YAML descriptor fragments that
// feed code generation: events from events.d and interfaces from
// interfaces.d.
package descriptor

import (
	"fmt"

	"github.com/Alia5/pimgen/internal/codegen/generr"
)

const (
	keyName   = "name"
	keyFilter = "filter"
	keyAction = "action"
)

// Event is a normalized event descriptor. Name, Filter and Action are always
// populated; every other key of the raw descriptor is kept in Extra.
type Event struct {
	Name   string
	Filter map[string]any
	Action map[string]any
	Extra  map[string]any
}

// Interface is an interface descriptor exactly as read from disk.
type Interface map[string]any

func defaultFilter() map[string]any { return map[string]any{"type": "none"} }
func defaultAction() map[string]any { return map[string]any{"type": "noop"} }

// RawToEvent builds an Event from a raw descriptor mapping. raw is never
// modified and the returned event shares no mutable state with it.
//
// filter and action fall back to their defaults only when absent or null; an
// empty mapping is kept as is.
func RawToEvent(raw map[string]any) (Event, error) {
	rawName, ok := raw[keyName]
	if !ok || rawName == nil {
		return Event{}, generr.MissingField("", keyName)
	}
	var name string
	switch v := rawName.(type) {
	case string:
		name = v
	case map[string]any, map[any]any, []any:
		return Event{}, generr.InvalidField("", keyName, "must be a scalar")
	default:
		name = fmt.Sprint(v)
	}

	filter, err := mappingOrDefault(raw, keyFilter, defaultFilter)
	if err != nil {
		return Event{}, err
	}
	action, err := mappingOrDefault(raw, keyAction, defaultAction)
	if err != nil {
		return Event{}, err
	}

	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case keyName, keyFilter, keyAction:
			continue
		}
		extra[k] = deepCopy(v)
	}

	return Event{
		Name:   Sanitize(name),
		Filter: filter,
		Action: action,
		Extra:  extra,
	}, nil
}

func mappingOrDefault(raw map[string]any, key string, def func() map[string]any) (map[string]any, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return def(), nil
	}
	m, ok := asMapping(v)
	if !ok {
		return nil, generr.ConfigParse("", fmt.Errorf("field %q must be a mapping, got %T", key, v))
	}
	return deepCopy(m).(map[string]any), nil
}

// Has reports whether the event carries key.
func (e Event) Has(key string) bool {
	switch key {
	case keyName, keyFilter, keyAction:
		return true
	}
	_, ok := e.Extra[key]
	return ok
}

// Field returns the value of key. Templates call it as {{.Field "key"}}; a
// missing key is an error so that the render fails instead of emitting an
// empty value.
func (e Event) Field(key string) (any, error) {
	switch key {
	case keyName:
		return e.Name, nil
	case keyFilter:
		return e.Filter, nil
	case keyAction:
		return e.Action, nil
	}
	v, ok := e.Extra[key]
	if !ok {
		return nil, fmt.Errorf("event %q has no field %q", e.Name, key)
	}
	return v, nil
}

// asMapping accepts both mapping shapes yaml.v3 produces when decoding into
// interface values. Non-string keys are stringified.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Interface:
		return map[string]any(m), true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
