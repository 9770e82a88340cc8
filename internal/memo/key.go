// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrKeyEncode is returned when call arguments cannot be serialized into a
// cache key.
var ErrKeyEncode = errors.New("cannot encode cache key")

// KeyMode selects which call inputs take part in the cache key.
type KeyMode int

const (
	// KeyNone keys on the function name only; every call shares one entry.
	KeyNone KeyMode = iota
	// KeyArgs keys on the positional arguments.
	KeyArgs
	// KeyKwargs keys on the keyword arguments.
	KeyKwargs
	// KeyArgsAndKwargs keys on both.
	KeyArgsAndKwargs
)

var keyModeNames = map[KeyMode]string{
	KeyNone:          "none",
	KeyArgs:          "args",
	KeyKwargs:        "kwargs",
	KeyArgsAndKwargs: "args_and_kwargs",
}

func (k KeyMode) String() string {
	if s, ok := keyModeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("KeyMode(%d)", int(k))
}

// ParseKeyMode converts a name such as "args" or "kwargs" to a KeyMode. "all"
// and "both" are accepted as aliases for args_and_kwargs.
func ParseKeyMode(s string) (KeyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return KeyNone, nil
	case "args":
		return KeyArgs, nil
	case "kwargs":
		return KeyKwargs, nil
	case "args_and_kwargs", "all", "both", "":
		return KeyArgsAndKwargs, nil
	}
	return KeyNone, fmt.Errorf("unknown key mode %q", s)
}

// Kwargs are named call arguments.
type Kwargs map[string]any

// BuildKey derives the cache key for a call to the function called name. The
// key is a JSON array of the name followed by the inputs mode selects. Every
// input is written as a [type, value] pair, so values that JSON alone would
// confuse (1 and 1.0, a []byte and its base64 string) get distinct keys.
// encoding/json orders map keys, so kwargs given in any order produce the same
// key.
func BuildKey(name string, mode KeyMode, args []any, kwargs Kwargs) (string, error) {
	var parts []any
	switch mode {
	case KeyNone:
		parts = []any{name}
	case KeyArgs, KeyKwargs, KeyArgsAndKwargs:
		parts = []any{name}
		if mode != KeyKwargs {
			tagged, err := keyList(args)
			if err != nil {
				return "", fmt.Errorf("%w for %s: %w", ErrKeyEncode, name, err)
			}
			parts = append(parts, tagged)
		}
		if mode != KeyArgs {
			tagged, err := keyMap(kwargs)
			if err != nil {
				return "", fmt.Errorf("%w for %s: %w", ErrKeyEncode, name, err)
			}
			parts = append(parts, tagged)
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrKeyEncode, mode)
	}

	b, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("%w for %s: %v", ErrKeyEncode, name, err)
	}
	return string(b), nil
}

func keyList(vs []any) ([]any, error) {
	out := make([]any, 0, len(vs))
	for i, v := range vs {
		tv, err := keyValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out = append(out, tv)
	}
	return out, nil
}

func keyMap(vs map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		tv, err := keyValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", k, err)
		}
		out[k] = tv
	}
	return out, nil
}

// keyValue pairs v with its dynamic type. Elements of []any and
// map[string]any are tagged in turn since their static type says nothing.
func keyValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	t := reflect.TypeOf(v)
	switch x := v.(type) {
	case []any:
		tagged, err := keyList(x)
		return []any{t.String(), tagged}, err
	case map[string]any:
		tagged, err := keyMap(x)
		return []any{t.String(), tagged}, err
	}

	if err := checkKeyType(t, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}
	return []any{t.String(), v}, nil
}

var (
	jsonMarshaler = reflect.TypeFor[json.Marshaler]()
	textMarshaler = reflect.TypeFor[encoding.TextMarshaler]()
)

// checkKeyType rejects types whose JSON form drops state: structs with
// unexported or "-" tagged fields that do not marshal themselves. Two such
// values could otherwise share a key.
func checkKeyType(t reflect.Type, seen map[reflect.Type]bool) error {
	if seen[t] {
		return nil
	}
	seen[t] = true

	if t.Implements(jsonMarshaler) || t.Implements(textMarshaler) ||
		reflect.PointerTo(t).Implements(jsonMarshaler) || reflect.PointerTo(t).Implements(textMarshaler) {
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
		return checkKeyType(t.Elem(), seen)
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			// encoding/json promotes the fields of an embedded struct even
			// when its type is unexported.
			promoted := f.Anonymous && f.Type.Kind() == reflect.Struct
			if f.Tag.Get("json") == "-" || (!f.IsExported() && !promoted) {
				return fmt.Errorf("%s: field %s is not encoded", t, f.Name)
			}
			if err := checkKeyType(f.Type, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// KeyName extracts the function name from a key built by BuildKey.
func KeyName(key string) (string, bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(key), &parts); err != nil || len(parts) == 0 {
		return "", false
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", false
	}
	return name, true
}
