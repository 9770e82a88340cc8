// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
)

var errDynamic = errors.New("malformed dynamic value")

// Results of interface type carry no static type to decode into, so they are
// stored as [type, payload] pairs. Numbers are kept as decimal text, which
// keeps int64 and uint64 exact under both codecs. Values of any other dynamic
// type are stored with an empty type and decode as the codec sees fit.

func encodeDynamic(v any) any {
	switch x := v.(type) {
	case nil:
		return []any{"nil", nil}
	case bool, string:
		return []any{fmt.Sprintf("%T", x), x}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr, float32, float64:
		return []any{fmt.Sprintf("%T", x), fmt.Sprint(x)}
	case []byte:
		return []any{"[]uint8", base64.StdEncoding.EncodeToString(x)}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = encodeDynamic(e)
		}
		return []any{"[]interface {}", out}
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = encodeDynamic(e)
		}
		return []any{"map[string]interface {}", out}
	}
	return []any{"", v}
}

func decodeDynamic(n any) (any, error) {
	pair, ok := n.([]any)
	if !ok || len(pair) != 2 {
		return nil, errDynamic
	}
	kind, ok := pair[0].(string)
	if !ok {
		return nil, errDynamic
	}
	payload := pair[1]

	switch kind {
	case "":
		return payload, nil
	case "nil":
		return nil, nil
	case "bool":
		b, ok := payload.(bool)
		if !ok {
			return nil, errDynamic
		}
		return b, nil
	case "string":
		s, ok := payload.(string)
		if !ok {
			return nil, errDynamic
		}
		return s, nil
	case "[]uint8":
		s, ok := payload.(string)
		if !ok {
			return nil, errDynamic
		}
		return base64.StdEncoding.DecodeString(s)
	case "[]interface {}":
		list, ok := payload.([]any)
		if !ok {
			return nil, errDynamic
		}
		out := make([]any, len(list))
		for i, e := range list {
			v, err := decodeDynamic(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case "map[string]interface {}":
		m, ok := payload.(map[string]any)
		if !ok {
			return nil, errDynamic
		}
		out := make(map[string]any, len(m))
		for k, e := range m {
			v, err := decodeDynamic(e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}

	s, ok := payload.(string)
	if !ok {
		return nil, errDynamic
	}
	return parseNumber(kind, s)
}

func parseNumber(kind, s string) (any, error) {
	switch kind {
	case "int", "int8", "int16", "int32", "int64":
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "int":
			return int(i), nil
		case "int8":
			return int8(i), nil
		case "int16":
			return int16(i), nil
		case "int32":
			return int32(i), nil
		}
		return i, nil
	case "uint", "uint8", "uint16", "uint32", "uint64", "uintptr":
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "uint":
			return uint(u), nil
		case "uint8":
			return uint8(u), nil
		case "uint16":
			return uint16(u), nil
		case "uint32":
			return uint32(u), nil
		case "uintptr":
			return uintptr(u), nil
		}
		return u, nil
	case "float32":
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), err
	case "float64":
		return strconv.ParseFloat(s, 64)
	}
	return nil, fmt.Errorf("%w: unknown type %q", errDynamic, kind)
}
