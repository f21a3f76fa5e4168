// Package firestore speaks the Firestore REST document API: tagged value
// encoding and a small create-or-replace/list/delete client.
package firestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Value is a single-key tagged wire value such as {"stringValue": "x"}.
type Value map[string]any

// Wire tags.
const (
	tagBoolean = "booleanValue"
	tagString  = "stringValue"
	tagInteger = "integerValue"
	tagDouble  = "doubleValue"
	tagArray   = "arrayValue"
	tagMap     = "mapValue"
	tagNull    = "nullValue"

	tagTimestamp = "timestampValue"
	tagReference = "referenceValue"
)

// Encode converts v into its tagged wire form. Booleans, strings, integers,
// floats, slices, string-keyed maps and nil have dedicated tags; anything
// else is stringified. A Value is returned as is.
func Encode(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{tagNull: nil}
	case Value:
		return t
	case bool:
		return Value{tagBoolean: t}
	case string:
		return Value{tagString: t}
	case int:
		return integer(int64(t))
	case int8:
		return integer(int64(t))
	case int16:
		return integer(int64(t))
	case int32:
		return integer(int64(t))
	case int64:
		return integer(t)
	case uint8:
		return integer(int64(t))
	case uint16:
		return integer(int64(t))
	case uint32:
		return integer(int64(t))
	case uint:
		return unsigned(uint64(t))
	case uint64:
		return unsigned(t)
	case float32:
		return double(float64(t))
	case float64:
		return double(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return integer(i)
		}
		if f, err := t.Float64(); err == nil {
			return double(f)
		}
		return Value{tagString: t.String()}
	case []any:
		return array(len(t), func(i int) any { return t[i] })
	case map[string]any:
		return mapValue(t)
	}
	return encodeReflect(v)
}

func encodeReflect(v any) Value {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{tagNull: nil}
		}
		return Encode(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return array(0, nil)
		}
		return array(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return mapValue(m)
	case reflect.Bool:
		return Value{tagBoolean: rv.Bool()}
	case reflect.String:
		return Value{tagString: rv.String()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return integer(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return unsigned(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return double(rv.Float())
	}
	return Value{tagString: fmt.Sprint(v)}
}

func integer(i int64) Value { return Value{tagInteger: strconv.FormatInt(i, 10)} }

// unsigned values above MaxInt64 do not fit the store's signed integers.
func unsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return Value{tagString: strconv.FormatUint(u, 10)}
	}
	return integer(int64(u))
}

// double encodes non-finite floats as the strings the REST API uses for them.
func double(f float64) Value {
	switch {
	case math.IsNaN(f):
		return Value{tagDouble: "NaN"}
	case math.IsInf(f, 1):
		return Value{tagDouble: "Infinity"}
	case math.IsInf(f, -1):
		return Value{tagDouble: "-Infinity"}
	}
	return Value{tagDouble: f}
}

func array(n int, at func(int) any) Value {
	values := make([]any, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, Encode(at(i)))
	}
	return Value{tagArray: map[string]any{"values": values}}
}

func mapValue(m map[string]any) Value {
	return Value{tagMap: map[string]any{"fields": EncodeFields(m)}}
}

// EncodeFields encodes each top-level field of a document.
func EncodeFields(fields map[string]any) map[string]Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = Encode(v)
	}
	return out
}

// Decode converts a tagged wire value back into plain Go values: bool,
// string, int64, float64, []any, map[string]any or nil. Timestamps and
// references decode to their string form.
func Decode(v Value) (any, error) {
	if len(v) != 1 {
		return nil, fmt.Errorf("firestore: value must have exactly one tag, got %d", len(v))
	}
	for tag, raw := range v {
		switch tag {
		case tagNull:
			return nil, nil
		case tagBoolean:
			b, ok := raw.(bool)
			if !ok {
				return nil, fmt.Errorf("firestore: %s is %T", tag, raw)
			}
			return b, nil
		case tagString, tagTimestamp, tagReference:
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("firestore: %s is %T", tag, raw)
			}
			return s, nil
		case tagInteger:
			return decodeInteger(raw)
		case tagDouble:
			return decodeDouble(raw)
		case tagArray:
			return decodeArray(raw)
		case tagMap:
			return decodeMap(raw)
		default:
			return nil, fmt.Errorf("firestore: unsupported value tag %q", tag)
		}
	}
	return nil, nil
}

func decodeInteger(raw any) (int64, error) {
	switch n := raw.(type) {
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("firestore: integerValue %q: %w", n, err)
		}
		return i, nil
	case json.Number:
		return n.Int64()
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("firestore: integerValue %v is not integral", n)
		}
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fmt.Errorf("firestore: integerValue is %T", raw)
}

func decodeDouble(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		switch n {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(n, 64)
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("firestore: doubleValue is %T", raw)
}

func decodeArray(raw any) ([]any, error) {
	body, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("firestore: arrayValue is %T", raw)
	}
	out := []any{}
	items, _ := body["values"].([]any)
	for i, item := range items {
		wv, ok := asValue(item)
		if !ok {
			return nil, fmt.Errorf("firestore: array element %d is %T", i, item)
		}
		d, err := Decode(wv)
		if err != nil {
			return nil, fmt.Errorf("firestore: array element %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeMap(raw any) (map[string]any, error) {
	body, ok := asObject(raw)
	if !ok {
		return nil, fmt.Errorf("firestore: mapValue is %T", raw)
	}
	out := map[string]any{}
	fields, _ := body["fields"].(map[string]any)
	if typed, ok := body["fields"].(map[string]Value); ok {
		return DecodeFields(typed)
	}
	for k, item := range fields {
		wv, ok := asValue(item)
		if !ok {
			return nil, fmt.Errorf("firestore: map field %q is %T", k, item)
		}
		d, err := Decode(wv)
		if err != nil {
			return nil, fmt.Errorf("firestore: map field %q: %w", k, err)
		}
		out[k] = d
	}
	return out, nil
}

// DecodeFields decodes every field of a document.
func DecodeFields(fields map[string]Value) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d, err := Decode(fields[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = d
	}
	return out, nil
}

func asObject(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case Value:
		return m, true
	}
	return nil, false
}

func asValue(raw any) (Value, bool) {
	switch m := raw.(type) {
	case Value:
		return m, true
	case map[string]any:
		return Value(m), true
	}
	return nil, false
}

// Fields flattens a tagged struct into its top-level fields using its JSON
// field names. Numbers are kept exact as json.Number.
func Fields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("firestore: marshal %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("firestore: %T is not an object: %w", v, err)
	}
	return out, nil
}
