//
// Copyright (c) SAS Institute Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package plistdoc

import (
	"fmt"
	"time"

	"howett.net/plist"
)

// Value is one node of a property list tree. The set of implementations is
// closed: String, Boolean, Integer, Array, Dictionary and Opaque.
type Value interface {
	isValue()
}

type String string

type Boolean bool

// Integer holds a plist integer. Negative numbers are stored two's-complement
// with Signed set.
type Integer struct {
	Value  uint64
	Signed bool
}

type Array []Value

// Dictionary maps unique keys to values. Set is the only mutation this
// package offers; it overwrites any existing value for the key.
type Dictionary map[string]Value

// Opaque carries leaf types that are preserved but never interpreted: reals,
// data blobs, dates and UIDs.
type Opaque struct {
	V interface{}
}

func (String) isValue()     {}
func (Boolean) isValue()    {}
func (Integer) isValue()    {}
func (Array) isValue()      {}
func (Dictionary) isValue() {}
func (Opaque) isValue()     {}

// Int64 returns the integer as a signed value
func (i Integer) Int64() int64 {
	return int64(i.Value)
}

// Strings returns the string elements of the array, skipping anything else
func (a Array) Strings() []string {
	out := make([]string, 0, len(a))
	for _, v := range a {
		if s, ok := v.(String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// NewStringArray builds an array of string nodes
func NewStringArray(values ...string) Array {
	a := make(Array, len(values))
	for i, s := range values {
		a[i] = String(s)
	}
	return a
}

func (d Dictionary) Set(key string, v Value) {
	d[key] = v
}

func (d Dictionary) Get(key string) (Value, bool) {
	v, ok := d[key]
	return v, ok
}

// GetString returns the string at key. A missing key or a value of any other
// type yields ok=false.
func (d Dictionary) GetString(key string) (string, bool) {
	if s, ok := d[key].(String); ok {
		return string(s), true
	}
	return "", false
}

// GetBool returns the boolean at key, or ok=false if absent or wrong-typed
func (d Dictionary) GetBool(key string) (value, ok bool) {
	if b, ok := d[key].(Boolean); ok {
		return bool(b), true
	}
	return false, false
}

// GetDictionary returns the nested dictionary at key, or ok=false if absent or
// wrong-typed
func (d Dictionary) GetDictionary(key string) (Dictionary, bool) {
	sub, ok := d[key].(Dictionary)
	return sub, ok
}

// GetStringArray returns the string elements of the array at key. Non-string
// elements are skipped; a missing or non-array value yields ok=false.
func (d Dictionary) GetStringArray(key string) ([]string, bool) {
	a, ok := d[key].(Array)
	if !ok {
		return nil, false
	}
	return a.Strings(), true
}

// Lookup walks nested dictionaries along path
func (d Dictionary) Lookup(path ...string) (Value, bool) {
	cur := d
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if cur, ok = v.(Dictionary); !ok {
			return nil, false
		}
	}
	return cur, true
}

// fromRaw converts the generic tree produced by the plist decoder
func fromRaw(raw interface{}) Value {
	switch v := raw.(type) {
	case string:
		return String(v)
	case bool:
		return Boolean(v)
	case uint64:
		return Integer{Value: v}
	case int64:
		return Integer{Value: uint64(v), Signed: true}
	case []interface{}:
		a := make(Array, len(v))
		for i, elem := range v {
			a[i] = fromRaw(elem)
		}
		return a
	case map[string]interface{}:
		d := make(Dictionary, len(v))
		for key, elem := range v {
			d[key] = fromRaw(elem)
		}
		return d
	default:
		return Opaque{V: v}
	}
}

// toRaw converts a tree back to the generic form accepted by the plist encoder
func toRaw(v Value) (interface{}, error) {
	switch v := v.(type) {
	case String:
		return string(v), nil
	case Boolean:
		return bool(v), nil
	case Integer:
		if v.Signed {
			return int64(v.Value), nil
		}
		return v.Value, nil
	case Array:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			raw, err := toRaw(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = raw
		}
		return out, nil
	case Dictionary:
		out := make(map[string]interface{}, len(v))
		for key, elem := range v {
			raw, err := toRaw(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = raw
		}
		return out, nil
	case Opaque:
		switch v.V.(type) {
		case float64, float32, []byte, time.Time, plist.UID:
			return v.V, nil
		}
		return nil, fmt.Errorf("%w: %T", ErrUnrepresentable, v.V)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnrepresentable, v)
	}
}
