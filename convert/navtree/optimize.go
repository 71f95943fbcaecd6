package navtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elliotchance/orderedmap/v3"
)

type object = orderedmap.OrderedMap[string, any]

// Keys which are dropped when holding false.
var falseDefaults = map[string]bool{
	"bold":      true,
	"italic":    true,
	"underline": true,
	"expanded":  true,
}

// Keys which are dropped when holding empty string.
var emptyDefaults = map[string]bool{
	"description": true,
	"style":       true,
}

// Optimize strips nulls, empty containers and default values from JSON
// document keeping order of the remaining keys. Array elements are never
// removed so positions stay intact. Result is indented the same way
// Generate does it and applying Optimize again does not change it.
func Optimize(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}

	v, _ = prune("", v)

	var compact bytes.Buffer
	if err := encodeValue(&compact, v); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := orderedmap.NewOrderedMap[string, any]()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

// prune returns cleaned value and whether it should be kept under key.
func prune(key string, v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case bool:
		return t, t || !falseDefaults[key]
	case string:
		switch {
		case key == "alignment" && t == "left":
			return t, false
		case t == "" && emptyDefaults[key]:
			return t, false
		}
		return t, true
	case *object:
		res := orderedmap.NewOrderedMapWithCapacity[string, any](t.Len())
		for k, val := range t.AllFromFront() {
			if val, keep := prune(k, val); keep {
				res.Set(k, val)
			}
		}
		return res, res.Len() > 0
	case []any:
		for i, val := range t {
			t[i], _ = prune("", val)
		}
		return t, len(t) > 0
	default:
		return v, true
	}
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case *object:
		buf.WriteByte('{')
		first := true
		for k, val := range t.AllFromFront() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := encodeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, val := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, val); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return encodeScalar(buf, v)
	}
	return nil
}

func encodeScalar(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates value with new line
	buf.Truncate(buf.Len() - 1)
	return nil
}
