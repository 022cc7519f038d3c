package v1

import (
	"fmt"
	"reflect"
)

// missing is the type of the Missing sentinel.
type missing struct{}

// Missing marks a payload field that has no value at all, as opposed to an
// explicit null. Sanitize strips it before anything reaches storage.
var Missing = missing{}

// Data is the free-form, event-specific payload of an Event.
type Data map[string]interface{}

// Sanitize returns a copy of d with every Missing value (and every nil
// pointer) removed, recursing into nested maps, slices and arrays of any
// element type. Inside a slice a Missing element becomes nil so positions
// are kept. Explicit nil values are kept. A nil Data sanitizes to an empty,
// non-nil Data.
func Sanitize(d Data) Data {
	out := make(Data, len(d))
	for key, value := range d {
		cleaned, keep := sanitizeValue(value)
		if keep {
			out[key] = cleaned
		}
	}
	return out
}

// sanitizeValue cleans one value. keep is false when the value is absent.
func sanitizeValue(value interface{}) (interface{}, bool) {
	if value == nil {
		return nil, true
	}
	if _, ok := value.(missing); ok {
		return nil, false
	}

	switch typed := value.(type) {
	case Data:
		return Sanitize(typed), true
	case map[string]interface{}:
		return map[string]interface{}(Sanitize(Data(typed))), true
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = sanitizeElement(item)
		}
		return out, true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, false
		}
		return sanitizeValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return value, true
		}
		fallthrough
	case reflect.Array:
		// Byte slices encode as strings.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return value, true
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = sanitizeElement(rv.Index(i).Interface())
		}
		return out, true
	case reflect.Map:
		if rv.IsNil() {
			return value, true
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			cleaned, keep := sanitizeValue(iter.Value().Interface())
			if keep {
				out[fmt.Sprint(iter.Key().Interface())] = cleaned
			}
		}
		return out, true
	}

	return value, true
}

// sanitizeElement cleans a slice element; absent elements become nil.
func sanitizeElement(value interface{}) interface{} {
	cleaned, keep := sanitizeValue(value)
	if !keep {
		return nil
	}
	return cleaned
}

// ProductID returns the "productId" entry when it is a non-empty string.
func (d Data) ProductID() string {
	return d.stringField("productId")
}

// ProductName returns the "productName" entry when it is a string.
func (d Data) ProductName() string {
	return d.stringField("productName")
}

// Label picks the label forwarded to the third-party tag:
// product name, then category id, then "general".
func (d Data) Label() string {
	if name := d.ProductName(); name != "" {
		return name
	}
	if category := d.stringField("categoryId"); category != "" {
		return category
	}
	return "general"
}

func (d Data) stringField(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}
