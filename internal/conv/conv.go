// Package conv collects tiny helper functions that are not part of the public API
// but aid internal conversions.
//
// At the moment it only exposes `AsString` which coerces a JSON-RPC request id
// into its canonical string form.
package conv

import (
	"fmt"
	"strconv"
)

// AsString coerces a JSON-RPC request id into a canonical string. JSON numbers
// decode as float64, so integral floats render without a fraction.
func AsString(id interface{}) string {
	switch actual := id.(type) {
	case nil:
		return ""
	case string:
		return actual
	case int:
		return strconv.Itoa(actual)
	case int64:
		return strconv.FormatInt(actual, 10)
	case uint64:
		return strconv.FormatUint(actual, 10)
	case float64:
		if actual == float64(int64(actual)) {
			return strconv.FormatInt(int64(actual), 10)
		}
		return strconv.FormatFloat(actual, 'f', -1, 64)
	case float32:
		return AsString(float64(actual))
	default:
		return fmt.Sprintf("%v", actual)
	}
}
