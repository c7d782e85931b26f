package http

import (
	"net/url"
	"reflect"
	"sort"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// EncodeQuery serializes query params. Slice and array values produce one
// entry per element under the same key; nil and empty string values are
// omitted. Keys are emitted in sorted order.
func EncodeQuery(params quoter.Params) url.Values {
	values := url.Values{}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value := params[key]
		if quoter.IsEmptyValue(value) {
			continue
		}

		switch v := value.(type) {
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case []interface{}:
			for _, item := range v {
				values.Add(key, quoter.FormatValue(item))
			}
		default:
			rv := reflect.ValueOf(value)
			if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
				for i := range rv.Len() {
					values.Add(key, quoter.FormatValue(rv.Index(i).Interface()))
				}

				continue
			}

			values.Add(key, quoter.FormatValue(value))
		}
	}

	return values
}
