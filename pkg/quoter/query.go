package quoter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Filter operators understood by the Quoter list endpoints.
const (
	OperatorEqual       = "eq"
	OperatorContains    = "cont"
	OperatorGreaterThan = "gt"
	OperatorLessThan    = "lt"
)

// Pagination defaults for list requests.
const (
	DefaultLimit = 50
	MinLimit     = 1
	MaxLimit     = 100
)

// Filters maps logical filter names such as "nameContains" or "createdAfter"
// to the value to compare with.
type Filters map[string]interface{}

// Params is a query string mapping. Slice values are sent as repeated keys.
type Params map[string]interface{}

// Clone returns a shallow copy of the params.
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for key, value := range p {
		clone[key] = value
	}

	return clone
}

// QueryOptions holds the non-filter parts of a list query.
type QueryOptions struct {
	Fields []string `json:"fields,omitempty"  yaml:"fields,omitempty"`
	SortBy string   `json:"sort_by,omitempty" yaml:"sort_by,omitempty"`
}

// FilterKey returns the query key for a field, e.g. "filter[name]".
func FilterKey(field string) string {
	return "filter[" + field + "]"
}

// BuildFilterParams translates logical filters into filter[<field>]=<op>:<value> pairs.
//
// Keys ending in After or Before compare the <field>_at timestamp with gt/lt,
// keys ending in Contains use cont, keys ending in Id or ID use eq, and any
// other key uses cont for strings and eq for everything else. Nil and empty
// string values are skipped.
func BuildFilterParams(filters Filters) Params {
	params := make(Params, len(filters))

	for key, value := range filters {
		if key == "" || IsEmptyValue(value) {
			continue
		}

		field, operator := filterFieldAndOperator(key, value)
		params[FilterKey(field)] = operator + ":" + FormatValue(value)
	}

	return params
}

func filterFieldAndOperator(key string, value interface{}) (string, string) {
	if base, ok := cutSuffix(key, "After"); ok {
		return timestampField(ToSnakeCase(base)), OperatorGreaterThan
	}

	if base, ok := cutSuffix(key, "Before"); ok {
		return timestampField(ToSnakeCase(base)), OperatorLessThan
	}

	if base, ok := cutSuffix(key, "Contains"); ok {
		return ToSnakeCase(base), OperatorContains
	}

	if strings.HasSuffix(key, "Id") || strings.HasSuffix(key, "ID") {
		return ToSnakeCase(key), OperatorEqual
	}

	if _, isString := value.(string); isString {
		return ToSnakeCase(key), OperatorContains
	}

	return ToSnakeCase(key), OperatorEqual
}

// cutSuffix only matches when something is left in front of the suffix.
func cutSuffix(key, suffix string) (string, bool) {
	if len(key) <= len(suffix) {
		return "", false
	}

	return strings.CutSuffix(key, suffix)
}

func timestampField(field string) string {
	if strings.HasSuffix(field, "_at") {
		return field
	}

	return field + "_at"
}

// BuildQueryParams composes filters, field selection, sorting and, unless
// returnAll is set, a single page request. A zero limit means DefaultLimit;
// other limits are clamped to [MinLimit, MaxLimit].
func BuildQueryParams(filters Filters, options *QueryOptions, returnAll bool, limit int) Params {
	params := BuildFilterParams(filters)

	if options != nil {
		if len(options.Fields) > 0 {
			params["fields"] = strings.Join(options.Fields, ",")
		}

		if options.SortBy != "" {
			params["sort_by"] = options.SortBy
		}
	}

	if !returnAll {
		params["page"] = 1
		params["limit"] = ClampLimit(limit)
	}

	return params
}

// ClampLimit applies the default and bounds used for single page requests.
func ClampLimit(limit int) int {
	if limit == 0 {
		limit = DefaultLimit
	}

	return min(max(limit, MinLimit), MaxLimit)
}

// ToSnakeCase converts camelCase or PascalCase to snake_case. Runs of capitals
// are kept together, so "itemID" becomes "item_id" and "HTTPStatus" becomes
// "http_status".
func ToSnakeCase(s string) string {
	runes := []rune(s)

	var builder strings.Builder

	builder.Grow(len(s) + len(s)/2)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && needsBoundary(runes, i) {
			builder.WriteByte('_')
		}

		builder.WriteRune(unicode.ToLower(r))
	}

	return builder.String()
}

func needsBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '_' {
		return false
	}

	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	// End of an acronym: "HTTPStatus" splits before the S.
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// IsEmptyValue reports whether a query or filter value should be omitted.
func IsEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}

	s, ok := value.(string)

	return ok && s == ""
}

// FormatValue renders a scalar the way it appears on the wire.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
