package quoter

import (
	"slices"
	"sort"
)

// Operation is a verb of the resource table.
type Operation string

// Supported operations.
const (
	OperationCreate Operation = "create"
	OperationGet    Operation = "get"
	OperationGetAll Operation = "getAll"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Extra list parameters some resources cannot be listed without.
const (
	// ListParamItemID is merged into the filters as an exact item_id match.
	ListParamItemID = "itemId"

	// ListParamMPNs is a comma separated list sent as repeated mpns keys.
	ListParamMPNs = "mpns"
)

var crud = []Operation{OperationCreate, OperationGet, OperationGetAll, OperationUpdate, OperationDelete}

// Resource is one row of the static resource table.
type Resource struct {
	// Name is the identifier used by callers, e.g. "itemGroup".
	Name string

	// Path is the collection path relative to the API base URL.
	Path string

	// Operations lists the verbs the API exposes for the resource.
	Operations []Operation

	// CreateRequired names body fields that must be present on create.
	CreateRequired []string

	// ListRequired names extra parameters getAll requires (ListParamItemID, ListParamMPNs).
	ListRequired []string
}

// Supports reports whether the resource exposes the operation.
func (r *Resource) Supports(operation Operation) bool {
	return slices.Contains(r.Operations, operation)
}

// ItemPath returns the path of a single record.
func (r *Resource) ItemPath(id string) string {
	return r.Path + "/" + id
}

// Resources is the table of every resource exposed by the Quoter API.
var Resources = []Resource{
	{Name: "category", Path: "/categories", Operations: crud, CreateRequired: []string{"name"}},
	{Name: "contact", Path: "/contacts", Operations: crud, CreateRequired: []string{"first_name", "last_name"}},
	{Name: "dataFeedSupplier", Path: "/data_feed_suppliers", Operations: []Operation{OperationGet, OperationGetAll}},
	{
		Name:         "dataFeedSupplierItem",
		Path:         "/data_feed_supplier_items",
		Operations:   []Operation{OperationGetAll},
		ListRequired: []string{ListParamMPNs},
	},
	{Name: "item", Path: "/items", Operations: crud, CreateRequired: []string{"name"}},
	{Name: "itemGroup", Path: "/item_groups", Operations: crud, CreateRequired: []string{"name"}},
	{
		Name:           "itemGroupItemAssignment",
		Path:           "/item_group_item_assignments",
		Operations:     []Operation{OperationCreate, OperationGet, OperationGetAll, OperationDelete},
		CreateRequired: []string{"item_id", "item_group_id"},
	},
	{
		Name:           "itemOption",
		Path:           "/item_options",
		Operations:     crud,
		CreateRequired: []string{"item_id", "name"},
		ListRequired:   []string{ListParamItemID},
	},
	{
		Name:           "itemOptionValue",
		Path:           "/item_option_values",
		Operations:     crud,
		CreateRequired: []string{"item_id", "item_option_id", "name"},
	},
	{
		Name:           "itemTier",
		Path:           "/item_tiers",
		Operations:     crud,
		CreateRequired: []string{"item_id", "lower_boundary", "price_decimal"},
		ListRequired:   []string{ListParamItemID},
	},
	{
		Name:           "lineItem",
		Path:           "/line_items",
		Operations:     []Operation{OperationCreate},
		CreateRequired: []string{"quote_id", "name", "category", "quantity"},
	},
	{Name: "manufacturer", Path: "/manufacturers", Operations: crud, CreateRequired: []string{"name"}},
	{Name: "quote", Path: "/quotes", Operations: crud, CreateRequired: []string{"template_id", "contact_id"}},
	{Name: "quoteTemplate", Path: "/quote_templates", Operations: []Operation{OperationGet, OperationGetAll}},
	{Name: "supplier", Path: "/suppliers", Operations: crud, CreateRequired: []string{"name"}},
}

// LookupResource finds a resource by name.
func LookupResource(name string) (*Resource, bool) {
	for i := range Resources {
		if Resources[i].Name == name {
			return &Resources[i], true
		}
	}

	return nil, false
}

// ResourceNames returns the sorted resource names.
func ResourceNames() []string {
	names := make([]string, 0, len(Resources))
	for _, resource := range Resources {
		names = append(names, resource.Name)
	}

	sort.Strings(names)

	return names
}

// OperationParams carries the caller-supplied parameters of one operation.
type OperationParams struct {
	// ID identifies the record for get, update and delete.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Body holds the fields sent on create, including the required ones.
	Body map[string]interface{} `json:"body,omitempty" yaml:"body,omitempty"`

	// AdditionalFields are merged over Body on create and form the body on update.
	AdditionalFields map[string]interface{} `json:"additional_fields,omitempty" yaml:"additional_fields,omitempty"`

	Filters   Filters      `json:"filters,omitempty"    yaml:"filters,omitempty"`
	Options   QueryOptions `json:"options"              yaml:"options"`
	ReturnAll bool         `json:"return_all,omitempty" yaml:"return_all,omitempty"`
	Limit     int          `json:"limit,omitempty"      yaml:"limit,omitempty"`

	// ItemID scopes item option and item tier listings.
	ItemID string `json:"item_id,omitempty" yaml:"item_id,omitempty"`

	// MPNs is a comma separated list of manufacturer part numbers.
	MPNs string `json:"mpns,omitempty" yaml:"mpns,omitempty"`
}
