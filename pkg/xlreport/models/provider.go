package models

// ProviderKind identifies the data provider variant.
type ProviderKind string

const (
	ProviderFiltered ProviderKind = "filtered"
	ProviderList     ProviderKind = "list"
	ProviderSQL      ProviderKind = "sql"
	ProviderClass    ProviderKind = "class"
)

// Param is a named provider parameter.
type Param struct {
	Name  Expression `json:"name"`
	Value Expression `json:"value,omitempty"`
}

// DataProvider describes how a section obtains its records. Only the
// fields of its Kind are set.
type DataProvider struct {
	ID   string       `json:"id"`
	Kind ProviderKind `json:"kind"`

	// Predicate filters the records of the enclosing provider (filtered).
	Predicate Expression `json:"predicate,omitempty"`
	// Data yields the record list (list).
	Data Expression `json:"data,omitempty"`
	// DataSource and Processor locate the connection and row mapper (sql).
	DataSource Expression `json:"datasource,omitempty"`
	Processor  Expression `json:"processor,omitempty"`
	// SQL is the query text; SQLRef names a stored query (sql).
	SQL    Expression `json:"sql,omitempty"`
	SQLRef Expression `json:"sql_ref,omitempty"`
	// Object and Method name the call that returns the records (class).
	Object Expression `json:"object,omitempty"`
	Method Expression `json:"method,omitempty"`

	Filter    Expression `json:"filter,omitempty"`
	ParamsMap Expression `json:"params_map,omitempty"`
	Params    []Param    `json:"params,omitempty"`
}

// Listener binds an event listener by type name or by instance expression.
type Listener struct {
	Class    Expression `json:"class,omitempty"`
	Instance Expression `json:"instance,omitempty"`
}
