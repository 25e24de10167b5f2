// Package types defines the Store interface, the collection registry, record
// types, and standard errors for the FocusFlow local store.
//
// Every collection is either keyed-document (records carry their own "id")
// or key-value (callers supply an arbitrary key such as a setting name).
// Engines keep the raw JSON of each record; the typed structs in this package
// validate records at the store boundary and give consumers typed access.
package types
