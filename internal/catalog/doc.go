// Package catalog is the client-side browsing engine: a local cache of
// lightweight records, the search/filter engine, sorting, the cross-filter
// option resolver, the debounce guard, favorites, and the Session that ties
// them to a single detail view with loan and return operations.
package catalog
