// Package idgen generates request, change and message identifiers. Callers
// treat identifiers as opaque strings.
package idgen
