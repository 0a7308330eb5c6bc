// Package model contains the in-memory representation of data requests,
// their reviews and evaluations, research groups and the request lifecycle.
//
// Status values and the allowed transitions between them are defined here so
// that the workflow engine and the privileged metadata agent validate
// mutations against the same graph.
package model
