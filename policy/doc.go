// Package policy provides declarative rules restricting which request
// attributes the privileged metadata agent may write.
package policy
