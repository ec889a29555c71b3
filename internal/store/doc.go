// Package store defines persistence interfaces and the error vocabulary
// shared by all storage implementations.
package store
