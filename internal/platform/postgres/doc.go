// Package postgres provides PostgreSQL implementations of the store
// interfaces plus the staged query feature pipeline used by listing
// search.
package postgres
