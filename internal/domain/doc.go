// Package domain contains the core entity types of the marketplace and
// their validation rules, independent of storage and transport concerns.
package domain
