// Package types provides the data model shared by the extraction engine, the
// content validator and the presentation surfaces.
//
//nolint:revive // types is a standard Go package name pattern
package types
