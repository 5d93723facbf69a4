// Package schemas holds the JSON Schemas for the engine's documents.
package schemas

import "embed"

// Files contains every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// Names of the embedded schemas.
const (
	ParsedRecord  = "parsed_record.schema.json"
	LocaleProfile = "locale_profile.schema.json"
)
