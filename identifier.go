package tursokv

import (
	"fmt"
	"regexp"
)

// DefaultTable is the table used when Options.Table is empty.
const DefaultTable = "kv"

// Table names are interpolated into statements, so only word characters pass.
var tableNamePattern = regexp.MustCompile(`^\w+$`)

// ValidateTableName reports whether name is safe to use as a table identifier.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return nil
}
