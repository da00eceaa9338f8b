package tursokv

import "context"

// CreateTableIfNotExists creates the key-value table used by the Turso driver.
func CreateTableIfNotExists(ctx context.Context, exec Executor, table string) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}
	_, err := exec.Execute(ctx, Statement{
		SQL: "CREATE TABLE IF NOT EXISTS " + table + " (key TEXT PRIMARY KEY, value TEXT)",
	})
	return err
}

// DropTableIfExists drops the key-value table.
func DropTableIfExists(ctx context.Context, exec Executor, table string) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}
	_, err := exec.Execute(ctx, Statement{SQL: "DROP TABLE IF EXISTS " + table})
	return err
}
