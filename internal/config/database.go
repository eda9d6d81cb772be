// internal/config/database.go
package config

import (
	"fmt"
)

const applicationName = "imi-ledger"

// DSN builds the postgres connection string. Sessions run in UTC so deadlines
// and fact timestamps compare the same on every node.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC application_name=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode, applicationName,
	)
}
