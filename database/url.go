package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL combines a base URL with a database name, keeping any
// query parameters and adding sslmode=disable when no sslmode is given
func ConstructDatabaseURL(baseURL, databaseName string) string {
	// Without DATABASE_NAME the base URL is used as-is
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")

	var databaseURL string
	if base, query, ok := strings.Cut(baseURL, "?"); ok {
		databaseURL = fmt.Sprintf("%s/%s?%s", strings.TrimRight(base, "/"), databaseName, query)
	} else {
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}

	return databaseURL
}
