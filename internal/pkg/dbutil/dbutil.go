package dbutil

import (
	"github.com/jmoiron/sqlx"
)

// Finalize rebinds gendry-built `?` placeholders to postgres `$N` form.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}
