package postgres

import (
	"errors"
	"strconv"

	"github.com/lib/pq"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

func pqStringArray(s []string) interface{} {
	return pq.Array(s)
}

// isUniqueViolation reports whether the error is a postgres unique
// constraint violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
