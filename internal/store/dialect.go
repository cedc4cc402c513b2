package store

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type dialect struct {
	driver string
	serial string
	// numbered placeholders ($1, $2) instead of ?
	numbered bool
	// single connection, so an in-memory database is shared by every query
	singleConn bool
}

var dialects = map[string]dialect{
	"sqlite3":  {driver: "sqlite3", serial: "INTEGER PRIMARY KEY AUTOINCREMENT", singleConn: true},
	"postgres": {driver: "postgres", serial: "BIGSERIAL PRIMARY KEY", numbered: true},
	"pgx":      {driver: "pgx", serial: "BIGSERIAL PRIMARY KEY", numbered: true},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported storage driver %q", name)
	}
	return d, nil
}

// rebind rewrites ? placeholders for drivers that number them
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
