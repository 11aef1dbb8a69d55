package repo

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/radieske/bet-market-engine/internal/shared/db"
	"github.com/radieske/bet-market-engine/internal/store"
)

// Dialect isola o que muda entre Postgres e SQLite: DDL, cláusula de lock e
// classificação de erros de concorrência.
type Dialect struct {
	Name       string
	lockClause string
	schema     string
	numbered   byte // prefixo dos placeholders posicionais ($1 ou ?1)
	conflict   func(error) bool
}

var Postgres = Dialect{
	Name:       db.DriverPostgres,
	lockClause: " FOR UPDATE",
	schema:     postgresSchema,
	numbered:   '$',
	conflict: func(err error) bool {
		// classe 40: serialization_failure, deadlock_detected
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code.Class() == "40"
	},
}

// SQLite não tem lock de linha; a conexão única já serializa os writers
var SQLite = Dialect{
	Name:       db.DriverSQLite,
	lockClause: "",
	schema:     sqliteSchema,
	numbered:   '?',
	conflict: func(err error) bool {
		var coded interface{ Code() int }
		if !errors.As(err, &coded) {
			return false
		}
		// SQLITE_BUSY / SQLITE_LOCKED (inclui códigos estendidos)
		c := coded.Code() & 0xff
		return c == 5 || c == 6
	},
}

// DialectFor resolve o dialeto a partir do DB_DRIVER
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case db.DriverPostgres:
		return Postgres, nil
	case db.DriverSQLite:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported dialect %q", driver)
}

// wrap converte erros de concorrência do driver em store.ErrConflict
func (d Dialect) wrap(err error) error {
	if err == nil || errors.Is(err, store.ErrConflict) {
		return err
	}
	if d.conflict != nil && d.conflict(err) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

// rebind reescreve as queries escritas com $n para o estilo do dialeto
func (d Dialect) rebind(query string) string {
	if d.numbered == '$' || d.numbered == 0 {
		return query
	}
	b := []byte(query)
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '$' && b[i+1] >= '0' && b[i+1] <= '9' {
			b[i] = d.numbered
		}
	}
	return string(b)
}
