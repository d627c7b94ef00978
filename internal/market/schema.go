package market

import (
	"context"
	"fmt"
	"strings"
)

const (
	tableUsers  = "users"
	tableOrders = "orders"
	tableOffers = "offers"
)

// SQLite only checks REFERENCES clauses when foreign_keys is switched on for the
// connection, so they are always declared here.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name VARCHAR(100),
		last_name  VARCHAR(100),
		age        INTEGER,
		email      VARCHAR(100),
		role       VARCHAR(100),
		phone      VARCHAR(100)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        VARCHAR(100),
		description TEXT,
		start_date  DATE,
		end_date    DATE,
		address     VARCHAR(100),
		price       INTEGER,
		customer_id INTEGER REFERENCES users(id),
		executor_id INTEGER REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id    INTEGER REFERENCES orders(id),
		executor_id INTEGER REFERENCES users(id)
	)`,
}

// Postgres always enforces REFERENCES, so the clause is templated in only
// for strict mode.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGSERIAL PRIMARY KEY,
		first_name VARCHAR(100),
		last_name  VARCHAR(100),
		age        INTEGER,
		email      VARCHAR(100),
		role       VARCHAR(100),
		phone      VARCHAR(100)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id          BIGSERIAL PRIMARY KEY,
		name        VARCHAR(100),
		description TEXT,
		start_date  DATE,
		end_date    DATE,
		address     VARCHAR(100),
		price       INTEGER,
		customer_id BIGINT {{users}},
		executor_id BIGINT {{users}}
	)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id          BIGSERIAL PRIMARY KEY,
		order_id    BIGINT {{orders}},
		executor_id BIGINT {{users}}
	)`,
}

func postgresDDL(strict bool) []string {
	users, orders := "", ""
	if strict {
		users, orders = "REFERENCES users(id)", "REFERENCES orders(id)"
	}
	r := strings.NewReplacer("{{users}}", users, "{{orders}}", orders)
	out := make([]string, 0, len(postgresSchema))
	for _, stmt := range postgresSchema {
		out = append(out, r.Replace(stmt))
	}
	return out
}

// Migrate creates the three tables if they do not exist yet.
func (r *Repo) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if r.driver == DriverPostgres {
		stmts = postgresDDL(r.strict)
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
