package market

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	userColumns  = []any{"id", "first_name", "last_name", "age", "email", "role", "phone"}
	orderColumns = []any{"id", "name", "description", "start_date", "end_date", "address", "price", "customer_id", "executor_id"}
	offerColumns = []any{"id", "order_id", "executor_id"}
)

// Repo is the relational store for users, orders and offers. Every call is a
// single statement; nothing spans entities.
type Repo struct {
	db     *sql.DB
	gq     *goqu.Database
	driver string
	strict bool
}

// NewRepo wraps db. driver selects the SQL dialect (sqlite3 or postgres);
// strict only changes the postgres schema, see Migrate.
func NewRepo(db *sql.DB, driver string, strict bool) *Repo {
	return &Repo{db: db, gq: goqu.New(driver, db), driver: driver, strict: strict}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ---- users ----

func scanUser(s rowScanner, u *User) error {
	return s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Age, &u.Email, &u.Role, &u.Phone)
}

func userRecord(u *User) goqu.Record {
	return goqu.Record{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"age":        u.Age,
		"email":      u.Email,
		"role":       u.Role,
		"phone":      u.Phone,
	}
}

func (r *Repo) ListUsers(ctx context.Context) ([]User, error) {
	return list(ctx, r, r.gq.From(tableUsers).Select(userColumns...), scanUser)
}

func (r *Repo) GetUser(ctx context.Context, id int64) (User, error) {
	return get(ctx, r, r.gq.From(tableUsers).Select(userColumns...), id, scanUser)
}

func (r *Repo) CreateUser(ctx context.Context, u *User) error {
	id, err := r.insert(ctx, tableUsers, userRecord(u))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return nil
}

func (r *Repo) UpdateUser(ctx context.Context, u *User) error {
	return r.update(ctx, tableUsers, u.ID, userRecord(u))
}

func (r *Repo) DeleteUser(ctx context.Context, id int64) error {
	return r.delete(ctx, tableUsers, id)
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	query, args, err := r.gq.From(tableUsers).Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ---- orders ----

func scanOrder(s rowScanner, o *Order) error {
	return s.Scan(&o.ID, &o.Name, &o.Description, &o.StartDate, &o.EndDate,
		&o.Address, &o.Price, &o.CustomerID, &o.ExecutorID)
}

func orderRecord(o *Order) goqu.Record {
	return goqu.Record{
		"name":        o.Name,
		"description": o.Description,
		"start_date":  o.StartDate.Time,
		"end_date":    o.EndDate.Time,
		"address":     o.Address,
		"price":       o.Price,
		"customer_id": o.CustomerID,
		"executor_id": o.ExecutorID,
	}
}

func (r *Repo) ListOrders(ctx context.Context) ([]Order, error) {
	return list(ctx, r, r.gq.From(tableOrders).Select(orderColumns...), scanOrder)
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (Order, error) {
	return get(ctx, r, r.gq.From(tableOrders).Select(orderColumns...), id, scanOrder)
}

func (r *Repo) CreateOrder(ctx context.Context, o *Order) error {
	id, err := r.insert(ctx, tableOrders, orderRecord(o))
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	o.ID = id
	return nil
}

func (r *Repo) UpdateOrder(ctx context.Context, o *Order) error {
	return r.update(ctx, tableOrders, o.ID, orderRecord(o))
}

func (r *Repo) DeleteOrder(ctx context.Context, id int64) error {
	return r.delete(ctx, tableOrders, id)
}

// ---- offers ----

func scanOffer(s rowScanner, o *Offer) error {
	return s.Scan(&o.ID, &o.OrderID, &o.ExecutorID)
}

func offerRecord(o *Offer) goqu.Record {
	return goqu.Record{
		"order_id":    o.OrderID,
		"executor_id": o.ExecutorID,
	}
}

func (r *Repo) ListOffers(ctx context.Context) ([]Offer, error) {
	return list(ctx, r, r.gq.From(tableOffers).Select(offerColumns...), scanOffer)
}

func (r *Repo) GetOffer(ctx context.Context, id int64) (Offer, error) {
	return get(ctx, r, r.gq.From(tableOffers).Select(offerColumns...), id, scanOffer)
}

func (r *Repo) CreateOffer(ctx context.Context, o *Offer) error {
	id, err := r.insert(ctx, tableOffers, offerRecord(o))
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	o.ID = id
	return nil
}

func (r *Repo) UpdateOffer(ctx context.Context, o *Offer) error {
	return r.update(ctx, tableOffers, o.ID, offerRecord(o))
}

func (r *Repo) DeleteOffer(ctx context.Context, id int64) error {
	return r.delete(ctx, tableOffers, id)
}

// ---- shared statements ----

func list[T any](ctx context.Context, r *Repo, ds *goqu.SelectDataset, scan func(rowScanner, *T) error) ([]T, error) {
	query, args, err := ds.Order(goqu.C("id").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func get[T any](ctx context.Context, r *Repo, ds *goqu.SelectDataset, id int64, scan func(rowScanner, *T) error) (T, error) {
	var v T
	query, args, err := ds.Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return v, err
	}
	err = scan(r.db.QueryRowContext(ctx, query, args...), &v)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

// insert returns the id assigned by the database.
func (r *Repo) insert(ctx context.Context, table string, rec goqu.Record) (int64, error) {
	query, args, err := r.insertSQL(table, rec)
	if err != nil {
		return 0, err
	}
	if r.returnsID() {
		var id int64
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, classify(err)
		}
		return id, nil
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.LastInsertId()
}

// pgx has no LastInsertId, so postgres goes through RETURNING.
func (r *Repo) returnsID() bool { return r.driver == DriverPostgres }

func (r *Repo) insertSQL(table string, rec goqu.Record) (string, []any, error) {
	ds := r.gq.Insert(table).Rows(rec).Prepared(true)
	if r.returnsID() {
		ds = ds.Returning("id")
	}
	return ds.ToSQL()
}

func (r *Repo) update(ctx context.Context, table string, id int64, rec goqu.Record) error {
	query, args, err := r.gq.Update(table).Set(rec).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return r.execOne(ctx, query, args)
}

func (r *Repo) delete(ctx context.Context, table string, id int64) error {
	query, args, err := r.gq.Delete(table).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return r.execOne(ctx, query, args)
}

func (r *Repo) execOne(ctx context.Context, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
