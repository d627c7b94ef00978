// Package seed loads the static fixture dataset into a fresh store.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/ariefcatur/go-freelance-orders/internal/market"
)

// FixtureDateLayout is MM/DD/YYYY, the format the fixtures were written in.
const FixtureDateLayout = "01/02/2006"

const (
	ModeAlways  = "always"
	ModeIfEmpty = "if-empty"
	ModeNever   = "never"
)

//go:embed fixtures.json
var embedded []byte

type Store interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, u *market.User) error
	CreateOrder(ctx context.Context, o *market.Order) error
	CreateOffer(ctx context.Context, o *market.Offer) error
}

type Dataset struct {
	Users  []market.User
	Orders []market.Order
	Offers []market.Offer
}

type Stats struct {
	Users, Orders, Offers int
	Skipped               bool
}

type userFixture struct {
	FirstName *string `json:"first_name" validate:"required"`
	LastName  *string `json:"last_name" validate:"required"`
	Age       *int    `json:"age" validate:"required"`
	Email     *string `json:"email" validate:"required"`
	Role      *string `json:"role" validate:"required"`
	Phone     *string `json:"phone" validate:"required"`
}

type orderFixture struct {
	Name        *string `json:"name" validate:"required"`
	Description *string `json:"description" validate:"required"`
	StartDate   *string `json:"start_date" validate:"required"`
	EndDate     *string `json:"end_date" validate:"required"`
	Address     *string `json:"address" validate:"required"`
	Price       *int    `json:"price" validate:"required"`
	CustomerID  *int64  `json:"customer_id" validate:"required"`
	ExecutorID  *int64  `json:"executor_id" validate:"required"`
}

type offerFixture struct {
	OrderID    *int64 `json:"order_id" validate:"required"`
	ExecutorID *int64 `json:"executor_id" validate:"required"`
}

type fixtureFile struct {
	Users  []userFixture  `json:"users"`
	Orders []orderFixture `json:"orders"`
	Offers []offerFixture `json:"offers"`
}

// Read returns the fixture bytes at path, or the embedded dataset when path is empty.
func Read(path string) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	return os.ReadFile(path)
}

// Parse decodes fixtures. Every field is required and order dates must be MM/DD/YYYY.
func Parse(data []byte) (Dataset, error) {
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Dataset{}, fmt.Errorf("decode fixtures: %w", err)
	}
	v := validator.New()
	ds := Dataset{
		Users:  make([]market.User, 0, len(f.Users)),
		Orders: make([]market.Order, 0, len(f.Orders)),
		Offers: make([]market.Offer, 0, len(f.Offers)),
	}

	for i, u := range f.Users {
		if err := v.Struct(u); err != nil {
			return Dataset{}, fmt.Errorf("users[%d]: %w", i, err)
		}
		ds.Users = append(ds.Users, market.User{
			FirstName: *u.FirstName,
			LastName:  *u.LastName,
			Age:       *u.Age,
			Email:     *u.Email,
			Role:      *u.Role,
			Phone:     *u.Phone,
		})
	}

	for i, o := range f.Orders {
		if err := v.Struct(o); err != nil {
			return Dataset{}, fmt.Errorf("orders[%d]: %w", i, err)
		}
		start, err := market.ParseDate(FixtureDateLayout, *o.StartDate)
		if err != nil {
			return Dataset{}, fmt.Errorf("orders[%d].start_date: %w", i, err)
		}
		end, err := market.ParseDate(FixtureDateLayout, *o.EndDate)
		if err != nil {
			return Dataset{}, fmt.Errorf("orders[%d].end_date: %w", i, err)
		}
		ds.Orders = append(ds.Orders, market.Order{
			Name:        *o.Name,
			Description: *o.Description,
			StartDate:   start,
			EndDate:     end,
			Address:     *o.Address,
			Price:       *o.Price,
			CustomerID:  *o.CustomerID,
			ExecutorID:  *o.ExecutorID,
		})
	}

	for i, o := range f.Offers {
		if err := v.Struct(o); err != nil {
			return Dataset{}, fmt.Errorf("offers[%d]: %w", i, err)
		}
		ds.Offers = append(ds.Offers, market.Offer{OrderID: *o.OrderID, ExecutorID: *o.ExecutorID})
	}
	return ds, nil
}

// Load inserts users, then orders, then offers, one statement per row.
// A failure part way leaves the rows already written in place.
func Load(ctx context.Context, store Store, ds Dataset) (Stats, error) {
	var st Stats
	for i := range ds.Users {
		if err := store.CreateUser(ctx, &ds.Users[i]); err != nil {
			return st, fmt.Errorf("seed users[%d]: %w", i, err)
		}
		st.Users++
	}
	for i := range ds.Orders {
		if err := store.CreateOrder(ctx, &ds.Orders[i]); err != nil {
			return st, fmt.Errorf("seed orders[%d]: %w", i, err)
		}
		st.Orders++
	}
	for i := range ds.Offers {
		if err := store.CreateOffer(ctx, &ds.Offers[i]); err != nil {
			return st, fmt.Errorf("seed offers[%d]: %w", i, err)
		}
		st.Offers++
	}
	return st, nil
}

// Run reads, parses and loads fixtures according to mode. if-empty skips the
// load when the users table already has rows, which keeps restarts against a
// persistent database from duplicating the dataset.
func Run(ctx context.Context, store Store, mode, path string) (Stats, error) {
	switch mode {
	case ModeNever:
		return Stats{Skipped: true}, nil
	case ModeIfEmpty:
		n, err := store.CountUsers(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("count users: %w", err)
		}
		if n > 0 {
			return Stats{Skipped: true}, nil
		}
	case ModeAlways:
	default:
		return Stats{}, fmt.Errorf("unknown seed mode %q", mode)
	}

	data, err := Read(path)
	if err != nil {
		return Stats{}, fmt.Errorf("read fixtures: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return Stats{}, err
	}
	return Load(ctx, store, ds)
}
