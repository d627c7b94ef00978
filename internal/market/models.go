package market

// User can act as a customer or an executor depending on Role.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
	Email     string `json:"email"`
	Role      string `json:"role"` // customer | executor, not enforced
	Phone     string `json:"phone"`
}

type Order struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
	Address     string `json:"address"`
	Price       int    `json:"price"`
	CustomerID  int64  `json:"customer_id"`
	ExecutorID  int64  `json:"executor_id"`
}

// Offer is an executor's bid on an order.
type Offer struct {
	ID         int64 `json:"id"`
	OrderID    int64 `json:"order_id"`
	ExecutorID int64 `json:"executor_id"`
}

const (
	RoleCustomer = "customer"
	RoleExecutor = "executor"
)
