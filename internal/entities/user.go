package entities

// Account is an operator login for the admin HTTP API. Chat users are tracked
// separately as Chat rows; accounts exist only for the dashboard.
type Account struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
