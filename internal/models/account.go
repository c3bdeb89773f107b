package models

// User is a wallet-holding account identified by a unique id.
type User struct {
	ID           string         `json:"id"`
	Balance      int64          `json:"balance"`
	Transactions []ChargeRecord `json:"transactions,omitempty"`
}

// Station is a charging point. Owner is a free-text label and is not checked
// against the user registry.
type Station struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Rate    int64  `json:"rate"`
	Balance int64  `json:"balance"`
}

// BalancesSnapshot is the read-only reporting view over all accounts.
type BalancesSnapshot struct {
	Users    []User    `json:"users"`
	Stations []Station `json:"stations"`
}
