package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"chargeledger/internal/models"
)

var (
	// ErrInvalidID is returned when an identifier is empty.
	ErrInvalidID = errors.New("registry: identifier is required")
	// ErrDuplicateID is returned on an attempt to register an existing id.
	ErrDuplicateID = errors.New("registry: identifier already registered")
	// ErrUnknownUser is returned when a user id is not registered.
	ErrUnknownUser = errors.New("registry: unknown user")
	// ErrUnknownStation is returned when a station id is not registered.
	ErrUnknownStation = errors.New("registry: unknown station")
	// ErrInvalidAmount is returned for non-positive amounts and rates.
	ErrInvalidAmount = errors.New("registry: amount must be positive")
)

// Registry keeps all registered users and stations. Inserts enforce the
// unique-key invariant: a duplicate id is rejected, never overwritten.
type Registry struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	stations map[string]*models.Station
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		users:    make(map[string]*models.User),
		stations: make(map[string]*models.Station),
	}
}

// RegisterUser inserts a new user with the given starting balance.
func (r *Registry) RegisterUser(id string, balance int64) (models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.User{}, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[id]; exists {
		return models.User{}, fmt.Errorf("%w: user %q", ErrDuplicateID, id)
	}
	user := &models.User{ID: id, Balance: balance}
	r.users[id] = user
	return copyUser(user), nil
}

// RegisterStation inserts a new station. Owner is kept as-is; it is a label,
// not a user reference.
func (r *Registry) RegisterStation(id, owner string, rate int64) (models.Station, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Station{}, ErrInvalidID
	}
	if rate <= 0 {
		return models.Station{}, fmt.Errorf("%w: rate %d", ErrInvalidAmount, rate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stations[id]; exists {
		return models.Station{}, fmt.Errorf("%w: station %q", ErrDuplicateID, id)
	}
	station := &models.Station{ID: id, Owner: owner, Rate: rate}
	r.stations[id] = station
	return *station, nil
}

// Recharge adds amount to the user's balance and returns the new balance.
func (r *Registry) Recharge(userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: recharge %d", ErrInvalidAmount, amount)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUser, userID)
	}
	user.Balance += amount
	return user.Balance, nil
}

// User returns a copy of the user with the given id.
func (r *Registry) User(id string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return models.User{}, false
	}
	return copyUser(user), true
}

// Station returns a copy of the station with the given id.
func (r *Registry) Station(id string) (models.Station, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	station, ok := r.stations[id]
	if !ok {
		return models.Station{}, false
	}
	return *station, true
}

// ApplyCharge moves the record's cost from the user to the station and
// appends the record to the user's history, as one step. Existence and
// balance are re-checked here so a stale caller can never drive the balance
// negative or touch only one side of the transfer.
func (r *Registry) ApplyCharge(rec models.ChargeRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[rec.UserID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUser, rec.UserID)
	}
	station, ok := r.stations[rec.StationID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStation, rec.StationID)
	}
	if user.Balance < rec.Cost {
		return 0, fmt.Errorf("registry: balance %d below cost %d", user.Balance, rec.Cost)
	}

	user.Balance -= rec.Cost
	station.Balance += rec.Cost
	user.Transactions = append(user.Transactions, rec)
	return user.Balance, nil
}

// UsersSnapshot returns deep copies of all users, ordered by id.
func (r *Registry) UsersSnapshot() []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, copyUser(user))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StationsSnapshot returns copies of all stations, ordered by id.
func (r *Registry) StationsSnapshot() []models.Station {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Station, 0, len(r.stations))
	for _, station := range r.stations {
		out = append(out, *station)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyUser(user *models.User) models.User {
	cp := *user
	if len(user.Transactions) > 0 {
		cp.Transactions = make([]models.ChargeRecord, len(user.Transactions))
		copy(cp.Transactions, user.Transactions)
	}
	return cp
}
