package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chargeledger/internal/ledger"
	"chargeledger/internal/models"
	"chargeledger/internal/registry"
)

var (
	// ErrInvalidUnits is returned when requested units are zero or negative.
	ErrInvalidUnits = errors.New("charging: units must be positive")
	// ErrUnitsOverCap is returned when requested units exceed the session cap.
	ErrUnitsOverCap = errors.New("charging: units exceed session cap")
	// ErrInsufficientBalance is returned when the user cannot cover the cost.
	ErrInsufficientBalance = errors.New("charging: insufficient balance")
)

// sessionIDLength is the short-id width carried in records and block payloads.
const sessionIDLength = 8

// Limits holds the tunable charging rules.
type Limits struct {
	SessionCap          int64
	LowBalanceThreshold int64
	DefaultUserBalance  int64
	DefaultStationRate  int64
}

// ChargeResult reports a committed session back to the caller.
type ChargeResult struct {
	SessionID   string `json:"session_id"`
	Cost        int64  `json:"cost"`
	UserBalance int64  `json:"user_balance"`
	LowBalance  bool   `json:"low_balance"`
}

// ChargingService is the session engine. It owns the registry and the ledger
// and serializes every mutating operation behind one mutex, so the
// check-funds, transfer and append steps of a session are a single critical
// section even when the HTTP surface serves requests concurrently.
type ChargingService struct {
	mu           sync.Mutex
	registry     *registry.Registry
	ledger       *ledger.Ledger
	limits       Limits
	logger       *zap.Logger
	now          func() time.Time
	newSessionID func() string
	usedSessions map[string]struct{}
}

// NewChargingService builds the engine around an existing registry and ledger.
func NewChargingService(reg *registry.Registry, led *ledger.Ledger, limits Limits, logger *zap.Logger) *ChargingService {
	return &ChargingService{
		registry:     reg,
		ledger:       led,
		limits:       limits,
		logger:       logger,
		now:          time.Now,
		newSessionID: func() string { return uuid.NewString()[:sessionIDLength] },
		usedSessions: make(map[string]struct{}),
	}
}

// Limits returns the active charging rules.
func (s *ChargingService) Limits() Limits {
	return s.limits
}

// RegisterUser adds a user account.
func (s *ChargingService) RegisterUser(id string, balance int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.registry.RegisterUser(id, balance)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.Int64("balance", user.Balance))
	return user, nil
}

// RegisterStation adds a charging station.
func (s *ChargingService) RegisterStation(id, owner string, rate int64) (models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	station, err := s.registry.RegisterStation(id, owner, rate)
	if err != nil {
		return models.Station{}, err
	}
	s.logger.Info("station registered",
		zap.String("station_id", station.ID),
		zap.String("owner", station.Owner),
		zap.Int64("rate", station.Rate),
	)
	return station, nil
}

// Recharge tops up a user's wallet and returns the new balance.
func (s *ChargingService) Recharge(userID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.registry.Recharge(userID, amount)
	if err != nil {
		return 0, err
	}
	s.logger.Info("wallet recharged",
		zap.String("user_id", userID),
		zap.Int64("amount", amount),
		zap.Int64("balance", balance),
	)
	return balance, nil
}

// StartCharging validates and executes one charging session: funds move from
// user to station, the record joins the user's history and a new block seals
// it into the ledger. Any validation failure leaves all state untouched.
func (s *ChargingService) StartCharging(userID, stationID string, units int64) (*ChargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.registry.User(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrUnknownUser, userID)
	}
	station, ok := s.registry.Station(stationID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrUnknownStation, stationID)
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidUnits, units)
	}
	if units > s.limits.SessionCap {
		return nil, fmt.Errorf("%w: %d > %d", ErrUnitsOverCap, units, s.limits.SessionCap)
	}

	cost := units * station.Rate
	if user.Balance < cost {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientBalance, cost, user.Balance)
	}

	sessionID := s.allocateSessionID()

	rec := models.ChargeRecord{
		SessionID: sessionID,
		UserID:    userID,
		StationID: stationID,
		Units:     units,
		Rate:      station.Rate,
		Cost:      cost,
		Timestamp: s.now().UTC(),
	}

	balance, err := s.registry.ApplyCharge(rec)
	if err != nil {
		delete(s.usedSessions, sessionID)
		return nil, err
	}

	if _, err := s.ledger.Append(models.BlockPayload{Charge: &rec}); err != nil {
		return nil, err
	}

	low := balance < s.limits.LowBalanceThreshold
	if low {
		s.logger.Warn("user balance is low",
			zap.String("user_id", userID),
			zap.Int64("balance", balance),
		)
	}

	s.logger.Info("charging session committed",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.String("station_id", stationID),
		zap.Int64("units", units),
		zap.Int64("cost", cost),
	)

	return &ChargeResult{
		SessionID:   sessionID,
		Cost:        cost,
		UserBalance: balance,
		LowBalance:  low,
	}, nil
}

// Balances returns the reporting snapshot over all accounts.
func (s *ChargingService) Balances() models.BalancesSnapshot {
	return models.BalancesSnapshot{
		Users:    s.registry.UsersSnapshot(),
		Stations: s.registry.StationsSnapshot(),
	}
}

// LedgerSnapshot returns all blocks in chain order.
func (s *ChargingService) LedgerSnapshot() []models.Block {
	return s.ledger.Snapshot()
}

// VerifyLedger rescans the chain and reports the first inconsistency, if any.
func (s *ChargingService) VerifyLedger() error {
	return s.ledger.Verify()
}

// allocateSessionID samples the uuid space until it finds an id unseen over
// the ledger's lifetime and reserves it. Collisions on the short form are
// possible, hence the loop; the reservation happens before commit so two
// back-to-back sessions can never share an id. Callers hold s.mu.
func (s *ChargingService) allocateSessionID() string {
	id := s.newSessionID()
	for {
		if _, used := s.usedSessions[id]; !used {
			break
		}
		id = s.newSessionID()
	}
	s.usedSessions[id] = struct{}{}
	return id
}
