package main

import (
	"errors"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"go.uber.org/zap"

	"chargeledger/internal/config"
	"chargeledger/internal/ledger"
	"chargeledger/internal/registry"
	"chargeledger/internal/service"
)

const (
	actionCharge   = "Start charging"
	actionRecharge = "Recharge wallet"
	actionBalances = "Show balances & history"
	actionExit     = "Exit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		pterm.Fatal.Println(err)
	}

	led, err := ledger.New(nil)
	if err != nil {
		pterm.Fatal.Println(err)
	}

	// The console owns all rendering; core logs stay silent here.
	svc := service.NewChargingService(registry.New(), led, service.Limits{
		SessionCap:          cfg.Charging.SessionCap,
		LowBalanceThreshold: cfg.Charging.LowBalanceThreshold,
		DefaultUserBalance:  cfg.Charging.DefaultUserBalance,
		DefaultStationRate:  cfg.Charging.DefaultStationRate,
	}, zap.NewNop())

	seedDemoAccounts(svc)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Charge", pterm.FgCyan.ToStyle()),
		putils.LettersFromStringWithStyle("Ledger", pterm.FgDarkGray.ToStyle()),
	).Render()
	pterm.Info.Println("Blockchain EV charging console")

	for {
		pterm.Println()
		action, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText("Choose an action").
			WithOptions([]string{actionCharge, actionRecharge, actionBalances, actionExit}).
			Show()

		switch action {
		case actionCharge:
			startCharging(svc)
		case actionRecharge:
			rechargeWallet(svc)
		case actionBalances:
			showBalances(svc)
		case actionExit:
			showLedger(svc)
			pterm.Info.Println("Bye.")
			return
		}
	}
}

// seedDemoAccounts registers the demo fixtures the console starts with.
func seedDemoAccounts(svc *service.ChargingService) {
	users := []struct {
		id      string
		balance int64
	}{
		{"Sharon", 500},
		{"Deeraj", 800},
		{"Preetha", 300},
		{"Nithin", 1000},
		{"Arun", 700},
		{"Arul", 600},
	}
	for _, u := range users {
		if _, err := svc.RegisterUser(u.id, u.balance); err != nil {
			pterm.Warning.Printfln("seed user %s: %v", u.id, err)
		}
	}

	stations := []struct {
		id    string
		owner string
		rate  int64
	}{
		{"StationA", "OwnerA", 10},
		{"StationB", "OwnerB", 12},
		{"StationC", "OwnerC", 8},
		{"StationD", "OwnerD", 11},
	}
	for _, s := range stations {
		if _, err := svc.RegisterStation(s.id, s.owner, s.rate); err != nil {
			pterm.Warning.Printfln("seed station %s: %v", s.id, err)
		}
	}
}

func startCharging(svc *service.ChargingService) {
	userID, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("User ID").Show()
	stationID, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Station ID").Show()
	unitsRaw, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Units to charge").Show()

	units, err := strconv.ParseInt(unitsRaw, 10, 64)
	if err != nil {
		pterm.Error.Println("Units must be a whole number.")
		return
	}

	result, err := svc.StartCharging(userID, stationID, units)
	if err != nil {
		pterm.Error.Println(chargeFailureMessage(err))
		return
	}

	pterm.Success.Printfln("Charging complete! Session %s, cost %d, balance %d",
		result.SessionID, result.Cost, result.UserBalance)
	if result.LowBalance {
		pterm.Warning.Printfln("Balance of %s is running low (%d).", userID, result.UserBalance)
	}
}

func rechargeWallet(svc *service.ChargingService) {
	userID, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("User ID").Show()
	amountRaw, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Amount").Show()

	amount, err := strconv.ParseInt(amountRaw, 10, 64)
	if err != nil {
		pterm.Error.Println("Amount must be a whole number.")
		return
	}

	balance, err := svc.Recharge(userID, amount)
	if err != nil {
		pterm.Error.Println(chargeFailureMessage(err))
		return
	}
	pterm.Success.Printfln("Wallet recharged, new balance: %d", balance)
}

func showBalances(svc *service.ChargingService) {
	snapshot := svc.Balances()

	userRows := pterm.TableData{{"User", "Balance", "Sessions"}}
	for _, user := range snapshot.Users {
		userRows = append(userRows, []string{
			user.ID,
			strconv.FormatInt(user.Balance, 10),
			strconv.Itoa(len(user.Transactions)),
		})
	}
	pterm.DefaultSection.Println("Users")
	pterm.DefaultTable.WithHasHeader().WithData(userRows).Render()

	for _, user := range snapshot.Users {
		for _, tx := range user.Transactions {
			pterm.Printfln("  %s: session %s | %d units at %s | cost %d | %s",
				user.ID, tx.SessionID, tx.Units, tx.StationID, tx.Cost,
				tx.Timestamp.Format("2006-01-02 15:04:05"))
		}
	}

	stationRows := pterm.TableData{{"Station", "Owner", "Rate", "Balance"}}
	for _, station := range snapshot.Stations {
		stationRows = append(stationRows, []string{
			station.ID,
			station.Owner,
			strconv.FormatInt(station.Rate, 10),
			strconv.FormatInt(station.Balance, 10),
		})
	}
	pterm.DefaultSection.Println("Stations")
	pterm.DefaultTable.WithHasHeader().WithData(stationRows).Render()
}

func showLedger(svc *service.ChargingService) {
	pterm.DefaultSection.Println("Blockchain ledger")

	rows := pterm.TableData{{"Index", "Timestamp", "Session", "Hash", "Previous"}}
	for _, block := range svc.LedgerSnapshot() {
		session := block.Payload.Note
		if block.Payload.Charge != nil {
			session = block.Payload.Charge.SessionID
		}
		rows = append(rows, []string{
			strconv.FormatUint(block.Index, 10),
			block.Timestamp.Format("2006-01-02 15:04:05"),
			session,
			shorten(block.Hash),
			shorten(block.PrevHash),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if err := svc.VerifyLedger(); err != nil {
		pterm.Error.Printfln("Ledger verification failed: %v", err)
		return
	}
	pterm.Success.Println("Ledger verified: all blocks intact.")
}

func chargeFailureMessage(err error) string {
	switch {
	case errors.Is(err, registry.ErrUnknownUser):
		return "Unknown user ID. Please register first."
	case errors.Is(err, registry.ErrUnknownStation):
		return "Unknown station ID. Please register the station first."
	case errors.Is(err, registry.ErrInvalidAmount):
		return "Amount must be positive."
	case errors.Is(err, service.ErrInvalidUnits):
		return "Units must be positive."
	case errors.Is(err, service.ErrUnitsOverCap):
		return "Maximum units per session exceeded."
	case errors.Is(err, service.ErrInsufficientBalance):
		return "Insufficient balance. Recharge your wallet first."
	default:
		return err.Error()
	}
}

func shorten(hash string) string {
	if len(hash) <= 20 {
		return hash
	}
	return hash[:20] + "..."
}
