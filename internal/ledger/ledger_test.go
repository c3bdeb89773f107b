package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chargeledger/internal/models"
)

// testClock hands out strictly increasing instants.
func testClock() func() time.Time {
	current := time.Date(2025, 4, 2, 11, 30, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func chargePayload(session string) models.BlockPayload {
	return models.BlockPayload{Charge: &models.ChargeRecord{
		SessionID: session,
		UserID:    "Sharon",
		StationID: "StationA",
		Units:     20,
		Rate:      10,
		Cost:      200,
	}}
}

func TestNewCreatesGenesis(t *testing.T) {
	led, err := New(testClock())
	require.NoError(t, err)

	require.Equal(t, 1, led.Length())
	genesis := led.Latest()
	require.EqualValues(t, 0, genesis.Index)
	require.Equal(t, models.GenesisPrevHash, genesis.PrevHash)
	require.NotEmpty(t, genesis.Hash)
	require.NoError(t, led.Verify())
}

func TestAppendLinksBlocks(t *testing.T) {
	led, err := New(testClock())
	require.NoError(t, err)

	for i, session := range []string{"s1", "s2", "s3"} {
		prevHash := led.Latest().Hash
		block, err := led.Append(chargePayload(session))
		require.NoError(t, err)

		require.EqualValues(t, i+1, block.Index)
		require.Equal(t, prevHash, block.PrevHash)
		require.NoError(t, led.Verify(), "chain must stay valid after every append")
	}

	chain := led.Snapshot()
	require.Len(t, chain, 4)
	require.Equal(t, chain[len(chain)-2].Hash, led.Latest().PrevHash)
}

func TestVerifyDetectsPayloadTampering(t *testing.T) {
	led, err := New(testClock())
	require.NoError(t, err)
	_, err = led.Append(chargePayload("s1"))
	require.NoError(t, err)
	_, err = led.Append(chargePayload("s2"))
	require.NoError(t, err)
	require.True(t, led.IsValid())

	led.blocks[1].Payload.Charge.Cost = 1

	require.False(t, led.IsValid())
	require.ErrorContains(t, led.Verify(), "block 1")
}

func TestVerifyDetectsLinkTampering(t *testing.T) {
	led, err := New(testClock())
	require.NoError(t, err)
	_, err = led.Append(chargePayload("s1"))
	require.NoError(t, err)
	_, err = led.Append(chargePayload("s2"))
	require.NoError(t, err)

	// Rewrite the link and recompute the digest so only the link check can
	// catch it.
	led.blocks[2].PrevHash = led.blocks[0].Hash
	rehashed, err := led.blocks[2].ComputeHash()
	require.NoError(t, err)
	led.blocks[2].Hash = rehashed

	require.False(t, led.IsValid())
	require.ErrorContains(t, led.Verify(), "not linked")
}

func TestVerifyDetectsReordering(t *testing.T) {
	led, err := New(testClock())
	require.NoError(t, err)
	_, err = led.Append(chargePayload("s1"))
	require.NoError(t, err)
	_, err = led.Append(chargePayload("s2"))
	require.NoError(t, err)

	led.blocks[1], led.blocks[2] = led.blocks[2], led.blocks[1]

	require.False(t, led.IsValid())
}

func TestSnapshotIsDetached(t *testing.T) {
	led, err := New(testClock())
	require.NoError(t, err)
	_, err = led.Append(chargePayload("s1"))
	require.NoError(t, err)

	snapshot := led.Snapshot()
	snapshot[1].Payload.Charge.Cost = 99999
	snapshot[1].Hash = "tampered"

	require.True(t, led.IsValid(), "mutating a snapshot must not reach the chain")
}
