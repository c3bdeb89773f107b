package ledger

import (
	"fmt"
	"sync"
	"time"

	"chargeledger/internal/models"
)

const genesisNote = "EV Charging System"

// Ledger is the append-only hash-linked chain of charge records. Index 0 is
// always the genesis block; blocks are never edited or removed after Append.
type Ledger struct {
	mu     sync.RWMutex
	blocks []*models.Block
	now    func() time.Time
}

// New builds a ledger containing only the genesis block. The clock is used
// for every block timestamp; pass nil for wall time.
func New(now func() time.Time) (*Ledger, error) {
	if now == nil {
		now = time.Now
	}
	genesis, err := models.NewBlock(0, models.BlockPayload{Note: genesisNote}, models.GenesisPrevHash, now())
	if err != nil {
		return nil, fmt.Errorf("ledger: create genesis: %w", err)
	}
	return &Ledger{
		blocks: []*models.Block{genesis},
		now:    now,
	}, nil
}

// Latest returns a copy of the last block in the chain.
func (l *Ledger) Latest() models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return *l.blocks[len(l.blocks)-1]
}

// Length reports the number of blocks, genesis included.
func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Append links the payload to the current chain head and adds the sealed
// block. This is the only mutation entry point; callers never supply
// pre-linked blocks.
func (l *Ledger) Append(payload models.BlockPayload) (models.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	head := l.blocks[len(l.blocks)-1]
	block, err := models.NewBlock(uint64(len(l.blocks)), payload, head.Hash, l.now())
	if err != nil {
		return models.Block{}, fmt.Errorf("ledger: append: %w", err)
	}
	l.blocks = append(l.blocks, block)
	return *block, nil
}

// Verify rescans the whole chain: every block's digest is recomputed from its
// stored fields and compared against the stored hash, and every link is
// checked against the predecessor's stored hash. The first mismatch is
// reported; nil means the chain is intact.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := 1; i < len(l.blocks); i++ {
		curr := l.blocks[i]
		prev := l.blocks[i-1]

		hash, err := curr.ComputeHash()
		if err != nil {
			return fmt.Errorf("ledger: verify block %d: %w", i, err)
		}
		if hash != curr.Hash {
			return fmt.Errorf("ledger: block %d content does not match its hash", i)
		}
		if curr.PrevHash != prev.Hash {
			return fmt.Errorf("ledger: block %d is not linked to block %d", i, i-1)
		}
	}
	return nil
}

// IsValid is the boolean form of Verify.
func (l *Ledger) IsValid() bool {
	return l.Verify() == nil
}

// Snapshot returns copies of all blocks in chain order.
func (l *Ledger) Snapshot() []models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Block, len(l.blocks))
	for i, b := range l.blocks {
		cp := *b
		if b.Payload.Charge != nil {
			rec := *b.Payload.Charge
			cp.Payload.Charge = &rec
		}
		out[i] = cp
	}
	return out
}
