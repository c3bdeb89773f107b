package models

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// GenesisPrevHash marks the block that has no predecessor.
const GenesisPrevHash = "0"

// BlockPayload is the hashed content of a block: either a genesis note or a
// committed charge record. The CBOR array form is the canonical encoding fed
// into the digest, so field order is part of the hash contract.
type BlockPayload struct {
	_      struct{}      `cbor:",toarray"`
	Note   string        `json:"note,omitempty"`
	Charge *ChargeRecord `json:"charge,omitempty"`
}

// Block is a single ledger entry. All fields are set at construction (or by
// the ledger's relink inside Append) and never change after the block joins
// the chain.
type Block struct {
	Index     uint64       `json:"index"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   BlockPayload `json:"payload"`
	PrevHash  string       `json:"previous_hash"`
	Hash      string       `json:"hash"`
}

// NewBlock captures the given instant, computes the digest and returns the
// sealed block.
func NewBlock(index uint64, payload BlockPayload, prevHash string, at time.Time) (*Block, error) {
	b := &Block{
		Index:     index,
		Timestamp: at.UTC(),
		Payload:   payload,
		PrevHash:  prevHash,
	}
	hash, err := b.ComputeHash()
	if err != nil {
		return nil, err
	}
	b.Hash = hash
	return b, nil
}

// ComputeHash derives the SHA-256 hex digest over the block's index,
// timestamp, canonical payload encoding and previous hash. It reads only
// stored fields, so verification can recompute and compare against Hash.
func (b *Block) ComputeHash() (string, error) {
	payload, err := cbor.Marshal(b.Payload)
	if err != nil {
		return "", fmt.Errorf("block %d: encode payload: %w", b.Index, err)
	}

	var buf bytes.Buffer
	buf.WriteString(strconv.FormatUint(b.Index, 10))
	buf.WriteString(b.Timestamp.UTC().Format(time.RFC3339Nano))
	buf.Write(payload)
	buf.WriteString(b.PrevHash)

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
