package plan

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ariel-frischer/specgate/internal/contract"
)

// Strategy names accepted by StrategyByName.
const (
	StrategyDeterministic = "deterministic"
	StrategyUnique        = "unique"
)

// IDStrategy derives a build identifier for a run.
type IDStrategy interface {
	Name() string
	ID(intent contract.Intent, capabilityID string) (string, error)
}

// StrategyByName returns the named strategy.
func StrategyByName(name string) (IDStrategy, error) {
	switch name {
	case "", StrategyDeterministic:
		return Deterministic{}, nil
	case StrategyUnique:
		return NewUnique(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q (want %s or %s)", name, StrategyDeterministic, StrategyUnique)
	}
}

// Deterministic hashes the canonical intent and capability id, so equal
// inputs always yield the same identifier.
type Deterministic struct{}

// Name implements IDStrategy.
func (Deterministic) Name() string { return StrategyDeterministic }

// ID implements IDStrategy. The result is "det-" followed by the first 16
// hex digits of the digest.
func (Deterministic) ID(intent contract.Intent, capabilityID string) (string, error) {
	return "det-" + IntentDigest(intent, capabilityID)[:16], nil
}

// IntentDigest is the hex sha256 over length-prefixed intent fields. List
// fields are treated as sets.
func IntentDigest(intent contract.Intent, capabilityID string) string {
	h := sha256.New()

	writeField(h, intent.Classification)
	writeField(h, intent.ComponentType)
	writeField(h, intent.Behavior.Interactivity)
	writeSet(h, intent.Behavior.Outputs)
	writeField(h, intent.Accessibility.WCAGLevel)
	writeField(h, strconv.FormatBool(intent.Accessibility.KeyboardNavigation))
	writeField(h, strconv.FormatBool(intent.Accessibility.ScreenReader))
	writeField(h, strconv.FormatBool(intent.Responsiveness.Adaptive))
	writeSet(h, intent.Responsiveness.Breakpoints)
	writeField(h, capabilityID)

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

func writeSet(h hash.Hash, items []string) {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	writeField(h, strconv.Itoa(len(sorted)))
	for _, s := range sorted {
		writeField(h, s)
	}
}

// Unique combines a UTC timestamp with 122 random bits, so concurrent
// calls never collide in practice. The zero value uses the wall clock.
type Unique struct {
	now func() time.Time
}

// NewUnique returns a Unique strategy on the wall clock.
func NewUnique() *Unique {
	return &Unique{now: time.Now}
}

// Name implements IDStrategy.
func (*Unique) Name() string { return StrategyUnique }

// ID implements IDStrategy. The result is "bld-<yyyymmddThhmmss>-<32 hex>".
func (u *Unique) ID(contract.Intent, string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating build id: %w", err)
	}
	now := time.Now
	if u.now != nil {
		now = u.now
	}
	return fmt.Sprintf("bld-%s-%s", now().UTC().Format("20060102T150405"), hex.EncodeToString(id[:])), nil
}
