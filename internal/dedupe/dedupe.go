// Package dedupe admits only candidate transactions that are not already in
// the ledger.
package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pennywyse/pennywyse/internal/id"
	"github.com/pennywyse/pennywyse/internal/model"
)

// Strictness selects how the (date, amount) rule is applied.
type Strictness string

const (
	// Strict rejects any candidate whose (date, amount) pair is in the ledger.
	Strict Strictness = "strict"
	// Lenient applies the (date, amount) rule only to candidates without an ID.
	Lenient Strictness = "lenient"
)

// ParseStrictness validates a configured strictness. "" means Strict.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(strings.TrimSpace(s))) {
	case "", Strict:
		return Strict, nil
	case Lenient:
		return Lenient, nil
	default:
		return "", fmt.Errorf("unknown dedupe strictness %q (want %q or %q)", s, Strict, Lenient)
	}
}

// Reason says which rule rejected a candidate.
type Reason string

const (
	ReasonTransactionID Reason = "transaction_id"
	ReasonDateAmount    Reason = "date_amount"
	ReasonBatchRepeat   Reason = "batch_repeat"
)

// Options controls Filter.
type Options struct {
	Strictness Strictness
}

// Rejection is a candidate filtered out as a duplicate.
type Rejection struct {
	Transaction model.Transaction
	Reason      Reason
}

// Result is the outcome of Filter.
type Result struct {
	Admitted []model.Transaction // newest first
	Rejected []Rejection         // parse order
}

// Index holds the ledger keys Filter compares against.
type Index struct {
	ids        map[string]bool
	dateAmount map[string]bool
}

// NewIndex builds an Index over ledger rows.
func NewIndex(ledger []model.Transaction) *Index {
	idx := &Index{
		ids:        make(map[string]bool, len(ledger)),
		dateAmount: make(map[string]bool, len(ledger)),
	}
	for _, t := range ledger {
		idx.Add(t)
	}
	return idx
}

// Add records a transaction in the index.
func (idx *Index) Add(t model.Transaction) {
	if key := id.Normalize(t.TransactionID); key != "" {
		idx.ids[key] = true
	}
	idx.dateAmount[t.DateAmountKey()] = true
}

// HasID reports whether a non-empty ID is indexed.
func (idx *Index) HasID(txnID string) bool {
	key := id.Normalize(txnID)
	return key != "" && idx.ids[key]
}

// HasDateAmount reports whether t's (date, amount) pair is indexed.
func (idx *Index) HasDateAmount(t model.Transaction) bool {
	return idx.dateAmount[t.DateAmountKey()]
}

// Filter returns the candidates that are new relative to ledger. The ledger is
// only read. A candidate is admitted when its ID is not in the ledger, its
// (date, amount) pair is not in the ledger, and no earlier candidate in the
// batch carried the same ID. Candidates without an ID repeat an earlier one
// when both lack an ID and share (date, amount).
func Filter(candidates, ledger []model.Transaction, opts Options) Result {
	idx := NewIndex(ledger)
	seen := make(map[string]bool)
	seenPairs := make(map[string]bool)

	var res Result
	for _, c := range candidates {
		key := id.Normalize(c.TransactionID)

		if idx.HasID(key) {
			res.Rejected = append(res.Rejected, Rejection{Transaction: c, Reason: ReasonTransactionID})
			continue
		}
		if applyDateAmount(opts.Strictness, key) && idx.HasDateAmount(c) {
			res.Rejected = append(res.Rejected, Rejection{Transaction: c, Reason: ReasonDateAmount})
			continue
		}
		if key != "" {
			if seen[key] {
				res.Rejected = append(res.Rejected, Rejection{Transaction: c, Reason: ReasonBatchRepeat})
				continue
			}
			seen[key] = true
		} else {
			pair := c.DateAmountKey()
			if seenPairs[pair] {
				res.Rejected = append(res.Rejected, Rejection{Transaction: c, Reason: ReasonBatchRepeat})
				continue
			}
			seenPairs[pair] = true
		}
		res.Admitted = append(res.Admitted, c)
	}

	SortNewestFirst(res.Admitted)
	return res
}

func applyDateAmount(s Strictness, key string) bool {
	if s == Lenient {
		return key == ""
	}
	return true
}

// SortNewestFirst orders transactions by date descending, keeping input order
// for equal dates.
func SortNewestFirst(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
}

// Counts tallies rejections by reason.
func (r Result) Counts() map[Reason]int {
	counts := make(map[Reason]int)
	for _, rej := range r.Rejected {
		counts[rej.Reason]++
	}
	return counts
}
