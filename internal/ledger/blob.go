// Package ledger records which execution client a node runs and which
// (mnemonic, index) validator pairs have been deposited for it.
//
// All operations are pure: they never modify their input and return a fresh
// Blob. Persisting the result, and serializing read-modify-write cycles per
// node, is the caller's job (see Keeper).
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/PolyhedraZK/nbnet/internal/model"
)

// ErrNotFound is returned when a removal targets a mnemonic that was never recorded.
var ErrNotFound = errors.New("mnemonic not found in ledger")

// IndexSet is a set of validator key indices derived from one mnemonic.
type IndexSet map[uint16]struct{}

// NewIndexSet returns a set holding the given indices.
func NewIndexSet(indices ...uint16) IndexSet {
	s := make(IndexSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// IndexRange returns the set {0, 1, ..., n-1}.
func IndexRange(n uint16) IndexSet {
	s := make(IndexSet, n)
	for i := uint16(0); i < n; i++ {
		s[i] = struct{}{}
	}
	return s
}

// Has reports whether i is in the set.
func (s IndexSet) Has(i uint16) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the indices in ascending order.
func (s IndexSet) Sorted() []uint16 {
	out := make([]uint16, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func (s IndexSet) clone() IndexSet {
	c := make(IndexSet, len(s))
	for i := range s {
		c[i] = struct{}{}
	}
	return c
}

// MarshalJSON encodes the set as an ascending JSON array.
func (s IndexSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array of indices; duplicates collapse.
func (s *IndexSet) UnmarshalJSON(data []byte) error {
	var indices []uint16
	if err := json.Unmarshal(data, &indices); err != nil {
		return fmt.Errorf("unmarshal index set: %w", err)
	}
	*s = NewIndexSet(indices...)
	return nil
}

// Deposits maps a mnemonic to the key indices deposited from it.
type Deposits map[string]IndexSet

func (d Deposits) clone() Deposits {
	c := make(Deposits, len(d))
	for m, s := range d {
		c[m] = s.clone()
	}
	return c
}

// Blob is the per-node data kept in the orchestrator's custom data slot.
type Blob struct {
	Kind     model.ExecutionClientKind `json:"el_kind"`
	Deposits Deposits                  `json:"deposits"`
}

// Clone returns a deep copy. A nil blob clones to a blob holding the defaults.
func (b *Blob) Clone() *Blob {
	if b == nil {
		return &Blob{Kind: model.Geth, Deposits: Deposits{}}
	}
	return &Blob{Kind: b.Kind, Deposits: b.Deposits.clone()}
}

// Pair is one deposited validator.
type Pair struct {
	Mnemonic string
	Index    uint16
}

// Pairs lists every deposited (mnemonic, index) pair, ordered by mnemonic then index.
func (b *Blob) Pairs() []Pair {
	if b == nil {
		return nil
	}
	mnemonics := make([]string, 0, len(b.Deposits))
	for m := range b.Deposits {
		mnemonics = append(mnemonics, m)
	}
	sort.Strings(mnemonics)

	var pairs []Pair
	for _, m := range mnemonics {
		for _, i := range b.Deposits[m].Sorted() {
			pairs = append(pairs, Pair{Mnemonic: m, Index: i})
		}
	}
	return pairs
}

// Count returns the number of deposited validators.
func (b *Blob) Count() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, s := range b.Deposits {
		n += len(s)
	}
	return n
}

// Kind returns the node's execution client kind, Geth when no blob exists yet.
func Kind(b *Blob) model.ExecutionClientKind {
	if b == nil {
		return model.Geth
	}
	return b.Kind
}

// SetKind returns a blob with the kind replaced and the deposits preserved.
func SetKind(b *Blob, kind model.ExecutionClientKind) *Blob {
	out := b.Clone()
	out.Kind = kind
	return out
}

// AppendDeposits unions each entry's index set into the blob. Entries with an
// empty set are ignored so no mnemonic ever maps to an empty set.
func AppendDeposits(b *Blob, entries Deposits) *Blob {
	out := b.Clone()
	for m, indices := range entries {
		if len(indices) == 0 {
			continue
		}
		existing, ok := out.Deposits[m]
		if !ok {
			existing = make(IndexSet, len(indices))
			out.Deposits[m] = existing
		}
		for i := range indices {
			existing[i] = struct{}{}
		}
	}
	return out
}

// RemoveDeposit removes index from the mnemonic's set and reports whether it was
// present. A mnemonic whose set becomes empty is dropped. ErrNotFound is returned,
// together with an unchanged copy, when the mnemonic is not recorded.
func RemoveDeposit(b *Blob, mnemonic string, index uint16) (*Blob, bool, error) {
	out := b.Clone()
	set, ok := out.Deposits[mnemonic]
	if !ok {
		return out, false, ErrNotFound
	}

	removed := set.Has(index)
	delete(set, index)
	if len(set) == 0 {
		delete(out.Deposits, mnemonic)
	}
	return out, removed, nil
}

// Prune drops mnemonics mapped to empty sets. Blobs written by this package never
// hold such entries; older or hand-edited data may.
func Prune(b *Blob) *Blob {
	out := b.Clone()
	for m, s := range out.Deposits {
		if len(s) == 0 {
			delete(out.Deposits, m)
		}
	}
	return out
}
