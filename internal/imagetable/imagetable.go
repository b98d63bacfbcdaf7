// Package imagetable implements the ordered, index-addressable vector of
// per-image records that backs the inverted index and the query engine's
// luminance seed.
package imagetable

// Record is one slot in the table, addressed by internal index.
type Record struct {
	PostID int64
	AvgL   [3]float64
}

// Tombstoned reports whether this slot's image has been removed. A record
// whose zero-luminance channel is exactly zero is considered deleted;
// real images never land on exactly zero in practice.
func (r Record) Tombstoned() bool {
	return r.AvgL[0] == 0
}

// Table is an append-mostly, index-addressable vector of records.
// Internal indices are never reused or compacted: a tombstoned slot stays
// in place permanently.
type Table struct {
	records []Record
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// growthFor computes the backing-array capacity to reserve when growing
// past index k, amortizing future insertions and keeping the persistent
// store's primary key density high. This sizes capacity only: the
// table's length always tracks the high-water mark (highest index plus
// one), matching the original's reserve(10+ind+ind/40) / resize(ind+1)
// split.
func growthFor(k uint32) int {
	a := int(k) + 50000
	b := int(k) + int(k)/40 + 10
	if a > b {
		return a
	}
	return b
}

// ensure grows the backing slice, if needed, so that index k is valid.
// New slots default to the zero Record, which is tombstoned. Length
// tracks k+1 exactly; growthFor only pads spare capacity so repeated
// Set calls at increasing indices don't reallocate every time.
func (t *Table) ensure(k uint32) {
	need := int(k) + 1
	if need <= len(t.records) {
		return
	}
	if need <= cap(t.records) {
		t.records = t.records[:need]
		return
	}
	grown := make([]Record, need, growthFor(k))
	copy(grown, t.records)
	t.records = grown
}

// Set stores rec at internal index k, growing the table if necessary.
func (t *Table) Set(k uint32, rec Record) {
	t.ensure(k)
	t.records[k] = rec
}

// Get returns the record at internal index k. ok is false if k has never
// been assigned a slot.
func (t *Table) Get(k uint32) (Record, bool) {
	if int(k) >= len(t.records) {
		return Record{}, false
	}
	return t.records[k], true
}

// Tombstone marks index k deleted in place, without shrinking the table or
// releasing the index for reuse.
func (t *Table) Tombstone(k uint32) {
	if int(k) < len(t.records) {
		t.records[k].AvgL[0] = 0
	}
}

// Len returns the table length: the highest-ever assigned internal index
// plus one, tombstones included.
func (t *Table) Len() int {
	return len(t.records)
}
