package corr

import (
	"github.com/tidwall/btree"

	"github.com/smoynes/goaccmem/internal/addr"
)

// index is the per-device interval index: an ordered structure keyed by
// host_start with secondary host_end for containment queries, giving
// expected O(log n) lookup/insert/remove. It is backed by tidwall/btree's
// generic in-memory B-tree rather than a splay tree -- the data model does
// not require self-adjustment specifically, only logarithmic expected
// behavior and correct containment semantics, and a B-tree gives both with
// better cache locality than a pointer-chasing balanced tree.
type index struct {
	tree *btree.BTreeG[*Entry]
}

func byHostStart(a, b *Entry) bool {
	return a.Host.Start < b.Host.Start
}

func newIndex() *index {
	return &index{tree: btree.NewBTreeG(byHostStart)}
}

// overlap reports an entry already installed that intersects iv, or nil if
// none does.
func (ix *index) overlap(iv addr.Interval) *Entry {
	var found *Entry

	// The predecessor (greatest host_start <= iv.Start) and successor
	// (least host_start >= iv.Start) are the only candidates that can
	// intersect iv, since the index otherwise holds no overlapping
	// entries.
	ix.tree.Descend(&Entry{Host: addr.Interval{Start: iv.Start}}, func(e *Entry) bool {
		found = e
		return false
	})

	if found != nil && found.Host.Overlaps(iv) {
		return found
	}

	found = nil

	ix.tree.Ascend(&Entry{Host: addr.Interval{Start: iv.Start}}, func(e *Entry) bool {
		found = e
		return false
	})

	if found != nil && found.Host.Overlaps(iv) {
		return found
	}

	return nil
}

// insert installs e in the index. It reports the conflicting entry and
// false if e's interval overlaps an existing one; the index is left
// unchanged in that case.
func (ix *index) insert(e *Entry) (*Entry, bool) {
	if conflict := ix.overlap(e.Host); conflict != nil {
		return conflict, false
	}

	ix.tree.Set(e)

	return nil, true
}

// remove unlinks e from the index.
func (ix *index) remove(e *Entry) {
	ix.tree.Delete(e)
}

// lookup returns the entry whose host interval contains h, or nil.
func (ix *index) lookup(h addr.HostAddr) *Entry {
	var found *Entry

	ix.tree.Descend(&Entry{Host: addr.Interval{Start: h}}, func(e *Entry) bool {
		found = e
		return false
	})

	if found != nil && found.Host.ContainsAddr(h) {
		return found
	}

	return nil
}

// lookupExact returns the entry whose host interval begins exactly at h, or
// nil. Used by acc_unmap_data, which requires an entry starting exactly at h.
func (ix *index) lookupExact(h addr.HostAddr) *Entry {
	var found *Entry

	ix.tree.Ascend(&Entry{Host: addr.Interval{Start: h}}, func(e *Entry) bool {
		found = e
		return false
	})

	if found != nil && found.Host.Start == h {
		return found
	}

	return nil
}

// lookupByDevice walks every entry to find one whose allocation's device
// range overlaps [d, d+size). It is deliberately O(n): used only by
// acc_free and acc_map_data on cold paths, per the data model.
func (ix *index) lookupByDevice(d addr.DeviceAddr, size int) *Entry {
	want := addr.NewInterval(addr.HostAddr(d), size)

	var found *Entry

	ix.tree.Scan(func(e *Entry) bool {
		tgt := e.tgt
		span := addr.NewInterval(addr.HostAddr(tgt.start), tgt.size)

		if span.Overlaps(want) {
			found = e
			return false
		}

		return true
	})

	return found
}

// scan walks every entry in host-address order.
func (ix *index) scan(fn func(e *Entry) bool) {
	ix.tree.Scan(fn)
}

func (ix *index) len() int {
	return ix.tree.Len()
}
