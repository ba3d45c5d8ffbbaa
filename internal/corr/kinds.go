package corr

// kinds.go holds the mapping-kind vocabulary the compiler's bulk batches and
// acc_map_data/acc_copyin/acc_create callers encode into each kind byte, and
// the grouping rule that composes runs of them into atomic units.

// Kind identifies what a map-engine entry should do on enter and on exit. It
// is the low byte of the caller-supplied kind value; the high byte is an
// auxiliary the caller may stash there and the table never interprets.
type Kind uint8

const (
	KindAlloc Kind = iota + 1
	KindForceAlloc
	KindTo
	KindForceTo
	KindFrom
	KindForceFrom // aka ALWAYS_FROM
	KindRelease
	KindDelete
	KindPointer
	KindToPset
	KindAlwaysPointer
	KindForcePresent
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "ALLOC"
	case KindForceAlloc:
		return "FORCE_ALLOC"
	case KindTo:
		return "TO"
	case KindForceTo:
		return "FORCE_TO"
	case KindFrom:
		return "FROM"
	case KindForceFrom:
		return "FORCE_FROM"
	case KindRelease:
		return "RELEASE"
	case KindDelete:
		return "DELETE"
	case KindPointer:
		return "POINTER"
	case KindToPset:
		return "TO_PSET"
	case KindAlwaysPointer:
		return "ALWAYS_POINTER"
	case KindForcePresent:
		return "FORCE_PRESENT"
	default:
		return "UNKNOWN"
	}
}

// kindByte masks a raw caller kind value down to the low byte this table
// interprets; the high byte is caller auxiliary and is never inspected.
func kindByte(raw uint16) Kind {
	return Kind(raw & 0x00ff)
}

// needsInitialCopy reports whether entering with this kind performs an
// initial host-to-device copy.
func (k Kind) needsInitialCopy() bool {
	switch k {
	case KindTo, KindForceTo, KindForceFrom:
		return true
	default:
		return false
	}
}

// copiesOutOnRelease reports whether a release-path exit with this kind
// copies device data back to the host once the refcount reaches zero.
func (k Kind) copiesOutOnRelease() bool {
	switch k {
	case KindFrom, KindForceFrom:
		return true
	default:
		return false
	}
}

// copiesOutOnFinalize reports whether a finalize-path exit with this kind
// copies device data back when it brings the refcount to zero.
func (k Kind) copiesOutOnFinalize() bool {
	switch k {
	case KindFrom, KindForceFrom:
		return true
	default:
		return false
	}
}

// isFinalize reports whether this exit kind finalizes the entry: it zeroes
// the virtual refcount in one step rather than decrementing it, subtracting
// it from the refcount; the entry is torn down once the refcount is zero.
func (k Kind) isFinalize() bool {
	switch k {
	case KindDelete, KindForceFrom:
		return true
	default:
		return false
	}
}

// isGroupHeader reports whether kind opens a pointer-set group that must be
// mapped atomically with the POINTER entries following it.
func (k Kind) isGroupHeader() bool {
	return k == KindToPset
}

// isGroupMember reports whether kind is itself part of a group rather than
// a standalone entry: a POINTER following a TO_PSET header or any other
// entry, or an ALWAYS_POINTER following any entry.
func (k Kind) isGroupMember() bool {
	return k == KindPointer || k == KindAlwaysPointer
}

// isEnterDecisive and isExitDecisive classify kinds for bulk batch
// classification: a TO_PSET or POINTER/ALWAYS_POINTER alone never decides
// whether a batch is an enter-data or exit-data call.
func (k Kind) isEnterDecisive() bool {
	switch k {
	case KindAlloc, KindForceAlloc, KindTo, KindForceTo, KindForcePresent:
		return true
	default:
		return false
	}
}

func (k Kind) isExitDecisive() bool {
	switch k {
	case KindFrom, KindForceFrom, KindRelease, KindDelete:
		return true
	default:
		return false
	}
}

// ClassifyBatch scans a bulk enter/exit batch for the first kind that
// decides whether the whole call is an enter-data or an exit-data
// dispatch; TO_PSET, POINTER, and ALWAYS_POINTER never decide on their
// own. It reports false, false if no kind in the batch is decisive.
func ClassifyBatch(kinds []Kind) (enter bool, decided bool) {
	for _, k := range kinds {
		switch {
		case k.isEnterDecisive():
			return true, true
		case k.isExitDecisive():
			return false, true
		}
	}

	return false, false
}

// GroupLast is the exported form of findGroupLast, called by the public
// surface while classifying a bulk enter/exit batch into atomic groups.
func GroupLast(kinds []Kind, i int) int {
	return findGroupLast(kinds, i)
}

// findGroupLast returns the index of the last kind belonging to the group
// that starts at i: a TO_PSET header or any other standalone entry absorbs
// every immediately following POINTER, and then one immediately following
// ALWAYS_POINTER. It is the compiler's contract that these runs are
// contiguous in the batch.
func findGroupLast(kinds []Kind, i int) int {
	last := i

	if kinds[i].isGroupHeader() || !kinds[i].isGroupMember() {
		for last+1 < len(kinds) && kinds[last+1] == KindPointer {
			last++
		}
	}

	if last+1 < len(kinds) && kinds[last+1] == KindAlwaysPointer {
		last++
	}

	return last
}
