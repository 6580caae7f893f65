package correlate

import "crosshatch/internal/casedb"

// EligibleFile reports whether a file's category qualifies it for hash
// correlation. Carved, derived, local and layout files qualify; filesystem
// files only when their metadata is allocated; unallocated space, slack,
// and directory placeholders never do.
func EligibleFile(f *casedb.File) bool {
	eligible, _ := classifyFile(f)
	return eligible
}

// classifyFile is the pure category → eligibility map. known is false for
// categories the table has never heard of, so callers can flag them.
func classifyFile(f *casedb.File) (eligible, known bool) {
	if f == nil {
		return false, true
	}
	switch f.Category {
	case casedb.CategoryUnalloc,
		casedb.CategoryUnused,
		casedb.CategorySlack,
		casedb.CategoryVirtualDir,
		casedb.CategoryLocalDir:
		return false, true
	case casedb.CategoryCarved,
		casedb.CategoryDerived,
		casedb.CategoryLocal,
		casedb.CategoryLayout:
		return true, true
	case casedb.CategoryFS:
		return f.MetaAllocated, true
	default:
		return false, false
	}
}
