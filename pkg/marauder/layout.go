package marauder

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// STAGING_PREFIX names per-flow staging directories: temporary-<label>.
const STAGING_PREFIX = "temporary-"

// Layout maps identifiers to destination directories under Root.
//
// Dir is pure: it depends only on the identifier and the Layout value, so
// the skip check and the reconciliation always agree on where a file lives.
type Layout struct {
	Root string
	// BaseID keys the single destination directory when grouping is off, and
	// is the bucket origin for unaligned grouping.
	BaseID int64
	// GroupSize buckets identifiers into ranges of this many ids. Zero
	// disables grouping.
	GroupSize int64
	// GroupAlignment anchors buckets at multiples of GroupSize instead of
	// at BaseID.
	GroupAlignment bool
}

// Dir returns the destination directory for id.
func (l Layout) Dir(id int64) string {
	return filepath.Join(l.Root, l.DirName(id))
}

// DirName returns the base name of the destination directory for id:
// a 9-digit BaseID when grouping is off, otherwise "<low>.<high>" with both
// bounds zero-padded to 9 digits.
func (l Layout) DirName(id int64) string {
	if l.GroupSize <= 0 {
		return fmt.Sprintf("%09d", l.BaseID)
	}
	low := l.bucketLow(id)
	return fmt.Sprintf("%09d.%09d", low, low+l.GroupSize-1)
}

func (l Layout) bucketLow(id int64) int64 {
	g := l.GroupSize
	if l.GroupAlignment {
		return floorDiv(id, g) * g
	}
	return l.BaseID + floorDiv(id-l.BaseID, g)*g
}

// StagingDir returns the staging directory of the flow labelled label.
func (l Layout) StagingDir(label string) string {
	return filepath.Join(l.Root, STAGING_PREFIX+label)
}

// FileName returns the on-disk name of id with extension ext.
func FileName(id int64, ext string) string {
	return fmt.Sprintf("%d.%s", id, ext)
}

// Exists reports whether a file for id with any of exts is already present
// in its destination directory.
func (l Layout) Exists(fs afero.Fs, id int64, exts []string) bool {
	if id <= 0 {
		return false
	}
	dir := l.Dir(id)
	for _, ext := range exts {
		ok, err := afero.Exists(fs, filepath.Join(dir, FileName(id, ext)))
		if err == nil && ok {
			return true
		}
	}
	return false
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
