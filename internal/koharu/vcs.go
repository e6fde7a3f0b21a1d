package koharu

// GitStatus is the working-tree state polled at the start of an update run.
type GitStatus struct {
	UncommittedFiles []string
}

// IsDirty reports whether the working tree has local changes.
func (s GitStatus) IsDirty() bool {
	return len(s.UncommittedFiles) > 0
}

// Commit is one entry of the upstream commit listing.
type Commit struct {
	Hash    string
	Message string
	Date    string
}

// MergeResult carries the conflicted paths of a failed merge.
type MergeResult struct {
	ConflictFiles []string
}

// HasConflicts reports whether the merge stopped on conflicts.
func (r *MergeResult) HasConflicts() bool {
	return r != nil && len(r.ConflictFiles) > 0
}
