package domain

// SyncStatus is the finite set of per-record synchronization states
type SyncStatus int

const (
	StatusNotSynced        SyncStatus = 0
	StatusSyncing          SyncStatus = 1
	StatusSyncWhileSyncing SyncStatus = 2
	StatusSynced           SyncStatus = 3
	StatusResync           SyncStatus = 4
	StatusError            SyncStatus = 5
)

// IsBusy reports whether a dispatch is currently outstanding
func (s SyncStatus) IsBusy() bool {
	return s == StatusSyncing || s == StatusSyncWhileSyncing
}

// IsTerminal reports whether the state is a settled outcome
// (neither busy nor awaiting a resync)
func (s SyncStatus) IsTerminal() bool {
	return s == StatusSynced || s == StatusError
}

// StatusInfo is the presentation data for one status
type StatusInfo struct {
	Color string `json:"color"`
	Title string `json:"title"`
}

// Describe maps a status to its display color and title. When
// mergePublishing is true the two in-flight substates share the
// "Publishing" label; otherwise a republish attempt is called out.
// Unknown statuses display as not published.
func Describe(status SyncStatus, mergePublishing bool) StatusInfo {
	switch status {
	case StatusSyncing:
		return StatusInfo{Color: "yellow", Title: "Publishing"}
	case StatusSyncWhileSyncing:
		if mergePublishing {
			return StatusInfo{Color: "yellow", Title: "Publishing"}
		}
		return StatusInfo{Color: "yellow", Title: "Republish Attempted"}
	case StatusSynced:
		return StatusInfo{Color: "green", Title: "Published"}
	case StatusResync:
		return StatusInfo{Color: "orange", Title: "Validation Required"}
	case StatusError:
		return StatusInfo{Color: "red", Title: "Error"}
	default:
		return StatusInfo{Color: "black", Title: "Not Published"}
	}
}
