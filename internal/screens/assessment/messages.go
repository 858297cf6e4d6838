package assessment

import (
	assess "github.com/autismart/autismart/internal/assessment"
)

// resumeLoadedMsg carries the unfinished assessment found for the active
// child, if any.
type resumeLoadedMsg struct {
	Data *assess.SnapshotData
	Err  error
}

// submitMsg triggers submission once the caregiver confirms.
type submitMsg struct{}
