package dto

// MaintenanceRunRequest is the shared input for maintenance operations that
// support dry-run previews. DryRun defaults to true when omitted so that a
// bare POST never mutates data.
type MaintenanceRunRequest struct {
	DryRun *bool `json:"dryRun"`
}

// Apply reports the effective dry-run flag.
func (r MaintenanceRunRequest) Apply() bool {
	if r.DryRun == nil {
		return true
	}
	return *r.DryRun
}

// BackfillRunRequest defines the input to the revenue backfill scan.
type BackfillRunRequest struct {
	DryRun *bool `json:"dryRun"`
	Limit  int   `json:"limit" binding:"omitempty,min=1,max=10000"`
}

// Apply reports the effective dry-run flag.
func (r BackfillRunRequest) Apply() bool {
	if r.DryRun == nil {
		return true
	}
	return *r.DryRun
}
