package model

// AccessStatistics is the admin dashboard summary.
type AccessStatistics struct {
	TotalRecords    int            `json:"total_records"`
	ByType          map[string]int `json:"by_type"`
	BoundRecords    int            `json:"bound_records"`
	UnboundRecords  int            `json:"unbound_records"`
	TrackedUsers    int            `json:"tracked_users"`
	TotalUsageCalls int            `json:"total_usage_calls"`
}
