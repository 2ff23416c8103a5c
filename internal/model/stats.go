package model

// Stats holds the admin dashboard counters. Computed fresh on every call,
// never cached.
type Stats struct {
	TotalUsers   int64            `json:"total_users"`
	AdminUsers   int64            `json:"admin_users"`
	RegularUsers int64            `json:"regular_users"`
	Items        map[string]int64 `json:"items"`
	Requests     map[string]int64 `json:"requests"`
}
