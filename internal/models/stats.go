package models

// Stats is a computed aggregate snapshot, never persisted.
type Stats struct {
	TotalUsers      int64
	SubscribedUsers int64
	ActiveToday     int64
	ActiveWeek      int64
	ActiveMonth     int64
}
