package model

import "time"

// SavedFilter is the persisted dashboard filter of one owner (a user id for
// the service, a profile name for the CLI).
type SavedFilter struct {
	Owner     string
	Product   string
	Country   string
	Company   string
	FromDate  string
	ToDate    string
	UpdatedAt time.Time
}
