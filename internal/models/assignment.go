package models

import "time"

// Assignment links a responder to a disaster. Its id, not the responder id,
// is the provenance stamp written onto every field record and terminal
// transition. Unassignment soft-deletes the row so existing stamps keep
// resolving.
type Assignment struct {
	ID          string
	DisasterID  string
	ResponderID string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

func (a *Assignment) Active() bool {
	return a.DeletedAt == nil
}
