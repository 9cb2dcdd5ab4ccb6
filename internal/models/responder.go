package models

type ResponderType string

const (
	ResponderTypeAdmin     ResponderType = "admin"
	ResponderTypeOfficer   ResponderType = "officer"
	ResponderTypeVolunteer ResponderType = "volunteer"
)

type ResponderStatus string

const (
	ResponderStatusRegistered ResponderStatus = "registered"
	ResponderStatusActive     ResponderStatus = "active"
	ResponderStatusInactive   ResponderStatus = "inactive"
)

// Responder is the identity attached to every inbound request. Account
// management lives outside this service; the core only reads responders.
type Responder struct {
	ID     string
	Name   string
	Email  string
	Type   ResponderType
	Status ResponderStatus
}

// CanRespond reports whether the responder may operate on disasters.
func (r *Responder) CanRespond() bool {
	if r.Status != ResponderStatusActive {
		return false
	}
	return r.Type == ResponderTypeOfficer || r.Type == ResponderTypeVolunteer
}
