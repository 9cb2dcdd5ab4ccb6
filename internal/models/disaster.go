package models

import "time"

type DisasterSource string

const (
	SourceOfficialFeed DisasterSource = "official_feed"
	SourceManual       DisasterSource = "manual"
)

func (s DisasterSource) Valid() bool {
	switch s {
	case SourceOfficialFeed, SourceManual:
		return true
	}
	return false
}

type DisasterType string

const (
	DisasterTypeEarthquake       DisasterType = "earthquake"
	DisasterTypeTsunami          DisasterType = "tsunami"
	DisasterTypeVolcanicEruption DisasterType = "volcanic_eruption"
	DisasterTypeFlood            DisasterType = "flood"
	DisasterTypeDrought          DisasterType = "drought"
	DisasterTypeTornado          DisasterType = "tornado"
	DisasterTypeLandslide        DisasterType = "landslide"
	DisasterTypeNonNatural       DisasterType = "non_natural"
	DisasterTypeSocial           DisasterType = "social"
)

func (t DisasterType) Valid() bool {
	switch t {
	case DisasterTypeEarthquake, DisasterTypeTsunami, DisasterTypeVolcanicEruption,
		DisasterTypeFlood, DisasterTypeDrought, DisasterTypeTornado,
		DisasterTypeLandslide, DisasterTypeNonNatural, DisasterTypeSocial:
		return true
	}
	return false
}

type DisasterStatus string

const (
	StatusOngoing   DisasterStatus = "ongoing"
	StatusCancelled DisasterStatus = "cancelled"
	StatusCompleted DisasterStatus = "completed"
)

// Terminal reports whether the status permits no further transitions.
func (s DisasterStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Disaster is the root entity of a response effort. Status moves through the
// lifecycle ongoing -> cancelled|completed; once terminal the record is frozen
// and no field records may be created against it.
type Disaster struct {
	ID          string
	Source      DisasterSource
	Type        DisasterType
	Status      DisasterStatus
	Title       string
	Description string
	OccurredAt  time.Time
	Location    string
	Lat         *float64
	Long        *float64
	Magnitude   *float64 // seismic events only
	Depth       *float64 // km, seismic events only

	// ExternalID is the upstream event key for feed-registered disasters.
	ExternalID string

	// ReportedBy is the responder who registered the disaster. Empty for
	// feed-registered disasters.
	ReportedBy string

	CancelledReason string
	CancelledAt     *time.Time
	CancelledBy     string // assignment id, not responder id
	CompletedAt     *time.Time
	CompletedBy     string // assignment id, not responder id

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Disaster) HasCoordinates() bool {
	return d.Lat != nil && d.Long != nil
}
