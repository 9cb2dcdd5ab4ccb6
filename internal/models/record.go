package models

import "time"

// Report, Victim and Aid are the three field-record kinds submitted against
// an ongoing disaster. All carry the submitting assignment id in ReportedBy.

type Report struct {
	ID           string
	DisasterID   string
	ReportedBy   string // assignment id
	Title        string
	Description  string
	IsFinalStage bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type VictimStatus string

const (
	VictimStatusMinorInjury   VictimStatus = "minor_injury"
	VictimStatusSeriousInjury VictimStatus = "serious_injury"
	VictimStatusDeceased      VictimStatus = "deceased"
	VictimStatusMissing       VictimStatus = "missing"
)

func (s VictimStatus) Valid() bool {
	switch s {
	case VictimStatusMinorInjury, VictimStatusSeriousInjury, VictimStatusDeceased, VictimStatusMissing:
		return true
	}
	return false
}

type Victim struct {
	ID          string
	DisasterID  string
	ReportedBy  string // assignment id
	NIK         string // national identity number
	Name        string
	DateOfBirth time.Time
	Gender      bool // true = male, mirrors the upstream mobile client
	ContactInfo string
	Description string
	IsEvacuated bool
	Status      VictimStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AidCategory string

const (
	AidCategoryFood     AidCategory = "food"
	AidCategoryClothing AidCategory = "clothing"
	AidCategoryHousing  AidCategory = "housing"
)

func (c AidCategory) Valid() bool {
	switch c {
	case AidCategoryFood, AidCategoryClothing, AidCategoryHousing:
		return true
	}
	return false
}

type Aid struct {
	ID          string
	DisasterID  string
	ReportedBy  string // assignment id
	Title       string
	Description string
	Category    AidCategory
	Quantity    int
	Unit        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
