package domain

import "time"

// VerificationStatus es el estado de revisión de un perfil o documento de conductor.
type VerificationStatus string

const (
	VerificationSubmitted VerificationStatus = "submitted"
	VerificationApproved  VerificationStatus = "approved"
	VerificationRejected  VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationSubmitted, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// CanTransition solo permite submitted -> approved|rejected; los estados revisados son terminales.
func (s VerificationStatus) CanTransition(to VerificationStatus) bool {
	if s != VerificationSubmitted {
		return false
	}
	return to == VerificationApproved || to == VerificationRejected
}

type DocumentType string

const (
	DocumentIDFront       DocumentType = "id_front"
	DocumentIDBack        DocumentType = "id_back"
	DocumentCarFront      DocumentType = "car_front"
	DocumentCarBack       DocumentType = "car_back"
	DocumentInsurance     DocumentType = "insurance"
	DocumentIdentityVerif DocumentType = "identity_verif"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentIDFront, DocumentIDBack, DocumentCarFront, DocumentCarBack, DocumentInsurance, DocumentIdentityVerif:
		return true
	}
	return false
}

type DriverType string

const (
	DriverMiddleBus DriverType = "middle bus"
	DriverMiniBus   DriverType = "mini bus"
	DriverVan       DriverType = "van"
	DriverRiding    DriverType = "riding"
)

func (t DriverType) Valid() bool {
	switch t {
	case DriverMiddleBus, DriverMiniBus, DriverVan, DriverRiding:
		return true
	}
	return false
}

// Province usa los códigos de tres letras de provincia.
type Province string

var provinces = map[Province]struct{}{
	"TEH": {}, "ISF": {}, "FAR": {}, "KHO": {}, "GIL": {}, "EAZ": {}, "WAZ": {}, "ALB": {},
	"HOM": {}, "KER": {}, "YAZ": {}, "KUR": {}, "ZAN": {}, "SEM": {}, "LOR": {}, "MAR": {},
	"GOL": {}, "MAD": {}, "CHO": {}, "SIS": {}, "NKO": {}, "RAZ": {}, "SKO": {},
}

func (p Province) Valid() bool {
	_, ok := provinces[p]
	return ok
}

// Image es el registro de un archivo subido; solo guardamos metadatos y dueño.
type Image struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	CreatedBy string    `json:"created_by"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
	Size      *int      `json:"size,omitempty"`
	ImageType string    `json:"image_type,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type DriverProfile struct {
	ID                 string             `json:"id"`
	AccountID          string             `json:"account_id"`
	FirstName          string             `json:"first_name"`
	LastName           string             `json:"last_name"`
	FatherName         string             `json:"father_name,omitempty"`
	NationCode         string             `json:"nation_code"`
	LicenseNumber      string             `json:"license_number"`
	DriverType         DriverType         `json:"driver_type,omitempty"`
	Province           Province           `json:"province,omitempty"`
	ImageID            string             `json:"image_id"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerifierNote       string             `json:"verifier_note,omitempty"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// DriverDocument es único por (ProfileID, DocType).
type DriverDocument struct {
	ID                 string             `json:"id"`
	ProfileID          string             `json:"profile_id"`
	DocType            DocumentType       `json:"doc_type"`
	ImageID            string             `json:"image_id"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerifierNote       string             `json:"verifier_note,omitempty"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
