package family

import (
	"errors"

	"github.com/geocoder89/familyauth/internal/domain/calendar"
)

var ErrNotFound = errors.New("family member not found")

type RelationType string

const (
	RelationSpouse RelationType = "spouse"
	RelationChild  RelationType = "child"
)

type DocumentType string

const (
	DocumentBirthCertificate DocumentType = "birth_certificate"
	DocumentPassport         DocumentType = "passport"
)

type Member struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	RelationType   RelationType  `json:"relation_type"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	MiddleName     *string       `json:"middle_name"`
	BirthDate      calendar.Date `json:"birth_date"`
	DocumentType   DocumentType  `json:"document_type"`
	DocumentNumber string        `json:"document_number"`
}

// OwnedBy reports whether the record belongs to userID.
func (m Member) OwnedBy(userID int64) bool {
	return m.UserID == userID
}

// Request is the body accepted on create and update. Any user_id sent by
// the client is dropped: ownership always comes from the caller's token.
type Request struct {
	RelationType   RelationType `json:"relation_type" binding:"required,oneof=spouse child"`
	FirstName      string       `json:"first_name" binding:"required,max=100"`
	LastName       string       `json:"last_name" binding:"required,max=100"`
	MiddleName     *string      `json:"middle_name" binding:"omitempty,max=100"`
	BirthDate      string       `json:"birth_date" binding:"required,datetime=2006-01-02"`
	DocumentType   DocumentType `json:"document_type" binding:"required,oneof=birth_certificate passport"`
	DocumentNumber string       `json:"document_number" binding:"required,max=100"`
}

func (r Request) Build(userID int64) (Member, error) {
	birthDate, err := calendar.ParseDate(r.BirthDate)
	if err != nil {
		return Member{}, err
	}

	return Member{
		UserID:         userID,
		RelationType:   r.RelationType,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		MiddleName:     r.MiddleName,
		BirthDate:      birthDate,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
	}, nil
}
