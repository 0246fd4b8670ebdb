package profile

import (
	"errors"

	"github.com/geocoder89/familyauth/internal/domain/calendar"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists")
)

// Maternal capital defaults differ by entry point: registration keeps the
// column default, the profile upsert endpoint falls back to zero.
const (
	RegisterDefaultMaternalCapital float64 = 10000
	UpsertDefaultMaternalCapital   float64 = 0
)

type HousingType string

const (
	HousingOwnHouse      HousingType = "own_house"
	HousingOwnApartment  HousingType = "own_apartment"
	HousingRented        HousingType = "rented"
	HousingSocialHousing HousingType = "social_housing"
	HousingOther         HousingType = "other"
)

type OwnershipStatus string

const (
	OwnershipSole  OwnershipStatus = "sole"
	OwnershipJoint OwnershipStatus = "joint"
	OwnershipNone  OwnershipStatus = "none"
)

type Profile struct {
	UserID                int64            `json:"user_id"`
	FirstName             string           `json:"first_name"`
	LastName              string           `json:"last_name"`
	MiddleName            *string          `json:"middle_name"`
	BirthDate             calendar.Date    `json:"birth_date"`
	PassportSeries        string           `json:"passport_series"`
	PassportNumber        string           `json:"passport_number"`
	Address               string           `json:"address"`
	Phone                 string           `json:"phone"`
	HasMaternalCapital    bool             `json:"has_maternal_capital"`
	MaternalCapitalAmount float64          `json:"maternal_capital_amount"`
	HousingType           *HousingType     `json:"housing_type"`
	LivingArea            *float64         `json:"living_area"`
	OwnershipStatus       *OwnershipStatus `json:"ownership_status"`
}

type UpsertRequest struct {
	FirstName             string           `json:"first_name" binding:"required,max=100"`
	LastName              string           `json:"last_name" binding:"required,max=100"`
	MiddleName            *string          `json:"middle_name" binding:"omitempty,max=100"`
	BirthDate             string           `json:"birth_date" binding:"required,datetime=2006-01-02"`
	PassportSeries        string           `json:"passport_series" binding:"required,max=10"`
	PassportNumber        string           `json:"passport_number" binding:"required,max=20"`
	Address               string           `json:"address" binding:"required"`
	Phone                 string           `json:"phone" binding:"required,max=20"`
	HasMaternalCapital    *bool            `json:"has_maternal_capital"`
	MaternalCapitalAmount *float64         `json:"maternal_capital_amount" binding:"omitempty,gte=0"`
	HousingType           *HousingType     `json:"housing_type" binding:"omitempty,oneof=own_house own_apartment rented social_housing other"`
	LivingArea            *float64         `json:"living_area" binding:"omitempty,gt=0"`
	OwnershipStatus       *OwnershipStatus `json:"ownership_status" binding:"omitempty,oneof=sole joint none"`
}

// Build turns the request into a profile owned by userID. A missing or zero
// maternal capital amount is replaced with defaultAmount.
func (r UpsertRequest) Build(userID int64, defaultAmount float64) (Profile, error) {
	birthDate, err := calendar.ParseDate(r.BirthDate)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		UserID:                userID,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		MiddleName:            r.MiddleName,
		BirthDate:             birthDate,
		PassportSeries:        r.PassportSeries,
		PassportNumber:        r.PassportNumber,
		Address:               r.Address,
		Phone:                 r.Phone,
		MaternalCapitalAmount: defaultAmount,
		HousingType:           r.HousingType,
		LivingArea:            r.LivingArea,
		OwnershipStatus:       r.OwnershipStatus,
	}

	if r.HasMaternalCapital != nil {
		p.HasMaternalCapital = *r.HasMaternalCapital
	}

	if r.MaternalCapitalAmount != nil && *r.MaternalCapitalAmount != 0 {
		p.MaternalCapitalAmount = *r.MaternalCapitalAmount
	}

	return p, nil
}
