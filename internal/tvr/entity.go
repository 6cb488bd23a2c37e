// AngelaMos | 2026
// entity.go

package tvr

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type HouseType string

const (
	HouseOwned           HouseType = "owned"
	HouseParentsOwned    HouseType = "parentsOwned"
	HouseCompanyProvided HouseType = "companyProvided"
	HouseRented          HouseType = "rented"
)

type Reference struct {
	Name    string `json:"name"    validate:"required,max=200"`
	Mobile  string `json:"mobile"  validate:"required,max=20"`
	Address string `json:"address" validate:"required,max=500"`
}

type ExistingLoan struct {
	Bank   string `json:"bank"   validate:"required,max=200"`
	Amount string `json:"amount" validate:"required,max=50"`
	Tenure string `json:"tenure" validate:"required,max=50"`
}

type CreditCard struct {
	Bank       string  `json:"bank"       validate:"required,max=200"`
	CardNumber string  `json:"cardNumber" validate:"required,len=4,numeric"`
	CardLimit  float64 `json:"cardLimit"  validate:"gte=0"`
}

// JSONList stores a slice in a JSONB column. A NULL column reads as empty.
type JSONList[T any] []T

func (l *JSONList[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = JSONList[T]{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan json list: unsupported type %T", src)
	}

	out := JSONList[T]{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan json list: %w", err)
	}
	*l = out
	return nil
}

func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, fmt.Errorf("encode json list: %w", err)
	}
	return string(b), nil
}

// Form is a tele-verification report. Each lead carries at most one.
type Form struct {
	ID     string `db:"id"`
	LeadID string `db:"lead_id"`

	CustomerName  string `db:"customer_name"`
	MobileNumber  string `db:"mobile_number"`
	MotherName    string `db:"mother_name"`
	SpouseName    string `db:"spouse_name"`
	Education     string `db:"education"`
	PersonalEmail string `db:"personal_email"`
	OfficialEmail string `db:"official_email"`

	CurrentAddress        string    `db:"current_address"`
	HouseType             HouseType `db:"house_type"`
	YearsAtCurrentAddress int       `db:"years_at_current_address"`
	YearsAtCurrentCity    int       `db:"years_at_current_city"`
	CurrentLandmark       string    `db:"current_landmark"`
	PermanentAddress      string    `db:"permanent_address"`
	SameAddress           bool      `db:"same_address"`

	OfficeName        string `db:"office_name"`
	OfficeAddress     string `db:"office_address"`
	OfficeLandmark    string `db:"office_landmark"`
	Designation       string `db:"designation"`
	CurrentCompanyExp string `db:"current_company_exp"`
	TotalWorkExp      string `db:"total_work_exp"`
	SeniorMobile      string `db:"senior_mobile"`

	LoanAmount float64 `db:"loan_amount"`
	Tenure     int     `db:"tenure"`

	References    JSONList[Reference]    `db:"refs"`
	ExistingLoans JSONList[ExistingLoan] `db:"existing_loans"`
	CreditCards   JSONList[CreditCard]   `db:"credit_cards"`

	RefPersonName   string           `db:"ref_person_name"`
	BankingPassword string           `db:"banking_password"`
	PayslipPassword string           `db:"payslip_password"`
	AadharPassword  string           `db:"aadhar_password"`
	BTDocsPasswords JSONList[string] `db:"bt_docs_passwords"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Lead LeadRef `db:"lead"`
}

// LeadRef is the slice of the owning lead needed for display and scoping.
type LeadRef struct {
	Name       string  `db:"name"`
	Phone      string  `db:"phone"`
	UploadedBy string  `db:"uploaded_by"`
	AssignedTo *string `db:"assigned_to"`
}

func (r LeadRef) AssignedToID() string {
	if r.AssignedTo == nil {
		return ""
	}
	return *r.AssignedTo
}
