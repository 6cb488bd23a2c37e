// AngelaMos | 2026
// dto.go

package tvr

import (
	"time"
)

// FormRequest is the full set of form fields; update replaces every field.
type FormRequest struct {
	CustomerName  string `json:"customerName"  validate:"required,max=200"`
	MobileNumber  string `json:"mobileNumber"  validate:"required,max=20"`
	MotherName    string `json:"motherName"    validate:"required,max=200"`
	SpouseName    string `json:"spouseName"    validate:"max=200"`
	Education     string `json:"education"     validate:"required,max=200"`
	PersonalEmail string `json:"personalEmail" validate:"required,email"`
	OfficialEmail string `json:"officialEmail" validate:"required,email"`

	CurrentAddress        string `json:"currentAddress"        validate:"required,max=500"`
	HouseType             string `json:"houseType"             validate:"required,oneof=owned parentsOwned companyProvided rented"`
	YearsAtCurrentAddress int    `json:"yearsAtCurrentAddress" validate:"gte=0,lte=100"`
	YearsAtCurrentCity    int    `json:"yearsAtCurrentCity"    validate:"gte=0,lte=100"`
	CurrentLandmark       string `json:"currentLandmark"       validate:"required,max=200"`
	PermanentAddress      string `json:"permanentAddress"      validate:"required,max=500"`
	SameAddress           bool   `json:"sameAddress"`

	OfficeName        string `json:"officeName"        validate:"required,max=200"`
	OfficeAddress     string `json:"officeAddress"     validate:"required,max=500"`
	OfficeLandmark    string `json:"officeLandmark"    validate:"required,max=200"`
	Designation       string `json:"designation"       validate:"required,max=200"`
	CurrentCompanyExp string `json:"currentCompanyExp" validate:"required,max=50"`
	TotalWorkExp      string `json:"totalWorkExp"      validate:"required,max=50"`
	SeniorMobile      string `json:"seniorMobile"      validate:"max=20"`

	LoanAmount float64 `json:"loanAmount" validate:"gt=0"`
	Tenure     int     `json:"tenure"     validate:"gt=0,lte=480"`

	References    []Reference    `json:"references"    validate:"max=10,dive"`
	ExistingLoans []ExistingLoan `json:"existingLoans" validate:"max=20,dive"`
	CreditCards   []CreditCard   `json:"creditCards"   validate:"max=20,dive"`

	RefPersonName   string   `json:"refPersonName"   validate:"max=200"`
	BankingPassword string   `json:"bankingPassword" validate:"max=200"`
	PayslipPassword string   `json:"payslipPassword" validate:"max=200"`
	AadharPassword  string   `json:"aadharPassword"  validate:"max=200"`
	BTDocsPasswords []string `json:"btDocsPasswords" validate:"max=20,dive,max=200"`
}

// apply copies every request field onto f.
func (req *FormRequest) apply(f *Form) {
	f.CustomerName = req.CustomerName
	f.MobileNumber = req.MobileNumber
	f.MotherName = req.MotherName
	f.SpouseName = req.SpouseName
	f.Education = req.Education
	f.PersonalEmail = req.PersonalEmail
	f.OfficialEmail = req.OfficialEmail

	f.CurrentAddress = req.CurrentAddress
	f.HouseType = HouseType(req.HouseType)
	f.YearsAtCurrentAddress = req.YearsAtCurrentAddress
	f.YearsAtCurrentCity = req.YearsAtCurrentCity
	f.CurrentLandmark = req.CurrentLandmark
	f.PermanentAddress = req.PermanentAddress
	f.SameAddress = req.SameAddress

	f.OfficeName = req.OfficeName
	f.OfficeAddress = req.OfficeAddress
	f.OfficeLandmark = req.OfficeLandmark
	f.Designation = req.Designation
	f.CurrentCompanyExp = req.CurrentCompanyExp
	f.TotalWorkExp = req.TotalWorkExp
	f.SeniorMobile = req.SeniorMobile

	f.LoanAmount = req.LoanAmount
	f.Tenure = req.Tenure

	f.References = JSONList[Reference](req.References)
	f.ExistingLoans = JSONList[ExistingLoan](req.ExistingLoans)
	f.CreditCards = JSONList[CreditCard](req.CreditCards)

	f.RefPersonName = req.RefPersonName
	f.BankingPassword = req.BankingPassword
	f.PayslipPassword = req.PayslipPassword
	f.AadharPassword = req.AadharPassword
	f.BTDocsPasswords = JSONList[string](req.BTDocsPasswords)
}

type ListParams struct {
	Page  int
	Limit int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type LeadSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type FormResponse struct {
	ID   string      `json:"id"`
	Lead LeadSummary `json:"lead"`

	CustomerName  string `json:"customerName"`
	MobileNumber  string `json:"mobileNumber"`
	MotherName    string `json:"motherName"`
	SpouseName    string `json:"spouseName"`
	Education     string `json:"education"`
	PersonalEmail string `json:"personalEmail"`
	OfficialEmail string `json:"officialEmail"`

	CurrentAddress        string    `json:"currentAddress"`
	HouseType             HouseType `json:"houseType"`
	YearsAtCurrentAddress int       `json:"yearsAtCurrentAddress"`
	YearsAtCurrentCity    int       `json:"yearsAtCurrentCity"`
	CurrentLandmark       string    `json:"currentLandmark"`
	PermanentAddress      string    `json:"permanentAddress"`
	SameAddress           bool      `json:"sameAddress"`

	OfficeName        string `json:"officeName"`
	OfficeAddress     string `json:"officeAddress"`
	OfficeLandmark    string `json:"officeLandmark"`
	Designation       string `json:"designation"`
	CurrentCompanyExp string `json:"currentCompanyExp"`
	TotalWorkExp      string `json:"totalWorkExp"`
	SeniorMobile      string `json:"seniorMobile"`

	LoanAmount float64 `json:"loanAmount"`
	Tenure     int     `json:"tenure"`

	References    []Reference    `json:"references"`
	ExistingLoans []ExistingLoan `json:"existingLoans"`
	CreditCards   []CreditCard   `json:"creditCards"`

	RefPersonName   string   `json:"refPersonName"`
	BankingPassword string   `json:"bankingPassword"`
	PayslipPassword string   `json:"payslipPassword"`
	AadharPassword  string   `json:"aadharPassword"`
	BTDocsPasswords []string `json:"btDocsPasswords"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func ToFormResponse(f *Form) FormResponse {
	return FormResponse{
		ID: f.ID,
		Lead: LeadSummary{
			ID:    f.LeadID,
			Name:  f.Lead.Name,
			Phone: f.Lead.Phone,
		},

		CustomerName:  f.CustomerName,
		MobileNumber:  f.MobileNumber,
		MotherName:    f.MotherName,
		SpouseName:    f.SpouseName,
		Education:     f.Education,
		PersonalEmail: f.PersonalEmail,
		OfficialEmail: f.OfficialEmail,

		CurrentAddress:        f.CurrentAddress,
		HouseType:             f.HouseType,
		YearsAtCurrentAddress: f.YearsAtCurrentAddress,
		YearsAtCurrentCity:    f.YearsAtCurrentCity,
		CurrentLandmark:       f.CurrentLandmark,
		PermanentAddress:      f.PermanentAddress,
		SameAddress:           f.SameAddress,

		OfficeName:        f.OfficeName,
		OfficeAddress:     f.OfficeAddress,
		OfficeLandmark:    f.OfficeLandmark,
		Designation:       f.Designation,
		CurrentCompanyExp: f.CurrentCompanyExp,
		TotalWorkExp:      f.TotalWorkExp,
		SeniorMobile:      f.SeniorMobile,

		LoanAmount: f.LoanAmount,
		Tenure:     f.Tenure,

		References:    nonNil(f.References),
		ExistingLoans: nonNil(f.ExistingLoans),
		CreditCards:   nonNil(f.CreditCards),

		RefPersonName:   f.RefPersonName,
		BankingPassword: f.BankingPassword,
		PayslipPassword: f.PayslipPassword,
		AadharPassword:  f.AadharPassword,
		BTDocsPasswords: nonNil(f.BTDocsPasswords),

		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func ToFormResponseList(forms []Form) []FormResponse {
	out := make([]FormResponse, len(forms))
	for i := range forms {
		out[i] = ToFormResponse(&forms[i])
	}
	return out
}
