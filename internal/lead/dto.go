// AngelaMos | 2026
// dto.go

package lead

import (
	"time"
)

type AssignRequest struct {
	TelecallerID string `json:"telecallerId" validate:"required,uuid"`
	Count        int    `json:"count"        validate:"required,min=1,max=10000"`
}

type ReassignRequest struct {
	NewTelecallerID string `json:"newTelecallerId" validate:"required,uuid"`
}

// UpdateLeadRequest is a patch of the fields a telecaller records after a
// call.
type UpdateLeadRequest struct {
	Status           *string    `json:"status"           validate:"omitempty,max=32"`
	FirstCallDate    *time.Time `json:"firstCallDate"`
	NextFollowupDate *time.Time `json:"nextFollowupDate"`
	Notes            *string    `json:"notes"            validate:"omitempty,max=5000"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=1000,dive,uuid"`
}

type UploadResponse struct {
	Count int `json:"count"`
}

type AssignResponse struct {
	AssignedCount int `json:"assignedCount"`
}

type BulkDeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

type PersonRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserName  string `json:"userName"`
}

type LeadResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Status           string     `json:"status"`
	UploadedBy       *PersonRef `json:"uploadedBy"`
	AssignedTo       *PersonRef `json:"assignedTo"`
	AssignedAt       *time.Time `json:"assignedAt"`
	FirstCallDate    *time.Time `json:"firstCallDate"`
	NextFollowupDate *time.Time `json:"nextFollowupDate"`
	Notes            string     `json:"notes"`
	CallCount        int        `json:"callCount"`
	LastContactedAt  *time.Time `json:"lastContactedAt"`
	TVRFormID        *string    `json:"tvrFormId"`
	SourceFileName   string     `json:"sourceFileName"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Type  string         `json:"type,omitempty"`
	Count int            `json:"count"`
	Leads []LeadResponse `json:"leads"`
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toPersonRef(id string, p *Person) *PersonRef {
	ref := &PersonRef{ID: id}
	if p != nil {
		ref.FirstName = derefString(p.FirstName)
		ref.LastName = derefString(p.LastName)
		ref.UserName = derefString(p.UserName)
	}
	return ref
}

func ToLeadResponse(l *Lead) LeadResponse {
	resp := LeadResponse{
		ID:               l.ID,
		Name:             l.Name,
		Phone:            l.Phone,
		Status:           string(l.Status),
		UploadedBy:       toPersonRef(l.UploadedBy, l.Uploader),
		AssignedAt:       l.AssignedAt,
		FirstCallDate:    l.FirstCallDate,
		NextFollowupDate: l.NextFollowupDate,
		Notes:            l.Notes,
		CallCount:        l.CallCount,
		LastContactedAt:  l.LastContactedAt,
		TVRFormID:        l.TVRFormID,
		SourceFileName:   l.SourceFileName,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}

	if l.AssignedTo != nil {
		resp.AssignedTo = toPersonRef(*l.AssignedTo, l.Assignee)
	}

	return resp
}

func ToLeadList(leads []Lead, listType string) LeadListResponse {
	out := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, ToLeadResponse(&leads[i]))
	}
	return LeadListResponse{Type: listType, Count: len(out), Leads: out}
}
