// AngelaMos | 2026
// entity.go

package lead

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusNotCalled         Status = "Not Called"
	StatusCallingAttempted  Status = "Calling Attempted"
	StatusInProgress        Status = "In Progress"
	StatusFollowupScheduled Status = "Follow-up Scheduled"
	StatusPositive          Status = "Positive"
	StatusNegative          Status = "Negative"
	StatusConverted         Status = "Converted"
	StatusJunk              Status = "Junk"
)

var AllStatuses = []Status{
	StatusNotCalled,
	StatusCallingAttempted,
	StatusInProgress,
	StatusFollowupScheduled,
	StatusPositive,
	StatusNegative,
	StatusConverted,
	StatusJunk,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Assignment filters a manager's leads by whether a telecaller holds them.
type Assignment string

const (
	AssignmentAll        Assignment = "all"
	AssignmentAssigned   Assignment = "assigned"
	AssignmentUnassigned Assignment = "unassigned"
)

func ParseAssignment(s string) (Assignment, error) {
	switch Assignment(s) {
	case "", AssignmentAll:
		return AssignmentAll, nil
	case AssignmentAssigned, AssignmentUnassigned:
		return Assignment(s), nil
	}
	return "", fmt.Errorf("invalid type %q", s)
}

type Lead struct {
	ID               string     `db:"id"`
	Seq              int64      `db:"seq"`
	Name             string     `db:"name"`
	Phone            string     `db:"phone"`
	UploadedBy       string     `db:"uploaded_by"`
	AssignedTo       *string    `db:"assigned_to"`
	AssignedAt       *time.Time `db:"assigned_at"`
	Status           Status     `db:"status"`
	FirstCallDate    *time.Time `db:"first_call_date"`
	NextFollowupDate *time.Time `db:"next_followup_date"`
	Notes            string     `db:"notes"`
	CallCount        int        `db:"call_count"`
	LastContactedAt  *time.Time `db:"last_contacted_at"`
	SourceFileName   string     `db:"source_file_name"`
	TVRFormID        *string    `db:"tvr_form_id"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`

	Assignee *Person `db:"assignee"`
	Uploader *Person `db:"uploader"`
}

// Person is the display slice of a user joined onto a lead.
type Person struct {
	FirstName *string `db:"first_name"`
	LastName  *string `db:"last_name"`
	UserName  *string `db:"user_name"`
}

func (p *Person) FullName() string {
	if p == nil || p.FirstName == nil {
		return ""
	}
	name := *p.FirstName
	if p.LastName != nil && *p.LastName != "" {
		name += " " + *p.LastName
	}
	return name
}

func (l *Lead) AssignedToID() string {
	if l.AssignedTo == nil {
		return ""
	}
	return *l.AssignedTo
}

func (l *Lead) IsAssigned() bool {
	return l.AssignedTo != nil
}

// NewRow is one spreadsheet row accepted for insertion.
type NewRow struct {
	Name  string
	Phone string
}
