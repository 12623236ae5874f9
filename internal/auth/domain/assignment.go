package domain

import "time"

// AssignmentStatus is the lifecycle state of a subject role assignment.
// Assignments are deactivated, never deleted.
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "active"
	AssignmentInactive AssignmentStatus = "inactive"
)

// SubjectRoleAssignment binds a tenant user to a role (student or tutor)
// within one subject. It is the source of truth for a tenant user's
// effective role: derivation picks the oldest active assignment. A user
// holds at most one assignment per subject and always retains an active
// assignment to the tenant's default subject.
type SubjectRoleAssignment struct {
	ID         string
	TenantID   string
	UserID     string
	SubjectID  string
	Role       Role // student or tutor
	Status     AssignmentStatus
	AssignedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StudentProfile carries per-student attributes looked up when the derived
// role is student.
type StudentProfile struct {
	UserID     string
	GradeLevel int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
