package store

import "time"

type User struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	// GlobalRole is "admin" or "member". Project access is granted per
	// membership; global admins bypass membership checks everywhere.
	GlobalRole string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Project struct {
	ID          string
	Name        string
	Key         string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

type ProjectMembership struct {
	ID        string
	ProjectID string
	UserID    string
	Role      string
	CreatedAt time.Time
	// Joined for member listings
	UserName  string
	UserEmail string
}

type DecisionRecord struct {
	ID             string
	ProjectID      string
	SequenceNumber int
	Title          string
	Status         string
	Context        string
	Decision       string
	Consequences   string
	Alternatives   string
	Tags           []string
	Team           string
	// Author is the creator's display name, captured once at creation.
	Author        string
	Version       string
	Archived      bool
	ArchiveReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VersionSnapshot is an immutable copy of a record's content and status
// at one version. Snapshots are append-only and never touched after
// insertion.
type VersionSnapshot struct {
	ID           string
	RecordID     string
	Version      string
	Title        string
	Status       string
	Context      string
	Decision     string
	Consequences string
	Alternatives string
	Tags         []string
	Team         string
	ChangeReason string
	ChangedBy    string
	CreatedAt    time.Time
}

// AuditEntry is one immutable row per state-changing operation.
type AuditEntry struct {
	ID          int64
	ProjectID   string
	EntityType  string
	EntityID    string
	Action      string
	PerformedBy string
	Changes     map[string]any
	Metadata    map[string]any
	PerformedAt time.Time
}

type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Body      string
	Href      string
	IsRead    bool
	CreatedAt time.Time
}

type Attachment struct {
	ID          string
	RecordID    string
	FileName    string
	ContentType string
	Size        int64
	UploadedBy  string
	CreatedAt   time.Time
}
