package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"cairn/api/internal/audit"
	"cairn/api/internal/authpw"
	"cairn/api/internal/config"
	"cairn/api/internal/notify"
	"cairn/api/internal/rbac"
	"cairn/api/internal/store"
)

// memStore is an in-memory stand-in for the Postgres store. It mirrors
// the real store's contract, including the version compare-and-swap and
// per-project sequence numbering.
type memStore struct {
	users         map[string]store.User
	projects      map[string]store.Project
	memberships   []store.ProjectMembership
	records       map[string]store.DecisionRecord
	snapshots     map[string][]store.VersionSnapshot
	audits        []store.AuditEntry
	notifications []store.Notification
	attachments   map[string][]store.Attachment
	seq           map[string]int

	auditErr  error
	notifyErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]store.User{},
		projects:    map[string]store.Project{},
		records:     map[string]store.DecisionRecord{},
		snapshots:   map[string][]store.VersionSnapshot{},
		attachments: map[string][]store.Attachment{},
		seq:         map[string]int{},
	}
}

func (m *memStore) GetUserByID(_ context.Context, userID string) (store.User, error) {
	user, ok := m.users[userID]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return store.User{}, sql.ErrNoRows
}

func (m *memStore) CreateUser(_ context.Context, user store.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memStore) InsertProject(_ context.Context, project store.Project) error {
	for _, existing := range m.projects {
		if existing.Key == project.Key {
			return store.ErrDuplicateProjectKey
		}
	}
	m.projects[project.ID] = project
	return nil
}

func (m *memStore) GetProject(_ context.Context, projectID string) (store.Project, error) {
	project, ok := m.projects[projectID]
	if !ok {
		return store.Project{}, sql.ErrNoRows
	}
	return project, nil
}

func (m *memStore) ListProjects(_ context.Context, userID string, all bool) ([]store.Project, error) {
	items := make([]store.Project, 0)
	for _, project := range m.projects {
		if all {
			items = append(items, project)
			continue
		}
		for _, membership := range m.memberships {
			if membership.ProjectID == project.ID && membership.UserID == userID {
				items = append(items, project)
				break
			}
		}
	}
	return items, nil
}

func (m *memStore) InsertMembership(_ context.Context, membership store.ProjectMembership) error {
	for _, existing := range m.memberships {
		if existing.ProjectID == membership.ProjectID && existing.UserID == membership.UserID {
			return store.ErrDuplicateMembership
		}
	}
	m.memberships = append(m.memberships, membership)
	return nil
}

func (m *memStore) GetMemberRole(_ context.Context, projectID, userID string) (string, error) {
	for _, membership := range m.memberships {
		if membership.ProjectID == projectID && membership.UserID == userID {
			return membership.Role, nil
		}
	}
	return "", nil
}

func (m *memStore) ListMembers(_ context.Context, projectID string) ([]store.ProjectMembership, error) {
	items := make([]store.ProjectMembership, 0)
	for _, membership := range m.memberships {
		if membership.ProjectID == projectID {
			items = append(items, membership)
		}
	}
	return items, nil
}

func (m *memStore) CreateRecordWithSnapshot(_ context.Context, record store.DecisionRecord, snapshot store.VersionSnapshot) (store.DecisionRecord, error) {
	m.seq[record.ProjectID]++
	record.SequenceNumber = m.seq[record.ProjectID]
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	m.records[record.ID] = record
	m.snapshots[record.ID] = append(m.snapshots[record.ID], snapshot)
	return record, nil
}

func (m *memStore) GetRecord(_ context.Context, recordID, projectID string) (store.DecisionRecord, error) {
	record, ok := m.records[recordID]
	if !ok || record.ProjectID != projectID {
		return store.DecisionRecord{}, sql.ErrNoRows
	}
	return record, nil
}

func (m *memStore) ListRecords(_ context.Context, projectID string) ([]store.DecisionRecord, error) {
	items := make([]store.DecisionRecord, 0)
	for _, record := range m.records {
		if record.ProjectID == projectID {
			items = append(items, record)
		}
	}
	return items, nil
}

func (m *memStore) UpdateRecordWithSnapshot(_ context.Context, record store.DecisionRecord, expectedVersion string, snapshot store.VersionSnapshot) (store.DecisionRecord, error) {
	if m.updateErr != nil {
		return store.DecisionRecord{}, m.updateErr
	}
	current, ok := m.records[record.ID]
	if !ok || current.ProjectID != record.ProjectID || current.Version != expectedVersion {
		return store.DecisionRecord{}, store.ErrVersionConflict
	}
	record.SequenceNumber = current.SequenceNumber
	record.CreatedAt = current.CreatedAt
	record.UpdatedAt = time.Now()
	m.records[record.ID] = record
	m.snapshots[record.ID] = append(m.snapshots[record.ID], snapshot)
	return record, nil
}

func (m *memStore) SetRecordArchived(_ context.Context, recordID, projectID, reason string) (store.DecisionRecord, error) {
	record, ok := m.records[recordID]
	if !ok || record.ProjectID != projectID {
		return store.DecisionRecord{}, sql.ErrNoRows
	}
	record.Archived = true
	record.ArchiveReason = reason
	m.records[recordID] = record
	return record, nil
}

func (m *memStore) ListSnapshots(_ context.Context, recordID string) ([]store.VersionSnapshot, error) {
	return m.snapshots[recordID], nil
}

func (m *memStore) InsertAuditEntry(_ context.Context, entry store.AuditEntry) error {
	if m.auditErr != nil {
		return m.auditErr
	}
	m.audits = append(m.audits, entry)
	return nil
}

func (m *memStore) ListAuditEntries(_ context.Context, projectID string, _ int) ([]store.AuditEntry, error) {
	items := make([]store.AuditEntry, 0)
	for _, entry := range m.audits {
		if entry.ProjectID == projectID {
			items = append(items, entry)
		}
	}
	return items, nil
}

func (m *memStore) CreateNotifications(_ context.Context, notifications []store.Notification) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notifications = append(m.notifications, notifications...)
	return nil
}

func (m *memStore) ListNotifications(_ context.Context, userID string, _ int) ([]store.Notification, error) {
	items := make([]store.Notification, 0)
	for _, notification := range m.notifications {
		if notification.UserID == userID {
			items = append(items, notification)
		}
	}
	return items, nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, notificationID, userID string) (bool, error) {
	for i, notification := range m.notifications {
		if notification.ID == notificationID && notification.UserID == userID {
			m.notifications[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) MarkAllNotificationsRead(_ context.Context, userID string) error {
	for i, notification := range m.notifications {
		if notification.UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *memStore) InsertAttachment(_ context.Context, attachment store.Attachment) error {
	m.attachments[attachment.RecordID] = append(m.attachments[attachment.RecordID], attachment)
	return nil
}

func (m *memStore) ListAttachments(_ context.Context, recordID string) ([]store.Attachment, error) {
	return m.attachments[recordID], nil
}

func (m *memStore) Ping(context.Context) error { return nil }

type memSessions struct {
	sessions map[string]store.User
}

func (m *memSessions) SaveSession(_ context.Context, tokenHash string, user store.User, _ time.Time) error {
	m.sessions[tokenHash] = user
	return nil
}

func (m *memSessions) LookupSession(_ context.Context, tokenHash string) (store.User, error) {
	user, ok := m.sessions[tokenHash]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (m *memSessions) RevokeSession(_ context.Context, tokenHash string) error {
	delete(m.sessions, tokenHash)
	return nil
}

func newTestService(st *memStore) *Service {
	cfg := config.Config{
		JWTSecret:  "test-secret",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	return &Service{
		cfg:       cfg,
		store:     st,
		evaluator: rbac.NewEvaluator(st),
		sessions:  &memSessions{sessions: map[string]store.User{}},
		passwords: authpw.NewService(st),
		recorder:  audit.NewRecorder(st),
		notifier:  notify.New(st, nil),
	}
}

func sessionFor(id, name, globalRole string) Session {
	return Session{UserID: id, UserName: name, GlobalRole: globalRole}
}

// seedProject creates a project with the given memberships, bypassing the
// service so tests control roles directly.
func seedProject(st *memStore, projectID, key string, roles map[string]string) {
	st.projects[projectID] = store.Project{ID: projectID, Name: "Project " + key, Key: key}
	for userID, role := range roles {
		st.memberships = append(st.memberships, store.ProjectMembership{
			ID:        "mbr_" + userID,
			ProjectID: projectID,
			UserID:    userID,
			Role:      role,
		})
		if _, ok := st.users[userID]; !ok {
			st.users[userID] = store.User{ID: userID, DisplayName: userID, Email: userID + "@example.com", GlobalRole: "member"}
		}
	}
}

func wantDomainError(t *testing.T, err error, code string) *DomainError {
	t.Helper()
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError %s, got %v", code, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, domainErr.Code, domainErr.Message)
	}
	return domainErr
}

func TestCreateRecordDefaults(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	svc := newTestService(st)

	record, err := svc.CreateRecord(context.Background(), sessionFor("alice", "Alice", "member"), "prj_1", CreateRecordInput{
		Title:    "Adopt event sourcing",
		Context:  "We need an audit-friendly persistence model",
		Decision: "Use event sourcing for the order domain",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	if record.Status != "draft" {
		t.Fatalf("expected default status draft, got %s", record.Status)
	}
	if record.Version != "1.0" {
		t.Fatalf("expected version 1.0, got %s", record.Version)
	}
	if record.SequenceNumber != 1 {
		t.Fatalf("expected sequence number 1, got %d", record.SequenceNumber)
	}
	if record.Author != "Alice" {
		t.Fatalf("expected author Alice, got %s", record.Author)
	}

	snapshots := st.snapshots[record.ID]
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0].ChangeReason != "Initial creation" || snapshots[0].Version != "1.0" {
		t.Fatalf("unexpected initial snapshot: %+v", snapshots[0])
	}

	if len(st.audits) != 1 || st.audits[0].Action != "created" {
		t.Fatalf("expected one created audit entry, got %+v", st.audits)
	}
}

func TestChangeStatusRejectsSkippedState(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	record, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	_, err = svc.ChangeRecordStatus(context.Background(), session, "prj_1", record.ID, "in_review", "skipping ahead")
	domainErr := wantDomainError(t, err, "INVALID_TRANSITION")
	details, ok := domainErr.Details.(map[string]any)
	if !ok || details["from"] != "draft" || details["to"] != "in_review" {
		t.Fatalf("unexpected transition details: %+v", domainErr.Details)
	}

	unchanged := st.records[record.ID]
	if unchanged.Status != "draft" || unchanged.Version != "1.0" {
		t.Fatalf("record mutated by rejected transition: %+v", unchanged)
	}
	if len(st.snapshots[record.ID]) != 1 {
		t.Fatalf("expected snapshot history untouched, got %d", len(st.snapshots[record.ID]))
	}
}

func TestChangeStatusBumpsMajorAndNotifiesMembers(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor", "bob": "viewer", "carol": "admin"})
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	record, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	updated, err := svc.ChangeRecordStatus(context.Background(), session, "prj_1", record.ID, "proposed", "ready")
	if err != nil {
		t.Fatalf("ChangeRecordStatus: %v", err)
	}

	if updated.Status != "proposed" || updated.Version != "2.0" {
		t.Fatalf("expected proposed/2.0, got %s/%s", updated.Status, updated.Version)
	}
	if len(st.snapshots[record.ID]) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(st.snapshots[record.ID]))
	}
	latest := st.snapshots[record.ID][1]
	if latest.Version != "2.0" || latest.ChangeReason != "Status changed to proposed: ready" {
		t.Fatalf("unexpected status snapshot: %+v", latest)
	}

	var statusAudit *store.AuditEntry
	for i := range st.audits {
		if st.audits[i].Action == "status_changed" {
			statusAudit = &st.audits[i]
		}
	}
	if statusAudit == nil {
		t.Fatal("expected a status_changed audit entry")
	}
	statusChange, ok := statusAudit.Changes["status"].(map[string]any)
	if !ok || statusChange["before"] != "draft" || statusChange["after"] != "proposed" {
		t.Fatalf("unexpected audit changes: %+v", statusAudit.Changes)
	}
	if statusAudit.Metadata["reason"] != "ready" {
		t.Fatalf("expected reason in metadata, got %+v", statusAudit.Metadata)
	}

	// Every other member gets exactly one notification; the actor none.
	counts := map[string]int{}
	for _, notification := range st.notifications {
		counts[notification.UserID]++
	}
	if counts["alice"] != 0 || counts["bob"] != 1 || counts["carol"] != 1 {
		t.Fatalf("unexpected notification fan-out: %+v", counts)
	}
}

func TestUpdateContentBumpsMinorWithDefaultReason(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	record, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "Use Postgres 14", Decision: "Postgres 14"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if _, err := svc.ChangeRecordStatus(context.Background(), session, "prj_1", record.ID, "proposed", "ready"); err != nil {
		t.Fatalf("ChangeRecordStatus: %v", err)
	}

	title := "Use Postgres 15"
	updated, err := svc.UpdateRecordContent(context.Background(), session, "prj_1", record.ID, UpdateRecordInput{Title: &title})
	if err != nil {
		t.Fatalf("UpdateRecordContent: %v", err)
	}

	if updated.Version != "2.1" {
		t.Fatalf("expected version 2.1, got %s", updated.Version)
	}
	if updated.Title != "Use Postgres 15" {
		t.Fatalf("title not applied: %s", updated.Title)
	}
	if updated.Decision != "Postgres 14" {
		t.Fatalf("omitted field was changed: %s", updated.Decision)
	}

	snapshots := st.snapshots[record.ID]
	if len(snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snapshots))
	}
	if snapshots[2].ChangeReason != "Content update" {
		t.Fatalf("expected default change reason, got %q", snapshots[2].ChangeReason)
	}

	var updatedAudit *store.AuditEntry
	for i := range st.audits {
		if st.audits[i].Action == "updated" {
			updatedAudit = &st.audits[i]
		}
	}
	if updatedAudit == nil {
		t.Fatal("expected an updated audit entry")
	}
	if _, ok := updatedAudit.Changes["title"]; !ok {
		t.Fatalf("expected title diff in audit changes: %+v", updatedAudit.Changes)
	}
	if _, ok := updatedAudit.Changes["decision"]; ok {
		t.Fatalf("unsupplied field must not appear in diff: %+v", updatedAudit.Changes)
	}
}

func TestArchiveRequiresAdmin(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor", "carol": "admin"})
	svc := newTestService(st)

	record, err := svc.CreateRecord(context.Background(), sessionFor("alice", "Alice", "member"), "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	_, err = svc.ArchiveRecord(context.Background(), sessionFor("alice", "Alice", "member"), "prj_1", record.ID, "superseded by ADR-7")
	wantDomainError(t, err, "FORBIDDEN")
	if st.records[record.ID].Archived {
		t.Fatal("record archived despite denial")
	}

	archived, err := svc.ArchiveRecord(context.Background(), sessionFor("carol", "Carol", "member"), "prj_1", record.ID, "superseded by ADR-7")
	if err != nil {
		t.Fatalf("ArchiveRecord as admin: %v", err)
	}
	if !archived.Archived || archived.ArchiveReason != "superseded by ADR-7" {
		t.Fatalf("archive flags not set: %+v", archived)
	}
	if archived.Version != "1.0" {
		t.Fatalf("archive must not bump version, got %s", archived.Version)
	}
	if len(st.snapshots[record.ID]) != 1 {
		t.Fatalf("archive must not add snapshots, got %d", len(st.snapshots[record.ID]))
	}
}

func TestSequenceNumbersIndependentPerProject(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	seedProject(st, "prj_2", "DATA", map[string]string{"alice": "editor"})
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	first, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "A"})
	if err != nil {
		t.Fatalf("CreateRecord prj_1: %v", err)
	}
	second, err := svc.CreateRecord(context.Background(), session, "prj_2", CreateRecordInput{Title: "B"})
	if err != nil {
		t.Fatalf("CreateRecord prj_2: %v", err)
	}

	if first.SequenceNumber != 1 || second.SequenceNumber != 1 {
		t.Fatalf("expected both sequences to start at 1, got %d and %d", first.SequenceNumber, second.SequenceNumber)
	}
}

func TestUpdateContentVersionConflict(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	record, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	st.updateErr = store.ErrVersionConflict
	title := "New title"
	_, err = svc.UpdateRecordContent(context.Background(), session, "prj_1", record.ID, UpdateRecordInput{Title: &title})
	wantDomainError(t, err, "VERSION_CONFLICT")

	untouched := st.records[record.ID]
	if untouched.Version != "1.0" || untouched.Title != "ADR" {
		t.Fatalf("record mutated by failed update: %+v", untouched)
	}
	if len(st.snapshots[record.ID]) != 1 {
		t.Fatalf("snapshot written by failed update, got %d", len(st.snapshots[record.ID]))
	}

	// A retry with the conflict gone succeeds against the same version.
	st.updateErr = nil
	updated, err := svc.UpdateRecordContent(context.Background(), session, "prj_1", record.ID, UpdateRecordInput{Title: &title})
	if err != nil {
		t.Fatalf("retry UpdateRecordContent: %v", err)
	}
	if updated.Version != "1.1" {
		t.Fatalf("expected version 1.1 after retry, got %s", updated.Version)
	}
}

func TestAuthorizationScoping(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor", "bob": "viewer"})
	svc := newTestService(st)

	// A non-member cannot even learn the project exists.
	_, err := svc.CreateRecord(context.Background(), sessionFor("mallory", "Mallory", "member"), "prj_1", CreateRecordInput{Title: "X"})
	wantDomainError(t, err, "NOT_FOUND")

	// A viewer can read but not write.
	_, err = svc.CreateRecord(context.Background(), sessionFor("bob", "Bob", "member"), "prj_1", CreateRecordInput{Title: "X"})
	wantDomainError(t, err, "FORBIDDEN")
	if _, err := svc.ListRecords(context.Background(), sessionFor("bob", "Bob", "member"), "prj_1"); err != nil {
		t.Fatalf("viewer list: %v", err)
	}

	// A global admin needs no membership at all.
	record, err := svc.CreateRecord(context.Background(), sessionFor("root", "Root", "admin"), "prj_1", CreateRecordInput{Title: "X"})
	if err != nil {
		t.Fatalf("global admin create: %v", err)
	}
	if _, err := svc.ArchiveRecord(context.Background(), sessionFor("root", "Root", "admin"), "prj_1", record.ID, "done"); err != nil {
		t.Fatalf("global admin archive: %v", err)
	}
}

func TestChangeStatusRequiresReason(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	record, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	_, err = svc.ChangeRecordStatus(context.Background(), session, "prj_1", record.ID, "proposed", "   ")
	wantDomainError(t, err, "VALIDATION_ERROR")
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	st.auditErr = errors.New("audit sink down")
	svc := newTestService(st)

	record, err := svc.CreateRecord(context.Background(), sessionFor("alice", "Alice", "member"), "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord with failing audit sink: %v", err)
	}
	if record.Version != "1.0" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestNotificationFailureDoesNotFailStatusChange(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor", "bob": "viewer"})
	st.notifyErr = errors.New("notification sink down")
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	record, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	updated, err := svc.ChangeRecordStatus(context.Background(), session, "prj_1", record.ID, "proposed", "ready")
	if err != nil {
		t.Fatalf("ChangeRecordStatus with failing notifier: %v", err)
	}
	if updated.Status != "proposed" || updated.Version != "2.0" {
		t.Fatalf("status change lost: %+v", updated)
	}
}

func TestCreateProjectValidatesKeyAndSeedsAdmin(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")
	st.users["alice"] = store.User{ID: "alice", DisplayName: "Alice", GlobalRole: "member"}

	for _, key := range []string{"", "lowercase", "WAY-TOO-LONG-KEY", "SP ACE"} {
		if _, err := svc.CreateProject(context.Background(), session, "Platform", key, ""); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}

	project, err := svc.CreateProject(context.Background(), session, "Platform", "PLAT", "platform decisions")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	role, err := st.GetMemberRole(context.Background(), project.ID, "alice")
	if err != nil || role != "admin" {
		t.Fatalf("creator should be project admin, got %q (%v)", role, err)
	}

	_, err = svc.CreateProject(context.Background(), session, "Platform Two", "PLAT", "")
	wantDomainError(t, err, "DUPLICATE_KEY")
}

func TestAddMemberConflictsAndNotifies(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"carol": "admin"})
	st.users["dave"] = store.User{ID: "dave", DisplayName: "Dave", Email: "dave@example.com", GlobalRole: "member"}
	svc := newTestService(st)
	admin := sessionFor("carol", "Carol", "member")

	_, err := svc.AddMember(context.Background(), admin, "prj_1", "dave", "superuser")
	wantDomainError(t, err, "VALIDATION_ERROR")

	membership, err := svc.AddMember(context.Background(), admin, "prj_1", "dave", "editor")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if membership.Role != "editor" || membership.UserName != "Dave" {
		t.Fatalf("unexpected membership: %+v", membership)
	}

	notifications, _ := st.ListNotifications(context.Background(), "dave", 50)
	if len(notifications) != 1 || notifications[0].Kind != "member_added" {
		t.Fatalf("expected one member_added notification, got %+v", notifications)
	}

	_, err = svc.AddMember(context.Background(), admin, "prj_1", "dave", "viewer")
	wantDomainError(t, err, "DUPLICATE_MEMBER")

	_, err = svc.AddMember(context.Background(), admin, "prj_1", "nobody", "viewer")
	wantDomainError(t, err, "NOT_FOUND")
}

func TestListVersionsReturnsFullHistory(t *testing.T) {
	st := newMemStore()
	seedProject(st, "prj_1", "PLAT", map[string]string{"alice": "editor"})
	svc := newTestService(st)
	session := sessionFor("alice", "Alice", "member")

	record, err := svc.CreateRecord(context.Background(), session, "prj_1", CreateRecordInput{Title: "ADR"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if _, err := svc.ChangeRecordStatus(context.Background(), session, "prj_1", record.ID, "proposed", "ready"); err != nil {
		t.Fatalf("ChangeRecordStatus: %v", err)
	}
	title := "ADR v2"
	if _, err := svc.UpdateRecordContent(context.Background(), session, "prj_1", record.ID, UpdateRecordInput{Title: &title, ChangeReason: "clarify title"}); err != nil {
		t.Fatalf("UpdateRecordContent: %v", err)
	}

	versions, err := svc.ListVersions(context.Background(), session, "prj_1", record.ID)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	got := make([]string, 0, len(versions))
	for _, snapshot := range versions {
		got = append(got, snapshot.Version)
	}
	want := []string{"1.0", "2.0", "2.1"}
	if len(got) != len(want) {
		t.Fatalf("expected versions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected versions %v, got %v", want, got)
		}
	}
	if versions[2].ChangeReason != "clarify title" {
		t.Fatalf("supplied change reason lost: %q", versions[2].ChangeReason)
	}
}

func TestSignUpSignInRefreshLogout(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "eve@example.com", "correct horse", "Eve")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if session.Token == "" || session.RefreshToken == "" {
		t.Fatal("expected tokens on signup")
	}

	parsed, err := svc.SessionFromToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if parsed.UserName != "Eve" || parsed.GlobalRole != "member" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}

	rotated, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == session.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if _, err := svc.Refresh(ctx, session.RefreshToken); err == nil {
		t.Fatal("old refresh token should be revoked")
	}

	if err := svc.Logout(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err == nil {
		t.Fatal("refresh after logout should fail")
	}

	_, err = svc.SignUp(ctx, "eve@example.com", "correct horse", "Eve Again")
	wantDomainError(t, err, "EMAIL_EXISTS")

	_, err = svc.SignIn(ctx, "eve@example.com", "wrong password")
	wantDomainError(t, err, "INVALID_CREDENTIALS")
}
