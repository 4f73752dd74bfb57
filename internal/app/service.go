package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"cairn/api/internal/attach"
	"cairn/api/internal/audit"
	"cairn/api/internal/auth"
	"cairn/api/internal/authpw"
	"cairn/api/internal/config"
	"cairn/api/internal/gitmirror"
	"cairn/api/internal/lifecycle"
	"cairn/api/internal/notify"
	"cairn/api/internal/rbac"
	"cairn/api/internal/search"
	"cairn/api/internal/store"
	"cairn/api/internal/util"
	"cairn/api/internal/version"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	GlobalRole   string
	JTI          string
	ExpiresAt    time.Time
}

func (s Session) principal() rbac.Principal {
	return rbac.Principal{ID: s.UserID, DisplayName: s.UserName, GlobalRole: s.GlobalRole}
}

type CreateRecordInput struct {
	Title        string
	Status       string
	Context      string
	Decision     string
	Consequences string
	Alternatives string
	Tags         []string
	Team         string
}

// UpdateRecordInput carries a partial content edit. Nil pointers mean the
// field keeps its current value.
type UpdateRecordInput struct {
	Title        *string
	Context      *string
	Decision     *string
	Consequences *string
	Alternatives *string
	Tags         *[]string
	Team         *string
	ChangeReason string
}

type dataStore interface {
	GetUserByID(ctx context.Context, userID string) (store.User, error)
	InsertProject(ctx context.Context, project store.Project) error
	GetProject(ctx context.Context, projectID string) (store.Project, error)
	ListProjects(ctx context.Context, userID string, all bool) ([]store.Project, error)
	InsertMembership(ctx context.Context, membership store.ProjectMembership) error
	GetMemberRole(ctx context.Context, projectID, userID string) (string, error)
	ListMembers(ctx context.Context, projectID string) ([]store.ProjectMembership, error)
	CreateRecordWithSnapshot(ctx context.Context, record store.DecisionRecord, snapshot store.VersionSnapshot) (store.DecisionRecord, error)
	GetRecord(ctx context.Context, recordID, projectID string) (store.DecisionRecord, error)
	ListRecords(ctx context.Context, projectID string) ([]store.DecisionRecord, error)
	UpdateRecordWithSnapshot(ctx context.Context, record store.DecisionRecord, expectedVersion string, snapshot store.VersionSnapshot) (store.DecisionRecord, error)
	SetRecordArchived(ctx context.Context, recordID, projectID, reason string) (store.DecisionRecord, error)
	ListSnapshots(ctx context.Context, recordID string) ([]store.VersionSnapshot, error)
	ListAuditEntries(ctx context.Context, projectID string, limit int) ([]store.AuditEntry, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]store.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) (bool, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	InsertAttachment(ctx context.Context, attachment store.Attachment) error
	ListAttachments(ctx context.Context, recordID string) ([]store.Attachment, error)
	Ping(ctx context.Context) error
}

// SessionStore holds refresh tokens. Redis when configured, Postgres
// otherwise; both expose the same surface.
type SessionStore interface {
	SaveSession(ctx context.Context, tokenHash string, user store.User, expiresAt time.Time) error
	LookupSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeSession(ctx context.Context, tokenHash string) error
}

type recordSearcher interface {
	Search(q search.Query) search.Response
	IndexRecord(doc search.RecordDoc)
}

type recordMirror interface {
	MirrorRecord(record store.DecisionRecord, projectKey, actor string) error
}

type blobStore interface {
	Put(ctx context.Context, recordID, attachmentID, fileName, contentType string, size int64, body io.Reader) error
	PresignedURL(ctx context.Context, recordID, attachmentID, fileName string) (string, error)
}

type Service struct {
	cfg       config.Config
	store     dataStore
	evaluator *rbac.Evaluator
	sessions  SessionStore
	passwords *authpw.Service
	recorder  *audit.Recorder
	notifier  *notify.Notifier
	search    recordSearcher
	mirror    recordMirror
	blobs     blobStore
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions SessionStore, notifier *notify.Notifier, searchSvc *search.Service, mirror *gitmirror.Mirror, blobs *attach.Service) *Service {
	svc := &Service{
		cfg:       cfg,
		store:     dataStore,
		evaluator: rbac.NewEvaluator(dataStore),
		sessions:  sessions,
		passwords: authpw.NewService(dataStore),
		recorder:  audit.NewRecorder(dataStore),
		notifier:  notifier,
	}
	if searchSvc != nil {
		svc.search = searchSvc
	}
	if mirror != nil {
		svc.mirror = mirror
	}
	if blobs != nil {
		svc.blobs = blobs
	}
	return svc
}

// ---- sessions ----

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	user, err := s.passwords.SignUp(ctx, authpw.SignUpRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		if errors.Is(err, authpw.ErrEmailExists) {
			return Session{}, errConflict("EMAIL_EXISTS", "Email already registered")
		}
		return Session{}, errValidation(err.Error(), nil)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.passwords.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, domainError(401, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), user.ID, user.DisplayName, user.GlobalRole, jti, expiresAt)
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	if err := s.sessions.SaveSession(ctx, auth.HashToken(refresh), user, now.Add(s.cfg.RefreshTTL)); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		GlobalRole:   user.GlobalRole,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(_ context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:      token,
		UserID:     claims.Subject,
		UserName:   claims.Name,
		GlobalRole: claims.GlobalRole,
		JTI:        claims.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the refresh token. Access tokens are short-lived and
// simply age out.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeSession(ctx, auth.HashToken(refreshToken))
}

// ---- authorization ----

// authorize maps evaluator denials onto the error taxonomy: missing
// membership reads as NotFound so project existence is not leaked, an
// insufficient role reads as Forbidden.
func (s *Service) authorize(ctx context.Context, session Session, projectID string, min rbac.Role) error {
	_, err := s.evaluator.Authorize(ctx, session.principal(), projectID, min)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rbac.ErrNoAccess):
		return errNotFound()
	case errors.Is(err, rbac.ErrInsufficientRole):
		return errForbidden()
	default:
		return err
	}
}

// ---- projects ----

var projectKeyPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

func (s *Service) CreateProject(ctx context.Context, session Session, name, key, description string) (store.Project, error) {
	name = strings.TrimSpace(name)
	key = strings.TrimSpace(key)
	if name == "" {
		return store.Project{}, errValidation("name is required", map[string]any{"field": "name"})
	}
	if !projectKeyPattern.MatchString(key) {
		return store.Project{}, errValidation("key must be 1-10 uppercase letters or digits", map[string]any{"field": "key"})
	}

	project := store.Project{
		ID:          util.NewID("prj"),
		Name:        name,
		Key:         key,
		Description: description,
		CreatedBy:   session.UserID,
	}
	if err := s.store.InsertProject(ctx, project); err != nil {
		if errors.Is(err, store.ErrDuplicateProjectKey) {
			return store.Project{}, errConflict("DUPLICATE_KEY", "Project key already in use")
		}
		return store.Project{}, err
	}

	if err := s.store.InsertMembership(ctx, store.ProjectMembership{
		ID:        util.NewID("mbr"),
		ProjectID: project.ID,
		UserID:    session.UserID,
		Role:      string(rbac.RoleAdmin),
	}); err != nil {
		return store.Project{}, err
	}

	s.recorder.Record(ctx, store.AuditEntry{
		ProjectID:   project.ID,
		EntityType:  "project",
		EntityID:    project.ID,
		Action:      "created",
		PerformedBy: session.UserName,
		Metadata:    map[string]any{"name": name, "key": key},
	})
	return s.store.GetProject(ctx, project.ID)
}

func (s *Service) ListProjects(ctx context.Context, session Session) ([]store.Project, error) {
	all := rbac.Role(session.GlobalRole) == rbac.RoleAdmin
	return s.store.ListProjects(ctx, session.UserID, all)
}

func (s *Service) GetProject(ctx context.Context, session Session, projectID string) (store.Project, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleViewer); err != nil {
		return store.Project{}, err
	}
	project, err := s.store.GetProject(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Project{}, errNotFound()
	}
	return project, err
}

func (s *Service) AddMember(ctx context.Context, session Session, projectID, userID, role string) (store.ProjectMembership, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleAdmin); err != nil {
		return store.ProjectMembership{}, err
	}
	parsedRole, ok := rbac.Parse(role)
	if !ok {
		return store.ProjectMembership{}, errValidation("role must be admin, editor, or viewer", map[string]any{"field": "role"})
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ProjectMembership{}, errNotFound()
	}
	if err != nil {
		return store.ProjectMembership{}, err
	}

	membership := store.ProjectMembership{
		ID:        util.NewID("mbr"),
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      string(parsedRole),
	}
	if err := s.store.InsertMembership(ctx, membership); err != nil {
		if errors.Is(err, store.ErrDuplicateMembership) {
			return store.ProjectMembership{}, errConflict("DUPLICATE_MEMBER", "User is already a member of this project")
		}
		return store.ProjectMembership{}, err
	}

	s.recorder.Record(ctx, store.AuditEntry{
		ProjectID:   projectID,
		EntityType:  "membership",
		EntityID:    membership.ID,
		Action:      "member_added",
		PerformedBy: session.UserName,
		Metadata:    map[string]any{"userId": user.ID, "role": string(parsedRole)},
	})

	project, err := s.store.GetProject(ctx, projectID)
	if err == nil {
		s.notifier.NotifyUser(ctx, user.ID, "member_added",
			fmt.Sprintf("Added to %s", project.Name),
			fmt.Sprintf("%s added you as %s", session.UserName, parsedRole),
			"/projects/"+projectID)
	}

	membership.UserName = user.DisplayName
	membership.UserEmail = user.Email
	return membership, nil
}

func (s *Service) ListMembers(ctx context.Context, session Session, projectID string) ([]store.ProjectMembership, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleViewer); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, projectID)
}

// ---- decision records ----

func (s *Service) CreateRecord(ctx context.Context, session Session, projectID string, input CreateRecordInput) (store.DecisionRecord, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleEditor); err != nil {
		return store.DecisionRecord{}, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return store.DecisionRecord{}, errValidation("title is required", map[string]any{"field": "title"})
	}
	status := lifecycle.StatusDraft
	if input.Status != "" {
		parsed, ok := lifecycle.Parse(input.Status)
		if !ok {
			return store.DecisionRecord{}, errValidation("unknown status "+input.Status, map[string]any{"field": "status"})
		}
		status = parsed
	}

	record := store.DecisionRecord{
		ID:           util.NewID("rec"),
		ProjectID:    projectID,
		Title:        title,
		Status:       string(status),
		Context:      input.Context,
		Decision:     input.Decision,
		Consequences: input.Consequences,
		Alternatives: input.Alternatives,
		Tags:         input.Tags,
		Team:         input.Team,
		Author:       session.UserName,
		Version:      version.Initial,
	}
	created, err := s.store.CreateRecordWithSnapshot(ctx, record, snapshotOf(record, "Initial creation", session.UserName))
	if err != nil {
		return store.DecisionRecord{}, err
	}

	s.recorder.Record(ctx, store.AuditEntry{
		ProjectID:   projectID,
		EntityType:  "decision_record",
		EntityID:    created.ID,
		Action:      "created",
		PerformedBy: session.UserName,
		Metadata:    map[string]any{"title": created.Title, "status": created.Status},
	})
	s.indexRecord(created)
	return created, nil
}

func (s *Service) UpdateRecordContent(ctx context.Context, session Session, projectID, recordID string, input UpdateRecordInput) (store.DecisionRecord, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleEditor); err != nil {
		return store.DecisionRecord{}, err
	}
	current, err := s.store.GetRecord(ctx, recordID, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DecisionRecord{}, errNotFound()
	}
	if err != nil {
		return store.DecisionRecord{}, err
	}

	next := current
	changes := map[string]any{}
	applyString := func(field string, target *string, value *string) {
		if value == nil {
			return
		}
		changes[field] = map[string]any{"before": *target, "after": *value}
		*target = *value
	}
	applyString("title", &next.Title, input.Title)
	applyString("context", &next.Context, input.Context)
	applyString("decision", &next.Decision, input.Decision)
	applyString("consequences", &next.Consequences, input.Consequences)
	applyString("alternatives", &next.Alternatives, input.Alternatives)
	applyString("team", &next.Team, input.Team)
	if input.Tags != nil {
		changes["tags"] = map[string]any{"before": current.Tags, "after": *input.Tags}
		next.Tags = *input.Tags
	}
	if len(changes) == 0 {
		return store.DecisionRecord{}, errValidation("no fields to update", nil)
	}

	next.Version = version.NextForEdit(current.Version)
	reason := strings.TrimSpace(input.ChangeReason)
	if reason == "" {
		reason = "Content update"
	}

	updated, err := s.store.UpdateRecordWithSnapshot(ctx, next, current.Version, snapshotOf(next, reason, session.UserName))
	if errors.Is(err, store.ErrVersionConflict) {
		return store.DecisionRecord{}, errConflict("VERSION_CONFLICT", "Record was modified concurrently, retry with fresh data")
	}
	if err != nil {
		return store.DecisionRecord{}, err
	}

	s.recorder.Record(ctx, store.AuditEntry{
		ProjectID:   projectID,
		EntityType:  "decision_record",
		EntityID:    updated.ID,
		Action:      "updated",
		PerformedBy: session.UserName,
		Changes:     changes,
	})
	s.indexRecord(updated)
	return updated, nil
}

func (s *Service) ChangeRecordStatus(ctx context.Context, session Session, projectID, recordID, newStatus, reason string) (store.DecisionRecord, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleEditor); err != nil {
		return store.DecisionRecord{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return store.DecisionRecord{}, errValidation("a reason is required for status changes", map[string]any{"field": "reason"})
	}
	target, ok := lifecycle.Parse(newStatus)
	if !ok {
		return store.DecisionRecord{}, errValidation("unknown status "+newStatus, map[string]any{"field": "status"})
	}

	current, err := s.store.GetRecord(ctx, recordID, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DecisionRecord{}, errNotFound()
	}
	if err != nil {
		return store.DecisionRecord{}, err
	}
	if err := lifecycle.Validate(lifecycle.Status(current.Status), target); err != nil {
		return store.DecisionRecord{}, errInvalidTransition(current.Status, string(target))
	}

	next := current
	next.Status = string(target)
	next.Version = version.NextForStatusChange(current.Version)
	snapshotReason := fmt.Sprintf("Status changed to %s: %s", target, reason)

	updated, err := s.store.UpdateRecordWithSnapshot(ctx, next, current.Version, snapshotOf(next, snapshotReason, session.UserName))
	if errors.Is(err, store.ErrVersionConflict) {
		return store.DecisionRecord{}, errConflict("VERSION_CONFLICT", "Record was modified concurrently, retry with fresh data")
	}
	if err != nil {
		return store.DecisionRecord{}, err
	}

	s.recorder.Record(ctx, store.AuditEntry{
		ProjectID:   projectID,
		EntityType:  "decision_record",
		EntityID:    updated.ID,
		Action:      "status_changed",
		PerformedBy: session.UserName,
		Changes:     map[string]any{"status": map[string]any{"before": current.Status, "after": updated.Status}},
		Metadata:    map[string]any{"reason": reason},
	})
	s.notifier.NotifyMembers(ctx, projectID, session.UserID, "status_changed",
		fmt.Sprintf("ADR-%d is now %s", updated.SequenceNumber, updated.Status),
		fmt.Sprintf("%s moved %q to %s: %s", session.UserName, updated.Title, updated.Status, reason),
		"/projects/"+projectID+"/records/"+updated.ID)
	s.indexRecord(updated)
	s.mirrorRecord(ctx, updated, session.UserName)
	return updated, nil
}

func (s *Service) ArchiveRecord(ctx context.Context, session Session, projectID, recordID, reason string) (store.DecisionRecord, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleAdmin); err != nil {
		return store.DecisionRecord{}, err
	}
	updated, err := s.store.SetRecordArchived(ctx, recordID, projectID, reason)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DecisionRecord{}, errNotFound()
	}
	if err != nil {
		return store.DecisionRecord{}, err
	}

	s.recorder.Record(ctx, store.AuditEntry{
		ProjectID:   projectID,
		EntityType:  "decision_record",
		EntityID:    updated.ID,
		Action:      "archived",
		PerformedBy: session.UserName,
		Metadata:    map[string]any{"reason": reason},
	})
	return updated, nil
}

func (s *Service) GetRecord(ctx context.Context, session Session, projectID, recordID string) (store.DecisionRecord, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleViewer); err != nil {
		return store.DecisionRecord{}, err
	}
	record, err := s.store.GetRecord(ctx, recordID, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DecisionRecord{}, errNotFound()
	}
	return record, err
}

func (s *Service) ListRecords(ctx context.Context, session Session, projectID string) ([]store.DecisionRecord, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleViewer); err != nil {
		return nil, err
	}
	return s.store.ListRecords(ctx, projectID)
}

// ListVersions returns the snapshot history oldest first.
func (s *Service) ListVersions(ctx context.Context, session Session, projectID, recordID string) ([]store.VersionSnapshot, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRecord(ctx, recordID, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound()
		}
		return nil, err
	}
	return s.store.ListSnapshots(ctx, recordID)
}

func (s *Service) ListAuditEntries(ctx context.Context, session Session, projectID string, limit int) ([]store.AuditEntry, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleViewer); err != nil {
		return nil, err
	}
	return s.store.ListAuditEntries(ctx, projectID, limit)
}

// snapshotOf copies the record's content and status fields into a new
// snapshot carrying the triggering metadata.
func snapshotOf(record store.DecisionRecord, reason, changedBy string) store.VersionSnapshot {
	return store.VersionSnapshot{
		ID:           util.NewID("ver"),
		RecordID:     record.ID,
		Version:      record.Version,
		Title:        record.Title,
		Status:       record.Status,
		Context:      record.Context,
		Decision:     record.Decision,
		Consequences: record.Consequences,
		Alternatives: record.Alternatives,
		Tags:         record.Tags,
		Team:         record.Team,
		ChangeReason: reason,
		ChangedBy:    changedBy,
	}
}

func (s *Service) indexRecord(record store.DecisionRecord) {
	if s.search == nil {
		return
	}
	s.search.IndexRecord(search.RecordDoc{
		ID:           record.ID,
		ProjectID:    record.ProjectID,
		Title:        record.Title,
		Context:      record.Context,
		Decision:     record.Decision,
		Consequences: record.Consequences,
		Status:       record.Status,
		Version:      record.Version,
	})
}

// mirrorRecord pushes accepted records into the markdown mirror. Failures
// are logged and never surfaced; the mirror is a convenience copy.
func (s *Service) mirrorRecord(ctx context.Context, record store.DecisionRecord, actor string) {
	if s.mirror == nil || record.Status != string(lifecycle.StatusAccepted) {
		return
	}
	project, err := s.store.GetProject(ctx, record.ProjectID)
	if err != nil {
		log.Printf("mirror: load project %s: %v", record.ProjectID, err)
		return
	}
	if err := s.mirror.MirrorRecord(record, project.Key, actor); err != nil {
		log.Printf("mirror: record %s: %v", record.ID, err)
	}
}

// ---- search ----

func (s *Service) Search(ctx context.Context, session Session, text string, limit, offset int) (search.Response, error) {
	query := search.Query{Text: text, Limit: limit, Offset: offset}
	if rbac.Role(session.GlobalRole) != rbac.RoleAdmin {
		projects, err := s.store.ListProjects(ctx, session.UserID, false)
		if err != nil {
			return search.Response{}, err
		}
		if len(projects) == 0 {
			return search.Response{Results: []search.Result{}, Query: text}, nil
		}
		for _, project := range projects {
			query.ProjectIDs = append(query.ProjectIDs, project.ID)
		}
	}
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}
	return s.search.Search(query), nil
}

// ---- notifications ----

func (s *Service) ListNotifications(ctx context.Context, session Session, limit int) ([]store.Notification, error) {
	return s.store.ListNotifications(ctx, session.UserID, limit)
}

func (s *Service) MarkNotificationRead(ctx context.Context, session Session, notificationID string) error {
	updated, err := s.store.MarkNotificationRead(ctx, notificationID, session.UserID)
	if err != nil {
		return err
	}
	if !updated {
		return errNotFound()
	}
	return nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, session Session) error {
	return s.store.MarkAllNotificationsRead(ctx, session.UserID)
}

// ---- attachments ----

func (s *Service) UploadAttachment(ctx context.Context, session Session, projectID, recordID, fileName, contentType string, size int64, body io.Reader) (store.Attachment, error) {
	if s.blobs == nil {
		return store.Attachment{}, domainError(503, "ATTACHMENTS_UNAVAILABLE", "Attachment storage not configured", nil)
	}
	if err := s.authorize(ctx, session, projectID, rbac.RoleEditor); err != nil {
		return store.Attachment{}, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return store.Attachment{}, errValidation("fileName is required", map[string]any{"field": "fileName"})
	}
	if _, err := s.store.GetRecord(ctx, recordID, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Attachment{}, errNotFound()
		}
		return store.Attachment{}, err
	}

	attachment := store.Attachment{
		ID:          util.NewID("att"),
		RecordID:    recordID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  session.UserName,
	}
	if err := s.blobs.Put(ctx, recordID, attachment.ID, fileName, contentType, size, body); err != nil {
		return store.Attachment{}, err
	}
	if err := s.store.InsertAttachment(ctx, attachment); err != nil {
		return store.Attachment{}, err
	}

	s.recorder.Record(ctx, store.AuditEntry{
		ProjectID:   projectID,
		EntityType:  "decision_record",
		EntityID:    recordID,
		Action:      "attachment_added",
		PerformedBy: session.UserName,
		Metadata:    map[string]any{"fileName": fileName, "size": size},
	})
	return attachment, nil
}

// AttachmentWithURL pairs stored metadata with a short-lived download URL.
type AttachmentWithURL struct {
	store.Attachment
	URL string `json:"url,omitempty"`
}

func (s *Service) ListAttachments(ctx context.Context, session Session, projectID, recordID string) ([]AttachmentWithURL, error) {
	if err := s.authorize(ctx, session, projectID, rbac.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRecord(ctx, recordID, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound()
		}
		return nil, err
	}
	attachments, err := s.store.ListAttachments(ctx, recordID)
	if err != nil {
		return nil, err
	}
	items := make([]AttachmentWithURL, 0, len(attachments))
	for _, attachment := range attachments {
		item := AttachmentWithURL{Attachment: attachment}
		if s.blobs != nil {
			if url, err := s.blobs.PresignedURL(ctx, recordID, attachment.ID, attachment.FileName); err == nil {
				item.URL = url
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
