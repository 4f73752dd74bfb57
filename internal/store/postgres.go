package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateProjectKey signals a unique violation on projects.key.
	ErrDuplicateProjectKey = errors.New("project key already exists")
	// ErrDuplicateMembership signals a unique violation on (project_id, user_id).
	ErrDuplicateMembership = errors.New("membership already exists")
	// ErrVersionConflict signals that a compare-and-swap on a record's
	// version matched zero rows: a concurrent writer got there first.
	ErrVersionConflict = errors.New("record version conflict")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- users ----

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash, global_role)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.DisplayName, user.Email, user.PasswordHash, user.GlobalRole)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, global_role
		FROM users
		WHERE email = LOWER($1)
	`, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.GlobalRole)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, global_role
		FROM users
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.GlobalRole)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ---- refresh sessions (fallback when Redis is not configured) ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.display_name, u.email, u.global_role
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`, tokenHash).Scan(&user.ID, &user.DisplayName, &user.Email, &user.GlobalRole)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

// SaveSession, LookupSession and RevokeSession give the Postgres store the
// same surface as the Redis session store so either can back sessions.

func (s *PostgresStore) SaveSession(ctx context.Context, tokenHash string, user User, expiresAt time.Time) error {
	return s.SaveRefreshSession(ctx, tokenHash, user.ID, expiresAt)
}

func (s *PostgresStore) LookupSession(ctx context.Context, tokenHash string) (User, error) {
	return s.LookupRefreshSession(ctx, tokenHash)
}

func (s *PostgresStore) RevokeSession(ctx context.Context, tokenHash string) error {
	return s.RevokeRefreshSession(ctx, tokenHash)
}

// ---- projects ----

func (s *PostgresStore) InsertProject(ctx context.Context, project Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, key, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`, project.ID, project.Name, project.Key, project.Description, project.CreatedBy)
	if isUniqueViolation(err) {
		return ErrDuplicateProjectKey
	}
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	var item Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, key, COALESCE(description, ''), created_by, created_at
		FROM projects
		WHERE id = $1
	`, projectID).Scan(&item.ID, &item.Name, &item.Key, &item.Description, &item.CreatedBy, &item.CreatedAt)
	if err != nil {
		return Project{}, err
	}
	return item, nil
}

// ListProjects returns every project the user belongs to; when all is
// true (global admin) it returns every project.
func (s *PostgresStore) ListProjects(ctx context.Context, userID string, all bool) ([]Project, error) {
	query := `
		SELECT p.id, p.name, p.key, COALESCE(p.description, ''), p.created_by, p.created_at
		FROM projects p
		JOIN project_memberships pm ON pm.project_id = p.id AND pm.user_id = $1
		ORDER BY p.created_at DESC
	`
	args := []any{userID}
	if all {
		query = `
			SELECT id, name, key, COALESCE(description, ''), created_by, created_at
			FROM projects
			ORDER BY created_at DESC
		`
		args = nil
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		var item Project
		if err := rows.Scan(&item.ID, &item.Name, &item.Key, &item.Description, &item.CreatedBy, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

// ---- memberships ----

func (s *PostgresStore) InsertMembership(ctx context.Context, membership ProjectMembership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_memberships (id, project_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`, membership.ID, membership.ProjectID, membership.UserID, membership.Role)
	if isUniqueViolation(err) {
		return ErrDuplicateMembership
	}
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// GetMemberRole returns "" when the user holds no membership in the
// project. Callers treat the empty string as no access.
func (s *PostgresStore) GetMemberRole(ctx context.Context, projectID, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT role FROM project_memberships WHERE project_id=$1 AND user_id=$2
	`, projectID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read member role: %w", err)
	}
	return role, nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, projectID string) ([]ProjectMembership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pm.id, pm.project_id, pm.user_id, pm.role, pm.created_at, u.display_name, u.email
		FROM project_memberships pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY pm.created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	items := make([]ProjectMembership, 0)
	for rows.Next() {
		var item ProjectMembership
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.UserID, &item.Role, &item.CreatedAt, &item.UserName, &item.UserEmail); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return items, nil
}

// ---- decision records ----

const recordColumns = `
	id, project_id, sequence_number, title, status, context, decision,
	consequences, alternatives, tags, team, author, version, archived,
	COALESCE(archive_reason, ''), created_at, updated_at
`

func scanRecord(row interface{ Scan(...any) error }) (DecisionRecord, error) {
	var item DecisionRecord
	var tagsRaw []byte
	err := row.Scan(
		&item.ID,
		&item.ProjectID,
		&item.SequenceNumber,
		&item.Title,
		&item.Status,
		&item.Context,
		&item.Decision,
		&item.Consequences,
		&item.Alternatives,
		&tagsRaw,
		&item.Team,
		&item.Author,
		&item.Version,
		&item.Archived,
		&item.ArchiveReason,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return DecisionRecord{}, err
	}
	if len(tagsRaw) > 0 {
		_ = json.Unmarshal(tagsRaw, &item.Tags)
	}
	return item, nil
}

// CreateRecordWithSnapshot assigns the next per-project sequence number
// and writes the record together with its initial snapshot in one
// transaction. The sequence subquery races under concurrency; the unique
// (project_id, sequence_number) constraint catches the loser and the
// insert is retried with a freshly computed number.
func (s *PostgresStore) CreateRecordWithSnapshot(ctx context.Context, record DecisionRecord, snapshot VersionSnapshot) (DecisionRecord, error) {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		created, err := s.tryCreateRecord(ctx, record, snapshot)
		if err == nil {
			return created, nil
		}
		if !isUniqueViolation(err) {
			return DecisionRecord{}, err
		}
		lastErr = err
	}
	return DecisionRecord{}, fmt.Errorf("assign sequence number: %w", lastErr)
}

func (s *PostgresStore) tryCreateRecord(ctx context.Context, record DecisionRecord, snapshot VersionSnapshot) (DecisionRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DecisionRecord{}, fmt.Errorf("begin create record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tags, err := encodeTags(record.Tags)
	if err != nil {
		return DecisionRecord{}, err
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO decision_records (
			id, project_id, sequence_number, title, status, context, decision,
			consequences, alternatives, tags, team, author, version
		)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM decision_records WHERE project_id = $2),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING `+recordColumns,
		record.ID, record.ProjectID, record.Title, record.Status, record.Context,
		record.Decision, record.Consequences, record.Alternatives, tags,
		record.Team, record.Author, record.Version,
	)
	created, err := scanRecord(row)
	if err != nil {
		return DecisionRecord{}, err
	}

	if err := insertSnapshot(ctx, tx, snapshot); err != nil {
		return DecisionRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return DecisionRecord{}, fmt.Errorf("commit create record: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, recordID, projectID string) (DecisionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM decision_records
		WHERE id = $1 AND project_id = $2
	`, recordID, projectID)
	return scanRecord(row)
}

func (s *PostgresStore) ListRecords(ctx context.Context, projectID string) ([]DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM decision_records
		WHERE project_id = $1
		ORDER BY sequence_number ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	items := make([]DecisionRecord, 0)
	for rows.Next() {
		item, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CountRecords(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decision_records WHERE project_id=$1`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// UpdateRecordWithSnapshot persists new content/status together with the
// paired snapshot in one transaction. The UPDATE carries a compare-and-
// swap on the version the caller read; zero matched rows means a
// concurrent writer already bumped it and the call fails with
// ErrVersionConflict without writing anything.
func (s *PostgresStore) UpdateRecordWithSnapshot(ctx context.Context, record DecisionRecord, expectedVersion string, snapshot VersionSnapshot) (DecisionRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DecisionRecord{}, fmt.Errorf("begin update record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tags, err := encodeTags(record.Tags)
	if err != nil {
		return DecisionRecord{}, err
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE decision_records
		SET title=$3, status=$4, context=$5, decision=$6, consequences=$7,
			alternatives=$8, tags=$9, team=$10, version=$11, updated_at=NOW()
		WHERE id=$1 AND project_id=$2 AND version=$12
		RETURNING `+recordColumns,
		record.ID, record.ProjectID, record.Title, record.Status, record.Context,
		record.Decision, record.Consequences, record.Alternatives, tags,
		record.Team, record.Version, expectedVersion,
	)
	updated, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DecisionRecord{}, ErrVersionConflict
	}
	if err != nil {
		return DecisionRecord{}, fmt.Errorf("update record: %w", err)
	}

	if err := insertSnapshot(ctx, tx, snapshot); err != nil {
		return DecisionRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return DecisionRecord{}, fmt.Errorf("commit update record: %w", err)
	}
	return updated, nil
}

// SetRecordArchived flips the archive flag only. No snapshot is written
// and the version is not touched.
func (s *PostgresStore) SetRecordArchived(ctx context.Context, recordID, projectID, reason string) (DecisionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE decision_records
		SET archived=TRUE, archive_reason=$3, updated_at=NOW()
		WHERE id=$1 AND project_id=$2
		RETURNING `+recordColumns,
		recordID, projectID, reason,
	)
	return scanRecord(row)
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return encoded, nil
}

// ---- version snapshots ----

func insertSnapshot(ctx context.Context, tx *sql.Tx, snapshot VersionSnapshot) error {
	tags, err := encodeTags(snapshot.Tags)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO version_snapshots (
			id, record_id, version, title, status, context, decision,
			consequences, alternatives, tags, team, change_reason, changed_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, snapshot.ID, snapshot.RecordID, snapshot.Version, snapshot.Title,
		snapshot.Status, snapshot.Context, snapshot.Decision, snapshot.Consequences,
		snapshot.Alternatives, tags, snapshot.Team, snapshot.ChangeReason, snapshot.ChangedBy)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the append-only history oldest first.
func (s *PostgresStore) ListSnapshots(ctx context.Context, recordID string) ([]VersionSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, record_id, version, title, status, context, decision,
			consequences, alternatives, tags, team, change_reason, changed_by, created_at
		FROM version_snapshots
		WHERE record_id = $1
		ORDER BY created_at ASC, version ASC
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	items := make([]VersionSnapshot, 0)
	for rows.Next() {
		var item VersionSnapshot
		var tagsRaw []byte
		if err := rows.Scan(
			&item.ID, &item.RecordID, &item.Version, &item.Title, &item.Status,
			&item.Context, &item.Decision, &item.Consequences, &item.Alternatives,
			&tagsRaw, &item.Team, &item.ChangeReason, &item.ChangedBy, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if len(tagsRaw) > 0 {
			_ = json.Unmarshal(tagsRaw, &item.Tags)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return items, nil
}

// ---- audit ----

func (s *PostgresStore) InsertAuditEntry(ctx context.Context, entry AuditEntry) error {
	changes, err := encodeJSONMap(entry.Changes)
	if err != nil {
		return fmt.Errorf("encode audit changes: %w", err)
	}
	metadata, err := encodeJSONMap(entry.Metadata)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (project_id, entity_type, entity_id, action, performed_by, changes, metadata, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ProjectID, entry.EntityType, entry.EntityID, entry.Action,
		entry.PerformedBy, changes, metadata, entry.PerformedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAuditEntries(ctx context.Context, projectID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, entity_type, entity_id, action, performed_by,
			COALESCE(changes, 'null'::jsonb), COALESCE(metadata, 'null'::jsonb), performed_at
		FROM audit_entries
		WHERE project_id = $1
		ORDER BY performed_at DESC, id DESC
		LIMIT $2
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	items := make([]AuditEntry, 0)
	for rows.Next() {
		var item AuditEntry
		var changesRaw, metadataRaw []byte
		if err := rows.Scan(
			&item.ID, &item.ProjectID, &item.EntityType, &item.EntityID,
			&item.Action, &item.PerformedBy, &changesRaw, &metadataRaw, &item.PerformedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		_ = json.Unmarshal(changesRaw, &item.Changes)
		_ = json.Unmarshal(metadataRaw, &item.Metadata)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return items, nil
}

func encodeJSONMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// ---- notifications ----

func (s *PostgresStore) CreateNotifications(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notifications tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, n := range notifications {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, user_id, kind, title, body, href)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, n.ID, n.UserID, n.Kind, n.Title, n.Body, n.Href); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notifications: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, title, body, COALESCE(href, ''), is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var item Notification
		if err := rows.Scan(&item.ID, &item.UserID, &item.Kind, &item.Title, &item.Body, &item.Href, &item.IsRead, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, notificationID, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read=TRUE WHERE id=$1 AND user_id=$2
	`, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notification read rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND is_read=FALSE`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// ---- attachments ----

func (s *PostgresStore) InsertAttachment(ctx context.Context, attachment Attachment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (id, record_id, file_name, content_type, size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, attachment.ID, attachment.RecordID, attachment.FileName, attachment.ContentType, attachment.Size, attachment.UploadedBy)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAttachments(ctx context.Context, recordID string) ([]Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, record_id, file_name, content_type, size, uploaded_by, created_at
		FROM attachments
		WHERE record_id = $1
		ORDER BY created_at ASC
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	items := make([]Attachment, 0)
	for rows.Next() {
		var item Attachment
		if err := rows.Scan(&item.ID, &item.RecordID, &item.FileName, &item.ContentType, &item.Size, &item.UploadedBy, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return items, nil
}
