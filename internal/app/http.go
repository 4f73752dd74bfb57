package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cairn/api/internal/auth"
	"cairn/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{"status": "error", "error": err.Error()}
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Auth routes, no session required
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signup" {
		s.handleSignUp(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signin" {
		s.handleSignIn(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"userId":        session.UserID,
			"userName":      session.UserName,
			"globalRole":    session.GlobalRole,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(session))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit, ok := queryInt(w, r, "limit", 20)
		if !ok {
			return
		}
		offset, ok := queryInt(w, r, "offset", 0)
		if !ok {
			return
		}
		payload, err := s.service.Search(r.Context(), session, q, limit, offset)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.URL.Path == "/api/projects" {
		switch r.Method {
		case http.MethodGet:
			projects, err := s.service.ListProjects(r.Context(), session)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list projects", nil)
				return
			}
			items := make([]map[string]any, 0, len(projects))
			for _, project := range projects {
				items = append(items, projectPayload(project))
			}
			writeJSON(w, http.StatusOK, map[string]any{"projects": items})
			return
		case http.MethodPost:
			var body struct {
				Name        string `json:"name"`
				Key         string `json:"key"`
				Description string `json:"description"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			project, err := s.service.CreateProject(r.Context(), session, body.Name, body.Key, body.Description)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, projectPayload(project))
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if r.URL.Path == "/api/notifications" && r.Method == http.MethodGet {
		limit, ok := queryInt(w, r, "limit", 50)
		if !ok {
			return
		}
		notifications, err := s.service.ListNotifications(r.Context(), session, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list notifications", nil)
			return
		}
		items := make([]map[string]any, 0, len(notifications))
		for _, notification := range notifications {
			items = append(items, notificationPayload(notification))
		}
		writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
		return
	}

	if r.URL.Path == "/api/notifications/read-all" && r.Method == http.MethodPost {
		if err := s.service.MarkAllNotificationsRead(r.Context(), session); err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not mark notifications read", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	parts := splitPath(r.URL.Path)

	if len(parts) == 4 && parts[0] == "api" && parts[1] == "notifications" && parts[3] == "read" && r.Method == http.MethodPost {
		if err := s.service.MarkNotificationRead(r.Context(), session, parts[2]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "projects" {
		s.handleProjects(w, r, session, parts[2], parts)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleProjects(w http.ResponseWriter, r *http.Request, session Session, projectID string, parts []string) {
	if len(parts) == 3 && r.Method == http.MethodGet {
		project, err := s.service.GetProject(r.Context(), session, projectID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, projectPayload(project))
		return
	}

	if len(parts) == 4 && parts[3] == "members" {
		switch r.Method {
		case http.MethodGet:
			members, err := s.service.ListMembers(r.Context(), session, projectID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			items := make([]map[string]any, 0, len(members))
			for _, member := range members {
				items = append(items, membershipPayload(member))
			}
			writeJSON(w, http.StatusOK, map[string]any{"members": items})
			return
		case http.MethodPost:
			var body struct {
				UserID string `json:"userId"`
				Role   string `json:"role"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			membership, err := s.service.AddMember(r.Context(), session, projectID, body.UserID, body.Role)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, membershipPayload(membership))
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if len(parts) == 4 && parts[3] == "audit" && r.Method == http.MethodGet {
		limit, ok := queryInt(w, r, "limit", 50)
		if !ok {
			return
		}
		entries, err := s.service.ListAuditEntries(r.Context(), session, projectID, limit)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		items := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			items = append(items, auditPayload(entry))
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": items})
		return
	}

	if len(parts) == 4 && parts[3] == "records" {
		switch r.Method {
		case http.MethodGet:
			records, err := s.service.ListRecords(r.Context(), session, projectID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			items := make([]map[string]any, 0, len(records))
			for _, record := range records {
				items = append(items, recordPayload(record))
			}
			writeJSON(w, http.StatusOK, map[string]any{"records": items})
			return
		case http.MethodPost:
			var body struct {
				Title        string   `json:"title"`
				Status       string   `json:"status"`
				Context      string   `json:"context"`
				Decision     string   `json:"decision"`
				Consequences string   `json:"consequences"`
				Alternatives string   `json:"alternatives"`
				Tags         []string `json:"tags"`
				Team         string   `json:"team"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			record, err := s.service.CreateRecord(r.Context(), session, projectID, CreateRecordInput{
				Title:        body.Title,
				Status:       body.Status,
				Context:      body.Context,
				Decision:     body.Decision,
				Consequences: body.Consequences,
				Alternatives: body.Alternatives,
				Tags:         body.Tags,
				Team:         body.Team,
			})
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, recordPayload(record))
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if len(parts) >= 5 && parts[3] == "records" {
		s.handleRecord(w, r, session, projectID, parts[4], parts)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleRecord(w http.ResponseWriter, r *http.Request, session Session, projectID, recordID string, parts []string) {
	if len(parts) == 5 {
		switch r.Method {
		case http.MethodGet:
			record, err := s.service.GetRecord(r.Context(), session, projectID, recordID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, recordPayload(record))
			return
		case http.MethodPatch:
			var body struct {
				Title        *string   `json:"title"`
				Context      *string   `json:"context"`
				Decision     *string   `json:"decision"`
				Consequences *string   `json:"consequences"`
				Alternatives *string   `json:"alternatives"`
				Tags         *[]string `json:"tags"`
				Team         *string   `json:"team"`
				ChangeReason string    `json:"changeReason"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			record, err := s.service.UpdateRecordContent(r.Context(), session, projectID, recordID, UpdateRecordInput{
				Title:        body.Title,
				Context:      body.Context,
				Decision:     body.Decision,
				Consequences: body.Consequences,
				Alternatives: body.Alternatives,
				Tags:         body.Tags,
				Team:         body.Team,
				ChangeReason: body.ChangeReason,
			})
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, recordPayload(record))
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if len(parts) == 6 && parts[5] == "status" && r.Method == http.MethodPost {
		var body struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		record, err := s.service.ChangeRecordStatus(r.Context(), session, projectID, recordID, body.Status, body.Reason)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, recordPayload(record))
		return
	}

	if len(parts) == 6 && parts[5] == "archive" && r.Method == http.MethodPost {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		record, err := s.service.ArchiveRecord(r.Context(), session, projectID, recordID, body.Reason)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, recordPayload(record))
		return
	}

	if len(parts) == 6 && parts[5] == "versions" && r.Method == http.MethodGet {
		snapshots, err := s.service.ListVersions(r.Context(), session, projectID, recordID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		items := make([]map[string]any, 0, len(snapshots))
		for _, snapshot := range snapshots {
			items = append(items, snapshotPayload(snapshot))
		}
		writeJSON(w, http.StatusOK, map[string]any{"versions": items})
		return
	}

	if len(parts) == 6 && parts[5] == "attachments" {
		switch r.Method {
		case http.MethodGet:
			attachments, err := s.service.ListAttachments(r.Context(), session, projectID, recordID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			items := make([]map[string]any, 0, len(attachments))
			for _, attachment := range attachments {
				items = append(items, attachmentPayload(attachment.Attachment, attachment.URL))
			}
			writeJSON(w, http.StatusOK, map[string]any{"attachments": items})
			return
		case http.MethodPost:
			fileName := strings.TrimSpace(r.URL.Query().Get("fileName"))
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			attachment, err := s.service.UploadAttachment(r.Context(), session, projectID, recordID, fileName, contentType, r.ContentLength, r.Body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, attachmentPayload(attachment, ""))
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.SignUp(r.Context(), body.Email, body.Password, body.DisplayName)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(session))
}

func (s *HTTPServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(session))
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	return session, true
}

// ---- payload shaping ----

func sessionPayload(session Session) map[string]any {
	return map[string]any{
		"accessToken":  session.Token,
		"refreshToken": session.RefreshToken,
		"userId":       session.UserID,
		"userName":     session.UserName,
		"globalRole":   session.GlobalRole,
		"expiresAt":    session.ExpiresAt.Unix(),
	}
}

func projectPayload(project store.Project) map[string]any {
	return map[string]any{
		"id":          project.ID,
		"name":        project.Name,
		"key":         project.Key,
		"description": project.Description,
		"createdBy":   project.CreatedBy,
		"createdAt":   project.CreatedAt,
	}
}

func recordPayload(record store.DecisionRecord) map[string]any {
	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":             record.ID,
		"projectId":      record.ProjectID,
		"sequenceNumber": record.SequenceNumber,
		"title":          record.Title,
		"status":         record.Status,
		"context":        record.Context,
		"decision":       record.Decision,
		"consequences":   record.Consequences,
		"alternatives":   record.Alternatives,
		"tags":           tags,
		"team":           record.Team,
		"author":         record.Author,
		"version":        record.Version,
		"archived":       record.Archived,
		"archiveReason":  record.ArchiveReason,
		"createdAt":      record.CreatedAt,
		"updatedAt":      record.UpdatedAt,
	}
}

func membershipPayload(membership store.ProjectMembership) map[string]any {
	return map[string]any{
		"id":        membership.ID,
		"projectId": membership.ProjectID,
		"userId":    membership.UserID,
		"role":      membership.Role,
		"userName":  membership.UserName,
		"userEmail": membership.UserEmail,
		"createdAt": membership.CreatedAt,
	}
}

func notificationPayload(notification store.Notification) map[string]any {
	return map[string]any{
		"id":        notification.ID,
		"kind":      notification.Kind,
		"title":     notification.Title,
		"body":      notification.Body,
		"href":      notification.Href,
		"isRead":    notification.IsRead,
		"createdAt": notification.CreatedAt,
	}
}

func snapshotPayload(snapshot store.VersionSnapshot) map[string]any {
	tags := snapshot.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":           snapshot.ID,
		"recordId":     snapshot.RecordID,
		"version":      snapshot.Version,
		"title":        snapshot.Title,
		"status":       snapshot.Status,
		"context":      snapshot.Context,
		"decision":     snapshot.Decision,
		"consequences": snapshot.Consequences,
		"alternatives": snapshot.Alternatives,
		"tags":         tags,
		"team":         snapshot.Team,
		"changeReason": snapshot.ChangeReason,
		"changedBy":    snapshot.ChangedBy,
		"createdAt":    snapshot.CreatedAt,
	}
}

func auditPayload(entry store.AuditEntry) map[string]any {
	return map[string]any{
		"id":          entry.ID,
		"entityType":  entry.EntityType,
		"entityId":    entry.EntityID,
		"action":      entry.Action,
		"performedBy": entry.PerformedBy,
		"changes":     entry.Changes,
		"metadata":    entry.Metadata,
		"performedAt": entry.PerformedAt,
	}
}

func attachmentPayload(attachment store.Attachment, url string) map[string]any {
	payload := map[string]any{
		"id":          attachment.ID,
		"recordId":    attachment.RecordID,
		"fileName":    attachment.FileName,
		"contentType": attachment.ContentType,
		"size":        attachment.Size,
		"uploadedBy":  attachment.UploadedBy,
		"createdAt":   attachment.CreatedAt,
	}
	if url != "" {
		payload["url"] = url
	}
	return payload
}

// ---- middleware and helpers ----

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", name+" must be an integer", nil)
		return 0, false
	}
	return parsed, true
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
