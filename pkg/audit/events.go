package audit

import (
	"fmt"
	"strconv"
	"strings"
)

// Actor identifies who performed an audited operation.
type Actor struct {
	SystemUserID int
	Username     string
	ClientIP     string
}

// ActorID returns the acting system user id, zero when unregistered.
func (a Actor) ActorID() int {
	return a.SystemUserID
}

func (a Actor) name() string {
	if a.Username == "" {
		return "unknown"
	}
	return a.Username
}

// Outcome records whether an operation succeeded.
type Outcome struct {
	Success      bool
	ErrorMessage string
}

func (o Outcome) severity() Severity {
	if o.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (o Outcome) result() string {
	if o.Success {
		return "success"
	}
	return "failure"
}

func (o Outcome) suffix() string {
	if o.ErrorMessage == "" {
		return ""
	}
	return ": " + o.ErrorMessage
}

func baseData(a Actor, o Outcome, operation string) map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": a.name(),
		},
		SDIDClient: {
			"ip": a.ClientIP,
		},
		SDIDAction: {
			"operation": operation,
			"result":    o.result(),
		},
	}
}

func joinIDs(ids []int) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(id)
	}
	return strings.Join(s, ",")
}

// AccessRequestEvent is recorded when a user asks for system access.
type AccessRequestEvent struct {
	Actor
	Outcome
	ActivityID int
}

func (e AccessRequestEvent) MessageID() string { return "access-request" }
func (e AccessRequestEvent) Facility() int     { return FacilityAuth }
func (e AccessRequestEvent) Severity() Severity {
	return e.Outcome.severity()
}

func (e AccessRequestEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s requested system access (activity %d)", e.name(), e.ActivityID)
	}
	return fmt.Sprintf("%s failed to request system access%s", e.name(), e.suffix())
}

func (e AccessRequestEvent) StructuredData() map[string]map[string]string {
	sd := baseData(e.Actor, e.Outcome, "request")
	if e.ActivityID != 0 {
		sd[SDIDSubject] = map[string]string{"activity": strconv.Itoa(e.ActivityID)}
	}
	return sd
}

// AccessApproveEvent is recorded when an administrator approves an access request.
type AccessApproveEvent struct {
	Actor
	Outcome
	ActivityID     int
	UserIdentifier string
	RoleIDs        []int
}

func (e AccessApproveEvent) MessageID() string { return "access-approve" }
func (e AccessApproveEvent) Facility() int     { return FacilityAuthPriv }
func (e AccessApproveEvent) Severity() Severity {
	return e.Outcome.severity()
}

func (e AccessApproveEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s approved access request %d for %s", e.name(), e.ActivityID, e.UserIdentifier)
	}
	return fmt.Sprintf("%s tried to approve access request %d%s", e.name(), e.ActivityID, e.suffix())
}

func (e AccessApproveEvent) StructuredData() map[string]map[string]string {
	sd := baseData(e.Actor, e.Outcome, "approve")
	sd[SDIDSubject] = map[string]string{
		"activity": strconv.Itoa(e.ActivityID),
		"user":     e.UserIdentifier,
		"roles":    joinIDs(e.RoleIDs),
	}
	return sd
}

// AccessStatusEvent is recorded when an activity's status is set directly.
type AccessStatusEvent struct {
	Actor
	Outcome
	ActivityID int
	Status     string
}

func (e AccessStatusEvent) MessageID() string { return "access-status" }
func (e AccessStatusEvent) Facility() int     { return FacilityAuthPriv }
func (e AccessStatusEvent) Severity() Severity {
	return e.Outcome.severity()
}

func (e AccessStatusEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s set access request %d to %s", e.name(), e.ActivityID, e.Status)
	}
	return fmt.Sprintf("%s tried to set access request %d to %s%s", e.name(), e.ActivityID, e.Status, e.suffix())
}

func (e AccessStatusEvent) StructuredData() map[string]map[string]string {
	sd := baseData(e.Actor, e.Outcome, "status")
	sd[SDIDSubject] = map[string]string{
		"activity": strconv.Itoa(e.ActivityID),
		"status":   e.Status,
	}
	return sd
}

// UserRemoveEvent is recorded when a system user is deactivated.
type UserRemoveEvent struct {
	Actor
	Outcome
	UserID int
}

func (e UserRemoveEvent) MessageID() string { return "user-remove" }
func (e UserRemoveEvent) Facility() int     { return FacilityAuthPriv }
func (e UserRemoveEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e UserRemoveEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s removed system user %d", e.name(), e.UserID)
	}
	return fmt.Sprintf("%s tried to remove system user %d%s", e.name(), e.UserID, e.suffix())
}

func (e UserRemoveEvent) StructuredData() map[string]map[string]string {
	sd := baseData(e.Actor, e.Outcome, "remove")
	sd[SDIDSubject] = map[string]string{"system_user": strconv.Itoa(e.UserID)}
	return sd
}

// RoleChangeEvent is recorded when system roles are granted or revoked.
type RoleChangeEvent struct {
	Actor
	Outcome
	UserID    int
	RoleIDs   []int
	Operation string // "grant" or "revoke"
}

func (e RoleChangeEvent) MessageID() string { return "role-change" }
func (e RoleChangeEvent) Facility() int     { return FacilityAuthPriv }
func (e RoleChangeEvent) Severity() Severity {
	return e.Outcome.severity()
}

func (e RoleChangeEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s %sed roles [%s] for system user %d", e.name(), e.Operation, joinIDs(e.RoleIDs), e.UserID)
	}
	return fmt.Sprintf("%s tried to %s roles for system user %d%s", e.name(), e.Operation, e.UserID, e.suffix())
}

func (e RoleChangeEvent) StructuredData() map[string]map[string]string {
	sd := baseData(e.Actor, e.Outcome, e.Operation)
	sd[SDIDSubject] = map[string]string{
		"system_user": strconv.Itoa(e.UserID),
		"roles":       joinIDs(e.RoleIDs),
	}
	return sd
}

// ProjectEvent is recorded on project creation, deletion and publication.
type ProjectEvent struct {
	Actor
	Outcome
	ProjectID int
	Operation string // "create", "delete", "publish", "unpublish"
}

func (e ProjectEvent) MessageID() string { return "project-" + e.Operation }
func (e ProjectEvent) Facility() int     { return FacilityAuth }
func (e ProjectEvent) Severity() Severity {
	return e.Outcome.severity()
}

func (e ProjectEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s performed %s on project %d", e.name(), e.Operation, e.ProjectID)
	}
	return fmt.Sprintf("%s tried to %s project %d%s", e.name(), e.Operation, e.ProjectID, e.suffix())
}

func (e ProjectEvent) StructuredData() map[string]map[string]string {
	sd := baseData(e.Actor, e.Outcome, e.Operation)
	sd[SDIDProject] = map[string]string{"id": strconv.Itoa(e.ProjectID)}
	return sd
}

// ParticipantEvent is recorded when project membership changes.
type ParticipantEvent struct {
	Actor
	Outcome
	ProjectID       int
	ParticipationID int
	RoleID          int
	Operation       string // "add", "update", "remove"
}

func (e ParticipantEvent) MessageID() string { return "participant-change" }
func (e ParticipantEvent) Facility() int     { return FacilityAuthPriv }
func (e ParticipantEvent) Severity() Severity {
	return e.Outcome.severity()
}

func (e ParticipantEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s performed participant %s on project %d", e.name(), e.Operation, e.ProjectID)
	}
	return fmt.Sprintf("%s tried participant %s on project %d%s", e.name(), e.Operation, e.ProjectID, e.suffix())
}

func (e ParticipantEvent) StructuredData() map[string]map[string]string {
	sd := baseData(e.Actor, e.Outcome, e.Operation)
	sd[SDIDProject] = map[string]string{"id": strconv.Itoa(e.ProjectID)}
	subject := map[string]string{}
	if e.ParticipationID != 0 {
		subject["participation"] = strconv.Itoa(e.ParticipationID)
	}
	if e.RoleID != 0 {
		subject["role"] = strconv.Itoa(e.RoleID)
	}
	if len(subject) > 0 {
		sd[SDIDSubject] = subject
	}
	return sd
}
