package audit

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(AccessApproveEvent{
		Actor:          Actor{SystemUserID: 1, Username: "admin@idir", ClientIP: "192.168.1.1"},
		Outcome:        Outcome{Success: true},
		ActivityID:     42,
		UserIdentifier: "jdoe",
		RoleIDs:        []int{2, 3},
	})

	output := buf.String()

	if !strings.HasPrefix(output, "<86>1 ") {
		t.Errorf("Expected PRI 86 (authpriv.info), got %q", output)
	}
	for _, want := range []string{"restoration-tracker", "access-approve", "admin@idir", "192.168.1.1", `roles="2,3"`, "approved access request 42"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output %q", want, output)
		}
	}
}

func TestFormatStructuredDataIsSorted(t *testing.T) {
	got := formatStructuredData(map[string]map[string]string{
		"b@1": {"z": "1", "a": "2"},
		"a@1": {"k": `x"y]`},
	})
	want := `[a@1 k="x\"y\]"][b@1 a="2" z="1"]`
	if got != want {
		t.Errorf("formatStructuredData() = %q, want %q", got, want)
	}
}

func TestEvents(t *testing.T) {
	actor := Actor{SystemUserID: 7, Username: "jdoe@idir", ClientIP: "10.0.0.1"}
	failed := Outcome{Success: false, ErrorMessage: "boom"}
	ok := Outcome{Success: true}

	tests := []struct {
		name      string
		event     Event
		wantMsg   string
		wantSev   Severity
		wantMsgID string
	}{
		{
			name:      "access request",
			event:     AccessRequestEvent{Actor: actor, Outcome: ok, ActivityID: 3},
			wantMsg:   "requested system access (activity 3)",
			wantSev:   SeverityInfo,
			wantMsgID: "access-request",
		},
		{
			name:      "failed access request",
			event:     AccessRequestEvent{Actor: actor, Outcome: failed},
			wantMsg:   "failed to request system access: boom",
			wantSev:   SeverityWarning,
			wantMsgID: "access-request",
		},
		{
			name:      "access status",
			event:     AccessStatusEvent{Actor: actor, Outcome: ok, ActivityID: 3, Status: "Rejected"},
			wantMsg:   "set access request 3 to Rejected",
			wantSev:   SeverityInfo,
			wantMsgID: "access-status",
		},
		{
			name:      "user remove",
			event:     UserRemoveEvent{Actor: actor, Outcome: ok, UserID: 9},
			wantMsg:   "removed system user 9",
			wantSev:   SeverityNotice,
			wantMsgID: "user-remove",
		},
		{
			name:      "role grant",
			event:     RoleChangeEvent{Actor: actor, Outcome: ok, UserID: 9, RoleIDs: []int{1}, Operation: "grant"},
			wantMsg:   "granted roles [1] for system user 9",
			wantSev:   SeverityInfo,
			wantMsgID: "role-change",
		},
		{
			name:      "project delete",
			event:     ProjectEvent{Actor: actor, Outcome: ok, ProjectID: 5, Operation: "delete"},
			wantMsg:   "performed delete on project 5",
			wantSev:   SeverityInfo,
			wantMsgID: "project-delete",
		},
		{
			name:      "participant remove failed",
			event:     ParticipantEvent{Actor: actor, Outcome: failed, ProjectID: 5, Operation: "remove"},
			wantMsg:   "tried participant remove on project 5: boom",
			wantSev:   SeverityWarning,
			wantMsgID: "participant-change",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
			if tt.event.StructuredData()[SDIDAuth]["user"] != "jdoe@idir" {
				t.Errorf("StructuredData() missing user: %v", tt.event.StructuredData())
			}
		})
	}
}

func TestUnknownActor(t *testing.T) {
	e := AccessRequestEvent{Outcome: Outcome{Success: true}, ActivityID: 1}
	if !strings.HasPrefix(e.Message(), "unknown ") {
		t.Errorf("Message() = %q, want unknown actor", e.Message())
	}
}

func TestLogDisabled(t *testing.T) {
	var buf bytes.Buffer
	DefaultLogger.SetWriter(&buf)
	SetEnabled(false)
	defer SetEnabled(true)

	Log(ProjectEvent{Outcome: Outcome{Success: true}, ProjectID: 1, Operation: "create"})

	if buf.Len() != 0 {
		t.Errorf("Expected no output when disabled, got %q", buf.String())
	}
}
