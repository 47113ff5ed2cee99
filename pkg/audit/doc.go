// Package audit records security-relevant operations.
//
// Events are written to stdout in RFC5424 syslog format and, when a Store
// has been installed with SetStore, persisted to the audit_log table.
//
//	audit.Log(audit.AccessApproveEvent{
//	    Actor:      audit.Actor{SystemUserID: 1, Username: "admin@idir", ClientIP: ip},
//	    Outcome:    audit.Outcome{Success: true},
//	    ActivityID: 42,
//	})
//
// Set RESTORATION_AUDIT_ENABLED=false to disable auditing.
package audit
