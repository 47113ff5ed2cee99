package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Structured data IDs (RFC5424). 32473 is the documentation PEN from RFC5612.
const (
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
	SDIDProject = "project@32473"
)

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH
	FacilityAuthPriv = 10 // LOG_AUTHPRIV
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

const appName = "restoration-tracker"

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	appName  string
	pid      int
}

// NewLogger creates a new audit logger writing to stdout
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  appName,
		pid:      os.Getpid(),
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Log writes an audit event in RFC5424 syslog format:
// <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}
	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	line := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.writer.Write([]byte(line))
}

// formatStructuredData renders [sdid key="value" ...] blocks with sorted
// ids and keys so output is stable.
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for id := range sd {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var parts []string
	for _, id := range ids {
		params := sd[id]
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fields := []string{id}
		for _, k := range keys {
			fields = append(fields, fmt.Sprintf("%s=%s", k, escapeSDValue(params[k])))
		}
		parts = append(parts, "["+strings.Join(fields, " ")+"]")
	}
	return strings.Join(parts, "")
}

// escapeSDValue escapes backslash, double quote and closing bracket per RFC5424 6.3.3
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// DefaultLogger writes to stdout.
var DefaultLogger = NewLogger()

var (
	mu           sync.RWMutex
	defaultStore *Store
	enabled      = true
	enabledOnce  sync.Once
)

// IsEnabled reports whether audit logging is on. RESTORATION_AUDIT_ENABLED=false
// (or 0, no) turns it off.
func IsEnabled() bool {
	enabledOnce.Do(func() {
		if env := os.Getenv("RESTORATION_AUDIT_ENABLED"); env != "" {
			mu.Lock()
			enabled = env != "false" && env != "0" && env != "no"
			mu.Unlock()
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled overrides the environment toggle.
func SetEnabled(on bool) {
	enabledOnce.Do(func() {})
	mu.Lock()
	enabled = on
	mu.Unlock()
}

// SetStore installs the store events are persisted to. A nil store only logs.
func SetStore(s *Store) {
	mu.Lock()
	defaultStore = s
	mu.Unlock()
}

// Log writes an event to the default logger and persists it when a store is set.
func Log(event Event) {
	if !IsEnabled() {
		return
	}
	DefaultLogger.Log(event)

	mu.RLock()
	s := defaultStore
	mu.RUnlock()
	if s == nil {
		return
	}
	if err := s.Save(event); err != nil {
		zap.L().Warn("audit: failed to save event",
			zap.String("event", event.MessageID()),
			zap.Error(err),
		)
	}
}
