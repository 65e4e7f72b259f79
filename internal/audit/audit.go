package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/PolarWolf314/jupwallet/internal/utils"
)

// Operation names recorded in the trail.
const (
	OpInit              = "init"
	OpUnlock            = "unlock"
	OpSessionStart      = "session.start"
	OpSessionRegenerate = "session.regenerate"
	OpSessionClear      = "session.clear"
	OpWalletCreate      = "wallet.create"
	OpWalletImport      = "wallet.import"
	OpWalletExport      = "wallet.export"
	OpWalletRename      = "wallet.rename"
	OpWalletDeactivate  = "wallet.deactivate"
	OpWalletRestore     = "wallet.restore"
	OpWalletDelete      = "wallet.delete"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry is one line of the audit trail. Secrets never appear in entries.
type Entry struct {
	Timestamp string `json:"ts"`
	User      string `json:"user,omitempty"`
	Host      string `json:"host,omitempty"`
	Operation string `json:"op"`
	Failed    bool   `json:"failed,omitempty"`
	Error     string `json:"error,omitempty"`

	WalletID   string `json:"wallet_id,omitempty"`
	WalletName string `json:"wallet_name,omitempty"`
	Address    string `json:"address,omitempty"`
	// Source records how the session key was obtained: "password" or "session".
	Source string `json:"source,omitempty"`
}

// Log appends entries to a JSON-lines file.
type Log struct {
	path string
	user string
	host string
	mu   sync.Mutex
}

// New returns a Log writing to path. A nil *Log discards everything.
func New(path string) *Log {
	user, _ := utils.GetUsername()
	host, _ := utils.GetHostname()
	return &Log{path: path, user: user, host: host}
}

// Path returns the audit file location.
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record appends entry, filling in the timestamp and identity. It never
// fails the calling operation: write errors are dropped.
func (l *Log) Record(entry Entry) {
	if l == nil || l.path == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampFormat)
	}
	if entry.User == "" {
		entry.User = l.user
	}
	if entry.Host == "" {
		entry.Host = l.host
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// Outcome records op with err's message when err is non-nil.
func (l *Log) Outcome(entry Entry, err error) {
	if err != nil {
		entry.Failed = true
		entry.Error = err.Error()
	}
	l.Record(entry)
}

// ReadEntries reads every entry. A missing file yields no entries.
func (l *Log) ReadEntries() ([]Entry, error) {
	if l == nil || l.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data. Malformed lines, such as a torn
// final write, are skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i < len(data) && data[i] != '\n' {
			continue
		}
		line := data[start:i]
		start = i + 1

		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
