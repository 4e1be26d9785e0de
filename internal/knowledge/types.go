package knowledge

import (
	"fmt"
	"strings"
	"time"
)

// FileStatus is the ingestion lifecycle state of an uploaded file.
// The backend moves files pending → processing → completed/error; the
// client only ever observes these values, it never advances them.
type FileStatus string

// Ingestion lifecycle states as the backend reports them.
const (
	StatusPending    FileStatus = "pending"
	StatusProcessing FileStatus = "processing"
	StatusCompleted  FileStatus = "completed"
	StatusError      FileStatus = "error"
)

// Known reports whether s is one of the four lifecycle states.
// Unknown statuses are rendered verbatim rather than rejected, so a
// backend that grows a new state does not break older clients.
func (s FileStatus) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Base is a named knowledge base. IDs are server-assigned.
type Base struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"` // nil when absent; never coerced to ""
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
	FileCount   int       `json:"file_count"`
}

// File is a document uploaded to a knowledge base. A file belongs to
// exactly one base; its ID is unique within that base.
type File struct {
	ID               int64      `json:"id"`
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"original_filename"`
	FileType         string     `json:"file_type"`
	FileSize         int64      `json:"file_size"`
	Status           FileStatus `json:"status"`
	CreatedAt        Timestamp  `json:"created_at"`
}

// Timestamp is a time.Time that tolerates the backend's serialization.
// FastAPI emits naive ISO 8601 ("2006-01-02T15:04:05.999999") without a
// zone offset, which time.Time's RFC 3339 parser rejects.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order when decoding.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // naive ISO 8601, fractional seconds
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("knowledge: unsupported timestamp %q", s)
}

// MarshalJSON implements json.Marshaler using RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}
