package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a string list as a JSON array in a VARCHAR2 column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(raw) == 0 || string(raw) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(s))
}

// Artifact is a row of analysis_artifacts.
type Artifact struct {
	ID           string         `db:"id"`
	DocumentID   sql.NullString `db:"document_id"`
	TaskType     string         `db:"task_type"`
	ResultText   string         `db:"result_text"`
	WordCount    int            `db:"word_count"`
	CharCount    int            `db:"char_count"`
	SegmentCount int            `db:"segment_count"`
	Warnings     StringSlice    `db:"warnings"`
	CreatedAt    time.Time      `db:"created_at"`
}
