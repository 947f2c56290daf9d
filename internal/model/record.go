package model

import "time"

// TimestampLayout is ISO-8601 with second precision, as stored on every record.
const TimestampLayout = "2006-01-02T15:04:05"

// DetailRecord is one classified label. It is immutable once appended.
// JSON keys match the detail ledger files already in the field.
type DetailRecord struct {
	Zone      string `json:"Cordon"`
	Locality  string `json:"Ciudad"`
	Address   string `json:"Subregión"`
	Source    string `json:"Src"`
	Timestamp string `json:"ts"`
	Manual    bool   `json:"Manual"`
}

// Time parses the record timestamp.
func (r DetailRecord) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
}

// FormatTimestamp renders t the way records store it.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
