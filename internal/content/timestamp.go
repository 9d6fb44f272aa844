// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"encoding/json"
	"time"
)

// Timestamp is a parsed date_time value. An element whose value could not be
// parsed keeps the original string in Raw with Valid false, and serializes as
// null.
type Timestamp struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// ParseTimestamp parses an RFC 3339 timestamp.
func ParseTimestamp(s string) Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Timestamp{Raw: s}
	}
	return Timestamp{Time: t, Valid: true, Raw: s}
}

func (t Timestamp) String() string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339Nano)
}

// MarshalJSON writes the timestamp in RFC 3339 format, or null when invalid.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}
