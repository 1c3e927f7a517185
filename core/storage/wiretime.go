package storage

import (
	"fmt"
	"net/http"
	"time"
)

// WireTimeLayout is the layout of the last-modified timestamp carried in ObjectInfo.
// It is RFC 1123 with a zone abbreviation, always UTC ("GMT") on the wire.
const WireTimeLayout = "Mon, 02 Jan 2006 15:04:05 MST"

// FormatWireTime renders t as a last-modified wire timestamp.
// Sub-second precision is dropped.
func FormatWireTime(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// ParseWireTime parses a last-modified wire timestamp into a UTC time.
// Zones other than GMT and UTC are rejected.
func ParseWireTime(s string) (time.Time, error) {
	t, err := time.Parse(WireTimeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	// Parse maps unknown abbreviations to a zero offset; only UTC zones are valid.
	if zone, offset := t.Zone(); offset != 0 || (zone != "GMT" && zone != "UTC") {
		return time.Time{}, fmt.Errorf("timestamp %q is not in GMT", s)
	}
	return t.UTC(), nil
}
