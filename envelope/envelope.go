package envelope

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidText is returned when a string field is not valid UTF-8. Such
// fields cannot be carried as CBOR text and would not decode downstream.
var ErrInvalidText = errors.New("field is not valid UTF-8")

// Envelope is the decoded edge request header.
//
// Absent fields are represented by their zero value: an empty string, or a
// nil VisitorCreatedMS. Decoding never fills in a default for a field the
// header did not carry.
type Envelope struct {
	// Token is the raw authentication token issued to the client.
	Token string

	// VisitorID is the loid: a client generated, cookie backed identifier
	// in fullname format ("t2_...").
	VisitorID string

	// VisitorCreatedMS is when the loid cookie was created, in epoch
	// milliseconds.
	VisitorCreatedMS *int64

	// SessionID is the session cookie id.
	SessionID string
}

// Empty returns the all-absent envelope.
func Empty() Envelope {
	return Envelope{}
}

// IsEmpty reports whether no field is present.
func (e Envelope) IsEmpty() bool {
	return e.Token == "" && e.VisitorID == "" && e.VisitorCreatedMS == nil && e.SessionID == ""
}

// CheckText returns an error wrapping ErrInvalidText naming the first string
// field of e that is not valid UTF-8.
func (e Envelope) CheckText() error {
	for _, field := range []struct{ name, value string }{
		{"token", e.Token},
		{"visitor id", e.VisitorID},
		{"session id", e.SessionID},
	} {
		if !utf8.ValidString(field.value) {
			return fmt.Errorf("%s: %w", field.name, ErrInvalidText)
		}
	}
	return nil
}

// Codec turns envelopes into header bytes and back.
type Codec interface {
	Encode(e Envelope) ([]byte, error)
	Decode(data []byte) (Envelope, error)
}
