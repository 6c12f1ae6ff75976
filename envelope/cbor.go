package envelope

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic Encoding
// (RFC 8949 §4.2). The same envelope always produces identical bytes.
var encMode cbor.EncMode

// decMode rejects duplicate map keys and bounds nesting; unknown fields are
// ignored so newer edge services can add fields.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("envelope: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 8,
		MaxMapPairs:     64,
		IndefLength:     cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic("envelope: CBOR decoder initialization failed: " + err.Error())
	}
}

// The wire record keeps the field numbering of the original edge request
// schema: loid and session are nested records.
type wireRequest struct {
	Loid                *wireLoid    `cbor:"1,keyasint,omitempty"`
	Session             *wireSession `cbor:"2,keyasint,omitempty"`
	AuthenticationToken string       `cbor:"3,keyasint,omitempty"`
}

type wireLoid struct {
	ID        string `cbor:"1,keyasint,omitempty"`
	CreatedMS *int64 `cbor:"2,keyasint,omitempty"`
}

type wireSession struct {
	ID string `cbor:"1,keyasint,omitempty"`
}

// CBOR is the default Codec: a deterministic CBOR map with integer keys.
type CBOR struct{}

var _ Codec = CBOR{}

// Encode serializes e. Strings that are not valid UTF-8 are rejected, since
// the decoder refuses them.
func (CBOR) Encode(e Envelope) ([]byte, error) {
	if err := e.CheckText(); err != nil {
		return nil, fmt.Errorf("could not encode edge request: %w", err)
	}

	request := wireRequest{AuthenticationToken: e.Token}
	if e.VisitorID != "" || e.VisitorCreatedMS != nil {
		request.Loid = &wireLoid{ID: e.VisitorID, CreatedMS: copyInt64(e.VisitorCreatedMS)}
	}
	if e.SessionID != "" {
		request.Session = &wireSession{ID: e.SessionID}
	}

	data, err := encMode.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("could not encode edge request: %w", err)
	}
	return data, nil
}

// Decode parses header bytes. Empty input is the empty envelope.
func (CBOR) Decode(data []byte) (Envelope, error) {
	if len(data) == 0 {
		return Empty(), nil
	}

	var request wireRequest
	if err := decMode.Unmarshal(data, &request); err != nil {
		return Empty(), fmt.Errorf("could not decode edge request: %w", err)
	}

	e := Envelope{Token: request.AuthenticationToken}
	if request.Loid != nil {
		e.VisitorID = request.Loid.ID
		e.VisitorCreatedMS = request.Loid.CreatedMS
	}
	if request.Session != nil {
		e.SessionID = request.Session.ID
	}
	return e, nil
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
