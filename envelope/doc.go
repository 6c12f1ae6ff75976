// Package envelope defines the edge request envelope and its binary codec.
//
// The envelope is what an edge service forwards to every internal service it
// calls: the raw authentication token, the visitor id (loid) with its
// creation time, and the session id. The default codec encodes it as a CBOR
// map using Core Deterministic Encoding, with the loid and session carried as
// nested records:
//
//	{1: {1: loid id, 2: loid created ms}, 2: {1: session id}, 3: token}
//
// Round trips are lossless and absent fields stay absent:
//
//	data, err := envelope.CBOR{}.Encode(e)
//	decoded, err := envelope.CBOR{}.Decode(data) // decoded == e
//
// HTTP transports carry the bytes base64 encoded; see EncodeHeader and
// DecodeHeader.
package envelope
