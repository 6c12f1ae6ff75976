package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/metadata"
)

// MetadataKey is the binary metadata entry carrying the edge request header.
// gRPC base64-encodes "-bin" values on the wire, so the raw header bytes are
// sent as they are.
const MetadataKey = "edge-request-bin"

// HeaderExtractor returns the raw edge header of an incoming call, or nil
// when the call carries none.
type HeaderExtractor func(ctx context.Context) ([]byte, error)

// ErrMultipleHeaders indicates the call carried more than one edge header.
var ErrMultipleHeaders = errors.New("multiple edge request metadata entries are not allowed")

// MetadataHeaderExtractor reads the MetadataKey entry.
func MetadataHeaderExtractor(ctx context.Context) ([]byte, error) {
	return MetadataKeyExtractor(MetadataKey)(ctx)
}

// MetadataKeyExtractor reads a differently named binary metadata entry.
// gRPC normalizes incoming metadata keys to lowercase, so key is matched
// case-insensitively.
func MetadataKeyExtractor(key string) HeaderExtractor {
	return func(ctx context.Context) ([]byte, error) {
		values := metadata.ValueFromIncomingContext(ctx, key)
		switch len(values) {
		case 0:
			return nil, nil
		case 1:
			return []byte(values[0]), nil
		default:
			return nil, ErrMultipleHeaders
		}
	}
}
