package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	edgecontext "github.com/auth0/go-edge-context"
)

// Interceptor attaches edge contexts to incoming gRPC calls.
type Interceptor struct {
	factory         *edgecontext.Factory
	extractor       HeaderExtractor
	excludedMethods map[string]bool
	logger          edgecontext.Logger
}

// New creates a server interceptor building edge contexts with factory.
func New(factory *edgecontext.Factory, opts ...Option) (*Interceptor, error) {
	if factory == nil {
		return nil, edgecontext.ErrFactoryNil
	}

	interceptor := &Interceptor{
		factory:         factory,
		extractor:       MetadataHeaderExtractor,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	return interceptor, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that attaches
// the edge context of each call to the handler's context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping edge context for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		return handler(i.attach(ctx, info.FullMethod), req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// attaches the edge context of each stream to the stream's context.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping edge context for excluded method",
					"method", info.FullMethod)
			}
			return handler(srv, ss)
		}

		return handler(srv, &wrappedServerStream{
			ServerStream: ss,
			ctx:          i.attach(ss.Context(), info.FullMethod),
		})
	}
}

func (i *Interceptor) attach(ctx context.Context, method string) context.Context {
	header, err := i.extractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Debug("could not read edge request metadata",
				"error", err,
				"method", method)
		}
		header = nil
	}

	return edgecontext.WithEdgeContext(ctx, i.factory.FromUpstream(header))
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the edge context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// UnaryClientInterceptor forwards the edge context attached to the call's
// context as "edge-request-bin" metadata.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(outgoing(ctx), method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor is the streaming counterpart of
// UnaryClientInterceptor.
func StreamClientInterceptor() grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		return streamer(outgoing(ctx), desc, cc, method, opts...)
	}
}

func outgoing(ctx context.Context) context.Context {
	raw, ok := edgecontext.RawHeaderFromContext(ctx)
	if !ok {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, string(raw))
}
