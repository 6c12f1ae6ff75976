// Package grpc provides gRPC interceptors that carry edge contexts between
// services.
//
// Server interceptors read the binary "edge-request-bin" metadata entry,
// build an edge context with the configured factory and store it in the
// handler's context. Requests are never rejected: a missing or malformed
// entry yields an edge context with no identity.
//
// Client interceptors forward the edge context attached to the outgoing
// call's context, so a handler can call another service without touching
// metadata itself.
//
// # Server
//
//	import (
//	    edgecontext "github.com/auth0/go-edge-context"
//	    edgegrpc "github.com/auth0/go-edge-context/integrations/grpc"
//	    "google.golang.org/grpc"
//	)
//
//	interceptor, err := edgegrpc.New(factory,
//	    edgegrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// Handlers read the context the same way HTTP handlers do:
//
//	func (s *server) GetProfile(ctx context.Context, req *pb.Request) (*pb.Profile, error) {
//	    id, err := edgecontext.MustFromContext(ctx).User(ctx).ID()
//	    if err != nil {
//	        return nil, status.Error(codes.Unauthenticated, "login required")
//	    }
//	    ...
//	}
//
// # Client
//
//	conn, err := grpc.NewClient(target,
//	    grpc.WithUnaryInterceptor(edgegrpc.UnaryClientInterceptor()),
//	    grpc.WithStreamInterceptor(edgegrpc.StreamClientInterceptor()),
//	)
package grpc
