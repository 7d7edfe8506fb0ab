package storageservice

import (
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
)

// GRPCServer stands up a bare grpc.Server around a Server, the same
// shape as the teacher's internal/grpc.Server (grpc.NewServer plus a
// net.Listener, no generated ServiceDesc registered — the handler
// methods on Server are called directly by whatever transport a future
// iteration wires in, exactly as the teacher's own grpc.Server never
// registers its ledger-service handlers through a codegen'd descriptor
// either).
type GRPCServer struct {
	mu       sync.RWMutex
	grpcSrv  *grpc.Server
	handlers *Server
	listener net.Listener
	running  bool
}

// NewGRPCServer wraps handlers with a plain grpc.Server instance.
func NewGRPCServer(handlers *Server, opts ...grpc.ServerOption) *GRPCServer {
	return &GRPCServer{grpcSrv: grpc.NewServer(opts...), handlers: handlers}
}

// Handlers exposes the underlying request handlers for direct in-process
// calls (what this package's tests, and any co-located caller, use).
func (g *GRPCServer) Handlers() *Server { return g.handlers }

// Serve starts accepting connections on addr. It blocks until the
// server stops or an error occurs.
func (g *GRPCServer) Serve(addr string) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return fmt.Errorf("storageservice: grpc server already running")
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.listener = listener
	g.running = true
	g.mu.Unlock()
	return g.grpcSrv.Serve(listener)
}

// Stop gracefully stops the server.
func (g *GRPCServer) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return
	}
	g.grpcSrv.GracefulStop()
	g.running = false
}
