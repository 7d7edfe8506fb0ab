package nodestore

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("node not found")
	ErrDataCorrupt           = errors.New("data corruption detected")
	ErrBackendClosed         = errors.New("backend is closed")
	ErrInvalidNode           = errors.New("invalid node")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrUnsupportedBackend    = errors.New("unsupported backend")
	ErrUnsupportedCompressor = errors.New("unsupported compressor")
)

// NodeStoreError wraps a failed operation with the key and backend involved.
type NodeStoreError struct {
	Operation string
	Hash      Hash256
	Backend   string
	Cause     error
}

func (e *NodeStoreError) Error() string {
	return fmt.Sprintf("nodestore %s error on backend %s for key %s: %v",
		e.Operation, e.Backend, e.Hash.String(), e.Cause)
}

func (e *NodeStoreError) Unwrap() error { return e.Cause }

func (e *NodeStoreError) Is(target error) bool { return errors.Is(e.Cause, target) }

func NewError(operation, backend string, hash Hash256, cause error) *NodeStoreError {
	return &NodeStoreError{Operation: operation, Hash: hash, Backend: backend, Cause: cause}
}

// NodeStoreBackendError carries a backend Status alongside the usual context.
type NodeStoreBackendError struct {
	Backend   string
	Operation string
	Hash      Hash256
	Status    Status
	Message   string
	Cause     error
}

func (e *NodeStoreBackendError) Error() string {
	return fmt.Sprintf("backend %s %s error for key %s: %s (status: %s)",
		e.Backend, e.Operation, e.Hash.String(), e.Message, e.Status.String())
}

func (e *NodeStoreBackendError) Unwrap() error { return e.Cause }

func (e *NodeStoreBackendError) Is(target error) bool {
	if e.Cause != nil {
		return errors.Is(e.Cause, target)
	}
	switch e.Status {
	case NotFound:
		return target == ErrNotFound
	case DataCorrupt:
		return target == ErrDataCorrupt
	case BackendError:
		return target == ErrBackendClosed
	}
	return false
}

func NewBackendError(backend, operation string, hash Hash256, status Status, message string, cause error) *NodeStoreBackendError {
	return &NodeStoreBackendError{Backend: backend, Operation: operation, Hash: hash, Status: status, Message: message, Cause: cause}
}

// CompressionError reports a failed compress/decompress call.
type CompressionError struct {
	Compressor string
	Operation  string
	DataSize   int
	Cause      error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("compression error: %s %s failed for %d bytes: %v",
		e.Compressor, e.Operation, e.DataSize, e.Cause)
}

func (e *CompressionError) Unwrap() error { return e.Cause }

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsDataCorrupt(err error) bool   { return errors.Is(err, ErrDataCorrupt) }
func IsBackendClosed(err error) bool { return errors.Is(err, ErrBackendClosed) }
