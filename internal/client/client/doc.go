// Package client is the remote API client of memodiary.
//
// The Client interface is what the sync manager and the offline-aware
// services talk to. GRPCClient implements it over gRPC using the JSON
// codec from internal/api, attaches the configured access token to every
// call through a unary interceptor, and maps gRPC status codes to the
// sentinel errors below so callers can classify failures with errors.Is:
//
//   - ErrUnauthorized: token missing or rejected
//   - common.ErrNotFound: the record does not exist remotely
//   - ErrUnavailable: transport failure or timeout, worth retrying
//   - ErrInvalidRequest: the service rejected the payload
//   - ErrConflict: the record already exists
//   - ErrServer: anything else
package client
