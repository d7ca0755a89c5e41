// Package common contains shared constants and sentinel errors used across
// memodiary components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// UserIDHeaderName is the metadata key the server echoes back with the
// resolved user identity (useful for diagnostics only).
const UserIDHeaderName = "user_id"
