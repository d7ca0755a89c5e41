// Package models defines the client-side data model: canonical memo and
// diary records as returned by the remote service, their cached
// counterparts with tombstone and reconciliation bookkeeping, and the
// closed set of offline operation payloads.
package models
