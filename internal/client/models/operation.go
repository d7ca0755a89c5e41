package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/memodiary/internal/common"
)

// OperationType is the kind of a queued mutation.
type OperationType string

const (
	OpCreate OperationType = "create"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
)

// EntityType is the kind of record a queued mutation targets.
type EntityType string

const (
	EntityMemo  EntityType = "memo"
	EntityDiary EntityType = "diary"
)

// OperationStatus tracks whether an operation is still eligible for replay.
type OperationStatus string

const (
	StatusPending OperationStatus = "pending"
	StatusFailed  OperationStatus = "failed"
)

// Payload is the content of a queued mutation. The set of implementations
// is closed: MemoCreate, MemoUpdate, MemoDelete, DiaryCreate, DiaryUpdate
// and DiaryDelete.
type Payload interface {
	OperationType() OperationType
	EntityType() EntityType
	isPayload()
}

type MemoCreate struct {
	Draft MemoDraft `json:"draft"`
}

type MemoUpdate struct {
	Patch MemoPatch `json:"patch"`
}

type MemoDelete struct{}

type DiaryCreate struct {
	Draft DiaryDraft `json:"draft"`
}

type DiaryUpdate struct {
	Draft DiaryDraft `json:"draft"`
}

type DiaryDelete struct{}

func (*MemoCreate) OperationType() OperationType  { return OpCreate }
func (*MemoUpdate) OperationType() OperationType  { return OpUpdate }
func (*MemoDelete) OperationType() OperationType  { return OpDelete }
func (*DiaryCreate) OperationType() OperationType { return OpCreate }
func (*DiaryUpdate) OperationType() OperationType { return OpUpdate }
func (*DiaryDelete) OperationType() OperationType { return OpDelete }

func (*MemoCreate) EntityType() EntityType  { return EntityMemo }
func (*MemoUpdate) EntityType() EntityType  { return EntityMemo }
func (*MemoDelete) EntityType() EntityType  { return EntityMemo }
func (*DiaryCreate) EntityType() EntityType { return EntityDiary }
func (*DiaryUpdate) EntityType() EntityType { return EntityDiary }
func (*DiaryDelete) EntityType() EntityType { return EntityDiary }

func (*MemoCreate) isPayload()  {}
func (*MemoUpdate) isPayload()  {}
func (*MemoDelete) isPayload()  {}
func (*DiaryCreate) isPayload() {}
func (*DiaryUpdate) isPayload() {}
func (*DiaryDelete) isPayload() {}

// OfflineOperation is a mutation recorded while offline, replayed in
// CreatedAt order by the sync manager.
type OfflineOperation struct {
	ID            string
	EntityID      string
	Payload       Payload
	CreatedAt     int64
	RetriedCount  int
	NextAttemptAt int64
	Status        OperationStatus
	LastError     string
}

// OperationType and EntityType are derived from the payload. An operation
// whose stored payload could not be decoded has a nil Payload and reports
// empty values.
func (o OfflineOperation) OperationType() OperationType {
	if o.Payload == nil {
		return ""
	}
	return o.Payload.OperationType()
}

func (o OfflineOperation) EntityType() EntityType {
	if o.Payload == nil {
		return ""
	}
	return o.Payload.EntityType()
}

// EncodePayload serializes p for storage.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil payload: %w", common.ErrSerialization)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s payload: %w: %w", p.EntityType(), p.OperationType(), common.ErrSerialization, err)
	}
	return b, nil
}

// DecodePayload restores the concrete payload stored under the given
// operation and entity tags.
func DecodePayload(op OperationType, entity EntityType, data []byte) (Payload, error) {
	var p Payload
	switch {
	case entity == EntityMemo && op == OpCreate:
		p = &MemoCreate{}
	case entity == EntityMemo && op == OpUpdate:
		p = &MemoUpdate{}
	case entity == EntityMemo && op == OpDelete:
		p = &MemoDelete{}
	case entity == EntityDiary && op == OpCreate:
		p = &DiaryCreate{}
	case entity == EntityDiary && op == OpUpdate:
		p = &DiaryUpdate{}
	case entity == EntityDiary && op == OpDelete:
		p = &DiaryDelete{}
	default:
		return nil, fmt.Errorf("unknown operation %s/%s: %w", entity, op, common.ErrSerialization)
	}
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s %s payload: %w: %w", entity, op, common.ErrSerialization, err)
	}
	return p, nil
}

// IDMapping records the canonical id the remote assigned to a record that
// was created offline under a temporary id.
type IDMapping struct {
	TempID      string
	CanonicalID string
	Entity      EntityType
	CreatedAt   int64
}

// SyncStatus summarizes the sync manager state.
type SyncStatus struct {
	Online        bool
	Syncing       bool
	AutoSync      bool
	Pending       int
	Failed        int
	LastSyncAt    int64
	LastSyncError string
}
