package types

import "encoding/json"

// BatchOp is a single upsert staged in a Batch.
type BatchOp struct {
	Collection string
	Key        string
	Value      json.RawMessage
}

// Batch stages upserts across collections so an engine can apply them in one
// transaction. Operations are applied in the order they were added.
type Batch struct {
	ops []BatchOp
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Put stages an upsert. For document collections key is the record id.
func (b *Batch) Put(collection, key string, value json.RawMessage) {
	b.ops = append(b.ops, BatchOp{Collection: collection, Key: key, Value: value})
}

// Ops returns the staged operations.
func (b *Batch) Ops() []BatchOp {
	return b.ops
}

// Len returns the number of staged operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Counts returns the number of staged operations per collection.
func (b *Batch) Counts() map[string]int {
	counts := make(map[string]int)
	for _, op := range b.ops {
		counts[op.Collection]++
	}
	return counts
}
