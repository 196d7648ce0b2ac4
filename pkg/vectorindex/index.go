// Package vectorindex stores embedding vectors keyed by record id and answers
// nearest-neighbour queries restricted by metadata filters.
package vectorindex

import (
	"context"

	"gorm.io/gorm"
)

// MetadataUserID is the metadata key carrying the owner of a vector.
const MetadataUserID = "user_id"

type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]interface{}
}

type QueryRequest struct {
	Vector []float32
	TopK   int
	// Filter keeps only entries whose metadata value equals the given string.
	Filter map[string]string
}

type Match struct {
	ID       string
	Score    float64 // cosine similarity, 1.0 = identical direction
	Metadata map[string]interface{}
}

type Index interface {
	Upsert(ctx context.Context, vectors ...Vector) error
	Query(ctx context.Context, req QueryRequest) ([]Match, error)
	Delete(ctx context.Context, id string) error
}

// Transactional is implemented by indexes living in the relational database,
// which can take part in the caller's transaction.
type Transactional interface {
	WithTx(tx *gorm.DB) Index
}

// Bind returns idx bound to tx when it supports transactions, idx otherwise.
func Bind(idx Index, tx *gorm.DB) Index {
	if t, ok := idx.(Transactional); ok && tx != nil {
		return t.WithTx(tx)
	}
	return idx
}

func OwnerFilter(userId string) map[string]string {
	return map[string]string{MetadataUserID: userId}
}
