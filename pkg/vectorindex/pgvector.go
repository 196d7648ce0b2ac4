package vectorindex

import (
	"context"
	"sort"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one row of the braincell_vectors table.
type Record struct {
	Id        string            `gorm:"type:varchar(64);primaryKey"`
	Embedding pgvector.Vector   `gorm:"type:vector"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (Record) TableName() string {
	return "braincell_vectors"
}

// PgVectorIndex stores vectors in Postgres with the pgvector extension and
// ranks matches by cosine distance.
type PgVectorIndex struct {
	db *gorm.DB
}

var (
	_ Index         = (*PgVectorIndex)(nil)
	_ Transactional = (*PgVectorIndex)(nil)
)

func NewPgVectorIndex(db *gorm.DB) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

func (p *PgVectorIndex) WithTx(tx *gorm.DB) Index {
	return &PgVectorIndex{db: tx}
}

func (p *PgVectorIndex) Upsert(ctx context.Context, vectors ...Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	records := make([]*Record, len(vectors))
	for i, v := range vectors {
		records[i] = &Record{
			Id:        v.ID,
			Embedding: pgvector.NewVector(v.Values),
			Metadata:  datatypes.JSONMap(v.Metadata),
		}
	}

	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "metadata", "updated_at"}),
		}).
		Create(&records).Error
}

func (p *PgVectorIndex) Query(ctx context.Context, req QueryRequest) ([]Match, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	type result struct {
		Record
		Score float64
	}
	var results []result

	queryVector := pgvector.NewVector(req.Vector)

	// Cosine distance in pgvector is 1 - cosine_similarity
	query := p.db.WithContext(ctx).
		Table(Record{}.TableName()).
		Select("braincell_vectors.*, 1 - (embedding <=> ?) AS score", queryVector)

	keys := make([]string, 0, len(req.Filter))
	for k := range req.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query = query.Where("metadata ->> ? = ?", k, req.Filter[k])
	}

	err := query.
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{queryVector}},
		}).
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(results))
	for i, res := range results {
		matches[i] = Match{
			ID:       res.Id,
			Score:    res.Score,
			Metadata: map[string]interface{}(res.Metadata),
		}
	}
	return matches, nil
}

func (p *PgVectorIndex) Delete(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{}).Error
}
