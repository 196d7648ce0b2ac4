package entity

import "time"

type Braincell struct {
	Id        string
	Title     string
	Content   string
	UserId    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmbeddingText is the text the vector index entry is derived from.
func (b *Braincell) EmbeddingText() string {
	return b.Title + "\n\n" + b.Content
}

func (b *Braincell) IsOwnedBy(userId string) bool {
	return userId != "" && b.UserId == userId
}
