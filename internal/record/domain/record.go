package domain

import "time"

// IndexPreference is the per-record "include in index" override.
// An empty value defaults to include.
type IndexPreference string

const (
	IndexDefault IndexPreference = ""
	IndexInclude IndexPreference = "include"
	IndexExclude IndexPreference = "exclude"
)

// Record is a content item from the source store
type Record struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Type       string          `json:"type" gorm:"index;not null"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Language   string          `json:"language"`
	Published  bool            `json:"published" gorm:"index"`
	IndexPref  IndexPreference `json:"index_pref"`
	ModifiedAt time.Time       `json:"modified_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Record) TableName() string {
	return "records"
}

// Excluded reports whether the record opted out of indexing
func (r *Record) Excluded() bool {
	return r.IndexPref == IndexExclude
}

// Indexable reports whether the record may be sent to the remote index
func (r *Record) Indexable() bool {
	return r.Published && !r.Excluded()
}
