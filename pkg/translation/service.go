package translation

import (
	"fmt"

	"gorm.io/gorm"
)

// RelatedRecord is a sibling-language version of a record
type RelatedRecord struct {
	RecordID uint   `json:"record_id"`
	Language string `json:"language"`
}

// Provider looks up the sibling-language records that should be synced
// alongside a record after a save or delete
type Provider interface {
	GetRelatedRecords(recordID uint) ([]RelatedRecord, error)
}

// RecordTranslation links a record to one of its translations
type RecordTranslation struct {
	ID        uint   `gorm:"primaryKey"`
	RecordID  uint   `gorm:"index;not null"`
	RelatedID uint   `gorm:"not null"`
	Language  string `gorm:"not null"`
}

func (RecordTranslation) TableName() string {
	return "record_translations"
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Provider {
	return &service{db: db}
}

func (s *service) GetRelatedRecords(recordID uint) ([]RelatedRecord, error) {
	var rows []RecordTranslation
	if err := s.db.Where("record_id = ?", recordID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	related := make([]RelatedRecord, 0, len(rows))
	for _, row := range rows {
		related = append(related, RelatedRecord{RecordID: row.RelatedID, Language: row.Language})
	}
	return related, nil
}
