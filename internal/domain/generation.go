package domain

import "time"

// GenerationRecord is one analyzed upload: where its bytes live, what the
// vision model said about it, and who owns it. Records are written once and
// never updated.
type GenerationRecord struct {
	ID               string    `gorm:"type:text;primaryKey" json:"id"`
	OwnerID          string    `gorm:"column:user_id;type:text;not null;index:idx_image_generations_owner_created,priority:1" json:"-"`
	StoragePath      string    `gorm:"column:image_path;type:text;not null;uniqueIndex:idx_image_generations_path" json:"storage_path"`
	GeneratedText    string    `gorm:"column:generated_prompt;type:text;not null" json:"generated_text"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	OriginalFilename string    `gorm:"type:text" json:"original_filename"`
	MimeType         string    `gorm:"type:text" json:"mime_type"`
	CreatedAt        time.Time `gorm:"index:idx_image_generations_owner_created,priority:2" json:"created_at"`
}

// TableName returns the database table name for GenerationRecord.
func (GenerationRecord) TableName() string {
	return "image_generations"
}
