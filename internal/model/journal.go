package model

// JournalEntry is a private journal note. Content is stored as the raw
// markdown; ContentHTML holds the sanitized rendering.
type JournalEntry struct {
	Base
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Content     string `gorm:"type:text;not null" json:"content"`
	ContentHTML string `gorm:"type:text" json:"content_html"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName sets the journal entries table name.
func (JournalEntry) TableName() string {
	return "journal_entries"
}
