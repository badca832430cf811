package storage

import "time"

// HistoryEntryModel is the GORM model for the query_history table
type HistoryEntryModel struct {
	CreatedAt       time.Time
	Database        string    `gorm:"column:database_name;not null;default:''"`
	Error           string    `gorm:"not null;default:''"`
	ExecutedAt      time.Time `gorm:"not null;index:idx_executed_at"`
	ExecutionTimeMs int64     `gorm:"not null;default:0"`
	ID              string    `gorm:"primaryKey"`
	RowCount        int64     `gorm:"not null;default:0"`
	Seq             uint64    `gorm:"not null;index:idx_seq"`
	SQL             string    `gorm:"column:sql_text;not null"`
	Success         bool      `gorm:"not null;default:false"`
	TabID           string    `gorm:"not null;default:'';index:idx_tab_id"`
}

// TableName specifies the table name for GORM
func (HistoryEntryModel) TableName() string { return "query_history" }
