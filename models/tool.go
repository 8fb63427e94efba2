// models/tool.go
package models

import "time"

const (
	ToolTable = "lsb_tools"
	ModeTable = "lsb_modes"
	LogTable  = "lsb_logs"
)

// PlaceholderPrefix marks synthetic tag ids handed to tools that have not been
// bound to a physical tag yet. Real scans never carry it.
const PlaceholderPrefix = "TMP-"

type Tool struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	TagID     string    `gorm:"size:120;uniqueIndex;not null" json:"tagId"` // physical tag, or TMP-xxxx while placeholder
	Code      *string   `gorm:"size:32;uniqueIndex" json:"code,omitempty"`  // assigned once on bind
	Name      string    `gorm:"size:200;not null;default:''" json:"name"`
	Category  string    `gorm:"size:120;index;not null;default:''" json:"category"`
	Status    Status    `gorm:"size:20;not null;default:'placeholder'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Mode is one declared operator intent. Rows are append-only; Token is the
// correlation handle returned to the console and presented back by the scan.
type Mode struct {
	ID         uint      `gorm:"primaryKey;index:idx_lsb_modes_kind_id,priority:2" json:"id"`
	Token      string    `gorm:"type:uuid;uniqueIndex;not null" json:"token"`
	Kind       ModeKind  `gorm:"size:20;not null;index:idx_lsb_modes_kind_id,priority:1" json:"kind"`
	ToolID     *string   `gorm:"type:uuid;index" json:"toolId,omitempty"`
	OperatorID *string   `gorm:"type:uuid" json:"operatorId,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}

// LogEntry is an immutable audit record. ToolID is nil for raw scans of tags
// that resolve to no bound tool; TagID keeps the scanned identifier either way.
type LogEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ToolID        *string   `gorm:"type:uuid;index:idx_lsb_logs_tool_ts,priority:1" json:"toolId,omitempty"`
	TagID         string    `gorm:"size:120;not null;default:''" json:"tagId,omitempty"`
	OperatorID    *string   `gorm:"type:uuid" json:"operatorId,omitempty"`
	Action        Action    `gorm:"size:20;not null" json:"action"`
	BorrowerName  *string   `gorm:"size:200" json:"borrowerName,omitempty"`
	BorrowerClass *string   `gorm:"size:60" json:"borrowerClass,omitempty"`
	Timestamp     time.Time `gorm:"not null;index:idx_lsb_logs_tool_ts,priority:2" json:"timestamp"`
}

func (Tool) TableName() string     { return ToolTable }
func (Mode) TableName() string     { return ModeTable }
func (LogEntry) TableName() string { return LogTable }
