package certification

import "gorm.io/gorm"

// EmailBatch statuses
const (
	BatchRunning   = "RUNNING"
	BatchCompleted = "COMPLETED"
)

// EmailBatch tracks a mass email run. Progress counters are updated after
// every recipient so operators can poll live progress.
type EmailBatch struct {
	gorm.Model
	Reference   string `json:"reference" gorm:"unique;not null"`
	BatchCode   string `json:"batch_code" gorm:"index"`
	Subject     string `json:"subject"`
	Status      string `json:"status" gorm:"default:'RUNNING'"`
	Total       int    `json:"total"`
	Current     int    `json:"current"`
	Succeeded   int    `json:"succeeded"`
	FailedCount int    `json:"failed_count"`
	StartedBy   uint   `json:"started_by"`
	IsDeleted   bool   `gorm:"default:false"`
}
