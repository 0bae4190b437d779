package history

import "time"

type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"   // server answered with a non-success status
	OutcomeTransport Outcome = "transport" // no decodable answer
	OutcomeRejected  Outcome = "rejected"  // failed local validation, nothing sent
	OutcomeSkipped   Outcome = "skipped"   // same command already in flight
)

// Outcomes lists every outcome in display order.
var Outcomes = []Outcome{OutcomeSuccess, OutcomeFailure, OutcomeTransport, OutcomeRejected, OutcomeSkipped}

// Entry is one dispatched (or refused) admin command.
type Entry struct {
	ID         uint    `gorm:"primaryKey"`
	RequestID  string  `gorm:"size:64;index"`
	Op         string  `gorm:"size:32;index;not null"`
	Argument   string  `gorm:"size:255"`
	Outcome    Outcome `gorm:"size:16;index"`
	Message    string  `gorm:"size:1024"`
	DurationMS int64
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
