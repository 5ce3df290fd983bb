// Package history defines the audit trail of card changes: stage
// transitions, field edits, and automatic overdue alerts.
package history

import (
	"fmt"
	"time"
)

// Action classifies a history entry.
type Action string

const (
	ActionStageChange  Action = "階段變更"
	ActionFieldUpdate  Action = "資料更新"
	ActionOverdueAlert Action = "逾期警示"
)

// Entry is one audit-trail record.
type Entry struct {
	ID        string    `json:"id"`
	CardID    string    `json:"caseId"`
	CardTitle string    `json:"caseTitle"`
	User      string    `json:"user"`
	Action    Action    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// StageChange builds the entry recorded when a transition commits.
func StageChange(cardID, cardTitle, operator, fromStage, toStage string) Entry {
	return Entry{
		CardID:    cardID,
		CardTitle: cardTitle,
		User:      operator,
		Action:    ActionStageChange,
		Details:   fmt.Sprintf("從 %s 進入 %s", fromStage, toStage),
	}
}

// FieldUpdate builds the entry recorded when a card's details are edited.
func FieldUpdate(cardID, cardTitle, operator, details string) Entry {
	return Entry{
		CardID:    cardID,
		CardTitle: cardTitle,
		User:      operator,
		Action:    ActionFieldUpdate,
		Details:   details,
	}
}

// OverdueAlert builds the entry recorded when a card exceeds its pipeline's
// dwell threshold.
func OverdueAlert(cardID, cardTitle string, days int) Entry {
	return Entry{
		CardID:    cardID,
		CardTitle: cardTitle,
		User:      "系統監控",
		Action:    ActionOverdueAlert,
		Details:   fmt.Sprintf("停留超過 %d 天，自動發送通知", days),
	}
}
