package notify

import (
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Kind classifies the notifications external observers (dashboards) consume.
type Kind string

const (
	KindIncidentRecorded       Kind = "incident_recorded"
	KindAnalysisRequested      Kind = "analysis_requested"
	KindPatternIdentified      Kind = "pattern_identified"
	KindJointAnalysisCompleted Kind = "joint_analysis_completed"
)

// Event is emitted from domain logic to announce key transitions. Keep it
// transport-agnostic so sinks can fan out; only the fields relevant to the
// kind are populated.
type Event struct {
	Kind        Kind               `json:"Kind"`
	Timestamp   time.Time          `json:"Timestamp"`
	IncidentID  domain.IncidentID  `json:"IncidentID,omitempty"`
	PatternID   domain.PatternID   `json:"PatternID,omitempty"`
	RequestID   domain.RequestID   `json:"RequestID,omitempty"`
	RequestKind domain.RequestKind `json:"RequestKind,omitempty"`
}
