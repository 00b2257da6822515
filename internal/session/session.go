package session

import (
	"time"

	"github.com/google/uuid"
)

// Stage is the position in the custom-title creation flow. Transitions only
// move forward; cancel and timeout delete the session instead of rewinding.
type Stage int

const (
	StageSelectType Stage = iota
	StageInputContent
	StageInputName
	StageWaitingConfirm
)

func (s Stage) String() string {
	switch s {
	case StageSelectType:
		return "select_type"
	case StageInputContent:
		return "input_content"
	case StageInputName:
		return "input_name"
	case StageWaitingConfirm:
		return "waiting_confirm"
	}
	return "unknown"
}

// Session is the transient per-player state of one creation flow.
type Session struct {
	PlayerID    uuid.UUID
	PlayerName  string
	Stage       Stage
	Contents    []string
	Name        string
	Dynamic     bool
	CreatedAt   time.Time
	RefreshedAt time.Time
}

// TitleID derives the id the finished title will be stored under.
func (s *Session) TitleID() string {
	return s.PlayerName + "_" + s.Name
}

func (s *Session) refresh(now time.Time) {
	s.RefreshedAt = now
}

func (s *Session) expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.RefreshedAt) > timeout
}

func (s *Session) snapshot() Session {
	out := *s
	out.Contents = append([]string(nil), s.Contents...)
	return out
}
