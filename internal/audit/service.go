package audit

import (
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
)

// Record is the on-disk shape of one error notification.
type Record struct {
	RecordedAt time.Time          `json:"recorded_at"`
	Code       entities.ErrorCode `json:"code"`
	Type       entities.ErrorType `json:"type,omitempty"`
	Msg        string             `json:"msg"`
	Source     string             `json:"source,omitempty"`
	Sources    []string           `json:"sources,omitempty"`
	Error      entities.ErrorInfo `json:"error"`
}

// Service writes error-channel notifications through an Auditor.
// Writes happen in the background; Wait blocks until they have finished.
type Service struct {
	auditor *Auditor
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewService(auditor *Auditor) *Service {
	return &Service{auditor: auditor, now: time.Now}
}

// Attach subscribes the service to the game's error channel and returns the
// unsubscribe func.
func (s *Service) Attach(g *game.Game) func() {
	return g.OnError(s.LogAsync)
}

// Log records a single error notification synchronously.
func (s *Service) Log(info entities.ErrorInfo) (string, error) {
	return s.auditor.SaveJSON(Record{
		RecordedAt: s.now(),
		Code:       info.Code,
		Type:       info.Type,
		Msg:        truncate(info.Msg, 500),
		Source:     info.Source,
		Sources:    info.Sources(),
		Error:      info,
	})
}

// LogAsync records an error notification in the background (non-blocking).
// Error listeners run synchronously inside the chapter switch, so file I/O
// must not happen on that path.
func (s *Service) LogAsync(info entities.ErrorInfo) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Log(info); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until all pending background writes are done.
func (s *Service) Wait() {
	s.wg.Wait()
}

// truncate shortens a string to at most maxLen bytes without splitting a
// UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
