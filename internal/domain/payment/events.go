package payment

import "time"

// SessionCompletedEvent is emitted when the provider reports a session as
// paid. Handled by the checkout confirmation worker.
type SessionCompletedEvent struct {
	SessionID  string
	OccurredAt time.Time
}

func (SessionCompletedEvent) EventName() string { return "payment.session_completed" }

func NewSessionCompletedEvent(sessionID string) SessionCompletedEvent {
	return SessionCompletedEvent{
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
	}
}

// SessionFailedEvent is emitted when the provider reports a session as
// canceled or failed.
type SessionFailedEvent struct {
	SessionID  string
	Reason     string
	OccurredAt time.Time
}

func (SessionFailedEvent) EventName() string { return "payment.session_failed" }

func NewSessionFailedEvent(sessionID, reason string) SessionFailedEvent {
	return SessionFailedEvent{
		SessionID:  sessionID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
