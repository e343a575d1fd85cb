package publisher

import "fmt"

// The three reel phases fail with distinct error types so an outcome can say
// whether a session was never created, the bytes were rejected, or the final
// publish was refused after a successful transfer.

type SessionError struct {
	Reason string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("upload session not created: %s", e.Reason)
}

type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("video bytes rejected: HTTP %d: %s", e.StatusCode, e.Body)
}

type PublishError struct {
	StatusCode int
	Body       string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish rejected: HTTP %d: %s", e.StatusCode, e.Body)
}
