package sessions

import "codeberg.org/pairpad/server/internal/store"

type CreateSessionRequest struct {
	Language string `json:"language"`
}

// CreateSessionResponse returned after a session is created; ExpiresIn is the
// hard lifetime in milliseconds
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	ExpiresIn int64  `json:"expiresIn"`
}

type CodeResponse struct {
	Code     string         `json:"code"`
	Language store.Language `json:"language"`
}
