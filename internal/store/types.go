package store

import "time"

// Language is one of the fixed set of editor languages a session can use.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageGo         Language = "go"
	LanguageCPP        Language = "cpp"
)

// the default language reported for sessions that do not exist
const DefaultLanguage = LanguageJavaScript

var validLanguages = map[Language]bool{
	LanguageJavaScript: true,
	LanguageTypeScript: true,
	LanguagePython:     true,
	LanguageJava:       true,
	LanguageGo:         true,
	LanguageCPP:        true,
}

// reports whether s names a supported language
func ParseLanguage(s string) (Language, bool) {
	lang := Language(s)
	return lang, validLanguages[lang]
}

// Participant is one joined identity within a session, bound to exactly one
// live connection.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	ClientID string `json:"-"` // connection handle, never sent to clients
}

// Session is the shared editable unit: language, code buffer and participants.
type Session struct {
	ID           string
	Language     Language
	Code         string
	Participants map[string]Participant
	CreatedAt    time.Time
	LastActivity time.Time
}

// Snapshot is an immutable copy of a session's state handed out to callers.
type Snapshot struct {
	ID               string
	Language         Language
	Code             string
	ParticipantCount int
	CreatedAt        time.Time
	LastActivity     time.Time
}

// Metadata is the always-available session summary. Exists is false for
// unknown ids; that shape is not an error.
type Metadata struct {
	SessionID string   `json:"sessionId"`
	Language  Language `json:"language"`
	UserCount int      `json:"userCount"`
	Exists    bool     `json:"exists"`
}
