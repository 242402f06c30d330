// Package types contains shared type definitions used across the goshot
// library. It helps avoid import cycles while providing common data
// structures.
package types

// Conversation roles accepted by the supported chat APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged unit of conversational text sent to or
// received from a chat model. An ordered slice of Messages forms the
// conversation for one invocation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
