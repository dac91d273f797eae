package domain

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry sent to the external assistant.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is a recorded exchange in a refinement conversation.
// FlowText holds the notation the assistant produced, if any.
type Turn struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	FlowText string `json:"flow_text,omitempty"`
}

// Conversation is the persisted state of a refinement loop.
// FlowText is the latest accepted notation; each turn re-parses it into a fresh graph.
type Conversation struct {
	ID        string    `json:"id"`
	FlowText  string    `json:"flow_text,omitempty"`
	Turns     []Turn    `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates an empty conversation.
func NewConversation(id string) *Conversation {
	return &Conversation{
		ID:        id,
		Turns:     []Turn{},
		UpdatedAt: time.Now().UTC(),
	}
}

// History returns the turns as assistant messages (without flow text).
func (c *Conversation) History() []Message {
	msgs := make([]Message, 0, len(c.Turns))
	for _, t := range c.Turns {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}

// Snapshot returns a deep copy of the conversation.
func (c *Conversation) Snapshot() *Conversation {
	cp := *c
	cp.Turns = make([]Turn, len(c.Turns))
	copy(cp.Turns, c.Turns)
	return &cp
}

// Flow is a saved graph together with its editor layout.
type Flow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Graph       Graph     `json:"graph"`
	Layout      Layout    `json:"layout,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FlowSummary is the listing shape of a saved flow.
type FlowSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary returns the listing shape of the flow.
func (f *Flow) Summary() FlowSummary {
	return FlowSummary{ID: f.ID, Title: f.Title, Description: f.Description, UpdatedAt: f.UpdatedAt}
}

// Clone returns a deep copy of the flow.
func (f *Flow) Clone() *Flow {
	cp := *f
	cp.Graph = *f.Graph.Clone()
	if f.Layout != nil {
		cp.Layout = make(Layout, len(f.Layout))
		for k, v := range f.Layout {
			cp.Layout[k] = v
		}
	}
	return &cp
}
