package mailbox

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is a unit of content stored in a mailbox. The mailbox never looks
// at Content; identity is the pointer itself.
type Message struct {
	// ID is a unique identifier assigned at creation.
	ID string

	// Sender is the address of the producing unit.
	Sender string

	// Receiver is the address of the destination unit.
	Receiver string

	// CreatedAt is the creation time, used by ByCreationTime.
	CreatedAt time.Time

	// Content is the opaque payload.
	Content any
}

// NewMessage creates a message stamped with a fresh ID and the current time.
func NewMessage(sender, receiver string, content any) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		CreatedAt: time.Now(),
		Content:   content,
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("Message{id=%s, %s -> %s}", m.ID, m.Sender, m.Receiver)
}
