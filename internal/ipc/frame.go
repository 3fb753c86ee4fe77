// frame.go — Structured frames exchanged with the node over the IPC channel.
package ipc

import (
	"encoding/json"
	"fmt"
)

// Request is a frame sent from the launcher to the node. Exactly one
// field is populated per frame.
type Request struct {
	QueryPort  *[]struct{}    `json:"QueryPort,omitempty"`
	SetFInject *FaultRequest  `json:"SetFInject,omitempty"`
}

// FaultRequest toggles a named fault inside the node. It marshals as
// the two-element tuple [id, enable] the node expects.
type FaultRequest struct {
	ID     string
	Enable bool
}

// MarshalJSON encodes the request as a JSON tuple.
func (f FaultRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.ID, f.Enable})
}

// UnmarshalJSON decodes the [id, enable] tuple form.
func (f *FaultRequest) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("fault request: want 2 elements, got %d", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &f.ID); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &f.Enable)
}

// NewQueryPort builds the port request sent once after connection.
func NewQueryPort() Request {
	empty := []struct{}{}
	return Request{QueryPort: &empty}
}

// NewSetFInject builds a fault-injection toggle request.
func NewSetFInject(id string, enable bool) Request {
	return Request{SetFInject: &FaultRequest{ID: id, Enable: enable}}
}

// Message is a frame received from the node. Fields are pointers (or
// raw JSON, for Started) so an explicitly present empty value (e.g.
// FInjects: []) is distinguishable from an absent key.
type Message struct {
	// Started is the node's handshake announcement. Logged, otherwise
	// ignored.
	Started json.RawMessage `json:"Started,omitempty"`
	// ReplyPort carries the port the node is listening on.
	ReplyPort *uint16 `json:"ReplyPort,omitempty"`
	// FInjects is the node's currently active fault set.
	FInjects *[]string `json:"FInjects,omitempty"`
}

// Known reports whether the message carries any field the launcher
// understands.
func (m Message) Known() bool {
	return m.Started != nil || m.ReplyPort != nil || m.FInjects != nil
}

// ExitStatus describes how the node process terminated.
type ExitStatus struct {
	Code   int
	Signal string
}

// Event is one occurrence on the channel between launcher and node:
// an inbound message, process exit, or a channel-level error. Exactly
// one field is set.
type Event struct {
	Message *Message
	Exit    *ExitStatus
	Err     error
}
