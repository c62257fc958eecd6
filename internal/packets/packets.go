// Package packets defines the messages exchanged with clients and the frame
// codec used to put them on the wire.
//
// Frames are a little-endian header (uint16 size, uint16 type) followed by a
// JSON-encoded body. The engine never touches raw frames; the frontends
// decode inbound data into the typed messages here and hand those to the
// dispatcher.
package packets

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Type identifies a message within its transport.
type Type uint16

// HeaderSize is the length in bytes of the frame header.
const HeaderSize = 4

// Message is implemented by every decodable or sendable message.
type Message interface {
	PacketType() Type
}

// messageFactories maps a message type to a constructor for an empty
// instance of it. Populated by the registerMessage calls in the per-transport
// files; the table is effectively immutable after package init.
var messageFactories = map[Type]func() Message{}

func registerMessage(t Type, factory func() Message) {
	if _, ok := messageFactories[t]; ok {
		panic(fmt.Sprintf("duplicate message type registration: %#04x", uint16(t)))
	}
	messageFactories[t] = factory
}

// Marshal encodes msg into a complete frame.
func Marshal(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %#04x body: %w", uint16(msg.PacketType()), err)
	}

	frame := make([]byte, HeaderSize+len(body))
	binary.LittleEndian.PutUint16(frame[0:2], uint16(HeaderSize+len(body)))
	binary.LittleEndian.PutUint16(frame[2:4], uint16(msg.PacketType()))
	copy(frame[HeaderSize:], body)
	return frame, nil
}

// PeekHeader extracts the frame size and message type from a header.
func PeekHeader(header []byte) (size int, t Type) {
	return int(binary.LittleEndian.Uint16(header[0:2])), Type(binary.LittleEndian.Uint16(header[2:4]))
}

// Unmarshal decodes a complete frame into its typed message.
func Unmarshal(frame []byte) (Message, error) {
	if len(frame) < HeaderSize {
		return nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}

	size, t := PeekHeader(frame)
	if size > len(frame) {
		return nil, fmt.Errorf("frame size %d exceeds received data (%d bytes)", size, len(frame))
	}

	factory, ok := messageFactories[t]
	if !ok {
		return nil, fmt.Errorf("unknown message type %#04x", uint16(t))
	}

	msg := factory()
	if err := json.Unmarshal(frame[HeaderSize:size], msg); err != nil {
		return nil, fmt.Errorf("decoding %#04x body: %w", uint16(t), err)
	}
	return msg, nil
}
