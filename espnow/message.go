package espnow

import (
	"encoding/binary"

	"ledremote-go/errcode"
)

// Message is the unit sent to a receiver.
// Wire layout, fixed order, no padding:
//
//	Size(1) | Command(1) | Arg1(4, little-endian)
//
// Size is the total encoded length and must equal MessageSize; it is written
// by the sender so receivers can validate framing across firmware versions.
// The layout is serialised field by field and never depends on in-memory
// struct layout, so both ends agree regardless of toolchain.
type Message struct {
	Size    byte
	Command Command
	Arg1    uint32
}

const (
	sizeFieldLen = 1
	cmdFieldLen  = 1
	argFieldLen  = 4

	// MessageSize is the exact on-air length of every message.
	MessageSize = sizeFieldLen + cmdFieldLen + argFieldLen
)

// NewMessage builds a message for cmd with its 32-bit argument.
// Arg1 is the effect index for CmdSetEffect and the 0-255 level for
// CmdSetBrightness; other commands ignore it.
func NewMessage(cmd Command, arg1 uint32) (Message, error) {
	if !cmd.Valid() {
		return Message{}, errcode.InvalidCommand
	}
	return Message{Size: MessageSize, Command: cmd, Arg1: arg1}, nil
}

// EncodeMessage serialises m into exactly MessageSize bytes.
// Encoding an invalid command is a programmer error and fails fast.
func EncodeMessage(m Message) ([]byte, error) {
	if !m.Command.Valid() {
		return nil, errcode.InvalidCommand
	}
	data := make([]byte, MessageSize)
	data[0] = MessageSize
	data[1] = byte(m.Command)
	binary.LittleEndian.PutUint32(data[2:], m.Arg1)
	return data, nil
}

// DecodeMessage is the receiver-side inverse of EncodeMessage.
func DecodeMessage(data []byte) (Message, error) {
	if len(data) != MessageSize || data[0] != MessageSize {
		return Message{}, errcode.InvalidPayload
	}
	cmd := Command(data[1])
	if !cmd.Valid() {
		return Message{}, errcode.InvalidCommand
	}
	return Message{
		Size:    data[0],
		Command: cmd,
		Arg1:    binary.LittleEndian.Uint32(data[2:]),
	}, nil
}
