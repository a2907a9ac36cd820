package espnow

// Command is an operation code understood by a NightDriver receiver.
// Values are wire constants shared with independently deployed receivers:
// new commands may only be appended with fresh values, never renumbered.
type Command byte

const (
	CmdNextEffect    Command = 1
	CmdPrevEffect    Command = 2
	CmdSetEffect     Command = 3
	CmdSetBrightness Command = 4

	// CmdInvalid marks an uninitialised or corrupted command. It is distinct
	// from the zero value and from every valid code, and is never transmitted.
	CmdInvalid Command = 255
)

// Valid reports whether c may appear on the wire.
func (c Command) Valid() bool {
	switch c {
	case CmdNextEffect, CmdPrevEffect, CmdSetEffect, CmdSetBrightness:
		return true
	}
	return false
}

func (c Command) String() string {
	switch c {
	case CmdNextEffect:
		return "next_effect"
	case CmdPrevEffect:
		return "prev_effect"
	case CmdSetEffect:
		return "set_effect"
	case CmdSetBrightness:
		return "set_brightness"
	case CmdInvalid:
		return "invalid"
	}
	return "unknown"
}
