package model

// Command is a player input. Commands carry no payload.
type Command string

const (
	CommandMoveLeft  Command = "move_left"
	CommandMoveRight Command = "move_right"
	CommandRotateCW  Command = "rotate_cw"
	CommandRotateCCW Command = "rotate_ccw"
	CommandRotate180 Command = "rotate_180"
	CommandSoftDrop  Command = "soft_drop"
	CommandHardDrop  Command = "hard_drop"
	CommandHold      Command = "hold"
)

// ValidCommands returns every accepted command
func ValidCommands() []Command {
	return []Command{
		CommandMoveLeft, CommandMoveRight,
		CommandRotateCW, CommandRotateCCW, CommandRotate180,
		CommandSoftDrop, CommandHardDrop, CommandHold,
	}
}

// IsValid reports whether the command is known
func (c Command) IsValid() bool {
	for _, valid := range ValidCommands() {
		if c == valid {
			return true
		}
	}
	return false
}

// Control stops a running session
type Control string

const (
	ControlForfeit Control = "forfeit"
	ControlRetry   Control = "retry"
)
