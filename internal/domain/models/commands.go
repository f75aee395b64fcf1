package models

import "strings"

// CommandType enumerates the text commands understood over the messaging channel.
type CommandType string

const (
	CommandRation  CommandType = "ration"
	CommandFeed    CommandType = "feed"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed instruction extracted from a chat message.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. The leading slash is
// optional and only the command word is case-insensitive; arguments keep the
// case they were typed in.
func ParseCommand(message string) Command {
	tokens := strings.Fields(message)
	cmd := Command{Type: CommandUnknown, Raw: message}

	if len(tokens) == 0 {
		return cmd
	}

	switch head := CommandType(strings.ToLower(strings.TrimPrefix(tokens[0], "/"))); head {
	case CommandRation, CommandFeed, CommandHelp:
		cmd.Type = head
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
