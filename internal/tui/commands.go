package tui

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	cmdSpeak  = "/speak"
	cmdListen = "/listen"
	cmdUsage  = "/usage"
	cmdHelp   = "/help"
	cmdQuit   = "/quit"
)

var slashCommands = []string{cmdSpeak, cmdListen, cmdUsage, cmdHelp, cmdQuit}

// parseCommand recognizes a slash command in the input line. ok is false for
// ordinary messages. For an unknown command, name is empty and suggestion
// holds the closest known command if one is near enough.
func parseCommand(input string) (name, suggestion string, ok bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", "", false
	}
	word := strings.ToLower(fields[0])
	best, bestDist := "", 3
	for _, c := range slashCommands {
		if c == word {
			return c, "", true
		}
		if d := levenshtein.ComputeDistance(word, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return "", best, true
}
