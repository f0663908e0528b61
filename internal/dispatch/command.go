package dispatch

import (
	"encoding/json"
	"regexp"
	"strings"
)

// commandErrorTopic matches openWB/command/<client>/error.
var commandErrorTopic = regexp.MustCompile(`(?i)^openwb/command/([^/]+)/error$`)

// CommandError is openWB's reply to a command that failed.
type CommandError struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// handleCommand processes openWB/command/... topics. Errors addressed to
// other clients are none of our business and are ignored silently.
func (d *Dispatcher) handleCommand(topic, payload string) {
	m := commandErrorTopic.FindStringSubmatch(topic)
	if m == nil {
		d.diagnose(reasonUnrecognizedLeaf, "ignoring command message", "topic", topic)
		return
	}
	if m[1] != d.clientID {
		return
	}
	// An empty payload clears the retained error.
	if strings.TrimSpace(payload) == "" {
		return
	}

	var cmdErr CommandError
	if err := json.Unmarshal([]byte(payload), &cmdErr); err != nil {
		d.diagnose(reasonInvalidJSON, "discarding command error", "topic", topic, "error", err)
		return
	}

	d.metrics.diagnostic(reasonCommandError)
	d.logError("openWB rejected command",
		"command", cmdErr.Command,
		"data", string(cmdErr.Data),
		"error", cmdErr.Error,
	)
	if d.onCommandError != nil {
		d.onCommandError(cmdErr)
	}
}
