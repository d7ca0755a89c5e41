package cli

import "fmt"

// getStatus renders the connectivity flags for the prompt.
func (a *App) getStatus() string {
	s := "offline"
	if a.sync.IsOnline() {
		s = "online"
	}
	if a.sync.IsSyncing() {
		s += ", syncing"
	}
	return fmt.Sprintf("(%s)", s)
}

// prompt is empty when stdin is not a terminal, so piped input produces
// clean output.
func (a *App) prompt() string {
	if !a.interactive {
		return ""
	}
	return fmt.Sprintf("md %s> ", a.getStatus())
}
