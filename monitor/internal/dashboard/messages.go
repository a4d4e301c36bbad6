package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drivercopilot/drivercopilot/monitor/internal/hub"
	"github.com/drivercopilot/drivercopilot/pkg/types"
)

// SnapshotMsg carries one published snapshot into the model.
type SnapshotMsg types.Snapshot

// ClosedMsg reports that the snapshot subscription was closed.
type ClosedMsg struct{}

// waitForSnapshot blocks on the next snapshot from sub.
func waitForSnapshot(sub *hub.Subscription) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub.C
		if !ok {
			return ClosedMsg{}
		}
		return SnapshotMsg(snap)
	}
}
