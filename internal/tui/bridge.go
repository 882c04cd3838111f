package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// Store subscriptions and delete confirmations cross from command
// goroutines into the Bubble Tea loop over these channels.

type snapshotMsg store.Snapshot

type confirmRequest struct {
	item  model.Item
	reply chan bool
}

type confirmMsg confirmRequest

type bridge struct {
	snapshots chan store.Snapshot
	confirms  chan confirmRequest
}

func newBridge() *bridge {
	return &bridge{
		snapshots: make(chan store.Snapshot, 1),
		confirms:  make(chan confirmRequest),
	}
}

// publish keeps only the newest snapshot if the loop has not caught up.
func (b *bridge) publish(s store.Snapshot) {
	select {
	case b.snapshots <- s:
		return
	default:
	}
	select {
	case <-b.snapshots:
	default:
	}
	select {
	case b.snapshots <- s:
	default:
	}
}

func (b *bridge) waitForSnapshot() tea.Cmd {
	return func() tea.Msg { return snapshotMsg(<-b.snapshots) }
}

func (b *bridge) waitForConfirm() tea.Cmd {
	return func() tea.Msg { return confirmMsg(<-b.confirms) }
}

// confirm is the orchestrator's delete gate: it asks the UI and blocks
// until the user answers or ctx ends.
func (b *bridge) confirm(ctx context.Context, it model.Item) bool {
	req := confirmRequest{item: it, reply: make(chan bool, 1)}
	select {
	case b.confirms <- req:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-req.reply:
		return ok
	case <-ctx.Done():
		return false
	}
}
