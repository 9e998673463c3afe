// Package notify fans detected changes out to the configured delivery
// channels, routed by the stakeholder groups each change affects.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/detect"
)

// Channel delivers one rendered change notification.
type Channel interface {
	Name() string
	// Stakeholders returns the groups this channel serves. A channel serving
	// StakeholderAll receives every change.
	Stakeholders() []detect.Stakeholder
	Send(ctx context.Context, change detect.Change) error
}

// Dispatcher routes change records to channels whose stakeholder set
// intersects the change's affected stakeholders.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Enabled reports whether any channel is configured.
func (d *Dispatcher) Enabled() bool { return len(d.channels) > 0 }

// DispatchSummary sends every field-level change in the summary to the
// matching channels. Delivery failures are logged and counted, never fatal.
// Returns the number of notifications delivered.
func (d *Dispatcher) DispatchSummary(ctx context.Context, summary detect.Summary) int {
	if !d.Enabled() {
		utils.Log.Debug("No notification channels configured, skipping dispatch")
		return 0
	}

	sent := 0
	for _, change := range summary.Changes {
		for _, ch := range d.channels {
			if !channelWantsChange(ch, change) {
				continue
			}
			if err := ch.Send(ctx, change); err != nil {
				utils.Log.Errorf("Failed to deliver %s change for match %s via %s: %v",
					change.Category, change.MatchID, ch.Name(), err)
				continue
			}
			sent++
		}
	}

	utils.Log.Infof("Dispatched %d notifications for %d changes", sent, len(summary.Changes))
	return sent
}

func channelWantsChange(ch Channel, change detect.Change) bool {
	for _, s := range ch.Stakeholders() {
		if change.Affects(s) {
			return true
		}
	}
	return false
}

// RenderText renders the compact single-message form of a change used by the
// text-oriented channels.
func RenderText(change detect.Change) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(string(change.Priority)), change.Description)
	fmt.Fprintf(&b, " (match %s", change.MatchID)
	if change.MatchNumber != "" {
		fmt.Fprintf(&b, ", nr %s", change.MatchNumber)
	}
	b.WriteString(")")
	return b.String()
}
