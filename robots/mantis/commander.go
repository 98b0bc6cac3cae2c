package mantis

import (
	"context"
	"sync"

	"github.com/BlueWorm-EAI-Tech/Mantis-SDK/joints"
)

// JointCommander sends joint commands to one arm, keyed by serial joint name. A transport
// implementation publishes them on joints.TopicJointCommand.
type JointCommander interface {
	CommandArm(ctx context.Context, side joints.Side, positions map[string]float64) error
}

// Command is one command seen by a RecordingCommander.
type Command struct {
	Side      joints.Side
	Positions map[string]float64
}

// RecordingCommander is an in-memory JointCommander that records every command. It is useful
// offline and in tests.
type RecordingCommander struct {
	mu       sync.Mutex
	commands []Command
	// Err, if set, is returned by every command after recording it.
	Err error
}

// CommandArm records the command.
func (c *RecordingCommander) CommandArm(ctx context.Context, side joints.Side, positions map[string]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := make(map[string]float64, len(positions))
	for k, v := range positions {
		copied[k] = v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, Command{Side: side, Positions: copied})
	return c.Err
}

// Commands returns every recorded command in arrival order.
func (c *RecordingCommander) Commands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Command{}, c.commands...)
}

// Last returns the last command sent to one arm.
func (c *RecordingCommander) Last(side joints.Side) (Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.commands) - 1; i >= 0; i-- {
		if c.commands[i].Side == side {
			return c.commands[i], true
		}
	}
	return Command{}, false
}
