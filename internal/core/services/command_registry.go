package services

import (
	"sync"

	"queuepulse.board/internal/core/domain"
)

// RunCommandRegistry holds the run commands registered for dashboard entries,
// keyed by item key (queueID-taskType). Registration happens outside the
// dashboard's control, typically at startup; entries are never removed, so a
// key once registered stays resolvable for the process lifetime.
type RunCommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]domain.RunCommand // item key -> command
}

// NewRunCommandRegistry creates an empty registry.
func NewRunCommandRegistry() *RunCommandRegistry {
	return &RunCommandRegistry{
		commands: make(map[string]domain.RunCommand),
	}
}

// Register stores a command under the item key for its queue and task type.
// Registering the same key again replaces the previous command.
func (r *RunCommandRegistry) Register(cmd domain.RunCommand) {
	key := domain.ItemID(cmd.QueueID, cmd.TaskType)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[key] = cmd
}

// Get returns the command registered under key. The lock covers only the
// lookup; callers use the returned copy without further synchronization.
func (r *RunCommandRegistry) Get(key string) (domain.RunCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[key]
	return cmd, ok
}

// Find returns the command with the given command ID, scanning all
// registrations. Used by the trigger endpoint, which knows the command ID
// from a rendered dashboard but not the item key.
func (r *RunCommandRegistry) Find(commandID string) (domain.RunCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cmd := range r.commands {
		if cmd.ID == commandID {
			return cmd, true
		}
	}
	return domain.RunCommand{}, false
}

// Len returns the number of registered commands.
func (r *RunCommandRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
