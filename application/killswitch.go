package application

import "sync"

// KillSwitch is a one-shot stop token shared between the runner and
// external triggers such as OS signals. Once triggered it stays
// triggered; later triggers keep the first reason.
type KillSwitch struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	reason string
}

// NewKillSwitch creates an untriggered kill switch.
func NewKillSwitch() *KillSwitch {
	return &KillSwitch{done: make(chan struct{})}
}

// Trigger fires the switch with a human-readable reason.
func (k *KillSwitch) Trigger(reason string) {
	k.once.Do(func() {
		k.mu.Lock()
		k.reason = reason
		k.mu.Unlock()
		close(k.done)
	})
}

// Triggered returns a channel closed when the switch fires.
func (k *KillSwitch) Triggered() <-chan struct{} {
	return k.done
}

// IsTriggered reports whether the switch has fired.
func (k *KillSwitch) IsTriggered() bool {
	select {
	case <-k.done:
		return true
	default:
		return false
	}
}

// Reason returns why the switch fired, or "" when it has not.
func (k *KillSwitch) Reason() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.reason
}
