package host

// clock.go implements HOST_TIME_NANOS, ELAPSED_TIME_NANOS and SET_TIMER_NANOS. Elapsed
// time is measured from the Clock's construction, not from the Unix epoch, so repeated
// runs produce comparable small numbers.

import (
	"context"
	"time"

	"github.com/nicobert/rvm/internal/vm"
)

// Clock services the three timer-related interrupts.
type Clock struct {
	start time.Time
	timer *time.Timer
}

// NewClock returns a Clock whose elapsed-time baseline is now.
func NewClock(now time.Time) *Clock {
	return &Clock{start: now}
}

// Register installs this Clock's handlers on h.
func (c *Clock) Register(h *Host) {
	h.Register(vm.HostTimeNanos, c.hostTime)
	h.Register(vm.ElapsedTimeNanos, c.elapsedTime)
	h.Register(vm.SetTimerNanos, c.setTimer)
}

func (c *Clock) hostTime(_ context.Context, p *vm.Processor) error {
	p.Regs[vm.R1] = vm.Word(time.Now().UnixNano())
	setError(p, vm.NoError)

	return nil
}

func (c *Clock) elapsedTime(_ context.Context, p *vm.Processor) error {
	p.Regs[vm.R1] = vm.Word(time.Since(c.start).Nanoseconds())
	setError(p, vm.NoError)

	return nil
}

// setTimer arms a one-shot timer for the nanosecond duration in r1, replacing any timer
// already armed. Expiry has no effect a program can observe: nothing is signalled to
// the processor and no handler address is recorded or jumped to. Programs that need to
// wait spin on ELAPSED_TIME_NANOS instead.
func (c *Clock) setTimer(_ context.Context, p *vm.Processor) error {
	if c.timer != nil {
		c.timer.Stop()
	}

	d := time.Duration(int64(p.Regs[vm.R1]))
	c.timer = time.AfterFunc(d, func() {})

	setError(p, vm.NoError)

	return nil
}
