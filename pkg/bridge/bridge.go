package bridge

import (
	"context"
	"fmt"
	"github.com/benbjohnson/clock"
	"github.com/cyrilix/airsim-bridge/pkg/rosmsg"
	"github.com/cyrilix/airsim-bridge/pkg/simulator"
	"go.uber.org/zap"
	"time"
)

const (
	DefaultHelloPeriod  = 10 * time.Second
	DefaultStatePeriod  = 50 * time.Millisecond
	DefaultFrameID      = "world_ned"
	DefaultChildFrameID = "base_link"
)

// Vehicle is the part of the simulator client polled on each state tick
type Vehicle interface {
	Ping(ctx context.Context) (bool, error)
	MultirotorState(ctx context.Context) (*simulator.MultirotorState, error)
}

type MsgPublisher interface {
	Publish(msg rosmsg.Message) error
}

// Topics are the publishers of each outgoing message, a nil publisher is skipped
type Topics struct {
	Hello    MsgPublisher
	Ping     MsgPublisher
	Accel    MsgPublisher
	Gps      MsgPublisher
	Odometry MsgPublisher
	Imu      MsgPublisher
}

type ErrorPolicy string

const (
	// ErrorPolicyFail stops the bridge on the first failed state tick
	ErrorPolicyFail = ErrorPolicy("fail")
	// ErrorPolicyContinue logs the error and waits for the next tick
	ErrorPolicyContinue = ErrorPolicy("continue")
)

func ParseErrorPolicy(value string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(value); p {
	case ErrorPolicyFail, ErrorPolicyContinue:
		return p, nil
	}
	return "", fmt.Errorf("invalid error policy '%v', only %v or %v", value, ErrorPolicyFail, ErrorPolicyContinue)
}

type Option func(b *Bridge)

func WithClock(c clock.Clock) Option {
	return func(b *Bridge) {
		b.clock = c
	}
}

func WithPeriods(hello, state time.Duration) Option {
	return func(b *Bridge) {
		b.helloPeriod = hello
		b.statePeriod = state
	}
}

func WithFrameIDs(frameID, childFrameID string) Option {
	return func(b *Bridge) {
		b.frameID = frameID
		b.childFrameID = childFrameID
	}
}

func WithErrorPolicy(p ErrorPolicy) Option {
	return func(b *Bridge) {
		b.onError = p
	}
}

func New(vehicle Vehicle, topics Topics, opts ...Option) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		vehicle:      vehicle,
		topics:       topics,
		clock:        clock.New(),
		helloPeriod:  DefaultHelloPeriod,
		statePeriod:  DefaultStatePeriod,
		frameID:      DefaultFrameID,
		childFrameID: DefaultChildFrameID,
		onError:      ErrorPolicyFail,
		ctx:          ctx,
		cancel:       cancel,
		log:          zap.S().With("node", "airsim"),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

/*
Bridge republishes the vehicle state on two timers.

Both timers are served by the single goroutine running Start: callbacks never
overlap and a slow simulator call delays the hello timer too.
*/
type Bridge struct {
	vehicle Vehicle
	topics  Topics

	clock        clock.Clock
	helloPeriod  time.Duration
	statePeriod  time.Duration
	frameID      string
	childFrameID string
	onError      ErrorPolicy

	// only used by their own callback
	helloCount uint64
	stateCount uint64

	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.SugaredLogger
}

// Start runs the timers until Stop is called or, with ErrorPolicyFail, a state tick fails
func (b *Bridge) Start() error {
	b.log.Infof("start timers, hello every %v, state every %v", b.helloPeriod, b.statePeriod)
	helloTicker := b.clock.Ticker(b.helloPeriod)
	defer helloTicker.Stop()
	stateTicker := b.clock.Ticker(b.statePeriod)
	defer stateTicker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return nil
		case <-helloTicker.C:
			b.onHelloTick()
		case <-stateTicker.C:
			err := b.onStateTick(b.ctx)
			if err == nil {
				continue
			}
			if b.ctx.Err() != nil {
				// stopped during the simulator call
				return nil
			}
			if b.onError == ErrorPolicyFail {
				return fmt.Errorf("state timer callback failed: %w", err)
			}
			b.log.Errorf("state timer callback failed: %v", err)
		}
	}
}

func (b *Bridge) Stop() {
	b.log.Info("stop bridge")
	b.cancel()
}

func (b *Bridge) onHelloTick() {
	msg := &rosmsg.String{Data: fmt.Sprintf("Hello, world! %d", b.helloCount)}
	b.helloCount++

	b.log.Infof("Publishing '%s'", msg.Data)
	b.publish(b.topics.Hello, msg)
}

func (b *Bridge) onStateTick(ctx context.Context) error {
	b.log.Debugf("Publishing state %d", b.stateCount)
	b.stateCount++

	pong, err := b.vehicle.Ping(ctx)
	if err != nil {
		return fmt.Errorf("unable to ping vehicle: %w", err)
	}
	b.publish(b.topics.Ping, &rosmsg.Bool{Data: pong})

	state, err := b.vehicle.MultirotorState(ctx)
	if err != nil {
		return fmt.Errorf("unable to get multirotor state: %w", err)
	}

	header := rosmsg.Header{
		Stamp:   rosmsg.TimeFromNanos(state.Timestamp),
		FrameID: b.frameID,
	}
	b.publish(b.topics.Accel, newAccel(state))
	b.publish(b.topics.Gps, newNavSatFix(state, header))
	b.publish(b.topics.Odometry, newOdometry(state, header, b.childFrameID))
	b.publish(b.topics.Imu, newImu(state, header))
	return nil
}

func (b *Bridge) publish(p MsgPublisher, msg rosmsg.Message) {
	if p == nil {
		return
	}
	if err := p.Publish(msg); err != nil {
		b.log.Errorf("unable to publish %v: %v", msg.TypeName(), err)
	}
}
