package gateway

import (
	"context"
	"errors"
	"fmt"
	"github.com/avast/retry-go"
	"github.com/cyrilix/airsim-bridge/pkg/simulator"
	"github.com/ugorji/go/codec"
	"go.uber.org/zap"
	"io"
	"net"
	"net/rpc"
	"sync"
	"time"
)

var ErrNotConnected = errors.New("not connected to simulator")

var mh = newMsgpackHandle()

func newMsgpackHandle() *codec.MsgpackHandle {
	h := codec.MsgpackHandle{}
	// rpclib expects the str8 and bin types of msgpack 2.0
	h.WriteExt = true
	return &h
}

type Option func(g *Gateway)

// WithVehicleName selects the vehicle addressed by every call, empty means the default vehicle
func WithVehicleName(name string) Option {
	return func(g *Gateway) {
		g.vehicle = name
	}
}

// WithTimeout bounds each rpc call. Zero, the default, waits for the simulator forever.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = timeout
	}
}

// WithConnectRetry configures how ConfirmConnection waits for the simulator
func WithConnectRetry(attempts uint, delay time.Duration) Option {
	return func(g *Gateway) {
		g.attempts = attempts
		g.delay = delay
	}
}

func New(addressSimulator string, opts ...Option) *Gateway {
	l := zap.S().With("simulator", addressSimulator)
	l.Info("run gateway to simulator")

	g := &Gateway{
		address:  addressSimulator,
		attempts: 10,
		delay:    1 * time.Second,
		log:      l,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

/* Gateway is the msgpack-rpc client of one simulated multirotor */
type Gateway struct {
	address  string
	vehicle  string
	timeout  time.Duration
	attempts uint
	delay    time.Duration

	muClient sync.Mutex
	client   *rpc.Client

	log *zap.SugaredLogger
}

// Connect opens the rpc connection if it is not already open
func (g *Gateway) Connect() error {
	g.muClient.Lock()
	defer g.muClient.Unlock()
	if g.client != nil {
		return nil
	}

	conn, err := connect(g.address)
	if err != nil {
		return fmt.Errorf("unable to connect to simulator at %v: %w", g.address, err)
	}
	g.client = rpc.NewClientWithCodec(codec.MsgpackSpecRpc.ClientCodec(conn, mh))
	g.log.Info("connection success")
	return nil
}

func (g *Gateway) Close() error {
	g.muClient.Lock()
	defer g.muClient.Unlock()
	if g.client == nil {
		g.log.Warn("no connection to close")
		return nil
	}
	err := g.client.Close()
	g.client = nil
	if err != nil && !errors.Is(err, rpc.ErrShutdown) {
		return fmt.Errorf("unable to close connection to simulator: %w", err)
	}
	return nil
}

// ConfirmConnection waits until the simulator answers a ping, then checks api versions
func (g *Gateway) ConfirmConnection(ctx context.Context) error {
	g.log.Info("waiting for connection")
	err := retry.Do(
		func() error {
			if err := g.Connect(); err != nil {
				return err
			}
			ok, err := g.Ping(ctx)
			if err != nil {
				g.reset()
				return err
			}
			if !ok {
				return fmt.Errorf("simulator at %v doesn't answer ping", g.address)
			}
			return nil
		},
		retry.Attempts(g.attempts),
		retry.Delay(g.delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			g.log.Debugf("connection attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		return fmt.Errorf("unable to confirm connection to simulator: %w", err)
	}
	g.log.Info("connected")

	var serverVersion, minClientVersion int
	if err := g.call(ctx, simulator.MethodGetServerVersion, &serverVersion); err != nil {
		return err
	}
	if err := g.call(ctx, simulator.MethodGetMinRequiredClientVersion, &minClientVersion); err != nil {
		return err
	}
	if serverVersion < simulator.MinRequiredServerVersion {
		g.log.Warnf("simulator api version %d is older than required version %d, please update the simulator",
			serverVersion, simulator.MinRequiredServerVersion)
	}
	if simulator.ClientVersion < minClientVersion {
		g.log.Warnf("client api version %d is older than version %d required by the simulator, please update the client",
			simulator.ClientVersion, minClientVersion)
	}
	g.log.Debugf("server version %d, min required client version %d", serverVersion, minClientVersion)
	return nil
}

func (g *Gateway) EnableApiControl(ctx context.Context, enabled bool) error {
	return g.call(ctx, simulator.MethodEnableApiControl, nil, enabled, g.vehicle)
}

func (g *Gateway) ArmDisarm(ctx context.Context, arm bool) (bool, error) {
	var result bool
	err := g.call(ctx, simulator.MethodArmDisarm, &result, arm, g.vehicle)
	return result, err
}

func (g *Gateway) Ping(ctx context.Context) (bool, error) {
	var pong bool
	err := g.call(ctx, simulator.MethodPing, &pong)
	return pong, err
}

func (g *Gateway) MultirotorState(ctx context.Context) (*simulator.MultirotorState, error) {
	var state simulator.MultirotorState
	if err := g.call(ctx, simulator.MethodGetMultirotorState, &state, g.vehicle); err != nil {
		return nil, err
	}
	return &state, nil
}

func (g *Gateway) call(ctx context.Context, method simulator.Method, reply interface{}, args ...interface{}) error {
	g.muClient.Lock()
	client := g.client
	g.muClient.Unlock()
	if client == nil {
		return fmt.Errorf("unable to call %v: %w", method, ErrNotConnected)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	// params must always be an array, even empty
	params := codec.MsgpackSpecRpcMultiArgs(append([]interface{}{}, args...))
	c := client.Go(string(method), params, reply, make(chan *rpc.Call, 1))
	select {
	case <-c.Done:
		if c.Error != nil {
			return fmt.Errorf("unable to call %v: %w", method, c.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("call %v aborted: %w", method, ctx.Err())
	}
}

func (g *Gateway) reset() {
	if err := g.Close(); err != nil {
		g.log.Debugf("unable to reset connection: %v", err)
	}
}

var connect = func(address string) (io.ReadWriteCloser, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to %v: %w", address, err)
	}
	return conn, nil
}
