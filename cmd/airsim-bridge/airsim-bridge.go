package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/cyrilix/airsim-bridge/pkg/bridge"
	"github.com/cyrilix/airsim-bridge/pkg/controls"
	"github.com/cyrilix/airsim-bridge/pkg/events"
	"github.com/cyrilix/airsim-bridge/pkg/gateway"
	"github.com/cyrilix/airsim-bridge/pkg/rosmsg"
	"github.com/cyrilix/airsim-bridge/pkg/simulator"
	"github.com/cyrilix/robocar-base/cli"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"log"
	"os"
	"sync"
	"time"
)

const DefaultClientId = "airsim-bridge"

const (
	TransportMqtt  = "mqtt"
	TransportNats  = "nats"
	TransportRedis = "redis"
)

func main() {
	var mqttBroker, username, password, clientId string
	var topicHello, topicPing, topicAccel, topicGps, topicOdometry, topicImu string
	var address, vehicleName, transport, payloadFormat, natsUrl, redisAddr string
	var frameId, childFrameId, onError string
	var helloPeriod, statePeriod, rpcTimeout, redisLatestTTL time.Duration
	var disarmOnExit, debug bool

	mqttQos := cli.InitIntFlag("MQTT_QOS", 0)
	_, mqttRetain := os.LookupEnv("MQTT_RETAIN")

	cli.InitMqttFlags(DefaultClientId, &mqttBroker, &username, &password, &clientId, &mqttQos, &mqttRetain)

	flag.StringVar(&topicHello, "topic-hello", envOrDefault("TOPIC_HELLO", "/airsim/hello"), "Topic to publish greetings, use TOPIC_HELLO if args not set")
	flag.StringVar(&topicPing, "topic-ping", envOrDefault("TOPIC_PING", "/exo/airsim/drone/ping"), "Topic to publish simulator ping, use TOPIC_PING if args not set")
	flag.StringVar(&topicAccel, "topic-accel", envOrDefault("TOPIC_ACCEL", "/exo/airsim/drone/accel"), "Topic to publish accelerations, use TOPIC_ACCEL if args not set")
	flag.StringVar(&topicGps, "topic-gps", envOrDefault("TOPIC_GPS", "/exo/airsim/drone/gps"), "Topic to publish gps fix, use TOPIC_GPS if args not set")
	flag.StringVar(&topicOdometry, "topic-odometry", envOrDefault("TOPIC_ODOMETRY", "/exo/airsim/drone/odometry"), "Topic to publish odometry, use TOPIC_ODOMETRY if args not set")
	flag.StringVar(&topicImu, "topic-imu", envOrDefault("TOPIC_IMU", "/exo/airsim/drone/imu"), "Topic to publish imu samples, use TOPIC_IMU if args not set")

	flag.StringVar(&address, "simulator-address", envOrDefault("AIRSIM_ADDRESS", simulator.DefaultAddress), "Simulator rpc address, use AIRSIM_ADDRESS if args not set")
	flag.StringVar(&vehicleName, "vehicle-name", os.Getenv("AIRSIM_VEHICLE"), "Vehicle to poll, default vehicle if empty, use AIRSIM_VEHICLE if args not set")
	flag.DurationVar(&rpcTimeout, "rpc-timeout", 0, "Timeout of each simulator call, 0 waits forever")
	flag.BoolVar(&disarmOnExit, "disarm-on-exit", false, "Disarm vehicle and release api control on exit")

	flag.StringVar(&transport, "transport", envOrDefault("BRIDGE_TRANSPORT", TransportMqtt), fmt.Sprintf("Pub/sub transport, one of %v, %v, %v", TransportMqtt, TransportNats, TransportRedis))
	flag.StringVar(&payloadFormat, "payload-format", envOrDefault("BRIDGE_PAYLOAD_FORMAT", rosmsg.CodecProtobuf), fmt.Sprintf("Payload encoding, %v or %v", rosmsg.CodecProtobuf, rosmsg.CodecJson))
	flag.StringVar(&natsUrl, "nats-url", envOrDefault("NATS_URL", nats.DefaultURL), "Nats server url, use NATS_URL if args not set")
	flag.StringVar(&redisAddr, "redis-addr", envOrDefault("REDIS_ADDR", "127.0.0.1:6379"), "Redis address, use REDIS_ADDR if args not set")
	flag.DurationVar(&redisLatestTTL, "redis-latest-ttl", 0, "Store last payload of each topic in redis with this ttl, 0 disables")

	flag.DurationVar(&helloPeriod, "hello-period", bridge.DefaultHelloPeriod, "Hello timer period")
	flag.DurationVar(&statePeriod, "state-period", bridge.DefaultStatePeriod, "State timer period")
	flag.StringVar(&frameId, "frame-id", bridge.DefaultFrameID, "Frame id of published headers")
	flag.StringVar(&childFrameId, "child-frame-id", bridge.DefaultChildFrameID, "Child frame id of odometry")
	flag.StringVar(&onError, "on-error", string(bridge.ErrorPolicyFail), fmt.Sprintf("Behaviour when simulator call fails, %v or %v", bridge.ErrorPolicyFail, bridge.ErrorPolicyContinue))
	flag.BoolVar(&debug, "debug", false, "Debug logs")

	flag.Parse()

	config := zap.NewDevelopmentConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	lgr, err := config.Build()
	if err != nil {
		log.Fatalf("unable to init logger: %v", err)
	}
	defer func() {
		if err := lgr.Sync(); err != nil {
			log.Printf("unable to Sync logger: %v\n", err)
		}
	}()
	zap.ReplaceGlobals(lgr)

	codec, err := rosmsg.CodecByName(payloadFormat)
	if err != nil {
		zap.S().Fatalf("invalid payload format: %v", err)
	}
	errorPolicy, err := bridge.ParseErrorPolicy(onError)
	if err != nil {
		zap.S().Fatalf("invalid error policy: %v", err)
	}

	var pub events.PublishCloser
	switch transport {
	case TransportMqtt:
		client, err := cli.Connect(mqttBroker, username, password, clientId)
		if err != nil {
			zap.S().Fatalf("unable to connect to events broker: %v", err)
		}
		pub = events.NewMqttPublisher(client, byte(mqttQos), mqttRetain)
	case TransportNats:
		conn, err := nats.Connect(natsUrl, nats.Name(clientId))
		if err != nil {
			zap.S().Fatalf("unable to connect to nats server: %v", err)
		}
		pub = events.NewNatsPublisher(conn)
	case TransportRedis:
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			zap.S().Fatalf("unable to connect to redis: %v", err)
		}
		pub = events.NewRedisPublisher(client, events.WithLatestValue(events.DefaultLatestKeyPrefix, redisLatestTTL))
	default:
		zap.S().Fatalf("unknown transport '%v'", transport)
	}
	zap.S().Infof("publish on %v with %v payloads", transport, codec.Name())

	gtw := gateway.New(address, gateway.WithVehicleName(vehicleName), gateway.WithTimeout(rpcTimeout))
	if err := controls.Arm(context.Background(), gtw); err != nil {
		zap.S().Fatalf("unable to take control of vehicle: %v", err)
	}

	topics := bridge.Topics{
		Hello:    events.NewMsgPublisher(pub, codec, topicHello),
		Ping:     events.NewMsgPublisher(pub, codec, topicPing),
		Accel:    events.NewMsgPublisher(pub, codec, topicAccel),
		Gps:      events.NewMsgPublisher(pub, codec, topicGps),
		Odometry: events.NewMsgPublisher(pub, codec, topicOdometry),
		Imu:      events.NewMsgPublisher(pub, codec, topicImu),
	}
	b := bridge.New(gtw, topics,
		bridge.WithPeriods(helloPeriod, statePeriod),
		bridge.WithFrameIDs(frameId, childFrameId),
		bridge.WithErrorPolicy(errorPolicy),
	)

	svc := newService(b, gtw, pub, disarmOnExit)
	cli.HandleExit(svc)

	if err := run(svc); err != nil {
		zap.S().Fatalf("bridge stopped: %v", err)
	}
}

// run serves the bridge and returns once the vehicle and the broker are released
func run(svc *service) error {
	if err := svc.Start(); err != nil {
		svc.Stop()
		return err
	}
	<-svc.Done()
	return nil
}

type vehicle interface {
	controls.Controller
	Close() error
}

func newService(b *bridge.Bridge, v vehicle, pub events.PublishCloser, disarmOnExit bool) *service {
	return &service{
		Bridge:       b,
		vehicle:      v,
		pub:          pub,
		disarmOnExit: disarmOnExit,
		done:         make(chan struct{}),
	}
}

/* service releases the simulator and the broker when the bridge stops */
type service struct {
	*bridge.Bridge
	vehicle      vehicle
	pub          events.PublishCloser
	disarmOnExit bool

	stopOnce sync.Once
	done     chan struct{}
}

// Done is closed when Stop has released every connection
func (s *service) Done() <-chan struct{} {
	return s.done
}

func (s *service) Stop() {
	s.stopOnce.Do(func() {
		defer close(s.done)
		s.Bridge.Stop()

		if s.disarmOnExit {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := controls.Release(ctx, s.vehicle); err != nil {
				zap.S().Warnf("unable to release vehicle: %v", err)
			}
			cancel()
		}
		if err := multierr.Combine(s.pub.Close(), s.vehicle.Close()); err != nil {
			zap.S().Warnf("unexpected error while connections are closed: %v", err)
		}
	})
}

func envOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
