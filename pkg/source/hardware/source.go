package hardware

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

// Config contains device stream settings
type Config struct {
	Broker         string        `json:"broker"`
	Topic          string        `json:"topic"`
	SignalType     string        `json:"signal_type"`
	ClientID       string        `json:"client_id"`
	QoS            byte          `json:"qos"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	ResolveTimeout time.Duration `json:"resolve_timeout"`
	QueueSize      int           `json:"queue_size"`
}

// DefaultConfig returns settings for a local broker publishing EEG telemetry
func DefaultConfig() *Config {
	return &Config{
		Broker:         "tcp://localhost:1883",
		Topic:          "devices/+/eeg",
		SignalType:     "EEG",
		QoS:            1,
		ConnectTimeout: 10 * time.Second,
		ResolveTimeout: 10 * time.Second,
		QueueSize:      1024,
	}
}

// DeviceMessage is the JSON telemetry record published by a device
type DeviceMessage struct {
	DeviceID string  `json:"device_id"`
	DataType string  `json:"data_type"`
	Value    float64 `json:"value"`
	Units    string  `json:"units,omitempty"`
	TimeSec  float64 `json:"time_sec,omitempty"` // device clock, unix seconds
}

// Source reads samples from a device stream. Open resolves the stream by
// waiting for the first message of the configured signal type.
type Source struct {
	config     *Config
	subscriber Subscriber
	signalType string
	logger     logging.Logger

	samples  chan common.Sample
	resolved chan struct{}
	closed   chan struct{}

	resolveOnce sync.Once
	closeOnce   sync.Once

	mu       sync.RWMutex
	deviceID string

	dropped   atomic.Int64
	malformed atomic.Int64
}

// NewSource creates a device source on top of a subscriber. A nil subscriber
// selects the MQTT transport.
func NewSource(config *Config, subscriber Subscriber, logger logging.Logger) *Source {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	defaults := DefaultConfig()
	if config.SignalType == "" {
		config.SignalType = defaults.SignalType
	}
	if config.Topic == "" {
		config.Topic = defaults.Topic
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.ResolveTimeout <= 0 {
		config.ResolveTimeout = defaults.ResolveTimeout
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = defaults.ConnectTimeout
	}

	if subscriber == nil {
		subscriber = NewMQTTSubscriber(config, logger)
	}

	return &Source{
		config:     config,
		subscriber: subscriber,
		signalType: common.NormalizeSignalType(config.SignalType),
		samples:    make(chan common.Sample, config.QueueSize),
		resolved:   make(chan struct{}),
		closed:     make(chan struct{}),
		logger: logger.WithFields(logging.Fields{
			"component":   "hardware_source",
			"topic":       config.Topic,
			"signal_type": config.SignalType,
		}),
	}
}

// Type returns the source type
func (s *Source) Type() common.SourceType {
	return common.SourceTypeHardware
}

// Open connects to the transport and blocks until a stream of the configured
// signal type delivers its first sample, the resolve timeout passes, or ctx
// is done.
func (s *Source) Open(ctx context.Context) error {
	s.logger.Info("Looking for device stream", logging.Fields{
		"broker":          s.config.Broker,
		"resolve_timeout": s.config.ResolveTimeout.String(),
	})

	if err := s.subscriber.Connect(ctx); err != nil {
		return common.NewSourceError(common.SourceTypeHardware, common.ErrCodeConnection,
			"failed to connect to device broker", err)
	}

	if err := s.subscriber.Subscribe(s.config.Topic, s.config.QoS, s.handleMessage); err != nil {
		s.subscriber.Close()
		return common.NewSourceError(common.SourceTypeHardware, common.ErrCodeConnection,
			"failed to subscribe to device topic", err)
	}

	timer := time.NewTimer(s.config.ResolveTimeout)
	defer timer.Stop()

	select {
	case <-s.resolved:
		s.logger.Info("Connected to device stream", logging.Fields{
			"device_id": s.DeviceID(),
		})
		return nil
	case <-timer.C:
		s.subscriber.Close()
		return common.NewSourceError(common.SourceTypeHardware, common.ErrCodeStreamNotFound,
			"no "+s.signalType+" stream found on "+s.config.Topic+" within "+s.config.ResolveTimeout.String(), nil)
	case <-ctx.Done():
		s.subscriber.Close()
		return common.NewSourceError(common.SourceTypeHardware, common.ErrCodeStreamNotFound,
			"stream resolution cancelled", ctx.Err())
	case <-s.closed:
		return common.ErrSourceClosed
	}
}

// Next blocks until the device delivers a sample
func (s *Source) Next(ctx context.Context) (common.Sample, error) {
	select {
	case <-ctx.Done():
		return common.Sample{}, ctx.Err()
	case <-s.closed:
		return common.Sample{}, common.ErrSourceClosed
	case sample := <-s.samples:
		return sample, nil
	}
}

// Close unsubscribes and disconnects from the transport
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.subscriber.Close()

		s.logger.Info("Device source closed", logging.Fields{
			"dropped_samples":    s.dropped.Load(),
			"malformed_messages": s.malformed.Load(),
		})
	})
	return nil
}

// DeviceID returns the id of the device that resolved the stream
func (s *Source) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

// Dropped returns the number of samples discarded because the queue was full
func (s *Source) Dropped() int64 {
	return s.dropped.Load()
}

// handleMessage runs on the transport's delivery goroutine and must not block
func (s *Source) handleMessage(topic string, payload []byte) {
	var msg DeviceMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.malformed.Add(1)
		s.logger.Warn("Dropping undecodable device message", logging.Fields{
			"topic": topic,
			"error": common.NewSourceError(common.SourceTypeHardware, common.ErrCodeDecoding,
				"invalid device payload", err).Error(),
		})
		return
	}

	if common.NormalizeSignalType(msg.DataType) != s.signalType {
		return
	}

	s.resolveOnce.Do(func() {
		s.mu.Lock()
		s.deviceID = msg.DeviceID
		s.mu.Unlock()
		close(s.resolved)
	})

	sample := common.Sample{Value: msg.Value}
	if msg.TimeSec > 0 {
		sample.Timestamp = time.UnixMicro(int64(msg.TimeSec * 1e6))
	}

	select {
	case s.samples <- sample:
	default:
		if n := s.dropped.Add(1); n == 1 || n%1000 == 0 {
			s.logger.Warn("Sample queue full, dropping samples", logging.Fields{
				"dropped": s.dropped.Load(),
			})
		}
	}
}
