package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MessageHandler receives raw device payloads
type MessageHandler func(topic string, payload []byte)

// Subscriber is the transport carrying device messages
type Subscriber interface {
	Connect(ctx context.Context) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Close()
}

// mqttSubscriber is the paho backed Subscriber. It re-subscribes after an
// automatic reconnect.
type mqttSubscriber struct {
	client         mqtt.Client
	connectTimeout time.Duration
	logger         logging.Logger

	mu      sync.Mutex
	topic   string
	qos     byte
	handler MessageHandler
}

// NewMQTTSubscriber creates a paho client for the configured broker
func NewMQTTSubscriber(config *Config, logger logging.Logger) Subscriber {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	clientID := config.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("brainwave-monitor-%s", uuid.NewString())
	}

	s := &mqttSubscriber{
		connectTimeout: config.ConnectTimeout,
		logger: logger.WithFields(logging.Fields{
			"component": "mqtt_subscriber",
			"broker":    config.Broker,
			"client_id": clientID,
		}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(config.ConnectTimeout)
	opts.OnConnect = s.onConnect
	opts.OnConnectionLost = s.onConnectionLost

	s.client = mqtt.NewClient(opts)
	return s
}

func (s *mqttSubscriber) Connect(ctx context.Context) error {
	token := s.client.Connect()

	timeout := s.connectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timed out after %v connecting to broker", timeout)
	}
	return token.Error()
}

func (s *mqttSubscriber) Subscribe(topic string, qos byte, handler MessageHandler) error {
	s.mu.Lock()
	s.topic, s.qos, s.handler = topic, qos, handler
	s.mu.Unlock()

	return s.subscribe(s.client)
}

func (s *mqttSubscriber) Close() {
	s.mu.Lock()
	topic := s.topic
	s.handler = nil
	s.mu.Unlock()

	if !s.client.IsConnected() {
		return
	}
	if topic != "" {
		s.client.Unsubscribe(topic).WaitTimeout(time.Second)
	}
	s.client.Disconnect(250)
}

func (s *mqttSubscriber) subscribe(client mqtt.Client) error {
	s.mu.Lock()
	topic, qos, handler := s.topic, s.qos, s.handler
	s.mu.Unlock()

	if handler == nil {
		return nil
	}

	token := client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(s.connectTimeout) {
		return fmt.Errorf("timed out subscribing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	s.logger.Debug("Subscribed to device topic", logging.Fields{"topic": topic})
	return nil
}

func (s *mqttSubscriber) onConnect(client mqtt.Client) {
	s.logger.Info("Connected to broker")
	if err := s.subscribe(client); err != nil {
		s.logger.Error(err, "Failed to restore subscription")
	}
}

func (s *mqttSubscriber) onConnectionLost(_ mqtt.Client, err error) {
	s.logger.Warn("Connection to broker lost", logging.Fields{"error": err.Error()})
}
