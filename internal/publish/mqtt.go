// Package publish pushes named readings to an MQTT broker after each refresh.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
	"github.com/i474232898/luchtmeetnet-monitor/internal/config"
)

const publishTimeout = 5 * time.Second

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher publishes every reading as a retained message under
// <prefix>/<reading-id>/state, with a one-off <prefix>/<reading-id>/config
// describing the reading for each newly seen station.
type Publisher struct {
	client     mqtt.Client
	pub        publisher
	prefix     string
	namePrefix string
	logger     *slog.Logger

	mu               sync.Mutex
	announcedStation string
}

type readingConfig struct {
	Name        string `json:"name"`
	UniqueID    string `json:"unique_id"`
	StateTopic  string `json:"state_topic"`
	DeviceClass string `json:"device_class,omitempty"`
	StateClass  string `json:"state_class,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Station     string `json:"station"`
}

// NewPublisher creates a Publisher for the configured broker. It does not connect.
func NewPublisher(cfg config.MQTTConfig, namePrefix string, logger *slog.Logger) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.Broker, "port", cfg.Port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	p := newPublisher(client, cfg.TopicPrefix, namePrefix, logger)
	p.client = client
	return p
}

func newPublisher(pub publisher, prefix, namePrefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		pub:        pub,
		prefix:     prefix,
		namePrefix: namePrefix,
		logger:     logger.With("component", "mqtt"),
	}
}

// Connect waits for the initial broker connection, respecting ctx.
func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Disconnect closes the broker connection.
func (p *Publisher) Disconnect() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.logger.Info("mqtt disconnected")
}

// OnSnapshot publishes the readings of snap. It satisfies scheduler.Listener.
func (p *Publisher) OnSnapshot(snap airquality.Snapshot) {
	if err := p.PublishSnapshot(snap); err != nil {
		p.logger.Error("failed to publish readings", "error", err, "station", snap.Station)
	}
}

// PublishSnapshot publishes reading configs (once per station) and states.
func (p *Publisher) PublishSnapshot(snap airquality.Snapshot) error {
	exposer := airquality.NewExposer(p.namePrefix, airquality.SnapshotSourceFunc(func() (airquality.Snapshot, bool) {
		return snap, true
	}))
	readings := exposer.Readings()

	p.mu.Lock()
	announce := p.announcedStation != snap.Station
	p.mu.Unlock()

	if announce {
		for _, r := range readings {
			cfg := readingConfig{
				Name:        r.Name,
				UniqueID:    fmt.Sprintf("%s_%s", snap.Station, r.ID),
				StateTopic:  p.topic(r.ID, "state"),
				DeviceClass: r.DeviceClass,
				StateClass:  r.StateClass,
				Icon:        r.Icon,
				Station:     snap.Station,
			}
			data, err := json.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config for %s: %w", r.ID, err)
			}
			if err := p.publish(p.topic(r.ID, "config"), data); err != nil {
				return err
			}
		}
		p.mu.Lock()
		p.announcedStation = snap.Station
		p.mu.Unlock()
	}

	for _, r := range readings {
		if err := p.publish(p.topic(r.ID, "state"), formatValue(r.Value)); err != nil {
			return err
		}
	}

	p.logger.Debug("published readings", "station", snap.Station, "count", len(readings))
	return nil
}

func (p *Publisher) topic(id airquality.ReadingID, kind string) string {
	return fmt.Sprintf("%s/%s/%s", p.prefix, id, kind)
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.pub.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func formatValue(v any) []byte {
	switch val := v.(type) {
	case float64:
		return []byte(strconv.FormatFloat(val, 'f', -1, 64))
	case string:
		return []byte(val)
	default:
		return []byte(fmt.Sprint(val))
	}
}
