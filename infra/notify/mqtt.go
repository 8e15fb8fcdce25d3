// Package notify publishes promotion announcements to an MQTT broker so
// downstream consumers can reload the production model without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/evdemand/core/logger"
	"github.com/kilianp07/evdemand/core/registry"
)

// Config defines the connection parameters for the announcer.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
	Username string `json:"username"`
	Password string `json:"password"`
	QoS      byte   `json:"qos"`
}

// SetDefaults fills the optional fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "evdemand-registry"
	}
	if c.Topic == "" {
		c.Topic = "evdemand/registry/promotions"
	}
}

// Validate checks the config when the announcer is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("notify: broker is required when enabled")
	}
	return nil
}

type mqttClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) mqttClient {
	return paho.NewClient(opts)
}

// Announcer publishes promotion events over MQTT.
type Announcer struct {
	cli   mqttClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewAnnouncer connects to the broker. Announcements are retained so a
// consumer connecting later still sees the latest promotion.
func NewAnnouncer(cfg Config, log logger.Logger) (*Announcer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("mqtt connection lost: %v", err)
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Announcer{cli: c, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// Announce publishes the promotion event as JSON on the configured topic.
func (a *Announcer) Announce(ev registry.PromotionEvent) error {
	payload, err := json.Marshal(struct {
		Timestamp time.Time `json:"timestamp"`
		ModelName string    `json:"model_name"`
		ModelPath string    `json:"model_path"`
		MAE       float64   `json:"mae"`
	}{
		Timestamp: ev.Timestamp,
		ModelName: ev.Production.ModelName,
		ModelPath: ev.Production.ModelPath,
		MAE:       ev.Production.Metrics.MAE,
	})
	if err != nil {
		return err
	}
	token := a.cli.Publish(a.topic, a.qos, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	a.log.Infof("announced promotion of %s on %s", ev.Production.ModelName, a.topic)
	return nil
}

// Close disconnects from the broker.
func (a *Announcer) Close() {
	if a.cli != nil && a.cli.IsConnected() {
		a.cli.Disconnect(250)
	}
}
