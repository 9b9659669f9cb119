package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Hand encoded messages to a transmitter over MQTT.
 *
 * Description:	The radio side (audio generation, scheduling the two
 *		minute WSPR slots) lives elsewhere and subscribes to
 *		<prefix>/wspr/tx/<message id as two hex digits>.
 *
 *		Each chunk is one JSON message, not retained:
 *
 *		{"message_id":42,"index":0,"count":3,
 *		 "callsign":"K1ABCD","grid":"FN31","power":23,
 *		 "text":"K1ABCD FN31 23","timestamp":"..."}
 *
 *------------------------------------------------------------------*/

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

type TxMessage struct {
	MessageID byte      `json:"message_id"`
	Index     int       `json:"index"`
	Count     int       `json:"count"`
	Callsign  string    `json:"callsign"`
	Grid      string    `json:"grid"`
	Power     int       `json:"power"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TxTopic is where messages for one payload are published.
func TxTopic(prefix string, messageID byte) string {
	return fmt.Sprintf("%s/wspr/tx/%02x", prefix, messageID)
}

// TxMessages builds the JSON bodies for a message set, in order.
func TxMessages(messageID byte, messages []Message, now time.Time) []TxMessage {
	var out = make([]TxMessage, len(messages))

	for i, m := range messages {
		out[i] = TxMessage{
			MessageID: messageID,
			Index:     i,
			Count:     len(messages),
			Callsign:  m.Callsign,
			Grid:      m.GridSquare,
			Power:     m.PowerDbm,
			Text:      m.String(),
			Timestamp: now.UTC(),
		}
	}

	return out
}

type MQTTPublisher struct {
	client mqtt.Client
	config MQTTConfig
}

func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("MQTT: no broker configured")
	}

	var opts = mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID("wsprcodex-" + uuid.NewString())

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}

	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetConnectTimeout(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "err", err)
	})

	var client = mqtt.NewClient(opts)

	var token = client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT: connect to %s: %w", cfg.Broker, token.Error())
	}

	logger.Info("MQTT connected", "broker", cfg.Broker)

	return &MQTTPublisher{client: client, config: cfg}, nil
}

// Publish sends every message of a set, stopping at the first failure.
func (p *MQTTPublisher) Publish(messageID byte, messages []Message) error {
	var topic = TxTopic(p.config.TopicPrefix, messageID)

	for _, tx := range TxMessages(messageID, messages, time.Now()) {
		var body, err = json.Marshal(tx)
		if err != nil {
			return err
		}

		var token = p.client.Publish(topic, p.config.QoS, false, body)
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("MQTT: publish %s chunk %d: %w", topic, tx.Index, token.Error())
		}

		logger.Debug("MQTT published", "topic", topic, "text", tx.Text)
	}

	logger.Info("MQTT published message set", "topic", topic, "count", len(messages))

	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
