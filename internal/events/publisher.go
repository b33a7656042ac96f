package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/mzjcars/stockdesk/internal/db"
	"github.com/mzjcars/stockdesk/internal/models"
	log "github.com/sirupsen/logrus"
)

const (
	// StateTopic carries the full stock aggregate after every change.
	StateTopic = "stockdesk/state"

	connectTimeout = 10 * time.Second
	publishQoS     = 0
)

// Publisher fans stock changes out over MQTT so dashboards and other
// subscribers see updates without polling. Publishing is best effort: a
// broker hiccup is logged and the next change is tried again.
type Publisher struct {
	client mqtt.Client
}

// NewPublisher connects to the broker and returns a ready publisher.
func NewPublisher(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.New("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"broker": brokerURL}).Info("Connected to MQTT broker")
	return &Publisher{client: client}, nil
}

// Publish pushes one aggregate snapshot to the state topic. The message is
// retained so a subscriber that connects later still gets the current state.
func (p *Publisher) Publish(state *models.StockState) {
	payload, err := json.Marshal(state)
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Error("Failed to encode stock state")
		return
	}
	token := p.client.Publish(StateTopic, publishQoS, true, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithFields(log.Fields{"topic": StateTopic, "error": err}).Warn("Failed to publish stock state")
		}
	}()
}

// Pump forwards every change from the stream to the broker until the context
// is cancelled or the stream ends.
func (p *Publisher) Pump(ctx context.Context, stream db.StateStream) {
	defer stream.Close(context.Background())
	for {
		state, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.WithFields(log.Fields{"error": err}).Error("Stock change stream failed")
			}
			return
		}
		if state == nil {
			return
		}
		p.Publish(state)
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
