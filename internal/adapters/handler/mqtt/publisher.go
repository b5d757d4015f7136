package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"queuepulse.board/internal/core/domain"
)

// Publisher pushes dashboard snapshots and operator events to an MQTT broker,
// feeding wallboards and consoles that never open an HTTP connection.
type Publisher struct {
	client mqtt.Client
	prefix string
}

// NewPublisher initializes the MQTT publisher
func NewPublisher(brokerURL string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("queuepulse-board-%d", time.Now().UnixNano()))
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	log.Printf("Connected to MQTT Broker: %s", brokerURL)
	return &Publisher{
		client: client,
		prefix: "queuepulse",
	}, nil
}

// PublishDashboard publishes the snapshot retained, so a console subscribing
// mid-flight immediately receives the latest board, plus one retained topic
// per item for consumers that watch a single queue.
func (p *Publisher) PublishDashboard(ctx context.Context, items []domain.DashboardItem) {
	payload, err := json.Marshal(items)
	if err != nil {
		log.Printf("Failed to marshal dashboard: %v", err)
		return
	}

	// Topic: queuepulse/dashboard
	topic := fmt.Sprintf("%s/dashboard", p.prefix)
	p.client.Publish(topic, 0, true, payload)

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		// Topic: queuepulse/items/{item_id}
		p.client.Publish(fmt.Sprintf("%s/items/%s", p.prefix, item.ID), 0, true, data)
	}
}

// PublishCommandTriggered announces a manual run on the events topic.
func (p *Publisher) PublishCommandTriggered(execution domain.ExecutionView) {
	event := map[string]interface{}{
		"type":    "command_triggered",
		"payload": execution,
	}
	data, _ := json.Marshal(event)

	// Topic: queuepulse/events
	topic := fmt.Sprintf("%s/events", p.prefix)
	p.client.Publish(topic, 0, false, data)
}
