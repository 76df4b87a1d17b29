package bridge

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// Envelope is the wire shape of a bridged message: the vocabulary
// name plus an opaque payload, JSON-marshaled/unmarshaled across the
// broker the same way the teacher's sio packages move sheens messages
// over transports.
type Envelope struct {
	Name    vocabulary.MessageName `json:"name"`
	Payload interface{}            `json:"payload,omitempty"`
}

// Options configures a Bridge, following the flag names the teacher's
// sio/mqclient exposes on its command line.
type Options struct {
	Broker    string
	ClientID  string
	KeepAlive time.Duration
	Username  string
	Password  string
}

// Bridge subscribes inbound MQTT topics to inject Machine-scope
// messages into the Router, and publishes to MQTT topics whatever is
// passed to Publish. It does not observe or forward router traffic.
type Bridge struct {
	client mqtt.Client
	router *router.Router
	clk    *clock.Clock
}

// Connect dials the broker described by opts.
func Connect(opts Options, rtr *router.Router, clk *clock.Clock) (*Bridge, error) {
	o := mqtt.NewClientOptions()
	o.AddBroker(opts.Broker)
	o.SetClientID(opts.ClientID)
	if opts.KeepAlive > 0 {
		o.SetKeepAlive(opts.KeepAlive)
	}
	o.Username = opts.Username
	o.Password = opts.Password

	c := mqtt.NewClient(o)
	if t := c.Connect(); t.Wait() && t.Error() != nil {
		return nil, t.Error()
	}
	return &Bridge{client: c, router: rtr, clk: clk}, nil
}

// Close disconnects cleanly, quiescing for quiesceMS milliseconds,
// matching the teacher's mqclient shutdown.
func (b *Bridge) Close(quiesceMS uint) {
	b.client.Disconnect(quiesceMS)
}

// SubscribeInto subscribes topic and, for every message received,
// injects it as a Machine-scope message addressed to receiver. A
// payload that fails to parse as an Envelope is logged and dropped.
func (b *Bridge) SubscribeInto(topic string, receiver vocabulary.AgentId, qos byte) error {
	handler := func(c mqtt.Client, m mqtt.Message) {
		var env Envelope
		if err := json.Unmarshal(m.Payload(), &env); err != nil {
			log.Printf("bridge: bad envelope on %s: %v", topic, err)
			return
		}
		b.router.Send(0, b.clk.Now(), env.Name, receiver, 0,
			vocabulary.Machine, 0, vocabulary.AllQueues, env.Payload, false, false)
	}
	t := b.client.Subscribe(topic, qos, handler)
	t.Wait()
	return t.Error()
}

// Publish marshals name/payload as an Envelope and publishes it to
// topic.
func (b *Bridge) Publish(topic string, qos byte, retain bool, name vocabulary.MessageName, payload interface{}) error {
	js, err := json.Marshal(Envelope{Name: name, Payload: payload})
	if err != nil {
		return fmt.Errorf("bridge: marshal error: %w", err)
	}
	t := b.client.Publish(topic, qos, retain, js)
	t.Wait()
	return t.Error()
}
