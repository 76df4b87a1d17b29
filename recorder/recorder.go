package recorder

import (
	"encoding/binary"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/meridianlabs/agentfsm/clock"
	"github.com/meridianlabs/agentfsm/fsm"
	"github.com/meridianlabs/agentfsm/router"
	"github.com/meridianlabs/agentfsm/vocabulary"
)

// TransitionRecord is one machine's completed transition within a
// tick, captured from a fsm.TraceTransition event.
type TransitionRecord struct {
	Owner    vocabulary.AgentId    `json:"owner"`
	Machine  string                `json:"machine"`
	State    vocabulary.StateId    `json:"state"`
	Substate vocabulary.SubstateId `json:"substate"`
}

// DeliveryRecord is one message the Router successfully delivered
// within a tick.
type DeliveryRecord struct {
	Name     vocabulary.MessageName `json:"name"`
	Sender   vocabulary.AgentId     `json:"sender"`
	Receiver vocabulary.AgentId     `json:"receiver"`
	Queue    vocabulary.QueueIndex  `json:"queue"`
}

// TickRecord is what gets written per completed tick.
type TickRecord struct {
	Tick        uint64             `json:"tick"`
	Time        clock.Time         `json:"time"`
	Transitions []TransitionRecord `json:"transitions,omitempty"`
	Delivered   []DeliveryRecord   `json:"delivered,omitempty"`
}

// Collector accumulates the current tick's trace/delivery events; it
// implements fsm.Tracer and supplies a router.Router.OnDeliv hook.
// Call Flush(tick, now) once per completed tick, in Simulation.OnTick,
// to get a TickRecord and reset for the next one.
type Collector struct {
	transitions []TransitionRecord
	delivered   []DeliveryRecord
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Trace(ev fsm.TraceEvent) {
	if ev.Kind != fsm.TraceTransition {
		return
	}
	c.transitions = append(c.transitions, TransitionRecord{
		Owner:    ev.Owner,
		Machine:  ev.Machine,
		State:    ev.State,
		Substate: ev.Substate,
	})
}

func (c *Collector) OnDeliver(m *router.Message) {
	c.delivered = append(c.delivered, DeliveryRecord{
		Name:     m.Name,
		Sender:   m.Sender,
		Receiver: m.Receiver,
		Queue:    m.Queue,
	})
}

// Flush returns a TickRecord for everything collected since the last
// Flush, and clears the accumulators.
func (c *Collector) Flush(tick uint64, now clock.Time) TickRecord {
	rec := TickRecord{Tick: tick, Time: now, Transitions: c.transitions, Delivered: c.delivered}
	c.transitions = nil
	c.delivered = nil
	return rec
}

// Recorder appends TickRecords to a bbolt-backed file, one bucket per
// run, keyed by big-endian tick number so iteration is chronological.
// Grounded on cmd/mservice/storage/bolt.Storage.
type Recorder struct {
	db     *bolt.DB
	bucket []byte
}

// Open creates/opens the bbolt file at filename and selects (creating
// if necessary) the bucket named run for this session's records.
func Open(filename, run string) (*Recorder, error) {
	db, err := bolt.Open(filename, 0644, nil)
	if err != nil {
		return nil, err
	}
	bucket := []byte(run)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db, bucket: bucket}, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

// Append writes rec under its tick number. A second Append for the
// same tick overwrites the first.
func (r *Recorder) Append(rec TickRecord) error {
	js, err := json.Marshal(&rec)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, rec.Tick)
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		return b.Put(key, js)
	})
}

// Each reads every TickRecord in the run bucket in tick order, calling
// f for each. Used by the replay CLI.
func (r *Recorder) Each(f func(TickRecord) error) error {
	return r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec TickRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if err := f(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
