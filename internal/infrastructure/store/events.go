package store

import (
	"errors"

	"airledger-backend/internal/domain"
)

func (t *Tx) eventLog() (*domain.EventLog, error) {
	var h domain.EventLog
	err := t.load(KindEventLog, domain.EventLogAddress(), domain.ErrRecordNotFound, &h)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return &domain.EventLog{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// AppendEvent assigns the next sequence number to e and writes it.
func (t *Tx) AppendEvent(e *domain.Event) error {
	h, err := t.eventLog()
	if err != nil {
		return err
	}
	e.Seq = h.Count
	if err := t.store(KindEvent, domain.EventAddress(e.Seq), e); err != nil {
		return err
	}
	h.Count++
	return t.store(KindEventLog, domain.EventLogAddress(), h)
}

// EventCount is the number of events appended so far.
func (t *Tx) EventCount() (uint64, error) {
	h, err := t.eventLog()
	if err != nil {
		return 0, err
	}
	return h.Count, nil
}

// Events visits events in sequence order.
func (t *Tx) Events(fn func(*domain.Event) error) error {
	h, err := t.eventLog()
	if err != nil {
		return err
	}
	for seq := uint64(0); seq < h.Count; seq++ {
		var e domain.Event
		if err := t.load(KindEvent, domain.EventAddress(seq), domain.ErrRecordNotFound, &e); err != nil {
			return err
		}
		if err := fn(&e); err != nil {
			return err
		}
	}
	return nil
}
