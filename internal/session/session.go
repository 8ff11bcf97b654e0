// Package session owns per-identity application state. A Session mirrors
// one user's remote transaction collection through a live store
// subscription and derives the monthly summary, chat thread, and selected
// view from it.
//
// One goroutine owns all session state. Snapshot events and commands arrive
// on channels and are consumed single-threadedly in delivery order, so no
// re-entrant callback ever mutates shared state.
package session

import (
	"sync"
	"time"

	apperrors "dindin/internal/errors"
	"dindin/internal/models"
	"dindin/internal/services"
	"dindin/internal/store"
	"dindin/internal/uuid"
)

// State is the lifecycle of a session.
type State string

const (
	// StateConnecting means the subscription is live but the first snapshot
	// has not been consumed yet.
	StateConnecting State = "connecting"
	StateReady      State = "ready"
	StateClosed     State = "closed"
)

// Views the client can select.
const (
	ViewDashboard    = "dashboard"
	ViewTransactions = "transactions"
	ViewInvoices     = "invoices"
	ViewAIChat       = "ai-chat"
	ViewSettings     = "settings"
)

// assistantStubReply is the canned assistant answer. The AI integration is
// deliberately not wired up; the reply makes that explicit instead of
// failing silently.
const assistantStubReply = "Ainda não conectei a IA de verdade aqui, mas em breve vou conseguir analisar suas transações."

var validViews = map[string]bool{
	ViewDashboard:    true,
	ViewTransactions: true,
	ViewInvoices:     true,
	ViewAIChat:       true,
	ViewSettings:     true,
}

// Overview is the session state exposed to the presentation layer.
type Overview struct {
	State            State  `json:"state"`
	Period           string `json:"period"`
	PeriodLabel      string `json:"period_label"`
	View             string `json:"view"`
	TransactionCount int    `json:"transaction_count"`
}

// sessionState is owned exclusively by the run goroutine.
type sessionState struct {
	state        State
	transactions []models.Transaction
	period       string
	view         string
	summary      models.Summary
	chat         []models.ChatMessage
}

// Session is the live state for one authenticated identity.
type Session struct {
	UserID string

	sub       *store.Subscription
	cmds      chan func(*sessionState)
	done      chan struct{}
	closeOnce sync.Once
}

// open acquires the store subscription and starts the owning goroutine.
func open(docs *store.Store, userID string) (*Session, error) {
	sub, err := docs.Watch(userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s := &Session{
		UserID: userID,
		sub:    sub,
		cmds:   make(chan func(*sessionState)),
		done:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// run consumes snapshots and commands until the session closes. The
// snapshot listener replaces the transaction mirror wholesale and
// recomputes the summary; commands read or reduce the rest of the state.
func (s *Session) run() {
	st := &sessionState{
		state:  StateConnecting,
		period: services.CurrentPeriod(),
		view:   ViewDashboard,
	}

	// Watch buffers the current snapshot before returning, so consuming it
	// ahead of any command makes the first mirror read deterministic.
	select {
	case snap, ok := <-s.sub.C:
		if !ok {
			return
		}
		st.transactions = snap.Transactions
		st.summary = services.BuildSummary(st.transactions, st.period)
		st.state = StateReady
	case <-s.done:
		return
	}

	for {
		select {
		case snap, ok := <-s.sub.C:
			if !ok {
				return
			}
			st.transactions = snap.Transactions
			st.summary = services.BuildSummary(st.transactions, st.period)
			st.state = StateReady
		case cmd := <-s.cmds:
			// Apply any already-published snapshot first so a read that
			// follows a committed write observes it.
			select {
			case snap, ok := <-s.sub.C:
				if ok {
					st.transactions = snap.Transactions
					st.summary = services.BuildSummary(st.transactions, st.period)
					st.state = StateReady
				}
			default:
			}
			cmd(st)
		case <-s.done:
			return
		}
	}
}

// Close releases the subscription and discards all session state. Safe to
// call on every exit path, any number of times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.sub.Unsubscribe()
		close(s.done)
	})
}

// do runs fn on the owning goroutine and waits for it.
func (s *Session) do(fn func(*sessionState)) error {
	reply := make(chan struct{})
	select {
	case s.cmds <- func(st *sessionState) { fn(st); close(reply) }:
	case <-s.done:
		return apperrors.ErrSessionClosed
	}
	select {
	case <-reply:
		return nil
	case <-s.done:
		return apperrors.ErrSessionClosed
	}
}

// State reports the session lifecycle state.
func (s *Session) State() State {
	var state State
	if err := s.do(func(st *sessionState) { state = st.state }); err != nil {
		return StateClosed
	}
	return state
}

// Overview returns the session state for rendering.
func (s *Session) Overview() (Overview, error) {
	var view Overview
	err := s.do(func(st *sessionState) {
		view = Overview{
			State:            st.state,
			Period:           st.period,
			PeriodLabel:      services.PeriodLabel(st.period),
			View:             st.view,
			TransactionCount: len(st.transactions),
		}
	})
	return view, err
}

// Transactions returns the mirror filtered to a period, newest first. An
// empty period means the currently selected one.
func (s *Session) Transactions(period string) ([]models.Transaction, error) {
	var result []models.Transaction
	err := s.do(func(st *sessionState) {
		p := period
		if p == "" {
			p = st.period
		}
		for _, t := range st.transactions {
			if t.MonthReference == p {
				result = append(result, t)
			}
		}
	})
	return result, err
}

// Summary returns the summary for a period. The currently selected period
// is served from the derived state; any other period is a fresh recompute
// over the same mirror, which is equivalent because BuildSummary is pure.
func (s *Session) Summary(period string) (models.Summary, error) {
	var summary models.Summary
	err := s.do(func(st *sessionState) {
		if period == "" || period == st.period {
			summary = st.summary
			return
		}
		summary = services.BuildSummary(st.transactions, period)
	})
	return summary, err
}

// SetPeriod selects the aggregation period and recomputes the summary.
func (s *Session) SetPeriod(period string) error {
	if !services.IsValidPeriod(period) {
		return apperrors.ErrInvalidPeriod
	}
	return s.do(func(st *sessionState) {
		st.period = period
		st.summary = services.BuildSummary(st.transactions, st.period)
	})
}

// ShiftPeriod moves the selected period by whole months and returns the
// new period.
func (s *Session) ShiftPeriod(offset int) (string, error) {
	var period string
	var shiftErr error
	err := s.do(func(st *sessionState) {
		shifted, err := services.ShiftPeriod(st.period, offset)
		if err != nil {
			shiftErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
			return
		}
		st.period = shifted
		st.summary = services.BuildSummary(st.transactions, st.period)
		period = shifted
	})
	if err != nil {
		return "", err
	}
	return period, shiftErr
}

// SetView selects the active view.
func (s *Session) SetView(view string) error {
	if !validViews[view] {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown view")
	}
	return s.do(func(st *sessionState) { st.view = view })
}

// Messages returns the session chat thread.
func (s *Session) Messages() ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.do(func(st *sessionState) {
		messages = append(messages, st.chat...)
	})
	return messages, err
}

// SendMessage appends a user message and the stubbed assistant reply,
// returning both.
func (s *Session) SendMessage(text string) (models.ChatMessage, models.ChatMessage, error) {
	if text == "" {
		return models.ChatMessage{}, models.ChatMessage{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "message text is required")
	}

	now := time.Now().UnixMilli()
	userMsg := models.ChatMessage{
		ID:        uuid.New(),
		Role:      models.ChatRoleUser,
		Text:      text,
		Timestamp: now,
	}
	reply := models.ChatMessage{
		ID:        uuid.New(),
		Role:      models.ChatRoleModel,
		Text:      assistantStubReply,
		Timestamp: now,
	}

	err := s.do(func(st *sessionState) {
		st.chat = append(st.chat, userMsg, reply)
	})
	return userMsg, reply, err
}
