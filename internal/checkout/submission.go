// Package checkout runs a confirmed checkout through validation, persistence and
// seller notification as an explicit state machine.
package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/joaocamilod/catalogo-online/internal/notify"
	"github.com/joaocamilod/catalogo-online/internal/pricing"
	"github.com/joaocamilod/catalogo-online/internal/stock"
	"github.com/joaocamilod/catalogo-online/internal/summary"
)

const DefaultOrderTimeout = 10 * time.Second

// Submission outcomes reported to the Recorder.
const (
	OutcomeSucceeded     = "succeeded"
	OutcomeEmptyCart     = "empty_cart"
	OutcomeStockRejected = "stock_rejected"
	OutcomePersistFailed = "persist_failed"
	OutcomeInProgress    = "in_progress"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, order *d.Order) error
}

type Recorder interface {
	ObserveSubmission(outcome string)
	ObservePersist(elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(string) {}
func (nopRecorder) ObservePersist(time.Duration) {}

type Config struct {
	CountryCode  string
	OrderTimeout time.Duration
}

// Request is everything a confirmed checkout carries. Seller is nil when the
// shopper typed a name because no seller list was available.
type Request struct {
	UserID        string
	Lines         []d.CartLine
	PaymentMethod d.PaymentMethod
	Seller        *d.Seller
	ManualName    string
	BuyerName     string
	BuyerPhone    string
	BuyerEmail    string
}

func (r Request) recipientName() string {
	if r.Seller != nil {
		return r.Seller.Name
	}
	return r.ManualName
}

// Attempt is the outcome of one Submit call.
type Attempt struct {
	State       State
	Trail       []State
	OrderID     string
	Summary     string
	Destination string
	Link        string
	Err         error
}

func (a *Attempt) advance(e Event) {
	next, err := Transition(a.State, e)
	if err != nil {
		if a.Err == nil {
			a.Err = err
		}
		return
	}
	a.State = next
	a.Trail = append(a.Trail, next)
}

func (a *Attempt) fail(e Event, err error) *Attempt {
	a.Err = err
	a.advance(e)
	return a
}

type Submitter struct {
	orders   OrderCreator
	notifier notify.Notifier
	recorder Recorder
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSubmitter(orders OrderCreator, notifier notify.Notifier, recorder Recorder, logger *slog.Logger, cfg Config) *Submitter {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.OrderTimeout <= 0 {
		cfg.OrderTimeout = DefaultOrderTimeout
	}
	return &Submitter{
		orders:   orders,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// Submit makes exactly one persistence call for a valid request and never retries.
// The cart is left untouched; clearing it is up to the caller.
func (s *Submitter) Submit(ctx context.Context, req Request) *Attempt {
	a := &Attempt{State: StateIdle, Trail: []State{StateIdle}}

	if !s.acquire(req.UserID) {
		s.logger.WarnContext(ctx, "ignoring duplicate submission", "user_id", req.UserID)
		s.recorder.ObserveSubmission(OutcomeInProgress)
		a.Err = ErrSubmissionInProgress
		return a
	}
	defer s.release(req.UserID)

	a.advance(EventSubmit)

	lines := make([]d.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.Quantity > 0 {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		s.recorder.ObserveSubmission(OutcomeEmptyCart)
		return a.fail(EventRejected, ErrEmptyCart)
	}
	if err := stock.Check(lines); err != nil {
		s.logger.InfoContext(ctx, "submission blocked by stock", "user_id", req.UserID, "error", err)
		s.recorder.ObserveSubmission(OutcomeStockRejected)
		return a.fail(EventRejected, err)
	}
	a.advance(EventValidated)

	var destination string
	if req.Seller != nil {
		destination = notify.Destination(s.cfg.CountryCode, req.Seller.Phone)
	}
	totals := pricing.Aggregate(lines, req.PaymentMethod)
	order := s.buildOrder(req, lines, totals, destination != "")

	if err := s.persist(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist order", "order_id", order.ID, "user_id", req.UserID, "error", err)
		s.recorder.ObserveSubmission(OutcomePersistFailed)
		return a.fail(EventPersistFailed, &PersistenceError{Err: err})
	}
	a.OrderID = order.ID.String()
	a.advance(EventPersisted)

	a.Summary = summary.Render(summaryInput(order, totals))
	if destination != "" {
		a.Destination = destination
		a.Link = notify.WhatsAppLink(destination, a.Summary)
		s.notifier.Send(ctx, destination, a.Summary)
	}
	a.advance(EventNotified)

	s.logger.InfoContext(ctx, "order placed", "order_id", a.OrderID, "seller", order.SellerName, "notified", order.Notified)
	s.recorder.ObserveSubmission(OutcomeSucceeded)
	return a
}

func (s *Submitter) persist(ctx context.Context, order *d.Order) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OrderTimeout)
	defer cancel()

	start := s.now()
	err := s.orders.CreateOrder(ctx, order)
	s.recorder.ObservePersist(s.now().Sub(start))
	return err
}

func (s *Submitter) buildOrder(req Request, lines []d.CartLine, totals d.Totals, notified bool) *d.Order {
	order := &d.Order{
		ID:            uuid.New(),
		SellerName:    req.recipientName(),
		Lines:         make([]d.OrderLine, 0, len(lines)),
		Total:         totals.Total,
		BuyerName:     req.BuyerName,
		BuyerPhone:    req.BuyerPhone,
		BuyerEmail:    req.BuyerEmail,
		PaymentMethod: req.PaymentMethod,
		Status:        d.OrderStatusPending,
		Notified:      notified,
		CreatedAt:     s.now().UTC(),
	}
	if req.Seller != nil {
		order.SellerID = req.Seller.ID
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, d.OrderLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: pricing.UnitPrice(l.Product, req.PaymentMethod),
			Quantity:  l.Quantity,
			ImageURL:  l.Product.ImageURL,
		})
	}
	return order
}

func summaryInput(order *d.Order, totals d.Totals) summary.Input {
	in := summary.Input{
		OrderID:       order.ID.String(),
		SellerName:    order.SellerName,
		BuyerName:     order.BuyerName,
		BuyerPhone:    order.BuyerPhone,
		BuyerEmail:    order.BuyerEmail,
		Lines:         make([]summary.Line, 0, len(order.Lines)),
		Totals:        totals,
		PaymentMethod: order.PaymentMethod,
	}
	for _, l := range order.Lines {
		in.Lines = append(in.Lines, summary.Line{Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return in
}

func (s *Submitter) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[userID]; busy {
		return false
	}
	s.inflight[userID] = struct{}{}
	return true
}

func (s *Submitter) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, userID)
}
