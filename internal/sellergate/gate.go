// Package sellergate decides who receives an order before it may be submitted:
// a seller from the active directory, or a typed-in name when the directory
// cannot be used.
package sellergate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/joaocamilod/catalogo-online/internal/notify"
)

var (
	ErrNoSellerChosen        = errors.New("no seller or name chosen")
	ErrInvalidSellerPhone    = errors.New("selected seller has no valid phone")
	ErrUnknownSeller         = errors.New("seller is not in the active list")
	ErrManualNameUnavailable = errors.New("manual name is only accepted when the seller list is unavailable")
	ErrGateClosed            = errors.New("seller selection is closed")
	ErrSellersUnavailable    = errors.New("seller list unavailable")
	ErrNoActiveSellers       = errors.New("no active sellers")
)

type Lister interface {
	ListActiveSellers(ctx context.Context) ([]d.Seller, error)
}

type Mode string

const (
	ModeLoading Mode = "loading"
	ModeList    Mode = "list"
	ModeManual  Mode = "manual"
)

type State string

const (
	NoSellerChosen   State = "no_seller_chosen"
	SellerChosen     State = "seller_chosen"
	ManualNameChosen State = "manual_name_chosen"
	Confirmed        State = "confirmed"
)

func (s State) String() string {
	return string(s)
}

// Choice is the confirmed recipient. Seller is nil for a manual name.
type Choice struct {
	Seller     *d.Seller
	ManualName string
}

// Name is the display name of whoever receives the order.
func (c Choice) Name() string {
	if c.Seller != nil {
		return c.Seller.Name
	}
	return c.ManualName
}

// View is a snapshot of the gate for rendering.
type View struct {
	Mode       Mode
	State      State
	Sellers    []d.Seller
	SelectedID string
	ManualName string
	LoadErr    error
	CanRetry   bool
}

type Gate struct {
	lister Lister
	logger *slog.Logger

	mu         sync.Mutex
	mode       Mode
	state      State
	sellers    []d.Seller
	selected   *d.Seller
	manualName string
	loadErr    error
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

func New(lister Lister, logger *slog.Logger) *Gate {
	return &Gate{
		lister: lister,
		logger: logger,
		mode:   ModeLoading,
		state:  NoSellerChosen,
	}
}

// Enter starts loading the active sellers. The returned channel is closed once the
// result has been applied, or discarded because the gate was closed or re-entered.
func (g *Gate) Enter(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	g.mu.Lock()
	if g.closed || g.state == Confirmed {
		g.mu.Unlock()
		close(done)
		return done
	}
	if g.cancel != nil {
		g.cancel()
	}
	g.generation++
	gen := g.generation
	loadCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.mode = ModeLoading
	g.loadErr = nil
	g.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		sellers, err := g.lister.ListActiveSellers(loadCtx)
		g.apply(gen, sellers, err)
	}()
	return done
}

// Retry reloads the seller list after a failed or empty load.
func (g *Gate) Retry(ctx context.Context) <-chan struct{} {
	return g.Enter(ctx)
}

func (g *Gate) apply(gen uint64, sellers []d.Seller, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || gen != g.generation {
		g.logger.Debug("discarding stale seller list", "generation", gen)
		return
	}
	g.cancel = nil

	active := make([]d.Seller, 0, len(sellers))
	for _, s := range sellers {
		if s.Active {
			active = append(active, s)
		}
	}

	switch {
	case err != nil:
		g.logger.Warn("failed to load sellers, falling back to manual name", "error", err)
		g.toManual(fmt.Errorf("%w: %w", ErrSellersUnavailable, err))
	case len(active) == 0:
		g.toManual(ErrNoActiveSellers)
	default:
		g.mode = ModeList
		g.sellers = active
		g.loadErr = nil
		g.manualName = ""
		if g.state == ManualNameChosen {
			g.state = NoSellerChosen
		}
		if g.selected != nil && g.find(g.selected.ID) == nil {
			g.selected = nil
			g.state = NoSellerChosen
		}
	}
}

func (g *Gate) toManual(err error) {
	g.mode = ModeManual
	g.sellers = nil
	g.loadErr = err
	if g.selected != nil {
		g.selected = nil
		g.state = NoSellerChosen
	}
}

func (g *Gate) find(id string) *d.Seller {
	for i := range g.sellers {
		if g.sellers[i].ID == id {
			s := g.sellers[i]
			return &s
		}
	}
	return nil
}

// Close tears the gate down. In-flight loads are cancelled and never applied.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *Gate) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		Mode:       g.mode,
		State:      g.state,
		Sellers:    append([]d.Seller(nil), g.sellers...),
		ManualName: g.manualName,
		LoadErr:    g.loadErr,
		CanRetry:   g.mode == ModeManual && g.loadErr != nil,
	}
	if g.selected != nil {
		v.SelectedID = g.selected.ID
	}
	return v
}

func (g *Gate) SelectSeller(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || g.state == Confirmed {
		return ErrGateClosed
	}
	s := g.find(id)
	if s == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSeller, id)
	}
	g.selected = s
	g.state = SellerChosen
	return nil
}

// SetManualName records a typed-in recipient. A blank name clears the choice.
func (g *Gate) SetManualName(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || g.state == Confirmed {
		return ErrGateClosed
	}
	if g.mode != ModeManual {
		return ErrManualNameUnavailable
	}
	g.manualName = strings.TrimSpace(name)
	if g.manualName == "" {
		g.state = NoSellerChosen
	} else {
		g.state = ManualNameChosen
	}
	return nil
}

// Confirm validates the current choice. On error the state is left untouched;
// on success the gate becomes terminal.
func (g *Gate) Confirm() (Choice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || g.state == Confirmed {
		return Choice{}, ErrGateClosed
	}

	var choice Choice
	switch g.state {
	case SellerChosen:
		if !notify.ValidPhone(g.selected.Phone) {
			return Choice{}, ErrInvalidSellerPhone
		}
		s := *g.selected
		choice.Seller = &s
	case ManualNameChosen:
		choice.ManualName = g.manualName
	default:
		return Choice{}, ErrNoSellerChosen
	}

	g.state = Confirmed
	return choice, nil
}
