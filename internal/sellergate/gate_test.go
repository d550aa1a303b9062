package sellergate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockLister struct {
	sellers []d.Seller
	err     error
	calls   int
}

func (m *mockLister) ListActiveSellers(_ context.Context) ([]d.Seller, error) {
	m.calls++
	return m.sellers, m.err
}

// blockingLister holds every call until release is closed or the context ends.
type blockingLister struct {
	release chan struct{}
	sellers []d.Seller
}

func (b *blockingLister) ListActiveSellers(ctx context.Context) ([]d.Seller, error) {
	select {
	case <-b.release:
		return b.sellers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var (
	ana   = d.Seller{ID: "s1", Name: "Ana", Phone: "11987654321", Active: true}
	bruno = d.Seller{ID: "s2", Name: "Bruno", Phone: "1234", Active: true}
)

func newGate(l Lister) *Gate {
	return New(l, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGate_LoadsSellerList(t *testing.T) {
	g := newGate(&mockLister{sellers: []d.Seller{ana, bruno, {ID: "s3", Name: "Inativo"}}})

	assert.Equal(t, ModeLoading, g.View().Mode)
	<-g.Enter(context.Background())

	v := g.View()
	assert.Equal(t, ModeList, v.Mode)
	assert.Equal(t, []d.Seller{ana, bruno}, v.Sellers)
	assert.NoError(t, v.LoadErr)
	assert.False(t, v.CanRetry)
}

func TestGate_LoadFailureDegradesToManual(t *testing.T) {
	g := newGate(&mockLister{err: errors.New("connection refused")})
	<-g.Enter(context.Background())

	v := g.View()
	assert.Equal(t, ModeManual, v.Mode)
	assert.ErrorIs(t, v.LoadErr, ErrSellersUnavailable)
	assert.True(t, v.CanRetry)
}

func TestGate_EmptyListDegradesToManual(t *testing.T) {
	g := newGate(&mockLister{})
	<-g.Enter(context.Background())

	v := g.View()
	assert.Equal(t, ModeManual, v.Mode)
	assert.ErrorIs(t, v.LoadErr, ErrNoActiveSellers)
	assert.True(t, v.CanRetry)
}

func TestGate_RetryRecovers(t *testing.T) {
	l := &mockLister{err: errors.New("timeout")}
	g := newGate(l)
	<-g.Enter(context.Background())
	require.NoError(t, g.SetManualName("Carla"))

	l.err = nil
	l.sellers = []d.Seller{ana}
	<-g.Retry(context.Background())

	v := g.View()
	assert.Equal(t, ModeList, v.Mode)
	assert.Equal(t, NoSellerChosen, v.State)
	assert.Empty(t, v.ManualName)
	assert.Equal(t, 2, l.calls)
}

func TestGate_ConfirmSeller(t *testing.T) {
	g := newGate(&mockLister{sellers: []d.Seller{ana}})
	<-g.Enter(context.Background())

	require.NoError(t, g.SelectSeller("s1"))
	choice, err := g.Confirm()
	require.NoError(t, err)
	require.NotNil(t, choice.Seller)
	assert.Equal(t, "Ana", choice.Name())
	assert.Equal(t, Confirmed, g.View().State)
}

func TestGate_ConfirmRejections(t *testing.T) {
	t.Run("nothing chosen", func(t *testing.T) {
		g := newGate(&mockLister{sellers: []d.Seller{ana}})
		<-g.Enter(context.Background())

		_, err := g.Confirm()
		assert.ErrorIs(t, err, ErrNoSellerChosen)
		assert.Equal(t, NoSellerChosen, g.View().State)
	})

	t.Run("seller phone too short", func(t *testing.T) {
		g := newGate(&mockLister{sellers: []d.Seller{ana, bruno}})
		<-g.Enter(context.Background())
		require.NoError(t, g.SelectSeller("s2"))

		_, err := g.Confirm()
		assert.ErrorIs(t, err, ErrInvalidSellerPhone)
		v := g.View()
		assert.Equal(t, SellerChosen, v.State)
		assert.Equal(t, "s2", v.SelectedID)

		require.NoError(t, g.SelectSeller("s1"))
		_, err = g.Confirm()
		assert.NoError(t, err)
	})

	t.Run("blank manual name", func(t *testing.T) {
		g := newGate(&mockLister{})
		<-g.Enter(context.Background())
		require.NoError(t, g.SetManualName("   "))

		_, err := g.Confirm()
		assert.ErrorIs(t, err, ErrNoSellerChosen)
	})
}

func TestGate_ManualName(t *testing.T) {
	g := newGate(&mockLister{err: errors.New("down")})
	<-g.Enter(context.Background())

	require.NoError(t, g.SetManualName("  Carla "))
	choice, err := g.Confirm()
	require.NoError(t, err)
	assert.Nil(t, choice.Seller)
	assert.Equal(t, "Carla", choice.Name())
}

func TestGate_ManualNameRejectedWithList(t *testing.T) {
	g := newGate(&mockLister{sellers: []d.Seller{ana}})
	<-g.Enter(context.Background())

	assert.ErrorIs(t, g.SetManualName("Carla"), ErrManualNameUnavailable)
}

func TestGate_UnknownSeller(t *testing.T) {
	g := newGate(&mockLister{sellers: []d.Seller{ana}})
	<-g.Enter(context.Background())

	assert.ErrorIs(t, g.SelectSeller("nope"), ErrUnknownSeller)
	assert.Equal(t, NoSellerChosen, g.View().State)
}

func TestGate_TerminalAfterConfirm(t *testing.T) {
	g := newGate(&mockLister{sellers: []d.Seller{ana}})
	<-g.Enter(context.Background())
	require.NoError(t, g.SelectSeller("s1"))
	_, err := g.Confirm()
	require.NoError(t, err)

	assert.ErrorIs(t, g.SelectSeller("s1"), ErrGateClosed)
	_, err = g.Confirm()
	assert.ErrorIs(t, err, ErrGateClosed)
}

func TestGate_CloseDiscardsInFlightLoad(t *testing.T) {
	l := &blockingLister{release: make(chan struct{}), sellers: []d.Seller{ana}}
	g := newGate(l)

	done := g.Enter(context.Background())
	g.Close()
	<-done

	v := g.View()
	assert.Equal(t, ModeLoading, v.Mode)
	assert.Empty(t, v.Sellers)
	assert.NoError(t, v.LoadErr)
	assert.ErrorIs(t, g.SelectSeller("s1"), ErrGateClosed)
}

func TestGate_StaleLoadIsDiscarded(t *testing.T) {
	l := &blockingLister{release: make(chan struct{}), sellers: []d.Seller{ana}}
	g := newGate(l)

	first := g.Enter(context.Background())
	second := g.Enter(context.Background())
	<-first

	assert.Equal(t, ModeLoading, g.View().Mode)

	close(l.release)
	<-second
	assert.Equal(t, ModeList, g.View().Mode)
}
