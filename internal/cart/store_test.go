package cart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullindescription/VL-rebrand/internal/model"
)

func intp(v int) *int { return &v }

func eventLine(session uint64, time string, qty int, price int64) model.CartLine {
	return model.CartLine{SessionID: session, Title: "Concert", Time: time, Quantity: qty, PriceCents: price}
}

func seatLine(session uint64, row, seat int, price int64) model.CartLine {
	return model.CartLine{SessionID: session, Title: "Dune", Time: "20:00:00", Quantity: 1, PriceCents: price, Row: intp(row), Seat: intp(seat)}
}

func TestAddLineMergesEventLines(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(eventLine(1, "18:00", 2, 300)))
	require.NoError(t, s.AddLine(eventLine(1, "18:00", 3, 300)))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestAddLineRejectsQuantityOverflow(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(eventLine(1, "18:00", math.MaxInt, 100)))
	assert.ErrorIs(t, s.AddLine(eventLine(1, "18:00", 2, 100)), ErrQuantityOverflow)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, math.MaxInt, lines[0].Quantity)
	assert.Positive(t, lines[0].Quantity)
}

func TestAddLineKeepsDistinctSeats(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(seatLine(1, 1, 1, 300)))
	require.NoError(t, s.AddLine(seatLine(1, 1, 2, 300)))

	assert.Equal(t, 2, s.Len())
}

func TestAddLineSameSeatStaysSingle(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(seatLine(4, 2, 2, 500)))
	dup := seatLine(4, 2, 2, 500)
	dup.Quantity = 3
	require.NoError(t, s.AddLine(dup))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, int64(500), s.Total())
}

func TestAddLineDefaultsQuantity(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(eventLine(9, "12:00:00", 0, 100)))
	assert.Equal(t, 1, s.Lines()[0].Quantity)
}

func TestRemoveLineDeletesAtZero(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(seatLine(2, 3, 4, 300)))

	ok, err := s.RemoveLine(2, &model.SeatRef{Row: 3, Seat: 4})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, s.Lines())
}

func TestRemoveLineDecrementsEventLine(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(eventLine(5, "19:00:00", 3, 100)))

	ok, err := s.RemoveLine(5, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, s.Lines()[0].Quantity)
}

func TestRemoveLineWithoutMatchIsNoop(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(seatLine(2, 3, 4, 300)))

	ok, err := s.RemoveLine(2, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.RemoveLine(3, &model.SeatRef{Row: 3, Seat: 4})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestRemoveAllDropsWholeLine(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(eventLine(5, "19:00:00", 4, 100)))

	ok, err := s.RemoveAll(5, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, s.Len())
}

func TestTotalFollowsMutations(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(eventLine(1, "18:00:00", 2, 300)))
	require.NoError(t, s.AddLine(seatLine(2, 1, 1, 450)))
	assert.Equal(t, int64(1050), s.Total())

	_, err := s.RemoveLine(1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(750), s.Total())

	require.NoError(t, s.Clear())
	assert.Zero(t, s.Total())
}

func TestLinesKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(seatLine(3, 1, 1, 100)))
	require.NoError(t, s.AddLine(eventLine(1, "10:00:00", 1, 100)))
	require.NoError(t, s.AddLine(seatLine(2, 1, 1, 100)))
	require.NoError(t, s.AddLine(eventLine(1, "10:00:00", 1, 100)))

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, []uint64{3, 1, 2}, []uint64{lines[0].SessionID, lines[1].SessionID, lines[2].SessionID})
}

func TestLinesAreCopies(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(seatLine(1, 1, 1, 100)))
	lines := s.Lines()
	*lines[0].Row = 9
	lines[0].Quantity = 7

	again := s.Lines()
	assert.Equal(t, 1, *again[0].Row)
	assert.Equal(t, 1, again[0].Quantity)
}

func TestFreezeRejectsMutations(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddLine(eventLine(1, "10:00:00", 2, 100)))

	submitted, err := s.Freeze()
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.True(t, s.Frozen())

	assert.ErrorIs(t, s.AddLine(eventLine(1, "10:00:00", 1, 100)), ErrFrozen)
	_, err = s.RemoveLine(1, nil)
	assert.ErrorIs(t, err, ErrFrozen)
	assert.ErrorIs(t, s.Clear(), ErrFrozen)
	_, err = s.Freeze()
	assert.ErrorIs(t, err, ErrFrozen)

	s.Unfreeze(false)
	assert.Equal(t, 2, s.Lines()[0].Quantity)

	_, err = s.Freeze()
	require.NoError(t, err)
	s.Unfreeze(true)
	assert.Zero(t, s.Len())
	assert.False(t, s.Frozen())
}

func TestErrorMessage(t *testing.T) {
	s := NewStore()
	s.SetError("checkout failed")
	assert.Equal(t, "checkout failed", s.Error())

	require.NoError(t, s.AddLine(eventLine(1, "10:00:00", 1, 100)))
	assert.Empty(t, s.Error())
}
