package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XCI9/CardGame/card31"
)

func TestSnapshotRedaction(t *testing.T) {
	table := newTestTable(t, 0, []int{1, 5, 7}, []int{3, 4}, []int{6, 12})
	snap := table.Snapshot(1)

	require.Len(t, snap.Players, 3)
	assert.Equal(t, card31.Cards{0, 0, 0}, snap.Players[0].Hand)
	assert.Equal(t, card31.NewCards(3, 4), snap.Players[1].Hand)
	assert.Equal(t, card31.Cards{0, 0}, snap.Players[2].Hand)
	assert.Equal(t, "yong", snap.Players[0].Name)
	assert.True(t, snap.Players[0].FreePlay)
	assert.Equal(t, 0, snap.Token)
	assert.Equal(t, Playing, snap.State)

	spectator := table.Snapshot(Spectator)
	for _, p := range spectator.Players {
		for _, c := range p.Hand {
			assert.Equal(t, card31.Hidden, c)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	table := newTestTable(t, 0, []int{1, 5, 7}, []int{3, 4})
	snap := table.Snapshot(0)
	snap.Players[0].Hand[0] = 31
	p, _ := table.Player(0)
	assert.Equal(t, card31.NewCards(1, 5, 7), p.Hand)
}

func TestFromSnapshot(t *testing.T) {
	table := newTestTable(t, 0, []int{1, 5, 9}, []int{3, 4}, []int{6, 12})
	require.NoError(t, NewCheckedAction(table, 0).PlayHand(single(t, 1)))
	require.NoError(t, NewCheckedAction(table, 1).PlayHand(single(t, 3)))

	snap := table.Snapshot(2)
	rebuilt := FromSnapshot(snap)
	if diff := cmp.Diff(snap, rebuilt.Snapshot(2)); diff != "" {
		t.Errorf("rebuilt table differs (-want +got):\n%s", diff)
	}
	assert.Equal(t, table.CurrentSeat(), rebuilt.CurrentSeat())
	assert.Equal(t, table.PreviousHand(), rebuilt.PreviousHand())
}

// TestMirrorFollowsServer replays accepted actions on a redacted mirror and
// checks it matches what the server would send in a resync.
func TestMirrorFollowsServer(t *testing.T) {
	server := newTestTable(t, 0, []int{1, 11, 22, 9}, []int{2, 5, 30}, []int{3, 6, 12})
	const viewer = 2
	mirror := FromSnapshot(server.Snapshot(viewer))

	type step struct {
		seat  int
		hand  *card31.Hand
		erase card31.Card
		pass  bool
	}
	twos := single(t, 22)
	five := single(t, 5)
	six := single(t, 6)
	nine := single(t, 9)
	steps := []step{
		{seat: 0, hand: &twos},
		{seat: 0, erase: 1},
		{seat: 1, hand: &five},
		{seat: 2, hand: &six},
		{seat: 0, hand: &nine},
		{seat: 1, pass: true},
		{seat: 2, pass: true},
	}

	for i, s := range steps {
		checked := NewCheckedAction(server, s.seat)
		var remote PlayerAction = NewMirrorAction(mirror, s.seat)
		if s.seat == viewer {
			remote = NewLocalAction(mirror, s.seat, nil)
		}
		switch {
		case s.hand != nil:
			require.NoError(t, checked.PlayHand(*s.hand), "step %d", i)
			require.NoError(t, remote.PlayHand(*s.hand), "step %d", i)
		case s.pass:
			require.NoError(t, checked.PassTurn(), "step %d", i)
			require.NoError(t, remote.PassTurn(), "step %d", i)
		default:
			require.NoError(t, checked.PlayErase(s.erase), "step %d", i)
			require.NoError(t, remote.PlayErase(s.erase), "step %d", i)
		}
		if diff := cmp.Diff(server.Snapshot(viewer), mirror.Snapshot(viewer)); diff != "" {
			t.Fatalf("mirror diverged after step %d (-server +mirror):\n%s", i, diff)
		}
	}
	assert.Equal(t, 0, mirror.CurrentSeat())
	assert.True(t, mirror.PreviousHand().IsNone())
}

func TestMirrorCatchesUpOnTurn(t *testing.T) {
	table := newTestTable(t, 0, []int{1, 5}, []int{3, 4}, []int{6, 12})
	mirror := FromSnapshot(table.Snapshot(Spectator))
	// the mirror missed seat 0's play and now sees seat 1 pass
	require.NoError(t, NewMirrorAction(mirror, 1).PassTurn())
	assert.Equal(t, 2, mirror.CurrentSeat())
}
