package gamescript

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/XCI9/CardGame/card31"
)

func intPtr(v int) *int {
	return &v
}

func TestReadGameScript(t *testing.T) {
	script, err := ReadGameScript("test_scripts/two-players.yaml")
	if err != nil {
		t.Fatalf("ReadGameScript returned error [%s]", err)
	}
	if script == nil {
		t.Fatal("ReadGameScript returned nil data")
	}

	previous := CardList(card31.NewCards(1))
	none := "none"
	expectedScript := Script{
		Description: "two players, the dealer runs out of cards second",
		Players:     []string{"yong", "brian"},
		Rounds: []Round{
			{
				Deal: Deal{
					Dealer: 0,
					Hands:  []CardList{CardList(card31.NewCards(1, 5)), CardList(card31.NewCards(3, 7))},
				},
				Steps: []Step{
					{
						Action:      Action{Seat: 0, Type: ActionPass},
						ExpectError: "leading player cannot pass",
					},
					{
						Action:      Action{Seat: 0, Type: ActionPlay, Cards: card31.NewCards(5)},
						ExpectError: "first play must include card 1",
					},
					{
						Action: Action{Seat: 0, Type: ActionPlay, Cards: card31.NewCards(1)},
						Verify: &Verify{Turn: intPtr(1), Previous: &previous, CardCounts: []int{1, 2}},
					},
					{
						Action: Action{Seat: 1, Type: ActionPlay, Cards: card31.NewCards(7)},
						Verify: &Verify{Turn: intPtr(0)},
					},
					{
						Action: Action{Seat: 0, Type: ActionPass},
						Verify: &Verify{Turn: intPtr(1), PreviousRank: &none},
					},
					{
						Action: Action{Seat: 1, Type: ActionPlay, Cards: card31.NewCards(3)},
					},
				},
				Result: RoundResult{Winner: "yong", FinishOrder: []int{1}},
			},
		},
	}

	if !cmp.Equal(*script, expectedScript) {
		t.Errorf("ReadGameScript returned wrong data. Diff: %s", cmp.Diff(expectedScript, *script))
	}
	assert.Equal(t, 1, script.SeatOf("brian"))
	assert.Equal(t, -1, script.SeatOf("tom"))
}

func TestReadGameScriptErase(t *testing.T) {
	script, err := ReadGameScript("test_scripts/erase-and-rules.yaml")
	require.NoError(t, err)
	require.Len(t, script.Rounds, 1)

	steps := script.Rounds[0].Steps
	require.NotNil(t, steps[0].Action.Rank)
	assert.Equal(t, card31.Double, *steps[0].Action.Rank)
	assert.Equal(t, card31.Card(5), steps[2].Action.Erase())
	assert.Equal(t, card31.Hidden, steps[4].Action.Erase())
	require.NotNil(t, steps[7].Verify.Rules)
	assert.True(t, *steps[7].Verify.Rules.Allow9)
	assert.Nil(t, steps[12].Verify.Rules.Allow19)
	assert.Equal(t, "brian", script.Rounds[0].Result.Winner)
}

func TestReadGameScriptInvalid(t *testing.T) {
	_, err := ReadGameScript("test_scripts/bad-deal.yaml")
	assert.Error(t, err)

	_, err = ReadGameScript("test_scripts/missing.yaml")
	assert.Error(t, err)
}

func TestActionExpression(t *testing.T) {
	double := card31.Double
	tests := []struct {
		expr    string
		want    Action
		wantErr bool
	}{
		{expr: "1, PASS", want: Action{Seat: 1, Type: ActionPass}},
		{expr: "2, pass", want: Action{Seat: 2, Type: ActionPass}},
		{expr: "0, PLAY, 9 19", want: Action{Seat: 0, Type: ActionPlay, Cards: card31.NewCards(9, 19)}},
		{expr: "0, PLAY, 1 11, double", want: Action{Seat: 0, Type: ActionPlay, Cards: card31.NewCards(1, 11), Rank: &double}},
		{expr: "1, ERASE, 5", want: Action{Seat: 1, Type: ActionErase, Cards: card31.NewCards(5)}},
		{expr: "1, ERASE", want: Action{Seat: 1, Type: ActionErase}},
		{expr: "1", wantErr: true},
		{expr: "x, PASS", wantErr: true},
		{expr: "0, PASS, 3", wantErr: true},
		{expr: "0, PLAY", wantErr: true},
		{expr: "0, PLAY, 32", wantErr: true},
		{expr: "0, PLAY, 1, flush", wantErr: true},
		{expr: "0, ERASE, 4 5", wantErr: true},
		{expr: "0, FOLD", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			var a Action
			err := yaml.Unmarshal([]byte(`"`+tt.expr+`"`), &a)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestActionHand(t *testing.T) {
	// [1 10 11] is a triple of ones and never a straight
	a := Action{Seat: 0, Type: ActionPlay, Cards: card31.NewCards(1, 10, 11)}
	hand, err := a.Hand()
	require.NoError(t, err)
	assert.Equal(t, card31.Triple, hand.Rank)

	// a two digit card reads as either digit; the larger one leads
	a = Action{Seat: 0, Type: ActionPlay, Cards: card31.NewCards(29)}
	hand, err = a.Hand()
	require.NoError(t, err)
	assert.Equal(t, 9, hand.Value)

	straight := card31.Straight
	a.Rank = &straight
	_, err = a.Hand()
	assert.Error(t, err)

	a = Action{Seat: 0, Type: ActionPlay, Cards: card31.NewCards(4, 8)}
	_, err = a.Hand()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	deal := Deal{Dealer: 0, Hands: []CardList{CardList(card31.NewCards(1, 2)), CardList(card31.NewCards(3))}}
	tests := []struct {
		name    string
		script  Script
		wantErr bool
	}{
		{
			name:   "valid",
			script: Script{Players: []string{"a", "b"}, Rounds: []Round{{Deal: deal}}},
		},
		{
			name:    "one player",
			script:  Script{Players: []string{"a"}, Rounds: []Round{{Deal: deal}}},
			wantErr: true,
		},
		{
			name:    "duplicate player",
			script:  Script{Players: []string{"a", "a"}, Rounds: []Round{{Deal: deal}}},
			wantErr: true,
		},
		{
			name:    "no rounds",
			script:  Script{Players: []string{"a", "b"}},
			wantErr: true,
		},
		{
			name:    "dealer without card 1",
			script:  Script{Players: []string{"a", "b"}, Rounds: []Round{{Deal: Deal{Dealer: 1, Hands: deal.Hands}}}},
			wantErr: true,
		},
		{
			name: "bad step seat",
			script: Script{Players: []string{"a", "b"}, Rounds: []Round{{
				Deal:  deal,
				Steps: []Step{{Action: Action{Seat: 2, Type: ActionPass}}},
			}}},
			wantErr: true,
		},
		{
			name: "unknown winner",
			script: Script{Players: []string{"a", "b"}, Rounds: []Round{{
				Deal:   deal,
				Result: RoundResult{Winner: "c"},
			}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.script.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScriptedDealer(t *testing.T) {
	deal := Deal{Dealer: 1, Hands: []CardList{CardList(card31.NewCards(2, 3)), CardList(card31.NewCards(1, 4))}}
	d, err := deal.ScriptedDealer().Deal(2)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Dealer)
	assert.Equal(t, []card31.Cards{card31.NewCards(2, 3), card31.NewCards(1, 4)}, d.Hands)
}
