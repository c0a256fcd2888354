package gamescript

import (
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/XCI9/CardGame/card31"
)

const (
	ActionPlay  = "PLAY"
	ActionPass  = "PASS"
	ActionErase = "ERASE"
)

// Script contains game script YAML content.
type Script struct {
	Disabled    bool     `yaml:"disabled"`
	Description string   `yaml:"description"`
	Players     []string `yaml:"players"`
	Rounds      []Round  `yaml:"rounds"`
}

// Round is one deal played to the end.
type Round struct {
	Deal   Deal        `yaml:"deal"`
	Steps  []Step      `yaml:"steps"`
	Result RoundResult `yaml:"result"`
}

// Deal fixes the cards of every seat. Dealer is the seat holding card 1.
type Deal struct {
	Dealer int        `yaml:"dealer"`
	Hands  []CardList `yaml:"hands"`
}

// ScriptedDealer returns a dealer that replays this deal.
func (d Deal) ScriptedDealer() *card31.ScriptedDealer {
	hands := make([]card31.Cards, len(d.Hands))
	for i, h := range d.Hands {
		hands[i] = card31.Cards(h)
	}
	return card31.NewScriptedDealer(d.Dealer, hands)
}

// CardList is written as a space or comma separated string, e.g. "9 19".
type CardList card31.Cards

func (c *CardList) UnmarshalYAML(value *yaml.Node) error {
	var expr string
	if err := value.Decode(&expr); err != nil {
		return errors.Wrapf(err, "Cannot parse card list at line %d", value.Line)
	}
	cards, err := card31.ParseCards(expr)
	if err != nil {
		return errors.Wrapf(err, "Invalid card list [%s] at line %d", expr, value.Line)
	}
	*c = CardList(cards)
	return nil
}

func (c CardList) Cards() card31.Cards {
	return card31.Cards(c)
}

type Step struct {
	Action Action `yaml:"action"`
	// ExpectError is the reason the table is expected to give when
	// refusing the action. "any" accepts every refusal.
	ExpectError string  `yaml:"expect-error"`
	Verify      *Verify `yaml:"verify"`
}

// Action is written as "seat, PLAY, cards[, rank]", "seat, PASS" or
// "seat, ERASE[, card]". An ERASE without a card skips the erase.
type Action struct {
	Seat  int
	Type  string
	Cards card31.Cards
	Rank  *card31.Rank
}

func (a *Action) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	err := unmarshal(&v)
	if err != nil {
		return err
	}
	actionExpr, ok := v.(string)
	if !ok {
		return fmt.Errorf("Cannot parse action expression [%v] as string", v)
	}
	tokens := strings.Split(actionExpr, ",")
	if len(tokens) < 2 || len(tokens) > 4 {
		return fmt.Errorf("Invalid action expression string [%v]. Need 2 to 4 comma-separated tokens", v)
	}

	// Parse seat number token
	trimmed := strings.Trim(tokens[0], " ")
	seatNo, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "Cannot convert first token [%s] to seat number", trimmed)
	}
	a.Seat = int(seatNo)
	a.Type = strings.ToUpper(strings.Trim(tokens[1], " "))

	switch a.Type {
	case ActionPass:
		if len(tokens) != 2 {
			return fmt.Errorf("PASS takes no arguments: [%v]", v)
		}
	case ActionErase:
		if len(tokens) > 3 {
			return fmt.Errorf("ERASE takes at most one card: [%v]", v)
		}
		if len(tokens) == 3 {
			trimmed := strings.Trim(tokens[2], " ")
			cards, err := card31.ParseCards(trimmed)
			if err != nil || len(cards) != 1 {
				return fmt.Errorf("Cannot convert third token [%s] to a card", trimmed)
			}
			a.Cards = cards
		}
	case ActionPlay:
		if len(tokens) < 3 {
			return fmt.Errorf("PLAY needs cards: [%v]", v)
		}
		trimmed := strings.Trim(tokens[2], " ")
		a.Cards, err = card31.ParseCards(trimmed)
		if err != nil {
			return errors.Wrapf(err, "Cannot convert third token [%s] to cards", trimmed)
		}
		if len(tokens) == 4 {
			rank, err := card31.ParseRank(tokens[3])
			if err != nil {
				return errors.Wrapf(err, "Cannot convert fourth token [%s] to a rank", tokens[3])
			}
			a.Rank = &rank
		}
	default:
		return fmt.Errorf("Unknown action [%s] in [%v]", a.Type, v)
	}
	return nil
}

// Hand picks the hand the action plays. Without an explicit rank the
// strongest evaluation of the cards is used.
func (a Action) Hand() (card31.Hand, error) {
	hands := card31.Evaluate(a.Cards)
	if len(hands) == 0 {
		return card31.Hand{}, fmt.Errorf("Cards %s do not form a hand", a.Cards)
	}
	card31.SortHands(hands)
	if a.Rank == nil {
		return hands[len(hands)-1], nil
	}
	for i := len(hands) - 1; i >= 0; i-- {
		if hands[i].Rank == *a.Rank {
			return hands[i], nil
		}
	}
	return card31.Hand{}, fmt.Errorf("Cards %s cannot be played as %s", a.Cards, *a.Rank)
}

// Erase returns the erased card, card31.Hidden for a skipped erase.
func (a Action) Erase() card31.Card {
	if len(a.Cards) == 0 {
		return card31.Hidden
	}
	return a.Cards[0]
}

func (a Action) String() string {
	switch a.Type {
	case ActionPlay:
		if a.Rank != nil {
			return fmt.Sprintf("%d, PLAY, %s, %s", a.Seat, a.Cards, *a.Rank)
		}
		return fmt.Sprintf("%d, PLAY, %s", a.Seat, a.Cards)
	case ActionErase:
		return fmt.Sprintf("%d, ERASE, %s", a.Seat, a.Erase())
	}
	return fmt.Sprintf("%d, %s", a.Seat, a.Type)
}

// Verify lists the table state checked after a step. Unset fields are not
// checked.
type Verify struct {
	Turn         *int         `yaml:"turn-seat"`
	Previous     *CardList    `yaml:"previous"`
	PreviousRank *string      `yaml:"previous-rank"`
	Rules        *RulesVerify `yaml:"rules"`
	CardCounts   []int        `yaml:"card-counts"`
	ErasePending *int         `yaml:"erase-pending"`
}

type RulesVerify struct {
	Allow9  *bool `yaml:"allow9"`
	Allow19 *bool `yaml:"allow19"`
	Allow29 *bool `yaml:"allow29"`
}

type RoundResult struct {
	Winner      string `yaml:"winner"`
	FinishOrder []int  `yaml:"finish-order"`
}

func ReadGameScript(fileName string) (*Script, error) {
	bytes, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading game script file [%s]", fileName)
	}

	var script Script
	err = yaml.Unmarshal(bytes, &script)
	if err != nil {
		return nil, errors.Wrapf(err, "Error parsing YAML file [%s]", fileName)
	}

	err = script.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "Error validating script [%s]", fileName)
	}

	return &script, nil
}

func (s *Script) Validate() error {
	if len(s.Players) != 2 && len(s.Players) != 3 {
		return fmt.Errorf("A script needs 2 or 3 players, got %d", len(s.Players))
	}

	// Check player names are unique.
	playerNames := mapset.NewSet()
	for _, name := range s.Players {
		if name == "" {
			return fmt.Errorf("Empty player name in players")
		}
		if playerNames.Contains(name) {
			return fmt.Errorf("Duplicate player name [%s] in players", name)
		}
		playerNames.Add(name)
	}
	if len(s.Rounds) == 0 {
		return fmt.Errorf("No rounds in script")
	}

	for i, round := range s.Rounds {
		roundNum := i + 1
		if err := s.validateDeal(round.Deal); err != nil {
			return errors.Wrapf(err, "Round %d", roundNum)
		}
		for j, step := range round.Steps {
			if step.Action.Seat >= len(s.Players) {
				return fmt.Errorf("Round %d step %d: invalid seat [%d]", roundNum, j+1, step.Action.Seat)
			}
		}
		if round.Result.Winner != "" && !playerNames.Contains(round.Result.Winner) {
			return fmt.Errorf("Round %d: winner [%s] is not a player", roundNum, round.Result.Winner)
		}
	}
	return nil
}

func (s *Script) validateDeal(d Deal) error {
	if len(d.Hands) != len(s.Players) {
		return fmt.Errorf("Deal has %d hands for %d players", len(d.Hands), len(s.Players))
	}
	if d.Dealer < 0 || d.Dealer >= len(s.Players) {
		return fmt.Errorf("Invalid dealer seat [%d]", d.Dealer)
	}
	dealt := mapset.NewSet()
	for seat, hand := range d.Hands {
		if len(hand) == 0 {
			return fmt.Errorf("Seat %d is dealt no cards", seat)
		}
		for _, c := range hand {
			if dealt.Contains(c) {
				return fmt.Errorf("Card [%d] is dealt twice", c)
			}
			dealt.Add(c)
		}
	}
	if !card31.Cards(d.Hands[d.Dealer]).Contains(card31.MinCard) {
		return fmt.Errorf("Dealer seat %d does not hold card 1", d.Dealer)
	}
	return nil
}

// SeatOf returns the seat of the named player or -1.
func (s *Script) SeatOf(name string) int {
	for i, p := range s.Players {
		if p == name {
			return i
		}
	}
	return -1
}
