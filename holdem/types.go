package holdem

const InvalidSeat uint16 = 65535

// Street 下注街
type Street byte

const (
	StreetPreflop  Street = 0
	StreetFlop     Street = 1
	StreetTurn     Street = 2
	StreetRiver    Street = 3
	StreetShowdown Street = 4
)

var StreetDictionary = map[Street]string{
	StreetPreflop:  "preflop",
	StreetFlop:     "flop",
	StreetTurn:     "turn",
	StreetRiver:    "river",
	StreetShowdown: "showdown",
}

func (s Street) String() string {
	if v, ok := StreetDictionary[s]; ok {
		return v
	}
	return "unknown"
}

// StreetForBoard is the street a board of n community cards belongs to.
func StreetForBoard(n int) Street {
	switch {
	case n >= 5:
		return StreetRiver
	case n == 4:
		return StreetTurn
	case n >= 3:
		return StreetFlop
	}
	return StreetPreflop
}

// boardSize is how many community cards are out once s is dealt.
func boardSize(s Street) int {
	switch s {
	case StreetPreflop:
		return 0
	case StreetFlop:
		return 3
	case StreetTurn:
		return 4
	}
	return 5
}

// boardCardsFor is how many community cards are dealt when entering s.
func boardCardsFor(s Street) int {
	switch s {
	case StreetFlop:
		return 3
	case StreetTurn, StreetRiver:
		return 1
	}
	return 0
}

// HandState is the lifecycle of a single hand.
type HandState byte

const (
	StateDealing   HandState = 0
	StatePreflop   HandState = 1
	StateFlop      HandState = 2
	StateTurn      HandState = 3
	StateRiver     HandState = 4
	StateShowdown  HandState = 5
	StateEarlyFold HandState = 6
	StateSettled   HandState = 7
)

var HandStateDictionary = map[HandState]string{
	StateDealing:   "dealing",
	StatePreflop:   "preflop",
	StateFlop:      "flop",
	StateTurn:      "turn",
	StateRiver:     "river",
	StateShowdown:  "showdown",
	StateEarlyFold: "early_fold",
	StateSettled:   "settled",
}

func (s HandState) String() string {
	if v, ok := HandStateDictionary[s]; ok {
		return v
	}
	return "unknown"
}

func stateForStreet(s Street) HandState {
	switch s {
	case StreetPreflop:
		return StatePreflop
	case StreetFlop:
		return StateFlop
	case StreetTurn:
		return StateTurn
	case StreetRiver:
		return StateRiver
	}
	return StateShowdown
}

// ActionKind 动作类型：0-NONE 1-FOLD 2-CHECK/CALL 3-BET/RAISE
type ActionKind byte

const (
	ActionNone      ActionKind = 0
	ActionFold      ActionKind = 1
	ActionCheckCall ActionKind = 2
	ActionBetRaise  ActionKind = 3
)

var ActionKindDictionary = map[ActionKind]string{
	ActionNone:      "NONE",
	ActionFold:      "FOLD",
	ActionCheckCall: "CHECK_CALL",
	ActionBetRaise:  "BET_RAISE",
}

func (a ActionKind) String() string {
	if v, ok := ActionKindDictionary[a]; ok {
		return v
	}
	return "UNKNOWN"
}

func (a ActionKind) Valid() bool {
	return a == ActionFold || a == ActionCheckCall || a == ActionBetRaise
}

// ParseActionKind accepts the dictionary names plus the usual aliases.
func ParseActionKind(s string) (ActionKind, bool) {
	switch s {
	case "FOLD", "fold", "f":
		return ActionFold, true
	case "CHECK_CALL", "check_call", "check", "call", "c":
		return ActionCheckCall, true
	case "BET_RAISE", "bet_raise", "bet", "raise", "r":
		return ActionBetRaise, true
	}
	return ActionNone, false
}

// BetMode selects how BetRaise sizes its raise.
type BetMode byte

const (
	// BetFixed raises by Config.RaiseIncrement.
	BetFixed BetMode = 0
	// BetVariable raises by a player-chosen amount in [MinBet, stack-toCall].
	BetVariable BetMode = 1
)

func (m BetMode) String() string {
	if m == BetVariable {
		return "variable"
	}
	return "fixed"
}

// Outcome is how a settled hand ended.
type Outcome byte

const (
	OutcomeNone      Outcome = 0
	OutcomeShowdown  Outcome = 1
	OutcomeEarlyFold Outcome = 2
	OutcomeAborted   Outcome = 3
)

func (o Outcome) String() string {
	switch o {
	case OutcomeShowdown:
		return "showdown"
	case OutcomeEarlyFold:
		return "early_fold"
	case OutcomeAborted:
		return "aborted"
	}
	return "none"
}

// Category 牌型, ordered weakest to strongest.
type Category byte

const (
	CategoryHighCard      Category = iota + 1 // 高牌
	CategoryOnePair                           // 一对
	CategoryTwoPair                           // 两对
	CategoryThreeOfAKind                      // 三条
	CategoryStraight                          // 顺子
	CategoryFlush                             // 同花
	CategoryFullHouse                         // 葫芦
	CategoryFourOfAKind                       // 四条
	CategoryStraightFlush                     // 同花顺
)

var CategoryDictionary = map[Category]string{
	CategoryHighCard:      "high card",
	CategoryOnePair:       "one pair",
	CategoryTwoPair:       "two pair",
	CategoryThreeOfAKind:  "three of a kind",
	CategoryStraight:      "straight",
	CategoryFlush:         "flush",
	CategoryFullHouse:     "full house",
	CategoryFourOfAKind:   "four of a kind",
	CategoryStraightFlush: "straight flush",
}

func (c Category) String() string {
	if v, ok := CategoryDictionary[c]; ok {
		return v
	}
	return "unknown"
}
