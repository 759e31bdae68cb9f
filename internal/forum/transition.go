package forum

// Branch names the transition taken for a vote.
type Branch string

const (
	BranchFirst   Branch = "first"   // no ledger row yet
	BranchNeutral Branch = "neutral" // ledger row holds 0
	BranchSwitch  Branch = "switch"  // ledger row holds the opposite value
	BranchRepeat  Branch = "repeat"  // ledger row already holds the value
)

// LedgerWrite is the ledger mutation a Step requires.
type LedgerWrite int

const (
	WriteNone LedgerWrite = iota
	WriteInsert
	WriteUpdate
)

// Step is the outcome of the vote state machine: what to write to the
// ledger and how much to add to the aggregate.
type Step struct {
	Branch Branch
	Write  LedgerWrite
	Value  int16
	Delta  int
}

// Normalize maps a requested vote to -1 or +1. Only -1 is a downvote;
// every other value, including 0, is an upvote.
func Normalize(requested int) int16 {
	if requested == -1 {
		return -1
	}
	return 1
}

// Transition decides the ledger write and aggregate delta for a vote, given
// the user's existing ledger value (nil when there is no row).
//
// A zero row is sticky: it is rewritten as zero with a zero delta, so a
// retracted vote cannot be cast again through this path.
func Transition(existing *int16, requested int) Step {
	value := Normalize(requested)

	switch {
	case existing == nil:
		return Step{Branch: BranchFirst, Write: WriteInsert, Value: value, Delta: int(value)}
	case *existing == 0:
		return Step{Branch: BranchNeutral, Write: WriteUpdate, Value: 0, Delta: 0}
	case *existing != value:
		return Step{Branch: BranchSwitch, Write: WriteUpdate, Value: value, Delta: 2 * int(value)}
	default:
		return Step{Branch: BranchRepeat, Write: WriteNone, Value: *existing, Delta: 0}
	}
}
