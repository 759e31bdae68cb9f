package forum

import "fmt"

// Kind selects one of the votable entity types.
type Kind int

const (
	KindPost Kind = iota
	KindReply
)

func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindReply:
		return "reply"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k names a known entity type.
func (k Kind) Valid() bool {
	return k == KindPost || k == KindReply
}
