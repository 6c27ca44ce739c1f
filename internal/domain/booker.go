package domain

import "strings"

type bookerKind int

const (
	bookerNone bookerKind = iota
	bookerClient
	bookerGuest
)

// Booker identifies who claims a slot: an authenticated client or a guest
// known only by email. The zero value is no identity at all, which claim
// rejects. Being a closed union rather than two optional fields makes the
// "exactly one" invariant structural.
type Booker struct {
	kind  bookerKind
	id    string
	email string
}

func ClientBooker(id string) Booker {
	return Booker{kind: bookerClient, id: id}
}

func GuestBooker(email string) Booker {
	return Booker{kind: bookerGuest, email: strings.ToLower(strings.TrimSpace(email))}
}

func (b Booker) IsValid() bool {
	switch b.kind {
	case bookerClient:
		return b.id != ""
	case bookerGuest:
		return strings.Contains(b.email, "@")
	default:
		return false
	}
}

func (b Booker) IsGuest() bool {
	return b.kind == bookerGuest
}

// ClientID returns the client id and whether this booker is a client.
func (b Booker) ClientID() (string, bool) {
	return b.id, b.kind == bookerClient
}

// GuestEmail returns the guest email and whether this booker is a guest.
func (b Booker) GuestEmail() (string, bool) {
	return b.email, b.kind == bookerGuest
}
