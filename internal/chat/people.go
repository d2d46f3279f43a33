package chat

import (
	"fmt"
	"strings"
)

type Person struct {
	UserID    UserID `json:"user_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Initials returns up to two letters for compact avatar rendering.
func (p Person) Initials() string {
	fields := strings.Fields(p.FullName)
	switch len(fields) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(firstRune(fields[0]))
	default:
		return strings.ToUpper(firstRune(fields[0]) + firstRune(fields[len(fields)-1]))
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// People is the user directory plus the identity of the viewing user.
type People struct {
	self UserID
	byID map[UserID]Person
}

func NewPeople(self UserID) *People {
	return &People{self: self, byID: make(map[UserID]Person)}
}

func (p *People) Self() UserID {
	return p.self
}

func (p *People) IsMyUserID(id UserID) bool {
	return p.self != 0 && id == p.self
}

func (p *People) Add(person Person) {
	person.FullName = strings.TrimSpace(person.FullName)
	p.byID[person.UserID] = person
}

func (p *People) Get(id UserID) (Person, bool) {
	person, ok := p.byID[id]
	return person, ok
}

// SenderInfo resolves ids in order, substituting a placeholder for unknown
// users.
func (p *People) SenderInfo(ids []UserID) []Person {
	out := make([]Person, 0, len(ids))
	for _, id := range ids {
		person, ok := p.byID[id]
		if !ok {
			person = Person{UserID: id, FullName: fmt.Sprintf("user%d", id)}
		}
		out = append(out, person)
	}
	return out
}
