package features

import "regexp"

// Person is someone the user talks about.
type Person string

// Persons in identification priority order.
const (
	Sister     Person = "sister"
	Brother    Person = "brother"
	Mom        Person = "mom"
	Dad        Person = "dad"
	Boyfriend  Person = "boyfriend"
	Girlfriend Person = "girlfriend"
	Husband    Person = "husband"
	Wife       Person = "wife"
	Partner    Person = "partner"
	Friend     Person = "friend"
	Coworker   Person = "coworker"
	Ex         Person = "ex"
)

// Relationship is the coarse class of a Person.
type Relationship string

const (
	RelRomantic   Relationship = "romantic"
	RelFamily     Relationship = "family"
	RelFriendship Relationship = "friendship"
	RelWork       Relationship = "work"
	RelEx         Relationship = "ex"
)

type personRule struct {
	person  Person
	rel     Relationship
	pattern *regexp.Regexp
}

// personRules is ordered by priority: when several people are mentioned, the
// earliest rule wins regardless of where the mentions appear.
var personRules = []personRule{
	{Sister, RelFamily, regexp.MustCompile(`\b(sister|sis)\b`)},
	{Brother, RelFamily, regexp.MustCompile(`\b(brother|bro)\b`)},
	{Mom, RelFamily, regexp.MustCompile(`\b(mom|mum|mother|mommy|mama)\b`)},
	{Dad, RelFamily, regexp.MustCompile(`\b(dad|father|daddy|papa)\b`)},
	{Boyfriend, RelRomantic, regexp.MustCompile(`\b(boyfriend|bf)\b`)},
	{Girlfriend, RelRomantic, regexp.MustCompile(`\b(girlfriend|gf)\b`)},
	{Husband, RelRomantic, regexp.MustCompile(`\bhusband\b`)},
	{Wife, RelRomantic, regexp.MustCompile(`\bwife\b`)},
	{Partner, RelRomantic, regexp.MustCompile(`\b(partner|spouse|fianc)`)},
	{Friend, RelFriendship, regexp.MustCompile(`\b(best ?friend|friend|bestie)s?\b`)},
	{Coworker, RelWork, regexp.MustCompile(`\b(co-?worker|colleague|boss|manager|supervisor)s?\b`)},
	{Ex, RelEx, regexp.MustCompile(`\bex\b`)},
}

// RelationshipOf maps a person to their relationship class.
func RelationshipOf(p Person) Relationship {
	for _, r := range personRules {
		if r.person == p {
			return r.rel
		}
	}
	return ""
}

// PersonSet is a priority-ordered bitset of persons.
type PersonSet uint16

func matchPersons(normalized string) PersonSet {
	var s PersonSet
	for i, r := range personRules {
		if r.pattern.MatchString(normalized) {
			s |= 1 << uint(i)
		}
	}
	return s
}

// First returns the highest-priority person in the set, or "".
func (s PersonSet) First() Person {
	for i, r := range personRules {
		if s&(1<<uint(i)) != 0 {
			return r.person
		}
	}
	return ""
}

// Has reports whether p is in the set.
func (s PersonSet) Has(p Person) bool {
	for i, r := range personRules {
		if r.person == p {
			return s&(1<<uint(i)) != 0
		}
	}
	return false
}
