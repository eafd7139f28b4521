// Package features turns chat text into tagged signals. Message features are
// computed per turn from one message; History is a fold over the transcript
// that only ever accumulates.
package features

import (
	"fmt"
	"regexp"
)

// Tag names one signal produced by the rule table.
type Tag string

// Group classifies tags so the dispatcher can ask "any topic?" etc.
type Group int

const (
	GroupTopic Group = iota
	GroupSafety
	GroupEmotion
	GroupAction
	GroupTone
	GroupContext
)

// Topic tags.
const (
	Communication Tag = "communication"
	Lying         Tag = "lying"
	Cheating      Tag = "cheating"
	Yelling       Tag = "yelling"
	Manipulation  Tag = "manipulation"
	Gaslighting   Tag = "gaslighting"
	Disrespect    Tag = "disrespect"
	Jealousy      Tag = "jealousy"
	SilentTreat   Tag = "silent-treatment"
	Control       Tag = "control"
	Criticism     Tag = "criticism"
	Blaming       Tag = "blaming"
	Isolation     Tag = "isolation"
	Financial     Tag = "financial"
	LoveBombing   Tag = "love-bombing"
	Boundaries    Tag = "boundaries"
)

// Safety tags. These outrank everything in the dispatcher.
const (
	PhysicalViolence Tag = "physical-violence"
	Suicidal         Tag = "suicidal"
	Stalking         Tag = "stalking"
	Threats          Tag = "threats"
)

// Emotion tags.
const (
	Anger      Tag = "anger"
	Sadness    Tag = "sadness"
	Tiredness  Tag = "tiredness"
	Fear       Tag = "fear"
	Confusion  Tag = "confusion"
	Worthless  Tag = "worthlessness"
	Trapped    Tag = "trapped"
	Loneliness Tag = "loneliness"
	Guilt      Tag = "guilt"
	Hope       Tag = "hope"
	Betrayal   Tag = "betrayal"
)

// Action and question tags.
const (
	AskShouldLeave Tag = "should-leave"
	AskIsNormal    Tag = "is-normal"
	SaysTried      Tag = "tried"
	SaysLeaving    Tag = "leaving"
	SaysStayed     Tag = "stayed"
	SaysLoveThem   Tag = "love-them"
	AskHelp        Tag = "help"
)

// Tone tags.
const (
	Venting     Tag = "venting"
	Questioning Tag = "questioning"
	Minimizing  Tag = "minimizing"
	Defensive   Tag = "defensive"
	OpeningUp   Tag = "opening-up"
)

// Context tags.
const (
	HappeningNow Tag = "happening-now"
	Duration     Tag = "duration"
	Support      Tag = "support"
)

// Rule is one (tag, predicate) pair. Patterns run against normalized
// (lower-cased, quote-folded) text.
type Rule struct {
	Tag     Tag
	Group   Group
	Pattern *regexp.Regexp
}

func rule(tag Tag, g Group, expr string) Rule {
	return Rule{Tag: tag, Group: g, Pattern: regexp.MustCompile(expr)}
}

// Rules is the ordered tag table. Order only matters for Tags() output.
var Rules = []Rule{
	rule(PhysicalViolence, GroupSafety, `\b(hit|hits|hitting|punch\w*|slap\w*|kick(ed|s|ing)?|chok\w*|strangl\w*|shov\w*|push(ed|es|ing)? me|beat(s|ing)? me|hurt(s|ing)? me|grabbed me|abus(e|ed|es|ive|ing)|threw (something|things|a \w+) at me|violen\w*|physically (hurt|abus\w*))\b`),
	rule(Suicidal, GroupSafety, `\b(suicid\w*|kill(ing)? myself|end(ing)? (my life|it all)|want to die|wanna die|don't want to (live|be here|be alive)|better off dead|self[- ]harm\w*|hurt(ing)? myself)\b`),
	rule(Stalking, GroupSafety, `\b(stalk\w*|follow(s|ed|ing)? me|tracks? my (location|phone)|tracking (me|my)|shows? up (at|outside) my|keeps? showing up|watching me)\b`),
	rule(Threats, GroupSafety, `\b(threat\w*|or else|you'll regret|i'll make you|(would|'d|will|going to|gonna|wants? to|threaten\w* to) (hurt|kill) (me|you|my|us|him|her|them))\b`),

	rule(Communication, GroupTopic, `\b(communicat\w*|(never|doesn't|won't|don't) listen\w*|(can't|won't|don't|never) talk\w*( to me)?|we don't talk)\b`),
	rule(Lying, GroupTopic, `\b(lie|lies|lied|liar|liars|lying|dishonest\w*)\b`),
	rule(Cheating, GroupTopic, `\b(cheat\w*|affair|unfaithful|seeing someone else|sleeping with)\b`),
	rule(Yelling, GroupTopic, `\b(yell\w*|scream\w*|shout\w*|raises? (his|her|their) voice)\b`),
	rule(Manipulation, GroupTopic, `\b(manipulat\w*|guilt[- ]trip\w*|twists? my words)\b`),
	rule(Gaslighting, GroupTopic, `\b(gaslight\w*|never happened|making me (feel|think) (i'm )?crazy|too sensitive|imagining things)\b`),
	rule(Disrespect, GroupTopic, `\b(disrespect\w*|belittl\w*|humiliat\w*|insult\w*|mock\w*|puts? me down|putting me down)\b`),
	rule(Jealousy, GroupTopic, `\b(jealous\w*|checks? my phone|go(es|ing)? through my phone|accus\w* me of)\b`),
	rule(SilentTreat, GroupTopic, `\b(silent treatment|ignor\w* me|stopped talking to me|cold shoulder|won't speak to me)\b`),
	rule(Control, GroupTopic, `\b(controll?\w*|won't let me|doesn't let me|not allowed to|tells? me what to (wear|do)|ask(s|ing)? permission)\b`),
	rule(Criticism, GroupTopic, `\b(criticiz\w*|criticis\w*|critical of|nothing i do is (ever )?(good enough|right)|finds? fault|nitpick\w*)\b`),
	rule(Blaming, GroupTopic, `\b(blam\w*|my fault|fault for everything|made (him|her|them) do it)\b`),
	rule(Isolation, GroupTopic, `\b(isolat\w*|cut me off|keeps? me (away )?from (my )?(friends|family)|won't let me see|no friends left)\b`),
	rule(Financial, GroupTopic, `\b(money|financ\w*|bank account|paycheck|allowance|credit card|spending)\b`),
	rule(LoveBombing, GroupTopic, `\b(love ?bomb\w*|too good to be true|soulmate|moving (so|too) fast|showers? me with)\b`),
	rule(Boundaries, GroupTopic, `\b(boundar\w*|respect my (space|privacy|no)|doesn't respect my|crossed? the line|won't take no)\b`),

	rule(Anger, GroupEmotion, `\b(angry|mad|furious|pissed|rage|frustrat\w*|annoyed)\b`),
	rule(Sadness, GroupEmotion, `\b(sad|depressed|unhappy|heartbroken|crying|cry|cried|miserable|devastated)\b`),
	rule(Tiredness, GroupEmotion, `\b(tired|exhausted|drained|worn out|burn(ed|t) out|fed up)\b`),
	rule(Fear, GroupEmotion, `\b(scared|afraid|terrified|fear\w*|frightened|nervous|anxious|eggshells)\b`),
	rule(Confusion, GroupEmotion, `\b(confus\w*|don't know what to (do|think)|unsure|mixed signals)\b`),
	rule(Worthless, GroupEmotion, `\b(worthless|useless|not good enough|hate myself|pathetic|nothing without)\b`),
	rule(Trapped, GroupEmotion, `\b(trapped|stuck|no way out|can't escape)\b`),
	rule(Loneliness, GroupEmotion, `\b(lonely|alone|no one to talk to)\b`),
	rule(Guilt, GroupEmotion, `\b(guilt|guilty|ashamed|shame|blame myself)\b`),
	rule(Hope, GroupEmotion, `\b(hope|hopeful|relief|relieved|getting better|optimistic)\b`),
	rule(Betrayal, GroupEmotion, `\b(betray\w*|stabbed in the back|broke my trust|can't trust)\b`),

	rule(AskShouldLeave, GroupAction, `\b(should i (leave|break up|end (it|things)|divorce|stay|go)|do i leave)\b`),
	rule(AskIsNormal, GroupAction, `\b(is (this|that|it) (normal|okay|ok|healthy|abuse)|am i overreacting|is this a red flag)\b`),
	rule(SaysTried, GroupAction, `\b(i've tried|i tried|tried (talking|to talk|everything|explaining)|keep trying)\b`),
	rule(SaysLeaving, GroupAction, `\b(i'm leaving|i left|moving out|breaking up|(going to|gonna|want to|decided to) leave|i'll leave)\b`),
	rule(SaysStayed, GroupAction, `\b(i stayed|i'm staying|decided to stay|still with (him|her|them)|can't leave)\b`),
	rule(SaysLoveThem, GroupAction, `\b(i (still )?love (him|her|them)|but i love)\b`),
	rule(AskHelp, GroupAction, `\b(help|advice|what (should|do|can) i do)\b`),

	rule(Venting, GroupTone, `\b(need to vent|venting|let it out|off my chest|had to tell someone)\b`),
	rule(Questioning, GroupTone, `\?|^\s*(why|how|what|should|is|am|do|does|can)\b`),
	rule(Minimizing, GroupTone, `\b(not (that )?bad|not a big deal|overreacting|probably nothing|it's fine|only happened once|not always like)\b`),
	rule(Defensive, GroupTone, `\b(but (he|she|they)('s|'re| is| are) (a )?(good|nice|great|sweet)|you don't (know|understand)|it's not like that|(isn't|aren't|not) abusive)\b`),
	rule(OpeningUp, GroupTone, `\b(never told anyone|first time (i'm )?(telling|saying)|hard (for me )?to (say|talk about)|honestly|to be honest)\b`),

	rule(HappeningNow, GroupContext, `\b(right now|happening now|currently|at the moment|(he|she|they)('s|'re| is| are) here|outside my (door|house)|in the next room)\b`),
	rule(Duration, GroupContext, `\b((\d+|a few|few|several|many|a couple of|couple) (days|weeks|months|years)|for (years|months)|since (we|the beginning)|always been)\b`),
	rule(Support, GroupContext, `\b(therapist|counsel(l)?or|support\w*|told (my|a) (friend|family|mom|sister|brother)|(friends|family) know|someone to talk to)\b`),
}

var tagIndex = func() map[Tag]int {
	if len(Rules) > 64 {
		panic(fmt.Sprintf("features: %d rules exceed TagSet capacity", len(Rules)))
	}
	idx := make(map[Tag]int, len(Rules))
	for i, r := range Rules {
		if _, dup := idx[r.Tag]; dup {
			panic(fmt.Sprintf("features: duplicate tag %q", r.Tag))
		}
		idx[r.Tag] = i
	}
	return idx
}()

// TagsIn lists the tags of one group in table order.
func TagsIn(g Group) []Tag {
	var out []Tag
	for _, r := range Rules {
		if r.Group == g {
			out = append(out, r.Tag)
		}
	}
	return out
}

// TagSet is a set of tags indexed by their position in Rules.
type TagSet uint64

// With returns s plus t. Unknown tags are ignored.
func (s TagSet) With(t Tag) TagSet {
	i, ok := tagIndex[t]
	if !ok {
		return s
	}
	return s | 1<<uint(i)
}

// Has reports whether t is in the set.
func (s TagSet) Has(t Tag) bool {
	i, ok := tagIndex[t]
	return ok && s&(1<<uint(i)) != 0
}

// Any reports whether at least one of ts is in the set.
func (s TagSet) Any(ts ...Tag) bool {
	for _, t := range ts {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Union merges two sets.
func (s TagSet) Union(o TagSet) TagSet { return s | o }

// InGroup returns the set members belonging to g, in table order.
func (s TagSet) InGroup(g Group) []Tag {
	var out []Tag
	for i, r := range Rules {
		if r.Group == g && s&(1<<uint(i)) != 0 {
			out = append(out, r.Tag)
		}
	}
	return out
}

// Tags returns all members in table order.
func (s TagSet) Tags() []Tag {
	var out []Tag
	for i, r := range Rules {
		if s&(1<<uint(i)) != 0 {
			out = append(out, r.Tag)
		}
	}
	return out
}

// Match runs the rule table over already-normalized text.
func Match(normalized string) TagSet {
	var s TagSet
	for i, r := range Rules {
		if r.Pattern.MatchString(normalized) {
			s |= 1 << uint(i)
		}
	}
	return s
}
