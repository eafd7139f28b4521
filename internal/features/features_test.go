package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flagwise/internal/models"
)

func TestRules_EachTagFires(t *testing.T) {
	samples := map[Tag]string{
		PhysicalViolence: "he hit me",
		Suicidal:         "sometimes I want to die",
		Stalking:         "she keeps showing up at work",
		Threats:          "he said you'll regret it",
		Communication:    "he never listens to me",
		Lying:            "she lied again",
		Cheating:         "I think he is cheating",
		Yelling:          "they scream at me",
		Manipulation:     "it feels like manipulation",
		Gaslighting:      "he says that never happened",
		Disrespect:       "she humiliated me at dinner",
		Jealousy:         "he checks my phone",
		SilentTreat:      "she gives me the silent treatment",
		Control:          "he won't let me go out",
		Criticism:        "nothing I do is ever good enough",
		Blaming:          "everything is my fault",
		Isolation:        "she cut me off from everyone",
		Financial:        "he takes all my money",
		LoveBombing:      "it all felt too good to be true",
		Boundaries:       "he crossed the line",
		Anger:            "I'm so angry",
		Sadness:          "I feel sad",
		Tiredness:        "I'm exhausted",
		Fear:             "I'm scared of him",
		Confusion:        "I'm so confused",
		Worthless:        "I feel worthless",
		Trapped:          "I feel trapped",
		Loneliness:       "I feel so lonely",
		Guilt:            "I feel guilty",
		Hope:             "I'm hopeful",
		Betrayal:         "I feel betrayed",
		AskShouldLeave:   "should I leave",
		AskIsNormal:      "is this normal",
		SaysTried:        "I've tried everything",
		SaysLeaving:      "I'm leaving tomorrow",
		SaysStayed:       "I stayed anyway",
		SaysLoveThem:     "I still love him",
		AskHelp:          "I need advice",
		Venting:          "I just need to vent",
		Questioning:      "why does she do this",
		Minimizing:       "it's not a big deal",
		Defensive:        "but he's a good person",
		OpeningUp:        "I've never told anyone this",
		HappeningNow:     "it's happening right now",
		Duration:         "this has gone on for 3 years",
		Support:          "my therapist says",
	}

	for _, r := range Rules {
		sample, ok := samples[r.Tag]
		require.True(t, ok, "no sample for %s", r.Tag)
		t.Run(string(r.Tag), func(t *testing.T) {
			assert.True(t, Extract(sample).Has(r.Tag), "%q should tag %s", sample, r.Tag)
		})
	}
}

func TestExtract_CaseAndQuotes(t *testing.T) {
	f := Extract("He said YOU’LL REGRET IT")
	assert.True(t, f.Has(Threats))
}

func TestExtract_Empty(t *testing.T) {
	f := Extract("   ")
	assert.Empty(t, f.Tags())
	assert.Equal(t, Short, f.Length)
	assert.Equal(t, Person(""), f.Person())
}

func TestExtract_MultipleSignals(t *testing.T) {
	f := Extract("My boyfriend hit me last night and I'm scared, should I leave?")
	assert.True(t, f.Has(PhysicalViolence))
	assert.True(t, f.Has(Fear))
	assert.True(t, f.Has(AskShouldLeave))
	assert.True(t, f.Has(Questioning))
	assert.Equal(t, Boyfriend, f.Person())
	assert.True(t, f.HasTopic())
	assert.True(t, f.HasEmotion())
}

func TestClassifyLength(t *testing.T) {
	assert.Equal(t, Short, ClassifyLength(0))
	assert.Equal(t, Short, ClassifyLength(19))
	assert.Equal(t, Medium, ClassifyLength(20))
	assert.Equal(t, Medium, ClassifyLength(79))
	assert.Equal(t, Long, ClassifyLength(80))
}

func TestClassifyDepth(t *testing.T) {
	assert.Equal(t, DepthBeginning, ClassifyDepth(4))
	assert.Equal(t, DepthMedium, ClassifyDepth(5))
	assert.Equal(t, DepthMedium, ClassifyDepth(10))
	assert.Equal(t, DepthDeep, ClassifyDepth(11))
}

func user(content string) models.ChatMessage {
	return models.ChatMessage{Role: models.RoleUser, Content: content}
}

func assistant(content string) models.ChatMessage {
	return models.ChatMessage{Role: models.RoleAssistant, Content: content}
}

func TestExtractHistory_PersonPriority(t *testing.T) {
	h := ExtractHistory([]models.ChatMessage{
		user("my partner keeps yelling"),
		user("my sister noticed it too"),
	})
	// Sister outranks partner even though partner came first.
	assert.Equal(t, Sister, h.Person())
	assert.Equal(t, RelFamily, h.Relationship())
}

func TestExtractHistory_RelationshipClasses(t *testing.T) {
	tests := []struct {
		text string
		want Relationship
	}{
		{"my husband", RelRomantic},
		{"my dad", RelFamily},
		{"my best friend", RelFriendship},
		{"my boss", RelWork},
		{"my ex", RelEx},
		{"nobody in particular", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			h := ExtractHistory([]models.ChatMessage{user(tt.text)})
			assert.Equal(t, tt.want, h.Relationship())
		})
	}
}

func TestExtractHistory_SafetyNeverClears(t *testing.T) {
	transcript := []models.ChatMessage{user("he hit me once")}
	for i := 0; i < 12; i++ {
		transcript = append(transcript, assistant("I hear you."), user("anyway, the weather is nice"))
		h := ExtractHistory(transcript)
		require.True(t, h.PhysicalDanger, "cleared after %d turns", i+1)
		require.True(t, h.SafetyRaised())
	}
}

func TestExtract_SafetyPhrasings(t *testing.T) {
	tests := []struct {
		text string
		want Tag
	}{
		{"he said he'd kill me", Threats},
		{"she said she would kill me", Threats},
		{"he threatened to hurt my sister", Threats},
		{"he wants to hurt me", Threats},
		{"I keep thinking about ending my life", Suicidal},
		{"I just want to end it all", Suicidal},
		{"I don't want to be alive anymore", Suicidal},
		{"he hurts me when he drinks", PhysicalViolence},
		{"my partner is abusive and hurt me again", PhysicalViolence},
		{"she has been abusing me for years", PhysicalViolence},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := Extract(tt.text)
			assert.True(t, f.Has(tt.want), "tags: %v", f.Tags())

			h := ExtractHistory([]models.ChatMessage{user(tt.text), assistant("I hear you."), user("ok")})
			assert.True(t, h.SafetyRaised())
		})
	}
}

func TestExtractHistory_IgnoresAssistantText(t *testing.T) {
	h := ExtractHistory([]models.ChatMessage{
		assistant("If anyone has hit you, call emergency services."),
	})
	assert.False(t, h.PhysicalDanger)
	assert.Equal(t, 0, h.MessageCount)
}

func TestExtractHistory_CountsAndShared(t *testing.T) {
	long := strings.Repeat("a", 151)
	h := ExtractHistory([]models.ChatMessage{
		user("hi"),
		assistant("Who are you thinking about?"),
		user(long),
	})
	assert.Equal(t, 2, h.MessageCount)
	assert.True(t, h.SharedDetails)
	assert.True(t, h.SharedLongStory)
	assert.Equal(t, TrendGrowing, h.LengthTrend)
	assert.True(t, h.LastAssistantAskedWho)
	assert.Equal(t, DepthBeginning, h.Depth())
}

func TestExtractHistory_IssuesAccumulate(t *testing.T) {
	h := ExtractHistory([]models.ChatMessage{
		user("he lied about where he was"),
		user("I feel so tired of it"),
		user("this has been going on for months"),
	})
	assert.True(t, h.Discussed(Lying))
	assert.Equal(t, Lying, h.FirstIssue())
	assert.True(t, h.EmotionalImpactDiscussed())
	assert.True(t, h.DurationDiscussed())
	assert.False(t, h.SupportDiscussed())
}

func TestHistory_AddDoesNotMutateReceiver(t *testing.T) {
	base := ExtractHistory([]models.ChatMessage{user("hello there")})
	next := base.Add(user("he threatened me"))

	assert.False(t, base.ThreatsRaised)
	assert.Equal(t, 1, base.MessageCount)
	assert.True(t, next.ThreatsRaised)
	assert.Equal(t, 2, next.MessageCount)
}

func TestWithCurrent(t *testing.T) {
	transcript := []models.ChatMessage{user("first")}

	assert.Len(t, WithCurrent(transcript, ""), 1)
	assert.Len(t, WithCurrent(transcript, "first"), 1)

	got := WithCurrent(transcript, "second")
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[1].Content)
	assert.Len(t, transcript, 1)
}
