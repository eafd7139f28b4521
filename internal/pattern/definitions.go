package pattern

import "github.com/harrison/flagwise/internal/models"

var basePatterns = []Definition{
	{
		ID:   "gaslighting",
		Name: "Gaslighting",
		Keywords: []string{
			"that never happened", "you're too sensitive", "you're crazy", "you're imagining things",
			"you're overreacting", "i never said that", "you remember it wrong", "you're being paranoid",
			"made me question my memory", "doubt my own memory",
		},
		Category:    models.CategoryEmotionalManipulation,
		Severity:    models.FlagSevere,
		Description: "Denying your experiences or memory so you start doubting your own perception.",
	},
	{
		ID:   "isolation",
		Name: "Isolation",
		Keywords: []string{
			"won't let me see", "doesn't want me to see my friends", "can't see my family",
			"stop talking to", "cut off my friends", "keeps me from", "not allowed to go out",
			"hates my friends", "only need me",
		},
		Category:    models.CategoryControl,
		Severity:    models.FlagSevere,
		Description: "Cutting you off from friends, family, or other sources of support.",
	},
	{
		ID:   "loveBombing",
		Name: "Love Bombing",
		Keywords: []string{
			"soulmate after", "never felt this way", "too good to be true", "showered me with",
			"moving so fast", "love you already", "perfect for each other", "constant gifts",
		},
		Category:    models.CategoryManipulation,
		Severity:    models.FlagModerate,
		Description: "Overwhelming affection early on that creates fast attachment and obligation.",
	},
	{
		ID:   "jealousy",
		Name: "Excessive Jealousy",
		Keywords: []string{
			"jealous", "who were you with", "checks my phone", "went through my phone",
			"accused me of cheating", "looking at other", "possessive",
		},
		Category:    models.CategoryControl,
		Severity:    models.FlagModerate,
		Description: "Possessive suspicion framed as love, often paired with monitoring.",
	},
	{
		ID:   "financialControl",
		Name: "Financial Control",
		Keywords: []string{
			"controls the money", "takes my paycheck", "won't let me work", "allowance",
			"had to ask for money", "hides the bank", "took my card", "ran up debt in my name",
		},
		Category:    models.CategoryFinancialAbuse,
		Severity:    models.FlagSevere,
		Description: "Restricting access to money, work, or financial information.",
	},
	{
		ID:   "threats",
		Name: "Threats",
		Keywords: []string{
			"threatened", "or else", "you'll regret", "hurt you", "kill myself if you",
			"take the kids", "make you pay", "threat",
		},
		Category:    models.CategorySafety,
		Severity:    models.FlagSevere,
		Description: "Statements meant to frighten you into compliance.",
	},
	{
		ID:   "boundaryViolation",
		Name: "Boundary Violation",
		Keywords: []string{
			"ignored my no", "didn't respect my", "pushed me to", "kept pushing", "after i said no",
			"crossed the line", "read my messages", "showed up uninvited",
		},
		Category:    models.CategoryBoundaries,
		Severity:    models.FlagModerate,
		Description: "Disregarding limits you have clearly stated.",
	},
	{
		ID:   "publicHumiliation",
		Name: "Public Humiliation",
		Keywords: []string{
			"embarrassed me in front", "made fun of me in front", "humiliated me", "mocked me",
			"in front of everyone", "laughed at me",
		},
		Category:    models.CategoryEmotionalAbuse,
		Severity:    models.FlagModerate,
		Description: "Belittling you in front of others.",
	},
	{
		ID:   "blameShifting",
		Name: "Blame Shifting",
		Keywords: []string{
			"your fault", "you made me", "look what you made me do", "blames me",
			"because of you", "if you hadn't",
		},
		Category:    models.CategoryManipulation,
		Severity:    models.FlagModerate,
		Description: "Making you responsible for their behavior or feelings.",
	},
	{
		ID:   "inconsistency",
		Name: "Hot and Cold",
		Keywords: []string{
			"hot and cold", "one minute", "mixed signals", "walking on eggshells",
			"never know which", "mood swings",
		},
		Category:    models.CategoryEmotionalManipulation,
		Severity:    models.FlagMild,
		Description: "Unpredictable swings between warmth and withdrawal that keep you off balance.",
	},
}

var workplacePatterns = []Definition{
	{
		ID:   "micromanagement",
		Name: "Micromanagement",
		Keywords: []string{
			"micromanag", "checks every", "cc'd on everything", "hovering over",
			"approve every", "doesn't trust me to",
		},
		Category:    models.CategoryWorkplaceControl,
		Severity:    models.FlagMild,
		Description: "Excessive oversight that removes reasonable autonomy at work.",
	},
	{
		ID:   "bullying",
		Name: "Workplace Bullying",
		Keywords: []string{
			"yelled at me in the meeting", "screamed at me", "singled me out", "excluded me from",
			"took credit for my", "threatened my job", "bullied",
		},
		Category:    models.CategoryWorkplaceAbuse,
		Severity:    models.FlagSevere,
		Description: "Repeated hostile treatment by a manager or colleague.",
	},
	{
		ID:   "boundary",
		Name: "Work-Life Boundary",
		Keywords: []string{
			"texts me at night", "on the weekend", "during my vacation", "expected to answer",
			"after hours", "unpaid overtime",
		},
		Category:    models.CategoryWorkplaceBoundaries,
		Severity:    models.FlagModerate,
		Description: "Work demands intruding on personal time without agreement.",
	},
}
