package synthesis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBrief_Deterministic(t *testing.T) {
	q := QuizAnswers{
		ValueProposition:  "dog walking app",
		TargetAudience:    "busy city dog owners",
		EssentialFeatures: "book a trusted walker in one tap",
		AppFeel:           "warm and trustworthy",
	}
	a := LocalBrief(q, false)
	b := LocalBrief(q, false)
	assert.Equal(t, a, b)

	assert.Contains(t, a, "VALUE PROPOSITION:")
	assert.Contains(t, a, "TARGET AUDIENCE:")
	assert.Contains(t, a, "ESSENTIAL FEATURE:")
	assert.Contains(t, a, "APP FEEL:")
	assert.Contains(t, a, "dog walking app")
	assert.Contains(t, a, "busy city dog owners")
}

func TestLocalBrief_EmptyAnswersGetDefaults(t *testing.T) {
	brief := LocalBrief(QuizAnswers{}, false)
	assert.Equal(t, defaultValueProposition, BriefSection(brief, "VALUE PROPOSITION"))
	assert.Equal(t, defaultAudience, BriefSection(brief, "TARGET AUDIENCE"))
}

func TestBriefSection(t *testing.T) {
	brief := "HEADER NOISE\nVALUE PROPOSITION:\n\n  a thing  \nmore text"
	assert.Equal(t, "a thing", BriefSection(brief, "VALUE PROPOSITION"))
	assert.Equal(t, "", BriefSection(brief, "MISSING SECTION"))
}

func TestTitleFromBrief(t *testing.T) {
	brief := LocalBrief(QuizAnswers{ValueProposition: "dog walking app"}, false)
	assert.Equal(t, "dog walking app", TitleFromBrief(brief))

	assert.Equal(t, defaultTitle, TitleFromBrief("no sections here"))

	long := LocalBrief(QuizAnswers{ValueProposition: strings.Repeat("x", 60)}, false)
	assert.LessOrEqual(t, len([]rune(TitleFromBrief(long))), 41)
}

func TestLocalPrototype_CodeIsRenderable(t *testing.T) {
	brief := LocalBrief(QuizAnswers{
		ValueProposition: "dog walking app",
		TargetAudience:   "busy owners",
	}, true)
	proto := LocalPrototype(brief)

	require.True(t, HasComponentDecl(proto.Code))
	assert.NotContains(t, proto.Code, "import ")
	assert.NotContains(t, proto.Code, "export ")
	assert.Contains(t, proto.Code, "dog walking app")
	assert.Equal(t, "dog walking app", proto.Title)
	assert.Equal(t, DefaultTheme, proto.Theme)

	// Normalizing already-pure code must change nothing.
	assert.Equal(t, proto.Code, ExtractPureCode(proto.Code))
}

func TestJSStringEscapesUserText(t *testing.T) {
	got := jsString("say \"hi\"\nand `more`")
	assert.Equal(t, `"say \"hi\" and 'more'"`, got)
}
