package synthesis

import (
	"fmt"
	"regexp"
	"strings"
)

// Deterministic local fallbacks. Remote synthesis may be slow, rate-limited
// or unreachable; every engine operation degrades to these rather than
// surfacing a failure to the workflow.

const (
	defaultValueProposition = "A playful experimental app prototype."
	defaultAudience         = "Curious early adopters."
	defaultFeature          = "A single, focused core action."
	defaultFeel             = "Fast, friendly and a little bold."
	defaultTitle            = "Untitled Prototype"
)

// LocalBrief renders the questionnaire into the sectioned brief format
// without any network call. Same answers always produce the same brief.
func LocalBrief(q QuizAnswers, hasImage bool) string {
	vp := orDefault(q.ValueProposition, defaultValueProposition)
	aud := orDefault(q.TargetAudience, defaultAudience)
	feat := orDefault(q.EssentialFeatures, defaultFeature)
	feel := orDefault(q.AppFeel, defaultFeel)

	imageNote := "No reference imagery supplied; lean on the app feel above."
	if hasImage {
		imageNote = "Reference imagery supplied; echo its palette and mood."
	}

	var b strings.Builder
	b.WriteString("--- VISUAL DNA BRIEF ---\n\n")
	fmt.Fprintf(&b, "VALUE PROPOSITION:\n%s\n\n", vp)
	fmt.Fprintf(&b, "TARGET AUDIENCE:\n%s\n\n", aud)
	fmt.Fprintf(&b, "ESSENTIAL FEATURE:\n%s\n\n", feat)
	fmt.Fprintf(&b, "APP FEEL:\n%s\n\n", feel)
	b.WriteString("VISUAL NOTES:\n")
	b.WriteString("- Mobile-first 9:16 layout with soft cards and high contrast.\n")
	b.WriteString("- One clear primary action above the fold.\n")
	fmt.Fprintf(&b, "- %s\n\n", imageNote)
	b.WriteString("TECHNICAL NOTES:\n")
	b.WriteString("- Single self-contained screen, fake but specific data.\n")
	b.WriteString("- Rounded corners, generous spacing, readable type.\n\n")
	b.WriteString("--- END BRIEF ---")
	return b.String()
}

// BriefSection pulls the first line of a named section out of a brief. It
// tolerates briefs that came back from the model rather than LocalBrief, as
// long as the section headers survived.
func BriefSection(brief, header string) string {
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(header) + `:\s*$`)
	loc := re.FindStringIndex(brief)
	if loc == nil {
		return ""
	}
	rest := brief[loc[1]:]
	for _, line := range strings.Split(rest, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// TitleFromBrief derives the project name shown in the vault.
func TitleFromBrief(brief string) string {
	vp := BriefSection(brief, "VALUE PROPOSITION")
	if vp == "" {
		return defaultTitle
	}
	return truncate(vp, 40)
}

// LocalPrototype builds a static but presentable component from the brief
// alone. The output always satisfies HasComponentDecl and contains no
// import or export statements, so it needs no normalization.
func LocalPrototype(brief string) Prototype {
	vp := orDefault(BriefSection(brief, "VALUE PROPOSITION"), defaultValueProposition)
	aud := orDefault(BriefSection(brief, "TARGET AUDIENCE"), defaultAudience)
	feat := orDefault(BriefSection(brief, "ESSENTIAL FEATURE"), defaultFeature)
	feel := orDefault(BriefSection(brief, "APP FEEL"), defaultFeel)

	code := fmt.Sprintf(localComponentTemplate,
		jsString(truncate(vp, 80)),
		jsString(truncate(feat, 120)),
		jsString(truncate(aud, 120)),
		jsString(truncate(feel, 120)),
	)

	return Prototype{
		Title: TitleFromBrief(brief),
		Code:  code,
		Theme: DefaultTheme,
	}
}

// localComponentTemplate is plain JS with createElement-free JSX; it keeps
// clear of the words the normalizer rewrites so a round trip through
// ExtractPureCode is a no-op.
const localComponentTemplate = `function AppDemo() {
  const headline = %s;
  const cards = [
    { label: "Core Feature", body: %s, icon: "Zap" },
    { label: "Made For", body: %s, icon: "Users" },
    { label: "The Vibe", body: %s, icon: "Sparkles" },
  ];
  const [active, setActive] = React.useState(0);
  return (
    <div className="flex flex-col h-full bg-slate-950 text-white font-sans">
      <header className="px-5 pt-8 pb-4">
        <p className="text-xs uppercase tracking-widest text-indigo-400">Prototype</p>
        <h1 className="text-2xl font-bold leading-tight mt-1">{headline}</h1>
      </header>
      <main className="flex-1 overflow-y-auto px-5 space-y-3">
        {cards.map((card, i) => (
          <button
            key={card.label}
            onClick={() => setActive(i)}
            className={"w-full text-left rounded-2xl p-4 transition-colors " +
              (active === i ? "bg-indigo-600" : "bg-slate-900")}
          >
            <div className="flex items-center gap-2 text-sm font-semibold">
              <Icon name={card.icon} size={16} />
              {card.label}
            </div>
            <p className="text-sm text-slate-300 mt-1">{card.body}</p>
          </button>
        ))}
      </main>
      <nav className="flex justify-around py-4 border-t border-slate-800">
        <Icon name="Home" size={20} />
        <Icon name="Search" size={20} />
        <Icon name="Heart" size={20} />
        <Icon name="User" size={20} />
      </nav>
    </div>
  );
}`

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

var jsStringReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ", "`", "'")

// jsString makes user text safe to embed as a double-quoted JS literal.
func jsString(s string) string {
	return `"` + jsStringReplacer.Replace(s) + `"`
}
