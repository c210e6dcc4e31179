package synthesis

// QuizAnswers is the ordered questionnaire record. Immutable once submitted;
// only the engine consumes it.
type QuizAnswers struct {
	ValueProposition  string `json:"valueProposition"`
	TargetAudience    string `json:"targetAudience"`
	EssentialFeatures string `json:"essentialFeatures"`
	AppFeel           string `json:"appFeel"`
}

// Theme carries the visual identity attached to a prototype.
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Font      string `json:"font"`
}

// Prototype is the unit previewed and persisted: one self-contained UI
// component named AppDemo plus metadata. Code is the only field with a
// correctness invariant: it must be renderable standalone, with no imports
// or exports.
type Prototype struct {
	Title string `json:"title"`
	Code  string `json:"code"`
	Theme Theme  `json:"theme"`
}

// DefaultTheme is applied to every generated prototype.
var DefaultTheme = Theme{Primary: "#6366f1", Secondary: "#10b981", Font: "Inter"}
