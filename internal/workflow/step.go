package workflow

// Step is the stage a user session sits in. Movement between steps happens
// only through manager operations, never by the client writing a step
// directly.
type Step string

const (
	StepLanding    Step = "LANDING"
	StepQuiz       Step = "QUIZ"
	StepUpload     Step = "UPLOAD"
	StepGenerating Step = "GENERATING"
	StepDashboard  Step = "DASHBOARD"
	StepRepairing  Step = "REPAIRING"
	StepVault      Step = "VAULT"
)

func (s Step) String() string { return string(s) }
