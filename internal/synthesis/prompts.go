package synthesis

import (
	"fmt"
	"strings"
)

// Prompt builders. All remote operations funnel their instructions through
// these so the contract with the model stays in one place.

func briefPrompt(q QuizAnswers, hasImage bool) string {
	var b strings.Builder
	b.WriteString("You are a product design director. Turn the founder's answers below into a concise visual DNA brief.\n")
	b.WriteString("Use EXACTLY this structure, keeping every header on its own line:\n\n")
	b.WriteString("--- VISUAL DNA BRIEF ---\n\nVALUE PROPOSITION:\n<one line>\n\nTARGET AUDIENCE:\n<one line>\n\nESSENTIAL FEATURE:\n<one line>\n\nAPP FEEL:\n<one line>\n\nVISUAL NOTES:\n<bullet list>\n\nTECHNICAL NOTES:\n<bullet list>\n\n--- END BRIEF ---\n\n")
	fmt.Fprintf(&b, "Founder answers:\n1. Value proposition: %s\n2. Target audience: %s\n3. Essential feature: %s\n4. Desired feel: %s\n", q.ValueProposition, q.TargetAudience, q.EssentialFeatures, q.AppFeel)
	if hasImage {
		b.WriteString("\nA reference image is attached. Fold its palette and mood into VISUAL NOTES.\n")
	}
	b.WriteString("\nRespond with the brief only. No commentary.")
	return b.String()
}

const codeRules = `Rules for the code:
- Output a single React component declared exactly as "const AppDemo = () => { ... }" or "function AppDemo() { ... }".
- NO import statements. NO export statements. React, framer-motion (as "motion") and an Icon component (usage: <Icon name="Heart" size={20} />) are already in scope.
- Style with Tailwind utility classes. The component fills a 9:16 phone viewport.
- Use realistic fake data. Keep it self-contained: no fetch, no external assets.
- Respond with only the code, inside a single fenced block.`

func prototypePrompt(brief string) string {
	return fmt.Sprintf("You are a senior frontend engineer. Build a polished mobile app prototype from this brief:\n\n%s\n\n%s", brief, codeRules)
}

func modifyPrompt(code, brief, request string) string {
	return fmt.Sprintf("You are a senior frontend engineer iterating on an existing prototype.\n\nOriginal brief:\n%s\n\nCurrent component:\n```jsx\n%s\n```\n\nChange request: %s\n\nApply the change while preserving everything that was not asked about.\n%s", brief, code, request, codeRules)
}

func repairPrompt(code, errorLog, memoryMap string) string {
	var b strings.Builder
	b.WriteString("You are a senior frontend engineer fixing a runtime crash in a prototype component.\n\n")
	fmt.Fprintf(&b, "Crash report:\n%s\n\n", errorLog)
	if memoryMap != "" {
		fmt.Fprintf(&b, "Known fixes from earlier repairs (reuse the matching solution when the pattern lines up):\n%s\n\n", memoryMap)
	}
	fmt.Fprintf(&b, "Broken component:\n```jsx\n%s\n```\n\nReturn the corrected component. Change as little as possible.\n%s", code, codeRules)
	return b.String()
}
