package synthesis

import (
	"regexp"
	"strings"
)

// ComponentName is the single top-level identifier every prototype must
// declare. The preview document and the normalizer both key off it.
const ComponentName = "AppDemo"

var (
	fenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9]*[ \t]*\\n?(.*?)```")

	importBlockRe = regexp.MustCompile(`(?s)\bimport\s*\{[^}]*\}\s*from\s*['"][^'"]*['"];?`)
	importLineRe  = regexp.MustCompile(`(?m)^[ \t]*import\b[^\n]*\n?`)

	exportDefaultFuncNamedRe  = regexp.MustCompile(`\bexport\s+default\s+function\s+` + ComponentName + `\b`)
	exportDefaultClassNamedRe = regexp.MustCompile(`\bexport\s+default\s+class\s+` + ComponentName + `\b`)
	exportDefaultFuncAnonRe   = regexp.MustCompile(`\bexport\s+default\s+function\s*\(`)
	exportDefaultIdentRe      = regexp.MustCompile(`(?m)^[ \t]*export\s+default\s+` + ComponentName + `\s*;?[ \t]*\n?`)
	exportBraceRe             = regexp.MustCompile(`(?m)^[ \t]*export\s*\{[^}]*\}\s*(?:from\s*['"][^'"]*['"])?\s*;?[ \t]*\n?`)
	exportDefaultExprRe       = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+`)
	exportKeywordRe           = regexp.MustCompile(`(?m)^([ \t]*)export\s+`)
)

// ExtractPureCode reduces arbitrary model output to standalone component
// source. Fenced blocks are extracted (prose outside them is dropped),
// import statements are removed, and every export form around the
// component is rewritten to a plain declaration. The function is
// idempotent: applying it to its own output changes nothing.
func ExtractPureCode(raw string) string {
	text := strings.TrimSpace(raw)

	if matches := fenceRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		blocks := make([]string, 0, len(matches))
		for _, m := range matches {
			if block := strings.TrimSpace(m[1]); block != "" {
				blocks = append(blocks, block)
			}
		}
		if len(blocks) > 0 {
			text = strings.Join(blocks, "\n\n")
		}
	}

	text = importBlockRe.ReplaceAllString(text, "")
	text = importLineRe.ReplaceAllString(text, "")

	text = exportDefaultFuncNamedRe.ReplaceAllString(text, "function "+ComponentName)
	text = exportDefaultClassNamedRe.ReplaceAllString(text, "class "+ComponentName)
	text = exportDefaultFuncAnonRe.ReplaceAllString(text, "const "+ComponentName+" = function (")
	text = exportDefaultIdentRe.ReplaceAllString(text, "")
	text = exportBraceRe.ReplaceAllString(text, "")
	text = exportDefaultExprRe.ReplaceAllString(text, "${1}const "+ComponentName+" = ")
	text = exportKeywordRe.ReplaceAllString(text, "$1")

	return strings.TrimSpace(text)
}

var componentDeclRe = regexp.MustCompile(
	`\b(?:function|class)\s+` + ComponentName + `\b|\b(?:const|let|var)\s+` + ComponentName + `\s*=`)

// HasComponentDecl reports whether code declares the AppDemo component at
// all. Output that fails this check is unusable for preview.
func HasComponentDecl(code string) bool {
	return componentDeclRe.MatchString(code)
}
