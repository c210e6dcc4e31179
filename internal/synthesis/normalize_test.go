package synthesis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPureCode_FencedBlock(t *testing.T) {
	raw := "Sure! Here is your component:\n```jsx\nfunction AppDemo() { return <div/>; }\n```\nLet me know if you need changes."
	got := ExtractPureCode(raw)
	assert.Equal(t, "function AppDemo() { return <div/>; }", got)
}

func TestExtractPureCode_MultipleFences(t *testing.T) {
	raw := "```js\nconst helper = () => 1;\n```\nand then\n```\nfunction AppDemo() { return helper(); }\n```"
	got := ExtractPureCode(raw)
	assert.Contains(t, got, "const helper = () => 1;")
	assert.Contains(t, got, "function AppDemo() { return helper(); }")
	assert.NotContains(t, got, "and then")
}

func TestExtractPureCode_StripsImports(t *testing.T) {
	raw := strings.Join([]string{
		`import React from "react";`,
		`import {`,
		`  motion,`,
		`} from "framer-motion";`,
		`function AppDemo() { return <div/>; }`,
	}, "\n")
	got := ExtractPureCode(raw)
	assert.NotContains(t, got, "import")
	assert.Contains(t, got, "function AppDemo")
}

func TestExtractPureCode_ExportForms(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"default function named", "export default function AppDemo() { return null; }", "function AppDemo() { return null; }"},
		{"default arrow", "export default () => <div/>;", "const AppDemo = () => <div/>;"},
		{"default anonymous function", "export default function () { return null; }", "const AppDemo = function () { return null; }"},
		{"named const", "export const AppDemo = () => null;", "const AppDemo = () => null;"},
		{"trailing default ident", "const AppDemo = () => null;\nexport default AppDemo;", "const AppDemo = () => null;"},
		{"brace export", "function AppDemo() {}\nexport { AppDemo };", "function AppDemo() {}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPureCode(tc.in))
		})
	}
}

func TestExtractPureCode_Idempotent(t *testing.T) {
	inputs := []string{
		"```jsx\nimport React from \"react\";\nexport default function AppDemo() { return <div/>; }\n```",
		"export default () => <span>hello</span>;",
		"const AppDemo = () => null;",
		LocalPrototype(LocalBrief(QuizAnswers{}, false)).Code,
	}
	for _, in := range inputs {
		once := ExtractPureCode(in)
		twice := ExtractPureCode(once)
		require.Equal(t, once, twice, "normalization must be idempotent for %q", in[:min(len(in), 40)])
	}
}

func TestHasComponentDecl(t *testing.T) {
	assert.True(t, HasComponentDecl("function AppDemo() {}"))
	assert.True(t, HasComponentDecl("const AppDemo = () => null;"))
	assert.True(t, HasComponentDecl("class AppDemo extends React.Component {}"))
	assert.False(t, HasComponentDecl("function OtherThing() {}"))
	assert.False(t, HasComponentDecl("// AppDemo mentioned in a comment"))
}
