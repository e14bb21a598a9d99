package ui

import (
	"bytes"
	"encoding/json"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightJSON pretty-prints raw JSON and colors it with the theme's code
// style. Invalid JSON is highlighted as-is.
func HighlightJSON(raw []byte) string {
	var pretty bytes.Buffer
	code := string(raw)
	if err := json.Indent(&pretty, raw, "", "  "); err == nil {
		code = pretty.String()
	}
	return highlightCode(code, "json", CurrentTheme().CodeStyle)
}

// highlightCode applies terminal syntax highlighting, returning the input
// unchanged on any failure
func highlightCode(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
