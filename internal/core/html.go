package core

import (
	"fmt"
	"strings"
)

// HTMLDocument wraps a rendered page body and head fragment into a full
// document. The configured title is omitted when the page's own head
// already carries a <title> element.
func HTMLDocument(title, headHTML, bodyHTML string) string {
	if title == "" {
		title = "Norn"
	}
	if headHTML != "" && strings.Contains(strings.ToLower(headHTML), "<title") {
		title = ""
	}

	head := `<meta charset="UTF-8" /><meta name="viewport" content="width=device-width, initial-scale=1.0" />`
	if title != "" {
		head += fmt.Sprintf("<title>%s</title>", title)
	}
	if headHTML != "" {
		head += headHTML
	}

	return fmt.Sprintf(`<!doctype html>
<html lang="en">
<head>%s</head>
<body>%s</body>
</html>`, head, bodyHTML)
}
