package suggest

import (
	"fmt"

	"github.com/maxvaer/extfuzz/internal/probe"
)

const promptTemplate = `You pick the file extensions most worth fuzzing for a URL, based on the URL itself and the HTTP headers its parent returned.

Output format: reply with exactly one JSON object of the form {"extensions": [".ext1", ".ext2", ...]}. The reply is fed straight into a strict JSON parser, so write nothing before or after the object: no preamble, no explanation, no code fences.

Rules:
1. Relevance: derive extensions from the URL path segments and the header values. Skip anything that does not fit the context. For example:
   - a /js/ segment points at .js and closely related files, not .css.
   - a "presentations" segment points at .ppt, .pptx or .pdf.
2. Headers: use Content-Type, Server, X-Powered-By and similar headers to infer the platform or file types, and suggest extensions that platform serves.
3. Limit: return at most %d extensions. When you have to choose, keep the most interesting and most common ones.

Examples:
1. URL: https://example.com/presentations/FUZZ
   Headers: {"Content-Type": "application/pdf", "Content-Length": "1234567"}
   JSON Response: {"extensions": [".pdf", ".ppt", ".pptx"]}

2. URL: https://example.com/FUZZ
   Headers: {"Server": "Microsoft-IIS/10.0", "X-Powered-By": "ASP.NET"}
   JSON Response: {"extensions": [".aspx", ".asp", ".exe", ".dll"]}

Task input:
- URL: %s
- Headers: %s

JSON Response:`

// BuildPrompt renders the single-turn instruction for url and headers,
// asking for at most maxExtensions entries.
func BuildPrompt(url string, headers probe.HeaderSet, maxExtensions int) string {
	headerJSON, err := headers.MarshalJSON()
	if err != nil {
		headerJSON = []byte("{}")
	}
	return fmt.Sprintf(promptTemplate, maxExtensions, url, headerJSON)
}
