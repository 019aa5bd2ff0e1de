package arbre

import "strings"

// The five predefined entities are the only references this parser knows about.
// Numeric character references and custom entities pass through untouched.
var (
	entityDecoder = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&apos;", "'",
		"&quot;", `"`,
	)
	entityEncoder = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)
)

// decodeEntities rewrites the predefined references in a single
// left-to-right pass; replaced text is never rescanned.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityDecoder.Replace(s)
}

func encodeEntities(s string) string {
	if !strings.ContainsAny(s, `&<>'"`) {
		return s
	}
	return entityEncoder.Replace(s)
}
