package document

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// CollectionName derives the storage collection of a model: the plural of
// its snake_cased name ("Address" -> "addresses", "PostCode" -> "post_codes").
func CollectionName(model string) string {
	return inflection.Plural(snakeCase(model))
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
