package quote

import "regexp"

// quotePattern matches a dollar amount or a pricing keyword as a whole word.
// Hypothetical mentions ("I can't quote that yet") match too.
var quotePattern = regexp.MustCompile(`(?i)(\$\s*\d{1,3}[\d,.]*|\b(total|estimate|quotation|quote|subtotal|grand total|price|estimated)\b)`)

// IsQuoteComplete reports whether reply text looks like a finished quote.
func IsQuoteComplete(text string) bool {
	return quotePattern.MatchString(text)
}
