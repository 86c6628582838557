package llm

import (
	"fmt"
	"strings"
)

const basePrompt = `You are a business assistant for a small retail shop owner.
Answer using only the data returned by the tools or given in the message.
Keep answers short: at most five sentences or bullet points.
Quote money with the shop's currency code. Never invent numbers.
If stock is critical or zero, say which items need reordering first.`

// SystemPrompt builds the system message for a business. language is a
// BCP 47 code; the model is asked to reply in it.
func SystemPrompt(businessName, currency, language string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if businessName = strings.TrimSpace(businessName); businessName != "" {
		fmt.Fprintf(&b, "\nThe shop is called %q.", businessName)
	}
	if currency = strings.TrimSpace(currency); currency != "" {
		fmt.Fprintf(&b, "\nCurrency: %s.", currency)
	}
	if language = strings.TrimSpace(language); language != "" {
		fmt.Fprintf(&b, "\nReply in the language with code %q.", language)
	}
	return b.String()
}
