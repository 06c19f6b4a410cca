package summarizer

import (
	"fmt"
	"strings"

	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/utils"
)

const systemPrompt = `You summarize reader reviews of manga for a catalog website.

Rules:
- Answer only with a JSON object of the form {"pros": [...], "cons": [...]}.
- Each item is a short phrase (at most 8 words), no trailing punctuation.
- Only include themes supported by the reviews; merge duplicates.
- Order items from most to least frequently mentioned.
- If the reviews show no clear consensus for a list, return it empty.`

// BuildPrompt names the manga, lists every review as a bullet and asks for
// the labeled pros and cons lists. Whitespace inside a review is compacted
// so a multi-line review stays a single bullet.
func BuildPrompt(req models.SummarizeRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summarize the reader reviews of the manga %q.\n\n", req.MangaTitle)

	b.WriteString("Reviews:\n")
	if len(req.Reviews) == 0 {
		b.WriteString("(no reviews yet)\n")
	}
	for _, review := range req.Reviews {
		b.WriteString("- ")
		b.WriteString(utils.CompactSpaces(review))
		b.WriteString("\n")
	}

	b.WriteString("\nProduce two lists:\n")
	b.WriteString("pros: recurring positive points readers mention\n")
	b.WriteString("cons: recurring negative points readers mention\n")

	return b.String()
}
