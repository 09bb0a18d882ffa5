package answer

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/deepdoc/internal/vectordb"
)

const systemPrompt = `You are a study assistant that answers exam questions strictly from the provided course material. Only use information from the context below. If the context does not contain the answer, say so.`

// BuildPrompt assembles the user prompt from the question and retrieved
// chunks. Low-mark questions ask for a concise definition; higher marks ask
// for a structured, point-by-point answer.
func BuildPrompt(question string, results []vectordb.SearchResult, marks int) string {
	var ctx strings.Builder
	for i, res := range results {
		if i > 0 {
			ctx.WriteString("\n---\n")
		}
		label := res.Source
		if res.Page > 0 {
			label = fmt.Sprintf("%s, page %d", res.Source, res.Page)
		}
		fmt.Fprintf(&ctx, "[%s]\n%s", label, res.Text)
	}

	var instruction string
	if marks <= 2 {
		instruction = fmt.Sprintf(
			"Answer the following %d-mark question with a concise definition or short explanation (2-3 sentences). Do not pad the answer.",
			marks)
	} else {
		instruction = fmt.Sprintf(
			"Answer the following %d-mark question with a structured answer: a one-sentence summary, then %d-%d bullet points covering the key aspects, each grounded in the context.",
			marks, marks, marks+2)
	}

	return fmt.Sprintf("Context:\n%s\n\n%s\n\nQuestion: %s", ctx.String(), instruction, question)
}

// insufficientContextMessage is returned without consulting the model when
// retrieval found nothing relevant enough to answer from.
const insufficientContextMessage = "The uploaded documents do not contain enough information to answer this question. Try rephrasing it or uploading material that covers the topic."
