package assistant

import "strings"

// defaultCategories is the fallback closed set when the store has no
// categories to offer.
var defaultCategories = []string{
	"Groceries", "Salary", "Transport", "Utilities", "Rent", "Other",
}

// buildExtractionPrompt assembles the fixed instruction template with
// the user's text embedded verbatim. The model must answer with a bare
// JSON object: either {"transactions": [...]} or
// {"clarification_question": "..."} and nothing else.
func buildExtractionPrompt(categories []string, userText string) string {
	if len(categories) == 0 {
		categories = defaultCategories
	}

	var b strings.Builder
	b.WriteString("You are an expert financial assistant. Your task is to analyze the user's text ")
	b.WriteString("and convert it into a structured JSON object.\n\n")
	b.WriteString("The output must be ONLY the JSON object, with no additional text, formatting, or Markdown.\n")
	b.WriteString("Do NOT wrap the response in code fences. Do NOT use ```json.\n\n")
	b.WriteString("The root of the JSON object must be a key named \"transactions\", which holds an array ")
	b.WriteString("of transaction objects.\n\n")
	b.WriteString("For each transaction object in the array, you must extract:\n")
	b.WriteString("- \"amount\": number\n")
	b.WriteString("- \"description\": string\n")
	b.WriteString("- \"type\": string, must be either \"debit\" or \"credit\"\n")
	b.WriteString("- \"category\": string, must be one of: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n\n")
	b.WriteString("If the user's request is too vague to structure, respond instead with an object ")
	b.WriteString("containing a single \"clarification_question\" key.\n\n")
	b.WriteString("User's request: \"")
	b.WriteString(userText)
	b.WriteString("\"\n")
	return b.String()
}
