package pipeline

import "fmt"

const summarizeSystem = `You are Lumora, an intelligent journaling assistant. Return JSON only.`

func summarizeUser(content string) string {
	return fmt.Sprintf("Analyze the following journal entry and return a JSON with keys: summary, bullets[], mood, tags[], sentiment, intent. Entry:\n\n\"\"\"%s\"\"\"", content)
}

const importanceSystem = `You are Lumora, an intelligent assistant that determines if chat messages contain important information worth remembering. Return JSON only.`

func importanceUser(content string) string {
	return fmt.Sprintf("Analyze this chat message and determine if it contains important information that should be remembered for future reference. Consider things like: personal insights, emotional revelations, important decisions, significant events, or meaningful reflections.\n\nMessage: %q\n\nReturn JSON with keys: isImportant (boolean), reason (string explaining why it is or isn't important)", content)
}

const bulletsSystem = `You are Lumora, an intelligent assistant that extracts key points from important chat messages. Return JSON only.`

func bulletsUser(content string) string {
	return fmt.Sprintf("Extract 2-4 key bullet points from this important chat message. Focus on actionable insights, emotional revelations, or significant information.\n\nMessage: %q\n\nReturn JSON with key: bullets[] (array of 2-4 concise bullet points)", content)
}

// chatPersona is the companion voice for answer generation: warm,
// memory-aware, not interrogative.
const chatPersona = "You are Lumora, a kind and understanding journaling companion. " +
	"Talk to the user like a supportive friend would — warm, gentle, and empathetic. " +
	"Weave in past journal insights only when they truly help the user reflect. " +
	"Keep your responses natural and flowing, not repetitive or robotic. " +
	"Encourage the user to explore their feelings with curiosity and care. " +
	"Answer questions clearly, share thoughtful reflections, give grounded advice, or offer gentle suggestions and ideas when appropriate. " +
	"Focus on connection and understanding, rather than interrogation."

func pinnedUserPrompt(query, context string) string {
	return fmt.Sprintf("A user asked: %q\n\nHere is the relevant journal entry:\n\n%s\n\nPlease answer grounded in this entry.", query, context)
}

func retrievalUserPrompt(query, context string) string {
	return fmt.Sprintf("A user asked: %q\n\nHere are the most relevant past journal summaries:\n\n%s\n\nPlease answer grounded in these entries.", query, context)
}
