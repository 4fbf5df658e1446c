package debate

import (
	"fmt"
	"strings"
)

func choicesText(choices []string) string {
	var sb strings.Builder
	for i, c := range choices {
		sb.WriteString(string(rune('A' + i)))
		sb.WriteString(") ")
		sb.WriteString(strings.TrimSpace(c))
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// openingPrompt asks a debater to pick a position freely and argue for
// it. The response schema matches the opening envelope.
func openingPrompt(question string, choices []string) string {
	return fmt.Sprintf(`You are a legal expert participating in a debate.

%s

Answer choices:
%s

Your task:
1. Analyze the question and select which answer choice you believe is most legally correct
2. Argue convincingly for that choice
3. Cite relevant legal authorities (statutes, cases, legal doctrines)

Respond in JSON format:
{
  "position": "A, B, C, or D (your selected answer)",
  "argument": "Your detailed legal argument here...",
  "citations": ["Citation 1", "Citation 2", "..."]
}`, strings.TrimSpace(question), choicesText(choices))
}

func rebuttalPrompt(question string, myPosition string, myArgument string, opponent *Opening) string {
	var oppPosition, oppArgument string
	if opponent != nil {
		oppPosition = opponent.Position
		oppArgument = opponent.Argument
	}

	return fmt.Sprintf(`You are continuing your legal debate.

Question:
%s

Your previous argument (defending %s):
%s

Opponent's argument (defending %s):
%s

Your task:
1. Identify weaknesses in opponent's argument
2. Explain why your position (%s) is legally superior
3. Reinforce your argument with additional legal reasoning

Respond in JSON format:
{
  "rebuttal": "Your rebuttal argument here...",
  "counterarguments": ["Point against opponent 1", "Point against opponent 2"],
  "citations": ["Additional citation 1", "..."]
}`, strings.TrimSpace(question), myPosition, myArgument, oppPosition, oppArgument, myPosition)
}

func judgePrompt(question string, choices []string, t *Transcript) string {
	var xPos, xOpen, xReb, yPos, yOpen, yReb string
	if t != nil {
		if t.OpeningX != nil {
			xPos = t.OpeningX.Position
			xOpen = t.OpeningX.Argument
		}
		if t.RebuttalX != nil {
			xReb = t.RebuttalX.Rebuttal
		}
		if t.OpeningY != nil {
			yPos = t.OpeningY.Position
			yOpen = t.OpeningY.Argument
		}
		if t.RebuttalY != nil {
			yReb = t.RebuttalY.Rebuttal
		}
	}

	return fmt.Sprintf(`You are an impartial legal judge reviewing a debate between two legal experts.

Question:
%s

Answer choices:
%s

Debater X (defending %s):
Opening argument: %s
Rebuttal: %s

Debater Y (defending %s):
Opening argument: %s
Rebuttal: %s

Your task: Based on the legal arguments presented, select the most legally correct answer choice.
Consider:
- Accuracy of legal reasoning
- Quality and relevance of citations
- Strength of application to the facts
- How well each side addressed counterarguments

Respond in JSON format with 4 fields:
{
  "rationale": "Concise analysis of the key points from each debater's arguments, identifying strengths and weaknesses of each position...",
  "winner": "debater_x, debater_y, or tie (which debater presented the stronger legal argument overall)",
  "decision": "A, B, C, or D (the legally correct answer)",
  "synthesis": "Your final explanation of why this is the legally correct answer, applying relevant legal principles and addressing the key issues in the question..."
}`, strings.TrimSpace(question), choicesText(choices), xPos, xOpen, xReb, yPos, yOpen, yReb)
}
