package logicflow

import (
	"fmt"
	"strings"
)

// Sampling used for the two assistant operations.
const (
	refineTemperature   = 0.2
	generateTemperature = 0.3
	topP                = 0.9
)

// formatRules is shared by every instruction sent to the assistant.
const formatRules = `FORMAT (mandatory, anything else fails to parse):

` + "```" + `
INPUT: <title> | <description>
PROCESS: <title> | <description>
DECISION: <title> | <description>
  YES -> <exact node title>
  NO -> <exact node title>
OUTPUT: <title> | <description>
` + "```" + `

Rules:
- Every line starts with INPUT:, PROCESS:, DECISION: or OUTPUT:
- Title and description are separated by " | "
- Decision branches are indented by two spaces, then "YES ->" or "NO ->"
- A branch target is the exact, case-sensitive title of another node
- Every DECISION has both a YES and a NO branch
- A PROCESS is never linked to an OUTPUT automatically; put a DECISION after it that leads to the OUTPUT

Node kinds:
- INPUT: data source, parameter or user input
- PROCESS: processing, transformation, calculation or API call
- DECISION: one concrete yes/no question
- OUTPUT: result, success or error message`

const exampleFlow = "```" + `
INPUT: Login data | Email and password from the user
PROCESS: Find user | Database lookup by email
DECISION: User exists? | Check whether the user is stored
  YES -> Check password
  NO -> User not found
PROCESS: Check password | Hash comparison
DECISION: Password correct? | Compare the entered password with the hash
  YES -> Login successful
  NO -> Wrong password
OUTPUT: Login successful | Issue a session token
OUTPUT: User not found | Error 404
OUTPUT: Wrong password | Error 401
` + "```"

// refineInstruction asks the assistant to review and correct an existing flow.
func refineInstruction(flowText string) string {
	var b strings.Builder
	b.WriteString("You are a senior software engineer. The user created the following logic flow.\n\n")
	fmt.Fprintf(&b, "FLOW:\n```\n%s\n```\n\n", flowText)
	b.WriteString(`YOUR TASK:

Ask yourself the critical question: is this flow logical and complete?

- Does the order make sense?
- Are all necessary steps present?
- Do all branches lead to meaningful targets?
- Are connections missing?
- Are decision questions clear and atomic?
- Do the error outputs match the failure cases?
- Is a loop missing where one is needed?

If the flow is logical, return it unchanged (descriptions may be improved).
If it is not, fix the problems and return the corrected version.

Two separate inputs are fine when data from two sources is matched.

`)
	b.WriteString(formatRules)
	b.WriteString("\n\nEXAMPLE:\n")
	b.WriteString(exampleFlow)
	b.WriteString("\n\nOUTPUT: return the complete revised flow. Only the format, no explanation.")
	return b.String()
}

// generateInstruction asks the assistant for a flow from a description.
// A non-empty currentFlow turns the request into an edit of that flow.
func generateInstruction(currentFlow string) string {
	var b strings.Builder
	b.WriteString("You are a software architecture assistant. The user describes a process or piece of logic in natural language. ")
	b.WriteString("Turn it into a structured logic flow the parser can read.\n\n")
	if currentFlow != "" {
		b.WriteString("IMPORTANT: a flow already exists and the user wants to adjust or refine it. Modify it based on the feedback.\n\n")
		fmt.Fprintf(&b, "Current flow:\n```\n%s\n```\n\n", currentFlow)
		b.WriteString("Keep the basic structure unless the user explicitly asks for larger changes.\n\n")
	} else {
		b.WriteString("YOUR TASK: create a new flow from the user's description.\n\n")
	}
	b.WriteString(formatRules)
	b.WriteString(`

Context matters: a login only checks existing data (find the user, compare the hash),
while a registration validates new data before storing it.

EXAMPLE:
`)
	b.WriteString(exampleFlow)
	b.WriteString(`

IMPORTANT:
- Output only the flow, no explanation
- Use concrete, concise titles
- Every path must end in an OUTPUT
- Think about error cases and alternative paths`)
	return b.String()
}
