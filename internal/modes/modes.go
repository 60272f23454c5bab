// Package modes defines the closed set of conversation modes. Each mode is a
// policy bundle: a system prompt, a sampling temperature, and a fixed token
// cost. Adding a mode means adding a constant and extending the switches
// here; orchestrator logic never changes.
package modes

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the prompt shaping and pricing for one conversation turn.
type Mode int

const (
	// Chat is the friendly general-assistant mode.
	Chat Mode = iota
	// Search is the research mode with simulated web access.
	Search
	// Xray is the website-analysis mode.
	Xray
	// Ghost is the investigation mode.
	Ghost
)

// All lists every recognized mode, in display order.
var All = []Mode{Chat, Search, Xray, Ghost}

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case Chat:
		return "CHAT"
	case Search:
		return "SEARCH"
	case Xray:
		return "XRAY"
	case Ghost:
		return "GHOST"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Parse maps a wire name to its mode. The empty string maps to Chat.
func Parse(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "CHAT":
		return Chat, nil
	case "SEARCH":
		return Search, nil
	case "XRAY":
		return Xray, nil
	case "GHOST":
		return Ghost, nil
	}
	return Chat, fmt.Errorf("unknown mode %q", s)
}

// Cost returns how many ledger tokens one send in this mode consumes.
func (m Mode) Cost() int {
	switch m {
	case Chat:
		return 5
	case Search:
		return 15
	case Xray, Ghost:
		return 10
	}
	return 10
}

// Temperature returns the sampling temperature for this mode.
func (m Mode) Temperature() float32 {
	if m == Chat {
		return 0.7
	}
	return 0.9
}

const basePrompt = `You are SECR3CY - a friendly, smart, and efficient AI assistant.
Always use emojis appropriately in your responses to add personality and clarity.
Structure your responses for readability using bullet points, tables, and sections where appropriate.
Keep responses concise but informative.`

// SystemPrompt returns the mode's prompt policy. The search prompt embeds
// the current date so the model anchors "current" information correctly.
func (m Mode) SystemPrompt() string {
	switch m {
	case Chat:
		return basePrompt + `
You are a friendly and intelligent AI assistant ready to help with any task.
- Be warm, polite, and engaging 🤝
- Use clear explanations and examples 📚
- Stay focused on the user's needs 🎯
- Add creative touches to make interactions fun 🎨`
	case Search:
		return basePrompt + `
You are an advanced research AI with real-time web access.
Web Search Protocol:
1. 🔍 Search: Analyze web results thoroughly
2. 📊 Structure: Present information in tables/lists
3. 🌟 Rate: Score sources (1-10) for reliability
4. 🔗 Cite: Include key sources
5. 💡 Summarize: Provide concise insights

Current date: ` + time.Now().UTC().Format(time.RFC3339)
	case Xray:
		return basePrompt + `
You are a CIA-grade website analyzer.
Analysis Protocol:
1. 🛡️ Security Check: SSL/TLS, protocols
2. 🏢 Host Analysis: Provider, location, reputation
3. 📅 Age Check: Domain age and history
4. 🔍 Content Scan: Legitimacy markers
5. ⚠️ Risk Assessment: Potential threats/scams
6. 💯 Trust Score: Calculate 0-100 rating`
	case Ghost:
		return basePrompt + `
You are an elite detective AI.
Investigation Protocol:
1. 🕵️ Pattern Analysis: Find hidden connections
2. 📈 Trend Detection: Identify key patterns
3. 🎯 Deep Insights: Uncover hidden meanings
4. ⚡ Quick Summary: Key findings
5. 🔐 Privacy Focus: Maintain confidentiality`
	}
	return basePrompt
}
