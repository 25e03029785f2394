// Package llm is the conversational plugin. Besides its own commands it
// serves as the message router's free-text fallback.
package llm

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"rolebot/internal/interfaces"
)

const defaultPersona = "You are a helpful, concise assistant in a group chat. Reply briefly and plainly."

type Plugin struct {
	ai      interfaces.AIClient
	mu      sync.RWMutex
	persona string
	active  bool
}

func New(ai interfaces.AIClient) *Plugin {
	return &Plugin{
		ai:      ai,
		persona: defaultPersona,
	}
}

func (p *Plugin) Name() string        { return "llm" }
func (p *Plugin) Description() string { return "Conversational replies for non-command messages" }

func (p *Plugin) Commands() map[string]string {
	return map[string]string{
		"llm_info":    "Show LLM plugin status",
		"llm_persona": "Set the bot persona (usage: /llm_persona <text>)",
	}
}

func (p *Plugin) AllowedRoles() []string { return []string{"admin", "superadmin"} }

func (p *Plugin) Activate() error {
	if p.ai == nil {
		return errors.New("no AI client configured")
	}
	p.mu.Lock()
	p.active = true
	p.mu.Unlock()
	return nil
}

func (p *Plugin) Deactivate() {
	p.mu.Lock()
	p.active = false
	p.mu.Unlock()
}

func (p *Plugin) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

func (p *Plugin) HandleCommand(command string, args []string, userID int64, role string) (string, error) {
	switch command {
	case "llm_info":
		return p.info(), nil
	case "llm_persona":
		if len(args) == 0 {
			return "💬 Usage: /llm_persona <persona text>", nil
		}
		p.SetPersona(strings.Join(args, " "))
		return "✅ Persona updated.", nil
	}
	return fmt.Sprintf("❌ Unknown llm command: %s", command), nil
}

// RespondToMessage handles free text routed here when the plugin is active.
func (p *Plugin) RespondToMessage(userID int64, text string) (string, error) {
	p.mu.RLock()
	persona := p.persona
	p.mu.RUnlock()

	return p.ai.GenerateResponse(persona + "\n\nUser: " + text)
}

func (p *Plugin) SetPersona(persona string) {
	p.mu.Lock()
	p.persona = persona
	p.mu.Unlock()
}

func (p *Plugin) info() string {
	status := "❌ Inactive"
	if p.Active() {
		status = "✅ Active"
	}
	p.mu.RLock()
	persona := p.persona
	p.mu.RUnlock()
	return fmt.Sprintf("🤖 *LLM Plugin Info*\nStatus: %s\nPersona: %s", status, persona)
}
