package engine

import (
	"strings"

	"github.com/jamesinreallife/oram-public/internal/intent"
)

// Persona names used for attribution in multi-agent replies.
const (
	AgentORAM   = "ORAM"
	AgentKairos = "KAIROS" // events and bookings
	AgentSever  = "SEVER"  // refusals and sealed paths
	AgentLumena = "LUMENA" // sound and place
)

var personas = map[intent.Intent]string{
	intent.Events:   AgentKairos,
	intent.Tickets:  AgentKairos,
	intent.Schedule: AgentKairos,
	intent.Blocked:  AgentSever,
	intent.Genre:    AgentLumena,
	intent.About:    AgentLumena,
}

// Agents lists every persona, default first.
func Agents() []string {
	return []string{AgentORAM, AgentKairos, AgentSever, AgentLumena}
}

// ResolveAgent matches name against the known personas, ignoring case.
func ResolveAgent(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, a := range Agents() {
		if strings.EqualFold(a, name) {
			return a, true
		}
	}
	return "", false
}

// Speaker picks who answers intent it. A forced speaker that names a known
// persona wins; anything else is ignored.
func Speaker(it intent.Intent, forced string) string {
	if p, ok := personas[it]; ok {
		return resolveOr(forced, p)
	}
	return resolveOr(forced, AgentORAM)
}

func resolveOr(forced, fallback string) string {
	if a, ok := ResolveAgent(forced); ok {
		return a
	}
	return fallback
}
