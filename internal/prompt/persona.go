// ABOUTME: Closed personality enum mapping conversation settings to system prompts
// ABOUTME: Unknown personalities always fall back to the helpful assistant

package prompt

import (
	_ "embed"
	"sort"

	"github.com/BurntSushi/toml"
)

// Personality selects the system prompt for a conversation.
type Personality string

const (
	HelpfulAssistant  Personality = "helpful_assistant"
	CreativeWriter    Personality = "creative_writer"
	TechnicalExpert   Personality = "technical_expert"
	Tutor             Personality = "tutor"
	BrainstormPartner Personality = "brainstorm_partner"
)

// Valid reports whether p is one of the known personalities.
func Valid(p Personality) bool {
	switch p {
	case HelpfulAssistant, CreativeWriter, TechnicalExpert, Tutor, BrainstormPartner:
		return true
	}
	return false
}

// SystemPrompt returns the system instruction for the personality. Unknown
// values get the helpful assistant prompt so there is no undefined path.
func (p Personality) SystemPrompt() string {
	switch p {
	case CreativeWriter:
		return "You are a creative writing assistant. Help with storytelling, character development, plot ideas, and creative inspiration. Be imaginative and supportive."
	case TechnicalExpert:
		return "You are a technical expert assistant. Help with programming, technology questions, troubleshooting, and provide detailed technical explanations."
	case Tutor:
		return "You are a patient tutor. Help explain concepts clearly, provide step-by-step guidance, and adapt to the user's learning pace."
	case BrainstormPartner:
		return "You are a brainstorming partner. Help generate ideas, think creatively, and explore different perspectives on topics."
	case HelpfulAssistant:
		fallthrough
	default:
		return "You are a helpful AI assistant in a private chat room. Provide thoughtful, accurate responses and remember the conversation context. Be friendly and professional."
	}
}

// Info is display metadata for a personality, used by room creation UIs.
type Info struct {
	Key         Personality `toml:"-"`
	Name        string      `toml:"name"`
	Description string      `toml:"description"`
	Icon        string      `toml:"icon"`
}

//go:embed personalities.toml
var catalogTOML []byte

var catalog = func() []Info {
	var raw struct {
		Personality map[string]Info `toml:"personality"`
	}
	if err := toml.Unmarshal(catalogTOML, &raw); err != nil {
		panic("prompt: invalid embedded personality catalog: " + err.Error())
	}
	infos := make([]Info, 0, len(raw.Personality))
	for key, info := range raw.Personality {
		info.Key = Personality(key)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}()

// Catalog returns display metadata for every known personality, sorted by key.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}
