package handoff

import "strings"

// Prompt is one step of the guided handoff.
type Prompt struct {
	Category    Category
	Text        string
	Required    bool
	Suggestions []string
}

// Question fills the patient's name into the prompt text.
func (p Prompt) Question(patientName string) string {
	return strings.ReplaceAll(p.Text, "{name}", patientName)
}

// PromptView is a prompt rendered for one patient.
type PromptView struct {
	Category    Category `json:"category"`
	Question    string   `json:"question"`
	Required    bool     `json:"required"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// View renders the prompt for one patient.
func (p Prompt) View(patientName string) PromptView {
	return PromptView{
		Category:    p.Category,
		Question:    p.Question(patientName),
		Required:    p.Required,
		Suggestions: append([]string(nil), p.Suggestions...),
	}
}

var guidedPrompts = []Prompt{
	{
		Category:    CategoryAssessment,
		Text:        "How is {name} doing overall? Please describe their current condition and any changes since the last shift.",
		Required:    true,
		Suggestions: []string{"Stable condition", "Some concerns", "Improving", "Needs close monitoring"},
	},
	{
		Category:    CategoryVitals,
		Text:        "What are the latest vital signs? Any concerns with temperature, blood pressure, heart rate, or oxygen levels?",
		Required:    true,
		Suggestions: []string{"All normal", "BP elevated", "Temp spike", "Pain increased"},
	},
	{
		Category:    CategoryMedications,
		Text:        "Were all medications given as scheduled? Any missed doses, new medications, or adverse reactions?",
		Required:    true,
		Suggestions: []string{"All given on time", "One dose missed", "New medication started", "Side effects noted"},
	},
	{
		Category:    CategoryInterventions,
		Text:        "What care interventions were performed this shift? Any procedures, treatments, or nursing actions?",
		Required:    true,
		Suggestions: []string{"Wound care", "Physical therapy", "Patient education", "Family meeting"},
	},
	{
		Category:    CategoryPending,
		Text:        "What tasks or orders are still pending for the next shift? Any follow-ups needed?",
		Required:    true,
		Suggestions: []string{"Lab results pending", "Doctor visit scheduled", "Discharge planning", "Family call needed"},
	},
	{
		Category:    CategoryAlerts,
		Text:        "Are there any safety concerns, behavioral changes, or important alerts the next nurse should know about?",
		Required:    false,
		Suggestions: []string{"Fall risk", "Confusion noted", "Family concerns", "All good"},
	},
}

// Prompts returns the guided prompts in the order they are asked.
func Prompts() []Prompt {
	return append([]Prompt(nil), guidedPrompts...)
}

// NextPrompt returns the first prompt whose category is still incomplete.
// Optional prompts are passed over when skipOptional is set. The boolean is
// false once nothing is left to ask.
func NextPrompt(c Completion, skipOptional bool) (Prompt, bool) {
	for _, p := range guidedPrompts {
		if c.Done(p.Category) {
			continue
		}
		if skipOptional && !p.Required {
			continue
		}
		return p, true
	}
	return Prompt{}, false
}

// PriorityForCategory is the priority an entry gets when none is supplied.
func PriorityForCategory(c Category) Priority {
	switch c {
	case CategoryAlerts:
		return PriorityCritical
	case CategoryPending:
		return PriorityImportant
	}
	return PriorityNormal
}
