// Package assistant answers nurse questions from fixed keyword tables.
package assistant

import (
	"fmt"
	"math/rand"
	"strings"
)

type Category string

const (
	CategoryMedical    Category = "medical"
	CategoryProcedure  Category = "procedure"
	CategoryMedication Category = "medication"
	CategoryProtocol   Category = "protocol"
	CategoryGeneral    Category = "general"
)

// Rule pairs a trigger phrase with a canned response.
type Rule struct {
	Trigger  string
	Response string
	Category Category
}

// topic expands one response into a rule per trigger, keeping trigger order.
func topic(cat Category, response string, triggers ...string) []Rule {
	rules := make([]Rule, len(triggers))
	for i, t := range triggers {
		rules[i] = Rule{Trigger: t, Response: response, Category: cat}
	}
	return rules
}

// KnowledgeBase is an ordered rule table plus fallback replies.
type KnowledgeBase struct {
	Name     string
	Title    string
	greet    func(name string) string
	rules    []Rule
	defaults []string
}

// Match returns the first rule whose trigger occurs in input, ignoring case.
func (kb *KnowledgeBase) Match(input string) (Rule, bool) {
	msg := strings.ToLower(input)
	for _, r := range kb.rules {
		if strings.Contains(msg, r.Trigger) {
			return r, true
		}
	}
	return Rule{}, false
}

// Fallback picks one of the default replies using rng.
func (kb *KnowledgeBase) Fallback(rng *rand.Rand) string {
	return kb.defaults[rng.Intn(len(kb.defaults))]
}

// Greeting is the opening message. name is the nurse for the general
// assistant and the current patient for the nursing one; it may be empty.
func (kb *KnowledgeBase) Greeting(name string) string {
	return kb.greet(name)
}

// Rules returns a copy of the rule table in match order.
func (kb *KnowledgeBase) Rules() []Rule {
	return append([]Rule(nil), kb.rules...)
}

func joinRules(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// General is the shift assistant shown on the dashboard.
func General() *KnowledgeBase {
	return &KnowledgeBase{
		Name:  "general",
		Title: "Shift Assistant",
		greet: func(nurse string) string {
			if nurse == "" {
				nurse = "Nurse"
			}
			return fmt.Sprintf("Hello %s! I'm your AI assistant. I can help you with medical information, procedures, medication guidance, and shift-related questions. How can I assist you today?", nurse)
		},
		rules: joinRules(
			topic(CategoryMedical,
				"Normal blood pressure is typically less than 120/80 mmHg. For hypertensive patients, monitor closely and ensure medications are administered as prescribed. Consider lifestyle factors and report significant changes to the physician.",
				"blood pressure", "hypertension"),
			topic(CategoryMedical,
				"Use the 0-10 pain scale for assessment. Document pain location, quality, and factors that worsen/improve it. Non-pharmacological interventions include positioning, ice/heat, and distraction techniques. Always reassess after interventions.",
				"pain", "pain scale"),
			topic(CategoryMedication,
				"Always follow the 5 rights of medication administration: Right patient, right drug, right dose, right route, right time. Check for allergies, verify orders, and document administration. Report any adverse reactions immediately.",
				"medication", "drug"),
			topic(CategoryProcedure,
				"Effective handoffs include: Patient identification, current condition, recent changes, pending orders, safety concerns, and family updates. Use SBAR format: Situation, Background, Assessment, Recommendation.",
				"handoff", "shift change"),
			topic(CategoryProcedure,
				"Standard precautions apply to all patients. Use appropriate PPE based on transmission risk. Hand hygiene is crucial: wash hands before and after patient contact. Follow isolation protocols as ordered.",
				"infection control", "ppe"),
			topic(CategoryMedical,
				"Assess fall risk using validated tools. Implement appropriate interventions: bed alarms, non-slip socks, adequate lighting, clear pathways. Educate patients about calling for assistance.",
				"fall risk", "safety"),
		),
		defaults: []string{
			"I can help you with medical procedures, medication information, patient care guidelines, and shift management. What specific topic would you like to discuss?",
			"For specific patient care questions, please consult your facility's protocols or speak with the attending physician. I can provide general nursing guidance.",
			"Remember to always follow your institution's policies and procedures. I'm here to provide general support and information.",
		},
	}
}

// Nursing is the bedside assistant with calculation and protocol topics.
func Nursing() *KnowledgeBase {
	return &KnowledgeBase{
		Name:  "nursing",
		Title: "Nursing Assistant",
		greet: func(patient string) string {
			msg := "Hello! I'm your nursing assistant. I can help you with medical protocols, medication information, patient care guidelines, and quick calculations."
			if patient != "" {
				msg += fmt.Sprintf(" I see you're working with %s.", patient)
			}
			return msg + " How can I assist you today?"
		},
		rules: joinRules(
			topic(CategoryMedical,
				"I can help with common nursing calculations:\n• IV drip rates: (Volume × Drop factor) ÷ Time in minutes\n• Medication dosages: (Desired dose ÷ Available dose) × Quantity\n• Body surface area calculations\n• Unit conversions\n\nWhat specific calculation do you need help with?",
				"calculate", "dose", "drip rate"),
			topic(CategoryMedical,
				"Pain Assessment Guidelines:\n• Use 0-10 numeric scale for adults\n• FACES scale for pediatric patients\n• Document: Location, quality, intensity, duration\n• Reassess 30-60 minutes after intervention\n• Non-pharmacological options: positioning, heat/cold, distraction\n• Always believe the patient's report of pain",
				"pain", "pain scale"),
			topic(CategoryMedical,
				"Normal Adult Vital Signs:\n• Temperature: 97-99°F (36.1-37.2°C)\n• Heart Rate: 60-100 bpm\n• Respiratory Rate: 12-20 breaths/min\n• Blood Pressure: <120/80 mmHg\n• O2 Saturation: >95%\n\nReport immediately if outside normal ranges or significant changes from baseline.",
				"vital", "blood pressure", "temperature"),
			topic(CategoryMedication,
				"5 Rights of Medication Administration:\n1. Right Patient - Check ID band\n2. Right Drug - Verify medication name\n3. Right Dose - Check calculation\n4. Right Route - Confirm administration method\n5. Right Time - Verify schedule\n\nAdditional: Right documentation, right reason, right response. Always check allergies first!",
				"medication", "drug", "5 rights"),
			topic(CategoryProtocol,
				"Infection Control Precautions:\n• Standard: All patients (hand hygiene, gloves when indicated)\n• Contact: Gown + gloves (C. diff, MRSA, VRE)\n• Droplet: Surgical mask within 3 feet (flu, pertussis)\n• Airborne: N95 mask (TB, measles, varicella)\n\nHand hygiene before and after every patient contact!",
				"infection", "ppe", "isolation"),
			topic(CategoryProtocol,
				"Fall Prevention Strategies:\n• Assess fall risk on admission and daily\n• Keep bed in lowest position\n• Ensure call light within reach\n• Non-slip socks for ambulatory patients\n• Clear pathways, adequate lighting\n• Toileting schedule for high-risk patients\n• Consider bed/chair alarms if appropriate",
				"fall", "safety"),
			topic(CategoryProtocol,
				"Emergency Response:\n• Call for help immediately\n• Start CPR if no pulse (30:2 ratio)\n• Apply AED if available\n• Prepare for advanced life support\n• Document time of events\n• Notify physician and family\n\nRemember: Your safety first, then patient care.",
				"emergency", "code", "cardiac arrest"),
			topic(CategoryProcedure,
				"Wound Assessment & Care:\n• Document: Size, depth, drainage, odor, surrounding skin\n• Clean technique for chronic wounds\n• Sterile technique for acute/surgical wounds\n• Pressure ulcer staging: I-IV, unstageable, suspected deep tissue\n• Turn/reposition every 2 hours\n• Keep wound bed moist, surrounding skin dry",
				"wound", "dressing", "pressure ulcer"),
		),
		defaults: []string{
			"I can help you with:\n• Medical protocols and procedures\n• Medication calculations and guidelines\n• Patient safety measures\n• Emergency procedures\n• Documentation requirements\n\nWhat specific topic interests you?",
			"Need quick help? Try asking about:\n• Pain assessment\n• Vital signs ranges\n• Infection control\n• Fall prevention\n• Medication administration\n• Wound care basics",
			"I'm here to support your nursing practice with evidence-based information. Remember to always follow your facility's specific policies and consult with physicians for patient-specific decisions.",
		},
	}
}
