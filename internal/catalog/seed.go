package catalog

import "github.com/ppiankov/wildaware/internal/model"

// Seed returns the built-in reference data. Each call returns a fresh copy.
func Seed() *Catalog {
	return &Catalog{
		Species: []model.Species{
			{
				ID:          1,
				CommonName:  "Snake",
				RiskLevel:   model.RiskLow,
				Keywords:    []string{"snake", "serpent", "slither", "coil", "hiss", "scales", "reptile"},
				Description: "Most urban snakes are harmless rat snakes that help control rodent populations.",
				ImageRef:    "/assets/snake.jpg",
			},
			{
				ID:          2,
				CommonName:  "Monkey",
				RiskLevel:   model.RiskMedium,
				Keywords:    []string{"monkey", "primate", "macaque", "ape", "climbing", "troop", "aggressive"},
				Description: "Urban monkeys can be territorial and may approach humans for food.",
				ImageRef:    "/assets/monkey.jpg",
			},
			{
				ID:          3,
				CommonName:  "Stray Dog",
				RiskLevel:   model.RiskLow,
				Keywords:    []string{"dog", "canine", "stray", "pack", "bark", "growl", "pet"},
				Description: "Stray dogs are usually friendly but may be protective of their territory.",
				ImageRef:    "/assets/dog.jpg",
			},
		},
		Guidelines: []model.SafetyGuideline{
			{
				ID:        1,
				SpeciesID: 1,
				Dos: []string{
					"Keep a safe distance of at least 6 feet",
					"Secure children and pets immediately",
					"Close doors and windows if indoors",
					"Call a professional snake rescuer",
					"Take a photo from distance for identification",
				},
				Donts: []string{
					"Do not try to catch or kill the snake",
					"Do not hit or poke with sticks",
					"Do not pour liquids on the snake",
					"Do not corner or trap the snake",
					"Do not panic or make sudden movements",
				},
				FirstAid:       "If bitten: Keep the affected limb immobilized below heart level. Remove jewelry before swelling. Get to a hospital immediately. Do not use tourniquets, ice, or attempt to cut/suck the wound.",
				AuthorityNotes: "Most urban snakes are non-venomous. Professional identification is recommended.",
			},
			{
				ID:        2,
				SpeciesID: 2,
				Dos: []string{
					"Avoid direct eye contact",
					"Secure all food items and bags",
					"Back away slowly without running",
					"Make yourself appear smaller",
					"Speak in calm, low tones",
				},
				Donts: []string{
					"Do not feed the monkey",
					"Do not tease or chase",
					"Do not make loud noises",
					"Do not show aggression",
					"Do not carry visible food",
				},
				FirstAid:       "For monkey bites or scratches: Clean wound thoroughly with soap and water. Apply antiseptic. Seek medical attention for rabies evaluation and tetanus shot if needed.",
				AuthorityNotes: "Monkeys can carry diseases. Medical consultation is always recommended after contact.",
			},
			{
				ID:        3,
				SpeciesID: 3,
				Dos: []string{
					"Stand still and avoid sudden movements",
					"Keep hands at your sides",
					"Speak calmly and slowly back away",
					"Avoid direct eye contact",
					"Let the dog sniff your scent from distance",
				},
				Donts: []string{
					"Do not run away",
					"Do not throw stones or objects",
					"Do not shout or make loud noises",
					"Do not corner the dog",
					"Do not reach out to pet unknown dogs",
				},
				FirstAid:       "For dog bites: Control bleeding with clean cloth. Clean wound with soap and water. Apply antibiotic ointment. Seek medical attention for deep wounds or if dog's vaccination status is unknown.",
				AuthorityNotes: "Report aggressive stray dogs to local animal control. Many strays are friendly and may just need care.",
			},
		},
		RescueOrgs: []model.RescueOrg{
			{ID: 1, Name: "Kerala State Wildlife Helpline", City: model.StatewideCity, Phone: "1800-425-4733", Hours: "24x7", SpeciesSupported: []string{"snake", "monkey", "dog", "wildlife"}},
			{ID: 2, Name: "City Snake Rescue Team", City: "Kochi", Phone: "9876543210", WhatsApp: "9876543210", Hours: "7am–10pm", SpeciesSupported: []string{"snake"}},
			{ID: 3, Name: "Urban Wildlife Aid", City: "Thiruvananthapuram", Phone: "9990011223", Hours: "24x7", SpeciesSupported: []string{"monkey", "dog"}},
			{ID: 4, Name: "Calicut Animal Rescue", City: "Kozhikode", Phone: "9988776655", WhatsApp: "9988776655", Hours: "6am–11pm", SpeciesSupported: []string{"dog", "monkey"}},
			{ID: 5, Name: "Rapid Wildlife Response", City: "Thrissur", Phone: "9445566778", Hours: "24x7", SpeciesSupported: []string{"snake", "monkey", "dog"}},
		},
	}
}
