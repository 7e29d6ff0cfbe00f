package service

type Plan struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Landing struct {
	Product string `json:"product"`
	Tagline string `json:"tagline"`
	Plans   []Plan `json:"plans"`
	FAQ     []FAQ  `json:"faq"`
}

var landing = Landing{
	Product: "Approcciala.com",
	Tagline: "Opening lines for dating apps that actually get replies.",
	Plans: []Plan{
		{
			Name:        "Free",
			Price:       "€0",
			Period:      "/month",
			Description: "Perfect to get started",
			Features:    []string{"3 analyses per month", "Basic opening lines", "Email support"},
		},
		{
			Name:        "Pro",
			Price:       "€9.99",
			Period:      "/month",
			Description: "For people who want real results",
			Features: []string{
				"50 analyses per month",
				"Advanced analytics",
				"Multiple suggestions",
				"Priority support",
				"Custom templates",
			},
			Popular: true,
		},
		{
			Name:        "Expert",
			Price:       "€19.99",
			Period:      "/month",
			Description: "For dating professionals",
			Features: []string{
				"Unlimited analyses",
				"Personal coaching",
				"API access",
				"1-on-1 consulting",
				"Real-time analytics",
				"Message A/B testing",
			},
		},
	},
	FAQ: []FAQ{
		{
			Question: "Can I cancel at any time?",
			Answer:   "Yes. You can cancel your subscription from your dashboard at any time, with no penalties or hidden costs.",
		},
		{
			Question: "Which apps does it work with?",
			Answer:   "All the major dating apps: Tinder, Bumble, Hinge, Badoo, Meetic, Once and many more.",
		},
		{
			Question: "Can I customize the style of the messages?",
			Answer:   "With the Pro and Expert plans you can choose a casual, formal, funny, romantic or direct tone.",
		},
	},
}

// LandingPage returns the public marketing content.
func LandingPage() Landing {
	return landing
}
