package models

// Emotional blackmail styles.
const (
	StylePolite  = "Polite"
	StyleVicious = "Vicious"
)

var Styles = []string{StylePolite, StyleVicious}

// MinMessages is the minimum number of messages in an EBOutput.
const MinMessages = 9

// Status is today's intake against the user's needs.
type Status struct {
	WaterIntake    float64    `json:"waterIntake"`    // ml
	WaterNeed      float64    `json:"waterNeed"`      // ml
	CaloriesIntake float64    `json:"caloriesIntake"` // kcal
	CaloriesNeed   float64    `json:"caloriesNeed"`   // kcal
	LastMeal       *Nutrition `json:"lastMeal,omitempty"`
	ProteinTarget  *float64   `json:"proteinTarget,omitempty"`
	CarbsTarget    *float64   `json:"carbsTarget,omitempty"`
	FatsTarget     *float64   `json:"fatsTarget,omitempty"`
	EBType         string     `json:"EB_Type"`
}

// EBOutput is a list of stylized nudges.
type EBOutput struct {
	Messages []string `json:"messages"`
}
