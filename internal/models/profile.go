package models

// Gender values accepted by the daily needs calculation.
const (
	GenderMen   = "Men"
	GenderWomen = "Women"
	GenderOther = "Other"
)

// Activity levels, from least to most active.
const (
	ActivitySedentary   = "sedentary"
	ActivityLight       = "light"
	ActivityActive      = "active"
	ActivityVeryActive  = "very active"
	ActivityExtraActive = "extra active"
)

// Health goals.
const (
	GoalGainWeight     = "gain weight"
	GoalMaintainWeight = "maintain weight"
	GoalLoseWeight     = "lose weight"
	GoalDrinkMoreWater = "drink more water"
)

var (
	Genders        = []string{GenderMen, GenderWomen, GenderOther}
	ActivityLevels = []string{ActivitySedentary, ActivityLight, ActivityActive, ActivityVeryActive, ActivityExtraActive}
	Goals          = []string{GoalGainWeight, GoalMaintainWeight, GoalLoseWeight, GoalDrinkMoreWater}
)

// UserProfile holds the body metrics used to estimate daily needs.
type UserProfile struct {
	Gender        string  `json:"gender"`
	Birthday      string  `json:"birthday"` // YYYYMMDD
	Height        float64 `json:"height"`   // cm
	Weight        float64 `json:"weight"`   // kg
	ActivityLevel string  `json:"activityLevel"`
	Goal          string  `json:"goal"`
}

// DailyNeedsRequest is the body of the daily needs endpoint.
type DailyNeedsRequest struct {
	UserID string `json:"userId"`
	UserProfile
}

// DailyNeeds is the recommended daily intake for a user.
type DailyNeeds struct {
	Calories      float64 `json:"calories"`      // kcal
	Water         float64 `json:"water"`         // ml
	ProteinTarget float64 `json:"proteinTarget"` // grams
	CarbsTarget   float64 `json:"carbsTarget"`   // grams
	FatsTarget    float64 `json:"fatsTarget"`    // grams
}

// GoalAdjustment scales base calories and water for a goal.
type GoalAdjustment struct {
	CalorieFactor float64 `json:"calorieFactor"`
	WaterFactor   float64 `json:"waterFactor"`
}

// MacroTargets is the macronutrient split for a calorie target.
type MacroTargets struct {
	ProteinTarget float64 `json:"proteinTarget"`
	CarbsTarget   float64 `json:"carbsTarget"`
	FatsTarget    float64 `json:"fatsTarget"`
}
