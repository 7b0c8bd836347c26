package models

// Nutrition holds aggregate nutrition values for a meal.
type Nutrition struct {
	Calories     float64 `json:"calories"`     // kcal
	Carbohydrate float64 `json:"carbohydrate"` // grams
	Protein      float64 `json:"protein"`      // grams
	Fat          float64 `json:"fat"`          // grams
}

// FoodItem is a single food recognized on a photo.
type FoodItem struct {
	Name   string `json:"name"`
	Amount string `json:"amount"` // e.g. "100g", "1 bowl"
}

// FoodPhotoResult is the response of the food photo pipeline.
type FoodPhotoResult struct {
	Foods []FoodItem `json:"foods,omitempty"`
	Nutrition
	ImageName string `json:"imageName,omitempty"`
}

// NutritionEstimate is nutrition as returned by the model, where any field may be
// missing.
type NutritionEstimate struct {
	Calories     *float64 `json:"calories"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Protein      *float64 `json:"protein"`
	Fat          *float64 `json:"fat"`
}

// Plausible reports whether the estimate has positive calories and all macros.
func (e *NutritionEstimate) Plausible() bool {
	if e == nil || e.Calories == nil || e.Carbohydrate == nil || e.Protein == nil || e.Fat == nil {
		return false
	}
	return *e.Calories > 0
}

// Nutrition converts a plausible estimate. Callers must check Plausible first.
func (e *NutritionEstimate) Nutrition() Nutrition {
	return Nutrition{
		Calories:     *e.Calories,
		Carbohydrate: *e.Carbohydrate,
		Protein:      *e.Protein,
		Fat:          *e.Fat,
	}
}

// Interpretation is the model's reading of a chat message.
type Interpretation struct {
	Nutrition *NutritionEstimate `json:"nutrition,omitempty"`
	Comment   string             `json:"comment"`
}

// TextNutritionResult is the response of the text-to-nutrition pipeline. When
// Nutrition is nil only the comment is encoded.
type TextNutritionResult struct {
	*Nutrition
	Comment string `json:"comment"`
}

// ChatRequest is the input of the text-to-nutrition pipeline.
type ChatRequest struct {
	ChatHistory   string    `json:"chatHistory"`
	PrevNutrition Nutrition `json:"prevNutrition"`
	Text          string    `json:"text"`
}
