package prompt

import (
	"fmt"

	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/schema"
)

const goalAdjustmentText = `You are a professional dietitian. Given a user's goal, suggest an adjustment factor to apply on top of the activity multiplier.

- "gain weight": increase calories by ~10-20%.
- "maintain weight": no change.
- "lose weight": decrease calories by ~10-20%.
- "drink more water": no calorie change, increase water by ~10-20%.

Return **only** a JSON object:
{
  "calorieFactor": number,
  "waterFactor": number
}

Do not include any extra text.

User Goal: {{.goal}}
`

const macroTargetsText = `You are a professional dietitian. Given a user's daily calorie target, suggest an appropriate macronutrient split (protein, carbs, fats) in grams.

- Provide protein, carbs, and fats in grams.
- Use common ratios (e.g., protein 1.2-2.0g/kg body weight, carbs 45-65% of calories, fats 20-35% of calories).

Return **only** a JSON object:
{
  "proteinTarget": number,
  "carbsTarget": number,
  "fatsTarget": number
}

User Info:
- Calories: {{.calories}}
- Weight: {{.weight}}
- Goal: {{.goal}}
`

// nudgeText is shared by the emotional blackmail styles. The %s verb takes the
// role adjective of the style.
const nudgeText = `You are a creative and engaging %s. Based on the user's daily status, generate exactly 9 stylized emotional blackmail messages.
- 6 of the messages must be shorter than 9 words.
- Water: consumed {{.waterIntake}} ml / goal {{.waterNeed}} ml
- Calories: consumed {{.caloriesIntake}} kcal / goal {{.caloriesNeed}} kcal
{{- with index . "lastMeal"}}
- Last meal: {{.calories}} kcal, carbohydrate {{.carbohydrate}} g, protein {{.protein}} g, fat {{.fat}} g
{{- end}}
{{- with index . "proteinTarget"}}
- Daily protein target: {{.}} g
{{- end}}
{{- with index . "carbsTarget"}}
- Daily carbohydrate target: {{.}} g
{{- end}}
{{- with index . "fatsTarget"}}
- Daily fat target: {{.}} g
{{- end}}

Return only a JSON object of the form {"messages": ["msg1", "msg2", ...]}; no extra text.
`

const recognizeFoodText = `You are a professional nutritionist. Analyze the attached food photo and identify each individual food item present. For each item, provide a **precise** quantity - use specific units (e.g., grams, ml, pieces) and avoid ranges or approximations.

Return only a JSON object. It must contain:
- "foods": an array of objects, each with
  - "name": the name of the food
  - "amount": the exact quantity with unit
- "imageName": a short title describing the whole photo (optional)

If there is no food on the photo, return {"foods": []}.

Do not include any extra commentary or explanation. Only output valid JSON.
`

const nutritionAnalysisText = `You are a professional nutritionist.
Given the following list of foods with their amounts, estimate the **total nutrition values** for the entire list and avoid ranges or approximations.

Include the following fields (units in parentheses):
- "calories" (kcal)
- "carbohydrate" (g)
- "protein" (g)
- "fat" (g)

Return only a valid JSON object with **numeric values**, without any explanation or extra text.

Foods:
{{- range .foods}}
- {{.name}}: {{.amount}}
{{- end}}
`

const textToNutritionText = `You are a professional nutritionist.
Given the following context:
- chatHistory: the full conversation history between user and AI, as a single string (latest last)
- prevNutrition: the previous nutrition analysis result, with the fields calories, carbohydrate, protein and fat
- userInput: the latest user message

Your task:
1. If the user is asking to correct or update the previous nutrition result, use their description and prevNutrition to make corrections and output the corrected nutrition.
2. If the user is describing a new meal, ignore prevNutrition and generate a new nutrition analysis based on their description.
3. If the input is unrelated to food, only return a comment telling the user their input is not related to food, and do not output nutrition.
4. Always give a short, positive, and encouraging comment to the user about their meal and encourage them to keep recording.

Return a valid JSON object with:
- If nutrition is available: "nutrition": {calories, carbohydrate, protein, fat (all numbers)}, "comment": string
- If not related to food: only "comment": string

Do not include any extra commentary or explanation. Only output valid JSON.

chatHistory: {{.chatHistory}}
prevNutrition: calories={{.prevNutrition.calories}}, carbohydrate={{.prevNutrition.carbohydrate}}, protein={{.prevNutrition.protein}}, fat={{.prevNutrition.fat}}
userInput: {{.text}}
`

// Catalog holds every prompt used by the pipelines.
type Catalog struct {
	GoalAdjustment    *Prompt
	MacroTargets      *Prompt
	PoliteFriend      *Prompt
	ViciousFriend     *Prompt
	RecognizeFood     *Prompt
	NutritionAnalysis *Prompt
	TextToNutrition   *Prompt
}

// Prompt names, also used as keys by the fixture backend.
const (
	NameGoalAdjustment    = "goalAdjustment"
	NameMacroTargets      = "macroTargets"
	NamePoliteFriend      = "politeFriend"
	NameViciousFriend     = "viciousFriend"
	NameRecognizeFood     = "recognizeFood"
	NameNutritionAnalysis = "nutritionAnalysis"
	NameTextToNutrition   = "textToNutrition"
)

// NewCatalog builds the prompt catalog.
func NewCatalog() *Catalog {
	goal := schema.Enum("Health goal", models.Goals...)

	nudgeInput := models.StatusSchema()
	delete(nudgeInput.Properties, "EB_Type")
	nudgeInput.Required = []string{"waterIntake", "waterNeed", "caloriesIntake", "caloriesNeed"}

	recognized := schema.Array(models.FoodItemSchema())
	recognized.Description = "Every food item on the photo"

	estimate := models.NutritionSchema()
	estimate.Required = nil
	estimate.Description = "Nutrition of the described meal; omit when the input is not about food"

	return &Catalog{
		GoalAdjustment: New(NameGoalAdjustment, goalAdjustmentText,
			schema.Object(map[string]*schema.Schema{"goal": goal}, "goal"),
			schema.Object(map[string]*schema.Schema{
				"calorieFactor": schema.Number("Multiplier applied to base calories"),
				"waterFactor":   schema.Number("Multiplier applied to base water"),
			}, "calorieFactor", "waterFactor"),
		),
		MacroTargets: New(NameMacroTargets, macroTargetsText,
			schema.Object(map[string]*schema.Schema{
				"calories": schema.Number("Daily calorie target in kcal"),
				"weight":   schema.Number("Weight in kg"),
				"goal":     goal,
			}, "calories", "weight", "goal"),
			schema.Object(map[string]*schema.Schema{
				"proteinTarget": schema.Number("Protein in grams"),
				"carbsTarget":   schema.Number("Carbohydrate in grams"),
				"fatsTarget":    schema.Number("Fat in grams"),
			}, "proteinTarget", "carbsTarget", "fatsTarget"),
		),
		PoliteFriend:  New(NamePoliteFriend, fmt.Sprintf(nudgeText, "polite friend"), nudgeInput, models.EBOutputSchema()),
		ViciousFriend: New(NameViciousFriend, fmt.Sprintf(nudgeText, "vicious friend"), nudgeInput, models.EBOutputSchema()),
		RecognizeFood: New(NameRecognizeFood, recognizeFoodText,
			schema.Object(map[string]*schema.Schema{}),
			schema.Object(map[string]*schema.Schema{
				"foods":     recognized,
				"imageName": schema.String("Short title of the photo"),
			}, "foods"),
		),
		NutritionAnalysis: New(NameNutritionAnalysis, nutritionAnalysisText,
			schema.Object(map[string]*schema.Schema{"foods": schema.Array(models.FoodItemSchema())}, "foods"),
			models.NutritionSchema(),
		),
		TextToNutrition: New(NameTextToNutrition, textToNutritionText,
			models.ChatRequestSchema(),
			schema.Object(map[string]*schema.Schema{
				"nutrition": estimate,
				"comment":   schema.String("Short encouraging comment for the user"),
			}, "comment"),
		),
	}
}
