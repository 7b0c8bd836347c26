package models

import "github.com/Jimmy200504/CalH2O/internal/schema"

// NutritionSchema describes a Nutrition value.
func NutritionSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"calories":     schema.Number("Energy in kcal"),
		"carbohydrate": schema.Number("Carbohydrate in grams"),
		"protein":      schema.Number("Protein in grams"),
		"fat":          schema.Number("Fat in grams"),
	}, "calories", "carbohydrate", "protein", "fat")
}

// FoodItemSchema describes a FoodItem value.
func FoodItemSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"name":   schema.String("Name of the food"),
		"amount": schema.String("Exact quantity with unit, e.g. 100g or 1 bowl"),
	}, "name", "amount")
}

// UserProfileSchema describes a UserProfile value.
func UserProfileSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"gender":        schema.Enum("Gender", Genders...),
		"birthday":      schema.String("Birthday, YYYYMMDD"),
		"height":        schema.Number("Height in cm"),
		"weight":        schema.Number("Weight in kg"),
		"activityLevel": schema.Enum("Activity level", ActivityLevels...),
		"goal":          schema.Enum("Health goal", Goals...),
	}, "gender", "birthday", "height", "weight", "activityLevel", "goal")
}

// StatusSchema describes a Status value.
func StatusSchema() *schema.Schema {
	lastMeal := NutritionSchema()
	lastMeal.Description = "Nutrition of the last meal"
	return schema.Object(map[string]*schema.Schema{
		"waterIntake":    schema.Number("Today's total water consumed in ml"),
		"waterNeed":      schema.Number("Daily water requirement in ml"),
		"caloriesIntake": schema.Number("Today's total calories consumed in kcal"),
		"caloriesNeed":   schema.Number("Daily calorie requirement in kcal"),
		"lastMeal":       lastMeal,
		"proteinTarget":  schema.Number("Daily protein target in grams"),
		"carbsTarget":    schema.Number("Daily carbohydrate target in grams"),
		"fatsTarget":     schema.Number("Daily fat target in grams"),
		"EB_Type":        schema.Enum("Emotional blackmail style", Styles...),
	}, "waterIntake", "waterNeed", "caloriesIntake", "caloriesNeed", "EB_Type")
}

// EBOutputSchema describes an EBOutput value.
func EBOutputSchema() *schema.Schema {
	messages := schema.Array(schema.String("A short stylized message"))
	messages.MinItems = MinMessages
	messages.Description = "List of emotional blackmail messages, at least 9 items"
	return schema.Object(map[string]*schema.Schema{"messages": messages}, "messages")
}

// ChatRequestSchema describes a ChatRequest value.
func ChatRequestSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"chatHistory":   schema.String("Full conversation history, latest last"),
		"prevNutrition": NutritionSchema(),
		"text":          schema.String("Latest user message"),
	}, "chatHistory", "prevNutrition", "text")
}

// DailyNeedsRequestSchema describes a DailyNeedsRequest value.
func DailyNeedsRequestSchema() *schema.Schema {
	s := UserProfileSchema()
	s.Properties["userId"] = schema.String("Id of the user document to update")
	s.Required = append([]string{"userId"}, s.Required...)
	return s
}

// FoodPhotoRequestSchema describes the body of the food photo endpoint.
func FoodPhotoRequestSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"image": schema.String("Base64 image or data URL"),
	}, "image")
}
