package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jimmy200504/CalH2O/internal/models"
)

func TestRenderScalarNestedAndRange(t *testing.T) {
	p := New("test", `user={{.user}} city={{.address.city}}{{range .items}} [{{.name}}:{{.amount}}]{{end}}`, nil, nil)

	out, err := p.Render(map[string]any{
		"user":    "amy",
		"address": map[string]any{"city": "Taipei"},
		"items":   []models.FoodItem{{Name: "rice", Amount: "1 bowl"}, {Name: "egg", Amount: "2 pieces"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "user=amy city=Taipei [rice:1 bowl] [egg:2 pieces]", out)
}

func TestRenderUsesJSONFieldNames(t *testing.T) {
	p := New("test", `{{.chatHistory}}|{{.prevNutrition.calories}}|{{.text}}`, nil, nil)

	out, err := p.Render(models.ChatRequest{
		ChatHistory:   "hi",
		PrevNutrition: models.Nutrition{Calories: 520.5},
		Text:          "a burger",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi|520.5|a burger", out)
}

func TestRenderNumbersAsWritten(t *testing.T) {
	p := New("test", `{{.big}}|{{.frac}}|{{with .zero}}zero={{.}}{{end}}|{{with .absent}}absent{{end}}`, nil, nil)

	out, err := p.Render(map[string]any{"big": 1000000.0, "frac": 0.25, "zero": 0, "absent": nil})
	require.NoError(t, err)
	assert.Equal(t, "1000000|0.25|zero=0|", out)
}

func TestRenderMissingKeyFails(t *testing.T) {
	p := New("test", `{{.absent}}`, nil, nil)

	_, err := p.Render(map[string]any{"present": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt test")
}

func TestCatalogTemplates(t *testing.T) {
	c := NewCatalog()

	t.Run("goal adjustment", func(t *testing.T) {
		out, err := c.GoalAdjustment.Render(map[string]any{"goal": models.GoalLoseWeight})
		require.NoError(t, err)
		assert.Contains(t, out, "User Goal: lose weight")
		assert.NoError(t, c.GoalAdjustment.Input.ValidateValue(map[string]any{"goal": models.GoalLoseWeight}))
	})

	t.Run("macro targets", func(t *testing.T) {
		out, err := c.MacroTargets.Render(map[string]any{"calories": 2150, "weight": 70, "goal": models.GoalGainWeight})
		require.NoError(t, err)
		assert.Contains(t, out, "- Calories: 2150")
		assert.Contains(t, out, "- Weight: 70")
	})

	t.Run("nudge roles differ", func(t *testing.T) {
		status := models.Status{WaterIntake: 800, WaterNeed: 2450, CaloriesIntake: 1200, CaloriesNeed: 2100}

		polite, err := c.PoliteFriend.Render(status)
		require.NoError(t, err)
		vicious, err := c.ViciousFriend.Render(status)
		require.NoError(t, err)

		assert.Contains(t, polite, "engaging polite friend.")
		assert.Contains(t, vicious, "engaging vicious friend.")
		assert.Contains(t, polite, "consumed 800 ml / goal 2450 ml")
		assert.NotContains(t, polite, "Last meal")
	})

	t.Run("nudge with last meal and targets", func(t *testing.T) {
		protein := 120.0
		status := models.Status{
			WaterIntake: 1, WaterNeed: 2, CaloriesIntake: 3, CaloriesNeed: 4,
			LastMeal:      &models.Nutrition{Calories: 650, Carbohydrate: 80, Protein: 30, Fat: 20},
			ProteinTarget: &protein,
		}
		out, err := c.ViciousFriend.Render(status)
		require.NoError(t, err)
		assert.Contains(t, out, "- Last meal: 650 kcal, carbohydrate 80 g, protein 30 g, fat 20 g")
		assert.Contains(t, out, "- Daily protein target: 120 g")
		assert.NotContains(t, out, "carbohydrate target")
	})

	t.Run("nudge keeps zero targets", func(t *testing.T) {
		zero := 0.0
		status := models.Status{WaterNeed: 2000, CaloriesNeed: 1800, FatsTarget: &zero}
		out, err := c.PoliteFriend.Render(status)
		require.NoError(t, err)
		assert.Contains(t, out, "- Daily fat target: 0 g")
		assert.NotContains(t, out, "protein target")
	})

	t.Run("nutrition analysis iterates foods", func(t *testing.T) {
		out, err := c.NutritionAnalysis.Render(map[string]any{
			"foods": []models.FoodItem{{Name: "rice", Amount: "200g"}, {Name: "salmon", Amount: "120g"}},
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Foods:\n- rice: 200g\n- salmon: 120g")
	})

	t.Run("text to nutrition", func(t *testing.T) {
		out, err := c.TextToNutrition.Render(models.ChatRequest{
			ChatHistory:   "user: I had ramen",
			PrevNutrition: models.Nutrition{Calories: 500, Carbohydrate: 60, Protein: 20, Fat: 18},
			Text:          "it was a large bowl",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "prevNutrition: calories=500, carbohydrate=60, protein=20, fat=18")
		assert.Contains(t, out, "userInput: it was a large bowl")
	})

	t.Run("recognize food has no placeholders", func(t *testing.T) {
		out, err := c.RecognizeFood.Render(map[string]any{})
		require.NoError(t, err)
		assert.Contains(t, out, `"foods"`)
	})
}
