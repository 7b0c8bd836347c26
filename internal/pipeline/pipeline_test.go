package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jimmy200504/CalH2O/internal/ml"
	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/prompt"
)

func newClient(responses map[string]string) (*ml.Client, *ml.FixtureModel) {
	m := ml.NewFixtureModel(responses)
	return ml.NewClient(m), m
}

func fixedNow() time.Time {
	return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
}

func TestActivityFactor(t *testing.T) {
	tests := []struct {
		level string
		want  float64
	}{
		{models.ActivitySedentary, 1.2},
		{models.ActivityLight, 1.375},
		{models.ActivityActive, 1.55},
		{models.ActivityVeryActive, 1.72},
		{models.ActivityExtraActive, 1.9},
	}
	for _, tt := range tests {
		got, err := ActivityFactor(tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.level)
	}

	_, err := ActivityFactor("couch potato")
	assert.ErrorIs(t, err, ErrUnknownActivity)
}

func TestAge(t *testing.T) {
	tests := []struct {
		name     string
		birthday string
		want     int
		wantErr  bool
	}{
		{"regular", "19960315", 30, false},
		{"birthday later this year still counts", "19961231", 30, false},
		{"born this year", "20260101", 0, false},
		{"future year", "20270101", 0, true},
		{"not a date", "19960230", 0, true},
		{"too short", "1996315", 0, true},
		{"dashes", "1996-03-15", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Age(tt.birthday, fixedNow())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBirthday)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBMR(t *testing.T) {
	assert.InDelta(t, 1650.45, BMR(models.GenderMen, 70, 175, 30), 1e-9)
	assert.InDelta(t, 1346.65, BMR(models.GenderWomen, 60, 165, 25), 1e-9)
	assert.InDelta(t, 1346.65, BMR(models.GenderOther, 60, 165, 25), 1e-9)
}

func TestDailyNeeds(t *testing.T) {
	profile := models.UserProfile{
		Gender:        models.GenderMen,
		Birthday:      "19960315",
		Height:        175,
		Weight:        70,
		ActivityLevel: models.ActivitySedentary,
		Goal:          models.GoalMaintainWeight,
	}

	t.Run("neutral factors", func(t *testing.T) {
		client, model := newClient(map[string]string{
			prompt.NameGoalAdjustment: `{"calorieFactor": 1, "waterFactor": 1}`,
			prompt.NameMacroTargets:   `{"proteinTarget": 112, "carbsTarget": 250, "fatsTarget": 66}`,
		})
		p := NewDailyNeeds(client, prompt.NewCatalog())
		p.now = fixedNow

		got, err := p.Run(context.Background(), profile)
		require.NoError(t, err)

		// 1650.45 * 1.2 = 1980.54
		assert.Equal(t, models.DailyNeeds{
			Calories:      1981,
			Water:         2450,
			ProteinTarget: 112,
			CarbsTarget:   250,
			FatsTarget:    66,
		}, got)
		assert.Equal(t, []string{prompt.NameGoalAdjustment, prompt.NameMacroTargets}, model.Calls())
	})

	t.Run("goal factors", func(t *testing.T) {
		client, _ := newClient(map[string]string{
			prompt.NameGoalAdjustment: `{"calorieFactor": 0.85, "waterFactor": 1.1}`,
			prompt.NameMacroTargets:   `{"proteinTarget": 120, "carbsTarget": 180, "fatsTarget": 55}`,
		})
		p := NewDailyNeeds(client, prompt.NewCatalog())
		p.now = fixedNow

		lose := profile
		lose.Goal = models.GoalLoseWeight
		got, err := p.Run(context.Background(), lose)
		require.NoError(t, err)
		assert.Equal(t, float64(1683), got.Calories)
		assert.Equal(t, float64(2695), got.Water)
	})

	t.Run("women, light activity", func(t *testing.T) {
		client, _ := newClient(map[string]string{
			prompt.NameGoalAdjustment: `{"calorieFactor": 1, "waterFactor": 1}`,
			prompt.NameMacroTargets:   `{"proteinTarget": 90, "carbsTarget": 230, "fatsTarget": 60}`,
		})
		p := NewDailyNeeds(client, prompt.NewCatalog())
		p.now = fixedNow

		got, err := p.Run(context.Background(), models.UserProfile{
			Gender:        models.GenderWomen,
			Birthday:      "20010101",
			Height:        165,
			Weight:        60,
			ActivityLevel: models.ActivityLight,
			Goal:          models.GoalMaintainWeight,
		})
		require.NoError(t, err)
		// 1346.65 * 1.375 = 1851.64375
		assert.Equal(t, float64(1852), got.Calories)
		assert.Equal(t, float64(2100), got.Water)
	})

	t.Run("unknown activity makes no model call", func(t *testing.T) {
		client, model := newClient(nil)
		p := NewDailyNeeds(client, prompt.NewCatalog())
		p.now = fixedNow

		bad := profile
		bad.ActivityLevel = "couch potato"
		_, err := p.Run(context.Background(), bad)
		assert.ErrorIs(t, err, ErrUnknownActivity)
		assert.Empty(t, model.Calls())
	})

	t.Run("model failure propagates", func(t *testing.T) {
		client, model := newClient(map[string]string{
			prompt.NameGoalAdjustment: `{"calorieFactor": 1, "waterFactor": 1}`,
		})
		model.Fail(prompt.NameMacroTargets, errors.New("unavailable"))
		p := NewDailyNeeds(client, prompt.NewCatalog())
		p.now = fixedNow

		_, err := p.Run(context.Background(), profile)
		assert.ErrorIs(t, err, ml.ErrInference)
	})

	t.Run("malformed goal adjustment", func(t *testing.T) {
		client, model := newClient(map[string]string{
			prompt.NameGoalAdjustment: `{"calorieFactor": 1}`,
		})
		p := NewDailyNeeds(client, prompt.NewCatalog())
		p.now = fixedNow

		_, err := p.Run(context.Background(), profile)
		assert.ErrorIs(t, err, ml.ErrOutputSchema)
		assert.Equal(t, []string{prompt.NameGoalAdjustment}, model.Calls())
	})
}

const nineMessages = `{"messages": ["1","2","3","4","5","6","7","8","9"]}`

func TestEmotionalBlackmail(t *testing.T) {
	status := models.Status{
		WaterIntake:    800,
		WaterNeed:      2450,
		CaloriesIntake: 1200,
		CaloriesNeed:   1981,
	}

	for _, style := range models.Styles {
		t.Run(style, func(t *testing.T) {
			client, model := newClient(map[string]string{
				prompt.NamePoliteFriend:  nineMessages,
				prompt.NameViciousFriend: nineMessages,
			})
			s := status
			s.EBType = style

			out, err := NewEmotionalBlackmail(client, prompt.NewCatalog()).Run(context.Background(), s)
			require.NoError(t, err)
			assert.Len(t, out.Messages, models.MinMessages)

			want := prompt.NamePoliteFriend
			if style == models.StyleVicious {
				want = prompt.NameViciousFriend
			}
			assert.Equal(t, []string{want}, model.Calls())
		})
	}

	t.Run("too few messages", func(t *testing.T) {
		client, _ := newClient(map[string]string{
			prompt.NamePoliteFriend: `{"messages": ["drink water"]}`,
		})
		s := status
		s.EBType = models.StylePolite
		_, err := NewEmotionalBlackmail(client, prompt.NewCatalog()).Run(context.Background(), s)
		assert.ErrorIs(t, err, ml.ErrOutputSchema)
	})

	t.Run("unknown style", func(t *testing.T) {
		client, model := newClient(nil)
		s := status
		s.EBType = "Passive-aggressive"
		_, err := NewEmotionalBlackmail(client, prompt.NewCatalog()).Run(context.Background(), s)
		assert.ErrorIs(t, err, ErrUnknownStyle)
		assert.Empty(t, model.Calls())
	})
}

func TestFoodPhoto(t *testing.T) {
	image := ml.Media{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}

	t.Run("recognized", func(t *testing.T) {
		client, model := newClient(map[string]string{
			prompt.NameRecognizeFood: `{"foods": [{"name": "rice", "amount": "1 bowl"}, {"name": "egg", "amount": "2"}], "imageName": "breakfast"}`,
			prompt.NameNutritionAnalysis: `{"calories": 450, "carbohydrate": 60, "protein": 15, "fat": 12}`,
		})

		got, err := NewFoodPhoto(client, prompt.NewCatalog()).Run(context.Background(), image)
		require.NoError(t, err)
		assert.Equal(t, models.FoodPhotoResult{
			Foods: []models.FoodItem{
				{Name: "rice", Amount: "1 bowl"},
				{Name: "egg", Amount: "2"},
			},
			Nutrition: models.Nutrition{Calories: 450, Carbohydrate: 60, Protein: 15, Fat: 12},
			ImageName: "breakfast",
		}, got)
		assert.Equal(t, []string{prompt.NameRecognizeFood, prompt.NameNutritionAnalysis}, model.Calls())
	})

	t.Run("nothing recognized skips analysis", func(t *testing.T) {
		client, model := newClient(map[string]string{
			prompt.NameRecognizeFood: `{"foods": []}`,
		})
		_, err := NewFoodPhoto(client, prompt.NewCatalog()).Run(context.Background(), image)
		assert.ErrorIs(t, err, ErrNoFoodRecognized)
		assert.Equal(t, []string{prompt.NameRecognizeFood}, model.Calls())
	})

	t.Run("analysis failure is terminal", func(t *testing.T) {
		client, model := newClient(map[string]string{
			prompt.NameRecognizeFood: `{"foods": [{"name": "apple", "amount": "1"}]}`,
		})
		model.Fail(prompt.NameNutritionAnalysis, context.DeadlineExceeded)
		_, err := NewFoodPhoto(client, prompt.NewCatalog()).Run(context.Background(), image)
		assert.ErrorIs(t, err, ml.ErrInference)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

type stubInterpreter struct {
	out models.Interpretation
	err error
}

func (s stubInterpreter) Interpret(context.Context, models.ChatRequest) (models.Interpretation, error) {
	return s.out, s.err
}

func ptr(f float64) *float64 { return &f }

func TestTextToNutrition(t *testing.T) {
	req := models.ChatRequest{ChatHistory: "", Text: "a bowl of beef noodles"}

	t.Run("plausible", func(t *testing.T) {
		client, _ := newClient(map[string]string{
			prompt.NameTextToNutrition: `{"nutrition": {"calories": 550, "carbohydrate": 70, "protein": 25, "fat": 18}, "comment": "Tasty!"}`,
		})
		got := NewTextToNutrition(NewLLMInterpreter(client, prompt.NewCatalog())).Run(context.Background(), req)

		require.NotNil(t, got.Nutrition)
		assert.Equal(t, models.Nutrition{Calories: 550, Carbohydrate: 70, Protein: 25, Fat: 18}, *got.Nutrition)
		assert.Equal(t, "Tasty!", got.Comment)
	})

	tests := []struct {
		name   string
		interp stubInterpreter
	}{
		{"no nutrition", stubInterpreter{out: models.Interpretation{Comment: "Hello!"}}},
		{"zero calories", stubInterpreter{out: models.Interpretation{
			Nutrition: &models.NutritionEstimate{Calories: ptr(0), Carbohydrate: ptr(0), Protein: ptr(0), Fat: ptr(0)},
			Comment:   "Water has no calories.",
		}}},
		{"negative calories", stubInterpreter{out: models.Interpretation{
			Nutrition: &models.NutritionEstimate{Calories: ptr(-5), Carbohydrate: ptr(1), Protein: ptr(1), Fat: ptr(1)},
		}}},
		{"missing macro", stubInterpreter{out: models.Interpretation{
			Nutrition: &models.NutritionEstimate{Calories: ptr(300), Carbohydrate: ptr(30), Protein: ptr(10)},
			Comment:   "Looks good",
		}}},
		{"interpreter error", stubInterpreter{err: errors.New("inference failed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTextToNutrition(tt.interp).Run(context.Background(), req)
			assert.Nil(t, got.Nutrition)
			assert.Equal(t, FallbackComment, got.Comment)
		})
	}

	t.Run("model output without nutrition object", func(t *testing.T) {
		client, _ := newClient(map[string]string{
			prompt.NameTextToNutrition: `{"comment": "What did you eat?"}`,
		})
		got := NewTextToNutrition(NewLLMInterpreter(client, prompt.NewCatalog())).Run(context.Background(), req)
		assert.Nil(t, got.Nutrition)
		assert.Equal(t, FallbackComment, got.Comment)
	})

	t.Run("custom fallback", func(t *testing.T) {
		got := NewTextToNutrition(stubInterpreter{err: errors.New("down")}).
			WithFallback("Tell me about your meal.").
			Run(context.Background(), req)
		assert.Equal(t, "Tell me about your meal.", got.Comment)
	})
}
