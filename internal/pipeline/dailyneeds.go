package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/prompt"
)

var (
	ErrUnknownActivity = errors.New("unknown activity level")
	ErrInvalidBirthday = errors.New("invalid birthday")
)

// BirthdayLayout is the YYYYMMDD layout of UserProfile.Birthday.
const BirthdayLayout = "20060102"

// waterPerKg is the base water need in ml per kg of body weight.
const waterPerKg = 35

var activityFactors = map[string]float64{
	models.ActivitySedentary:   1.2,
	models.ActivityLight:       1.375,
	models.ActivityActive:      1.55,
	models.ActivityVeryActive:  1.72,
	models.ActivityExtraActive: 1.9,
}

// ActivityFactor returns the TDEE multiplier for an activity level.
func ActivityFactor(level string) (float64, error) {
	f, ok := activityFactors[level]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, level)
	}
	return f, nil
}

// ParseBirthday parses a YYYYMMDD birthday and rejects years after now.
func ParseBirthday(s string, now time.Time) (time.Time, error) {
	if len(s) != len(BirthdayLayout) {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYYMMDD", ErrInvalidBirthday, s)
	}
	t, err := time.Parse(BirthdayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidBirthday, s)
	}
	if t.Year() > now.Year() {
		return time.Time{}, fmt.Errorf("%w: year %d is in the future", ErrInvalidBirthday, t.Year())
	}
	return t, nil
}

// Age is the difference between the current year and the birth year.
func Age(birthday string, now time.Time) (int, error) {
	t, err := ParseBirthday(birthday, now)
	if err != nil {
		return 0, err
	}
	return now.Year() - t.Year(), nil
}

// BMR returns the basal metabolic rate in kcal.
func BMR(gender string, weight, height float64, age int) float64 {
	bmr := 9.99*weight + 6.25*height - 4.92*float64(age)
	if gender == models.GenderMen {
		return bmr + 5
	}
	return bmr - 161
}

// DailyNeeds estimates the daily intake of a user from body metrics, a goal
// adjustment and a macronutrient split.
type DailyNeeds struct {
	invoker Invoker
	catalog *prompt.Catalog
	now     func() time.Time
}

// NewDailyNeeds creates the daily needs pipeline.
func NewDailyNeeds(invoker Invoker, catalog *prompt.Catalog) *DailyNeeds {
	return &DailyNeeds{invoker: invoker, catalog: catalog, now: time.Now}
}

// WithClock replaces the clock used to compute the age.
func (d *DailyNeeds) WithClock(now func() time.Time) *DailyNeeds {
	d.now = now
	return d
}

// Run computes the daily needs for profile. Model failures are returned as is.
func (d *DailyNeeds) Run(ctx context.Context, profile models.UserProfile) (models.DailyNeeds, error) {
	age, err := Age(profile.Birthday, d.now())
	if err != nil {
		return models.DailyNeeds{}, err
	}
	factor, err := ActivityFactor(profile.ActivityLevel)
	if err != nil {
		return models.DailyNeeds{}, err
	}
	tdee := BMR(profile.Gender, profile.Weight, profile.Height, age) * factor

	var adj models.GoalAdjustment
	if err := d.invoker.Invoke(ctx, d.catalog.GoalAdjustment, map[string]any{"goal": profile.Goal}, &adj); err != nil {
		return models.DailyNeeds{}, fmt.Errorf("goal adjustment: %w", err)
	}

	needs := models.DailyNeeds{
		Calories: math.Round(tdee * adj.CalorieFactor),
		Water:    math.Round(profile.Weight * waterPerKg * adj.WaterFactor),
	}

	var macros models.MacroTargets
	input := map[string]any{
		"calories": needs.Calories,
		"weight":   profile.Weight,
		"goal":     profile.Goal,
	}
	if err := d.invoker.Invoke(ctx, d.catalog.MacroTargets, input, &macros); err != nil {
		return models.DailyNeeds{}, fmt.Errorf("macro targets: %w", err)
	}

	needs.ProteinTarget = macros.ProteinTarget
	needs.CarbsTarget = macros.CarbsTarget
	needs.FatsTarget = macros.FatsTarget
	return needs, nil
}
