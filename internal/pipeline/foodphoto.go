package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jimmy200504/CalH2O/internal/ml"
	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/prompt"
)

var ErrNoFoodRecognized = errors.New("no food recognized in image")

// recognition is the answer of the recognizeFood prompt.
type recognition struct {
	Foods     []models.FoodItem `json:"foods"`
	ImageName string            `json:"imageName,omitempty"`
}

// FoodPhoto recognizes the foods on a photo and totals their nutrition.
type FoodPhoto struct {
	invoker Invoker
	catalog *prompt.Catalog
}

func NewFoodPhoto(invoker Invoker, catalog *prompt.Catalog) *FoodPhoto {
	return &FoodPhoto{invoker: invoker, catalog: catalog}
}

// Run sends image to the recognition prompt and then the recognized items to
// the nutrition analysis prompt. Any step failure ends the run.
func (f *FoodPhoto) Run(ctx context.Context, image ml.Media) (models.FoodPhotoResult, error) {
	var rec recognition
	if err := f.invoker.InvokeWithMedia(ctx, f.catalog.RecognizeFood, map[string]any{}, []ml.Media{image}, &rec); err != nil {
		return models.FoodPhotoResult{}, fmt.Errorf("recognize food: %w", err)
	}
	if len(rec.Foods) == 0 {
		return models.FoodPhotoResult{}, ErrNoFoodRecognized
	}

	var totals models.Nutrition
	if err := f.invoker.Invoke(ctx, f.catalog.NutritionAnalysis, map[string]any{"foods": rec.Foods}, &totals); err != nil {
		return models.FoodPhotoResult{}, fmt.Errorf("nutrition analysis: %w", err)
	}

	return models.FoodPhotoResult{
		Foods:     rec.Foods,
		Nutrition: totals,
		ImageName: rec.ImageName,
	}, nil
}
