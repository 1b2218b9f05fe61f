package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"remarket/server/internal/ml"
	"remarket/server/internal/models"
	"remarket/server/internal/valuation"
)

var (
	predictCity         string
	predictNeighborhood string
	predictType         string
	predictArea         float64
	predictBedroom      string
	predictBathroom     int
	predictFurnishing   string
	predictFloor        string
	predictListing      string
	predictPrice        float64
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a one-off price prediction",
	Long: `Predict the market price for a property described by flags and print
the result as JSON. Passing --price adds a valuation against the listed
price.`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictCity, "city", "", "city (required)")
	predictCmd.Flags().StringVar(&predictNeighborhood, "neighborhood", "", "neighborhood")
	predictCmd.Flags().StringVar(&predictType, "type", "apartment", "property type")
	predictCmd.Flags().Float64Var(&predictArea, "area", 0, "surface area in square meters (required)")
	predictCmd.Flags().StringVar(&predictBedroom, "bedrooms", "", "bedroom count (digits or studio)")
	predictCmd.Flags().IntVar(&predictBathroom, "bathrooms", 0, "bathroom count")
	predictCmd.Flags().StringVar(&predictFurnishing, "furnishing", "", "furnished, semi furnished or unfurnished")
	predictCmd.Flags().StringVar(&predictFloor, "floor", "", "floor")
	predictCmd.Flags().StringVar(&predictListing, "listing", "sale", "sale or rent")
	predictCmd.Flags().Float64Var(&predictPrice, "price", 0, "listed price, adds a valuation to the output")
	predictCmd.MarkFlagRequired("city")
	predictCmd.MarkFlagRequired("area")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Log.Level)

	predictor := ml.NewPredictor(cfg.Model.ArtifactPath, cfg.Model.MetaPath, logger)

	attrs := models.ListingAttributes{
		City:         predictCity,
		Neighborhood: predictNeighborhood,
		PropertyType: predictType,
		SurfaceArea:  predictArea,
		Bedroom:      predictBedroom,
		Bathroom:     predictBathroom,
		Furnishing:   predictFurnishing,
		Floor:        predictFloor,
		Listing:      predictListing,
	}
	if predictPrice > 0 {
		attrs.Price = &predictPrice
	}

	pred, err := predictor.Predict(attrs)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	out := map[string]interface{}{
		"predicted_price": pred.PredictedPrice,
		"confidence":      pred.Confidence,
	}
	if pred.Warning != "" {
		out["warning"] = pred.Warning
	}
	if attrs.Price != nil {
		if v := valuation.Classify(*attrs.Price, float64(pred.PredictedPrice)); v != nil {
			out["valuation"] = v.Label
			out["valuation_percentage"] = v.Percent
		}
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
