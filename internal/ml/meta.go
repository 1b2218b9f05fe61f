package ml

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// FeatureMeta describes one model column. Categorical columns carry the
// label encoding learned at training time.
type FeatureMeta struct {
	Name     string             `yaml:"name"`
	Encoding map[string]float64 `yaml:"encoding,omitempty"`
}

// ModelMeta is the sidecar exported next to the trained artifact.
type ModelMeta struct {
	TargetTransform string        `yaml:"target_transform"`
	Features        []FeatureMeta `yaml:"features"`
}

func LoadModelMeta(path string) (*ModelMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta ModelMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse model metadata: %w", err)
	}
	if len(meta.Features) == 0 {
		return nil, errors.New("model metadata lists no features")
	}
	return &meta, nil
}

// EncodeRow lays a feature vector out in the column order the model was
// trained with. Categories unseen at training time encode to NaN, which the
// model treats as missing.
func (m *ModelMeta) EncodeRow(fv FeatureVector) []float64 {
	row := make([]float64, len(m.Features))
	for i, f := range m.Features {
		switch f.Name {
		case "surface_area":
			row[i] = fv.SurfaceArea
		case "bedroom":
			row[i] = fv.Bedroom
		case "bathroom":
			row[i] = fv.Bathroom
		case "floor_numeric":
			row[i] = fv.Floor
		case "furnishing":
			row[i] = fv.Furnishing
		case "type_numeric":
			row[i] = fv.TypeOrdinal
		case "city":
			row[i] = encodeCategory(f.Encoding, fv.City)
		case "neighborhood":
			row[i] = encodeCategory(f.Encoding, fv.Neighborhood)
		case "listing":
			row[i] = encodeCategory(f.Encoding, fv.Listing)
		default:
			row[i] = math.NaN()
		}
	}
	return row
}

func encodeCategory(encoding map[string]float64, value string) float64 {
	if v, ok := encoding[value]; ok {
		return v
	}
	return math.NaN()
}
