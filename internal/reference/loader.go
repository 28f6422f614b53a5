package reference

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
)

// EnvPrefix marks environment variables that override scalar reference values
const EnvPrefix = "KINSHIP_REF_"

// Load reads the artifact in layers: built-in defaults, then the YAML source
// (a local path or any koanf provider such as S3), then environment overrides.
// Lists in the source replace the defaults; maps are merged key by key.
func Load(src koanf.Provider) (*Artifact, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load reference defaults: %w", err)
	}

	if src != nil {
		if err := k.Load(src, yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load reference source: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load reference overrides from environment: %w", err)
	}

	var art Artifact
	if err := k.Unmarshal("", &art); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reference artifact: %w", err)
	}
	art.Model.SortTiers()

	logging.Info().
		Str("version", art.Version).
		Str("model_version", art.Model.Version).
		Int("regions", len(art.Regions)).
		Int("affinity_types", len(art.AffinityTypes)).
		Msg("Reference artifact loaded")

	return &art, nil
}

// LoadFile loads the artifact from a YAML file. An empty path yields the defaults
// with environment overrides applied.
func LoadFile(path string) (*Artifact, error) {
	if path == "" {
		return Load(nil)
	}
	return Load(file.Provider(path))
}

// envTransformFunc maps KINSHIP_REF_* variables to artifact keys.
// Unmapped variables return "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	envMappings := map[string]string{
		"version":                  "version",
		"default_region":           "default_region",
		"neutral_style":            "communication.neutral_style",
		"cross_factor":             "communication.cross_factor",
		"topic_depth_saturation":   "conversation.topic_depth_saturation",
		"model_version":            "model.version",
		"min_score":                "model.min_score",
		"regional_bonus":           "model.regional_bonus",
		"adjacent_bonus":           "model.adjacent_bonus",
		"notable_contribution":     "model.notable_contribution",
		"activity_interest_weight": "model.activity_interest_weight",
		"cultural_focus_bonus":     "model.cultural_focus_bonus",
		"sample_threshold":         "model.learning.sample_threshold",
		"accuracy_drop_delta":      "model.learning.accuracy_drop_delta",
		"satisfaction_drop_delta":  "model.learning.satisfaction_drop_delta",
		"min_drift_samples":        "model.learning.min_drift_samples",
		"learning_rate":            "model.learning.learning_rate",
		"min_weight":               "model.learning.min_weight",
		"threshold_step":           "model.learning.threshold_step",
	}

	return envMappings[key]
}
