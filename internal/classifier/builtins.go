package classifier

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/landmark"
)

// builtinSamplesPerLabel is how many deterministic pose variants seed each
// built-in label. It is kept at the default minimum-sample threshold so
// built-in labels always clear the training invariant.
const builtinSamplesPerLabel = 5

// builtinEpoch timestamps the generated built-in samples. It predates any
// runtime-recorded sample, so the newest-trained tie-break always ranks
// custom labels as newer than built-ins (built-ins win ties outright anyway).
var builtinEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// BuiltinDataset generates the canonical training samples for the built-in
// gesture taxonomy. The dataset is deterministic: every call produces
// identical feature vectors.
func BuiltinDataset() (Dataset, error) {
	ds := make(Dataset, len(builtinLabels))

	for _, label := range builtinLabels {
		samples := make([]Sample, 0, builtinSamplesPerLabel)
		for variant := 0; variant < builtinSamplesPerLabel; variant++ {
			pose, ok := landmark.BuiltinPoseVariant(label, variant)
			if !ok {
				return nil, fmt.Errorf("built-in gesture %q has no canonical pose", label)
			}
			samples = append(samples, Sample{
				Features:   feature.Extract(pose),
				Label:      label,
				Confidence: pose.Score,
				RecordedAt: builtinEpoch,
			})
		}
		ds[label] = samples
	}

	return ds, nil
}
