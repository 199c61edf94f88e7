package mockapi

import (
	"hash/fnv"

	"github.com/neuroscan/scanclient/internal/models"
)

// classes is the fixed label set of the reference model.
var classes = []string{
	models.ClassGlioma,
	models.ClassMeningioma,
	models.ClassNoTumor,
	models.ClassPituitary,
}

// fabricatePrediction derives a stable pseudo-prediction from the
// image bytes. There is no model behind the mock service; hashing the
// content keeps predictions deterministic, so repeated uploads of the
// same image classify identically.
func fabricatePrediction(image []byte) models.Prediction {
	h := fnv.New64a()
	h.Write(image)
	sum := h.Sum64()

	winner := int(sum % uint64(len(classes)))
	// Confidence in [0.55, 0.99).
	confidence := 0.55 + float64(sum%4400)/10000.0

	remainder := 1.0 - confidence
	probabilities := make(map[string]float64, len(classes))
	for i, class := range classes {
		if i == winner {
			probabilities[class] = confidence
			continue
		}
		// Split the remainder unevenly but deterministically.
		share := float64((sum>>uint(8*i))%100+1) / 100.0
		probabilities[class] = remainder * share / 3.0
	}

	return models.Prediction{
		Classification: classes[winner],
		Confidence:     confidence,
		Probabilities:  probabilities,
	}
}

// defaultCatalog is the classification catalog served by
// GET /classifications/.
var defaultCatalog = []models.Classification{
	{ID: "glioma", Name: "Glioma", Description: "Starts in glial cells of brain or spine"},
	{ID: "meningioma", Name: "Meningioma", Description: "Forms on brain/spinal cord membranes"},
	{ID: "no_tumor", Name: "No Tumor", Description: "No tumor detected in the scan"},
	{ID: "pituitary", Name: "Pituitary Tumor", Description: "Occurs in the pituitary gland"},
}
