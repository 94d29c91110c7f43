package domain

// KeyPrefix namespaces every key written to the shared database.
const KeyPrefix = "nurseally:"

// VectorConfig holds vectorization settings of the reference corpus.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig returns the default configuration tuned for bge-small-en-v1.5
// as served by LM Studio.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "text-embedding-bge-small-en-v1.5",
		Dimensions:     384,
		DistanceMetric: "l2",
	}
}
