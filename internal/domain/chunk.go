package domain

// Chunk is a retrievable unit of narrative text.
// Ordinal is the chunk's position in the corpus and the only key shared with the index.
type Chunk struct {
	Ordinal int
	Text    string
}

// NewChunks assigns ordinals to texts in order.
func NewChunks(texts []string) []Chunk {
	out := make([]Chunk, len(texts))
	for i, t := range texts {
		out[i] = Chunk{Ordinal: i, Text: t}
	}
	return out
}

// Texts returns chunk texts in ordinal order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
