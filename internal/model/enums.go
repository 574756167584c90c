package model

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ImageModel identifies one of the supported upstream generation models.
type ImageModel string

const (
	ModelGPT4oImage   ImageModel = "gpt-4o-image"
	ModelNanoBanana   ImageModel = "nano-banana"
	ModelNanoBananaHD ImageModel = "nano-banana-hd"
	ModelNanoBanana2  ImageModel = "nano-banana-2"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = ModelGPT4oImage

// DefaultSize is the per-model fallback when neither explicit dimensions nor
// a named size are given. All supported models default to a square canvas.
const DefaultSize = "1024x1024"

// ModelInfo describes a catalogue entry shown to users.
type ModelInfo struct {
	ID          ImageModel `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
}

// SupportedModels is the static catalogue of selectable models.
var SupportedModels = []ModelInfo{
	{ID: ModelGPT4oImage, Name: "GPT-4o-Image", Description: "General purpose image generation", Icon: "🌟"},
	{ID: ModelNanoBanana, Name: "Nano Banana", Description: "Fast drafts", Icon: "🍌"},
	{ID: ModelNanoBananaHD, Name: "Nano Banana HD", Description: "High detail output", Icon: "🍌✨"},
	{ID: ModelNanoBanana2, Name: "Nano Banana 2.0", Description: "Flagship model", Icon: "🚀"},
}

// IsSupportedModel reports whether m names a catalogue model.
func IsSupportedModel(m ImageModel) bool {
	for _, info := range SupportedModels {
		if info.ID == m {
			return true
		}
	}
	return false
}
