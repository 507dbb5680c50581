package domain

// ModelID identifies a text-generation model.
type ModelID string

// Provider is the vendor serving a model.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const (
	ModelGeminiFlash ModelID = "gemini-1.5-flash"
	ModelGPT4oMini   ModelID = "gpt-4o-mini"
	ModelGeminiPro   ModelID = "gemini-1.5-pro"
	ModelGPT4o       ModelID = "gpt-4o"
)

// Model describes one entry of the model catalog.
type Model struct {
	ID       ModelID
	Name     string
	Provider Provider
	Premium  bool
}

// catalog is ordered best-first within free and premium models.
var catalog = []Model{
	{ID: ModelGeminiFlash, Name: "Gemini 1.5 Flash", Provider: ProviderGemini},
	{ID: ModelGPT4oMini, Name: "GPT-4o mini", Provider: ProviderOpenAI},
	{ID: ModelGeminiPro, Name: "Gemini 1.5 Pro", Provider: ProviderGemini, Premium: true},
	{ID: ModelGPT4o, Name: "GPT-4o", Provider: ProviderOpenAI, Premium: true},
}

// Models returns a copy of the catalog.
func Models() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}

// LookupModel finds a model by id.
func LookupModel(id ModelID) (Model, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// DefaultModel is the best non-premium model.
func DefaultModel() Model {
	return catalog[0]
}
