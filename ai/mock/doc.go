// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder, MockGenerator and MockProvider stand in for ai.Embedder,
// ai.Generator and ai.AIProvider so tests run without model servers.
//
// # Usage in Tests
//
//	provider := mock.NewMockProvider()
//	vec, err := provider.Embedder().EmbedText(ctx, "test")
//
//	gen := provider.(*mock.MockProvider).GetMockGenerator()
//	gen.GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
//	    return "Q: What is a cell?\na) atom\nb) unit of life ✅", nil
//	}
//	last, _ := gen.LastCall()
//
// # Default Behavior
//
//   - MockEmbedder: deterministic 384-dimension vectors from an FNV hash of the text
//   - MockGenerator: a single deterministic bullet derived from the prompt
//   - MockProvider: aggregates both
package mock
