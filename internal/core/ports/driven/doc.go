// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for ingest and ask to function:
//
//   - EmbeddingService: Converts chunks and questions to vectors
//   - LLMService: Generates grounded answers
//   - DocumentStore: Atomic document + chunk persistence (the Chunk Store)
//   - HistoryStore: Append-only question/answer history
//   - AuthProvider: Resolves an identity token to a user ID
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ObjectStore: Keeps original uploads. Without it, ingestFile skips storage.
//   - TextExtractor: Converts uploads to text. Without it, only raw text ingest works.
//   - PromptStore: User-editable prompts. Without it, built-in templates are used.
//   - Metrics: Operation counters. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
