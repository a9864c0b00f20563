// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - Loader: Extracts text from one kind of corpus file
//   - EmbeddingService: Turns text into vectors
//   - LLMService: Chat completion against a language model
//   - VectorIndex: Stores embedded chunks and answers similarity queries
//   - ConversationStore: Per-session transcript persistence
//
// The embedding and language models are opaque services: only their
// input/output contracts matter here.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
