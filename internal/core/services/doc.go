// Package services implements the driving port interfaces.
//
// IngestService and AskService are explicit stage pipelines
// (chunk, embed, commit and embed, retrieve, assemble, generate, record).
// Every store and provider is injected at construction; services hold no
// mutable state shared between requests.
package services
