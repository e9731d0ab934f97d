// Package connectors provides the Fetcher implementations that retrieve
// raw bytes for a source locator, and the Resolver that picks one by
// locator scheme.
//
// Bare paths (no scheme) are treated as file locators.
package connectors
