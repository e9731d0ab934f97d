package driven

// NormaliserRegistry dispatches raw documents to the normaliser registered
// for their MIME type.
type NormaliserRegistry interface {
	Normaliser

	// Register adds a normaliser for each of its MIME types. A later
	// registration for the same type replaces the earlier one.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

// ConnectorRegistry dispatches locators to the connector for their scheme.
type ConnectorRegistry interface {
	Fetcher

	// Register adds a connector for each of its schemes.
	Register(connector Connector)

	// Schemes returns all registered schemes, sorted.
	Schemes() []string
}

