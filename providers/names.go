package providers

const (
	// Identifier for ipstack.com
	NameIPStack = "ipstack"
)
