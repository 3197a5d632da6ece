// ABOUTME: Version information for framesink
// ABOUTME: Product name, manufacturer and release version
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the product name shown in logs and the TUI
	Product = "framesink"

	// Manufacturer identifies who builds it
	Manufacturer = "Resonate Protocol"
)
