package main

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Manage TLS certificates",
	Long: `Manage the TLS certificates the intake server serves.

The certs command provides utilities for the certificate and key pair
referenced by server.tls in the configuration: validation, inspection,
and generation of self-signed pairs for development.

Subcommands:
  validate - Check a certificate and key pair
  info     - Display certificate details
  generate - Generate a self-signed certificate for development

Examples:
  # Check the pair referenced by the config
  palisade certs validate

  # Display certificate information
  palisade certs info server.crt

  # Generate a development certificate
  palisade certs generate --host localhost`,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}

// readCertificate loads the first PEM block of a certificate file.
func readCertificate(path string) (*x509.Certificate, error) {
	certPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, fmt.Errorf("no PEM data in %s", path)
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return cert, nil
}
