package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var certsGenerateFlags struct {
	hosts    string
	org      string
	validity int
	keySize  int
	output   string
}

var certsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate self-signed certificate",
	Long: `Generate a self-signed TLS certificate for development.

The generated pair lets a local intake server serve HTTPS without a CA.
Self-signed certificates are for development only; production deployments
use certificates issued by the enterprise CA.

Features:
  - RSA key generation (2048, 3072, or 4096 bits)
  - Multiple Subject Alternative Names (DNS and IP)
  - Configurable validity period and organization
  - Private key written with 0600 permissions

Examples:
  # Generate a certificate for localhost
  palisade certs generate --host localhost

  # Generate with multiple hosts
  palisade certs generate --host "localhost,127.0.0.1,intake.local"

  # Generate with custom parameters
  palisade certs generate \
    --host "localhost,127.0.0.1" \
    --org "Bastion" \
    --validity 365 \
    --key-size 4096 \
    --output certs/`,
	RunE: runCertsGenerate,
}

func init() {
	certsCmd.AddCommand(certsGenerateCmd)

	certsGenerateCmd.Flags().StringVar(&certsGenerateFlags.hosts, "host", "localhost", "comma-separated hostnames and IPs")
	certsGenerateCmd.Flags().StringVar(&certsGenerateFlags.org, "org", "Bastion", "organization name")
	certsGenerateCmd.Flags().IntVar(&certsGenerateFlags.validity, "validity", 365, "validity in days")
	certsGenerateCmd.Flags().IntVar(&certsGenerateFlags.keySize, "key-size", 2048, "RSA key size (2048, 3072, 4096)")
	certsGenerateCmd.Flags().StringVarP(&certsGenerateFlags.output, "output", "o", "certs", "output directory")
}

func runCertsGenerate(cmd *cobra.Command, args []string) error {
	if certsGenerateFlags.keySize != 2048 && certsGenerateFlags.keySize != 3072 && certsGenerateFlags.keySize != 4096 {
		return fmt.Errorf("invalid key size: %d (must be 2048, 3072, or 4096)", certsGenerateFlags.keySize)
	}
	if certsGenerateFlags.validity <= 0 {
		return fmt.Errorf("invalid validity: %d days", certsGenerateFlags.validity)
	}

	var dnsNames []string
	var ipAddresses []net.IP
	hosts := strings.Split(certsGenerateFlags.hosts, ",")
	for _, host := range hosts {
		host = strings.TrimSpace(host)
		if ip := net.ParseIP(host); ip != nil {
			ipAddresses = append(ipAddresses, ip)
		} else {
			dnsNames = append(dnsNames, host)
		}
	}

	fmt.Printf("Generating %d-bit RSA private key...\n", certsGenerateFlags.keySize)
	privateKey, err := rsa.GenerateKey(rand.Reader, certsGenerateFlags.keySize)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := time.Now()
	notAfter := notBefore.AddDate(0, 0, certsGenerateFlags.validity)

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{certsGenerateFlags.org},
			CommonName:   strings.TrimSpace(hosts[0]),
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ipAddresses,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	if err := os.MkdirAll(certsGenerateFlags.output, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	certPath := filepath.Join(certsGenerateFlags.output, "cert.pem")
	certFile, err := os.Create(certPath)
	if err != nil {
		return fmt.Errorf("failed to create certificate file: %w", err)
	}
	defer certFile.Close()

	if err := pem.Encode(certFile, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes}); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}

	keyPath := filepath.Join(certsGenerateFlags.output, "key.pem")
	keyFile, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer keyFile.Close()

	privateKeyBytes := x509.MarshalPKCS1PrivateKey(privateKey)
	if err := pem.Encode(keyFile, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: privateKeyBytes}); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Certificate generated: %s\n", certPath)
	fmt.Printf("✓ Private key generated: %s\n", keyPath)
	fmt.Println()
	fmt.Printf("  Hosts:        %s\n", certsGenerateFlags.hosts)
	fmt.Printf("  Organization: %s\n", certsGenerateFlags.org)
	fmt.Printf("  Valid until:  %s (%d days)\n", notAfter.Format("2006-01-02"), certsGenerateFlags.validity)
	fmt.Println()

	fmt.Println("To serve the intake API over TLS, add to your config.yaml:")
	fmt.Println("---")
	fmt.Println("server:")
	fmt.Println("  tls:")
	fmt.Println("    enabled: true")
	fmt.Printf("    cert_file: %q\n", certPath)
	fmt.Printf("    key_file: %q\n", keyPath)
	fmt.Println("    min_version: \"1.3\"")
	fmt.Println()
	fmt.Println("⚠  Self-signed certificates are for development only.")

	return nil
}
