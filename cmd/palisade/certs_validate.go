package main

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/cli"
	"bastion-hq/palisade/pkg/config"
	securitytls "bastion-hq/palisade/pkg/security/tls"
)

var certsValidateFlags struct {
	certFile string
	keyFile  string
	caFile   string
}

var certsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate certificate and key",
	Long: `Validate a TLS certificate and private key.

When --cert is omitted, the pair referenced by server.tls in the
configuration is validated instead, so the same check covers whatever
the intake server would serve.

Checks:
  - certificate and key pair match
  - certificate is inside its validity window
  - certificate chain verifies against the CA (if --ca provided)
  - expiration warning when fewer than 30 days remain

Examples:
  # Validate the pair referenced by the config
  palisade certs validate

  # Validate an explicit pair
  palisade certs validate --cert server.crt --key server.key

  # Validate the chain against a CA
  palisade certs validate --cert server.crt --ca ca.pem`,
	RunE: runCertsValidate,
}

func init() {
	certsCmd.AddCommand(certsValidateCmd)

	certsValidateCmd.Flags().StringVar(&certsValidateFlags.certFile, "cert", "", "certificate file (default: server.tls.cert_file from config)")
	certsValidateCmd.Flags().StringVar(&certsValidateFlags.keyFile, "key", "", "private key file")
	certsValidateCmd.Flags().StringVar(&certsValidateFlags.caFile, "ca", "", "CA certificate file")
}

func runCertsValidate(cmd *cobra.Command, args []string) error {
	certFile := certsValidateFlags.certFile
	keyFile := certsValidateFlags.keyFile

	if certFile == "" {
		if err := config.Initialize(cfgFile); err != nil {
			return cli.NewConfigError("", err.Error())
		}
		tlsCfg := config.GetConfig().Server.TLS
		certFile = tlsCfg.CertFile
		keyFile = tlsCfg.KeyFile
		if certFile == "" {
			return cli.NewConfigError("server.tls.cert_file",
				"no certificate to validate (pass --cert or set server.tls.cert_file)")
		}
	}

	fmt.Printf("Validating certificate: %s\n\n", certFile)

	cert, err := readCertificate(certFile)
	if err != nil {
		return cli.NewCommandError("certs validate", err)
	}

	if keyFile != "" {
		if _, err := tls.LoadX509KeyPair(certFile, keyFile); err != nil {
			fmt.Println("✗ Certificate and key do NOT match")
			return cli.NewCommandError("certs validate", err)
		}
		fmt.Println("✓ Certificate and key match")
	}

	if certsValidateFlags.caFile != "" {
		if err := validateCertChain(cert, certsValidateFlags.caFile); err != nil {
			fmt.Println("✗ Certificate chain invalid")
			return cli.NewCommandError("certs validate", err)
		}
		fmt.Println("✓ Certificate chain valid")
	}

	if err := securitytls.ValidateX509Certificate(cert); err != nil {
		fmt.Printf("✗ %v\n", err)
		return cli.NewCommandError("certs validate", err)
	}
	fmt.Printf("✓ Certificate not expired (valid until %s)\n", cert.NotAfter.Format("2006-01-02"))

	daysUntilExpiry, warning := securitytls.CheckCertificateExpiration(cert)
	if warning != "" {
		fmt.Printf("⚠  Certificate expires in %d days\n", daysUntilExpiry)
	}

	fmt.Println("\nCertificate Details:")
	fmt.Printf("  Subject:     %s\n", cert.Subject.CommonName)
	if len(cert.Subject.Organization) > 0 {
		fmt.Printf("  Organization: %s\n", cert.Subject.Organization[0])
	}
	fmt.Printf("  Issuer:      %s\n", cert.Issuer.CommonName)
	fmt.Printf("  Serial:      %x\n", cert.SerialNumber)
	fmt.Printf("  Valid from:  %s\n", cert.NotBefore.Format(time.RFC3339))
	fmt.Printf("  Valid until: %s\n", cert.NotAfter.Format(time.RFC3339))
	if len(cert.DNSNames) > 0 {
		fmt.Printf("  SANs (DNS):  %v\n", cert.DNSNames)
	}
	if len(cert.IPAddresses) > 0 {
		fmt.Printf("  SANs (IP):   %v\n", cert.IPAddresses)
	}

	return nil
}

func validateCertChain(cert *x509.Certificate, caFile string) error {
	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return fmt.Errorf("failed to read CA certificate: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caPEM) {
		return fmt.Errorf("failed to parse CA certificate")
	}

	return securitytls.ValidateCertificateChain(cert, caPool)
}
