package main

import (
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/palisade/pkg/cli"
	securitytls "bastion-hq/palisade/pkg/security/tls"
)

var certsInfoFlags struct {
	format string
}

var certsInfoCmd = &cobra.Command{
	Use:   "info [cert-file]",
	Short: "Display certificate details",
	Long: `Display detailed information about a TLS certificate.

Shown fields include the subject and issuer, the validity window with
days remaining, Subject Alternative Names, key usage, and algorithms.
A certificate inside the expiry warning window is flagged.

Examples:
  # Display certificate info
  palisade certs info server.crt

  # Display in JSON for scripting
  palisade certs info --format json server.crt`,
	Args: cobra.ExactArgs(1),
	RunE: runCertsInfo,
}

func init() {
	certsCmd.AddCommand(certsInfoCmd)

	certsInfoCmd.Flags().StringVarP(&certsInfoFlags.format, "format", "f", "text", "output format: text, json")
}

func runCertsInfo(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(certsInfoFlags.format)
	if err != nil {
		return err
	}

	cert, err := readCertificate(args[0])
	if err != nil {
		return cli.NewCommandError("certs info", err)
	}

	report := buildCertReport(args[0], cert)
	return cli.NewFormatter(format).FormatTo(os.Stdout, report)
}

// certInfoReport is the certs info command's printable summary.
type certInfoReport struct {
	File               string   `json:"file"`
	Subject            string   `json:"subject"`
	Issuer             string   `json:"issuer"`
	SerialNumber       string   `json:"serial_number"`
	NotBefore          string   `json:"not_before"`
	NotAfter           string   `json:"not_after"`
	DaysRemaining      int      `json:"days_remaining"`
	Expired            bool     `json:"expired"`
	Warning            string   `json:"warning,omitempty"`
	DNSNames           []string `json:"dns_names,omitempty"`
	IPAddresses        []string `json:"ip_addresses,omitempty"`
	KeyUsage           []string `json:"key_usage,omitempty"`
	ExtKeyUsage        []string `json:"ext_key_usage,omitempty"`
	SignatureAlgorithm string   `json:"signature_algorithm"`
	PublicKeyAlgorithm string   `json:"public_key_algorithm"`
	IsCA               bool     `json:"is_ca"`
}

func buildCertReport(file string, cert *x509.Certificate) certInfoReport {
	info := securitytls.ExtractCertificateInfo(cert)
	daysRemaining, warning := securitytls.CheckCertificateExpiration(cert)

	return certInfoReport{
		File:               file,
		Subject:            info.Subject,
		Issuer:             info.Issuer,
		SerialNumber:       info.SerialNumber,
		NotBefore:          info.NotBefore.Format(time.RFC3339),
		NotAfter:           info.NotAfter.Format(time.RFC3339),
		DaysRemaining:      daysRemaining,
		Expired:            time.Now().After(cert.NotAfter),
		Warning:            warning,
		DNSNames:           info.DNSNames,
		IPAddresses:        info.IPAddresses,
		KeyUsage:           describeKeyUsage(cert.KeyUsage),
		ExtKeyUsage:        describeExtKeyUsage(cert.ExtKeyUsage),
		SignatureAlgorithm: info.SignatureAlgorithm,
		PublicKeyAlgorithm: info.PublicKeyAlgorithm,
		IsCA:               cert.IsCA,
	}
}

func (r certInfoReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Certificate: %s\n\n", r.File)
	fmt.Fprintf(&b, "  Subject:              %s\n", r.Subject)
	fmt.Fprintf(&b, "  Issuer:               %s\n", r.Issuer)
	fmt.Fprintf(&b, "  Serial:               %s\n", r.SerialNumber)
	fmt.Fprintf(&b, "  Valid from:           %s\n", r.NotBefore)
	fmt.Fprintf(&b, "  Valid until:          %s\n", r.NotAfter)

	switch {
	case r.Expired:
		fmt.Fprintf(&b, "  Status:               ✗ EXPIRED\n")
	case r.Warning != "":
		fmt.Fprintf(&b, "  Status:               ⚠ expires in %d days\n", r.DaysRemaining)
	default:
		fmt.Fprintf(&b, "  Status:               ✓ valid (%d days remaining)\n", r.DaysRemaining)
	}

	if len(r.DNSNames) > 0 {
		fmt.Fprintf(&b, "  DNS names:            %s\n", strings.Join(r.DNSNames, ", "))
	}
	if len(r.IPAddresses) > 0 {
		fmt.Fprintf(&b, "  IP addresses:         %s\n", strings.Join(r.IPAddresses, ", "))
	}
	if len(r.KeyUsage) > 0 {
		fmt.Fprintf(&b, "  Key usage:            %s\n", strings.Join(r.KeyUsage, ", "))
	}
	if len(r.ExtKeyUsage) > 0 {
		fmt.Fprintf(&b, "  Extended key usage:   %s\n", strings.Join(r.ExtKeyUsage, ", "))
	}
	fmt.Fprintf(&b, "  Signature algorithm:  %s\n", r.SignatureAlgorithm)
	fmt.Fprintf(&b, "  Public key algorithm: %s\n", r.PublicKeyAlgorithm)
	fmt.Fprintf(&b, "  CA:                   %v", r.IsCA)
	return b.String()
}

var keyUsageNames = []struct {
	usage x509.KeyUsage
	name  string
}{
	{x509.KeyUsageDigitalSignature, "Digital Signature"},
	{x509.KeyUsageContentCommitment, "Content Commitment"},
	{x509.KeyUsageKeyEncipherment, "Key Encipherment"},
	{x509.KeyUsageDataEncipherment, "Data Encipherment"},
	{x509.KeyUsageKeyAgreement, "Key Agreement"},
	{x509.KeyUsageCertSign, "Certificate Sign"},
	{x509.KeyUsageCRLSign, "CRL Sign"},
}

func describeKeyUsage(usage x509.KeyUsage) []string {
	var names []string
	for _, ku := range keyUsageNames {
		if usage&ku.usage != 0 {
			names = append(names, ku.name)
		}
	}
	return names
}

var extKeyUsageNames = map[x509.ExtKeyUsage]string{
	x509.ExtKeyUsageAny:             "Any",
	x509.ExtKeyUsageServerAuth:      "Server Authentication",
	x509.ExtKeyUsageClientAuth:      "Client Authentication",
	x509.ExtKeyUsageCodeSigning:     "Code Signing",
	x509.ExtKeyUsageEmailProtection: "Email Protection",
	x509.ExtKeyUsageTimeStamping:    "Time Stamping",
	x509.ExtKeyUsageOCSPSigning:     "OCSP Signing",
}

func describeExtKeyUsage(usages []x509.ExtKeyUsage) []string {
	var names []string
	for _, usage := range usages {
		if name, ok := extKeyUsageNames[usage]; ok {
			names = append(names, name)
			continue
		}
		names = append(names, fmt.Sprintf("Unknown (%d)", usage))
	}
	return names
}
