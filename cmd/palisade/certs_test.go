package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createTestCertificate writes a self-signed pair to outputDir and returns
// the file paths.
func createTestCertificate(t *testing.T, outputDir string) (certPath, keyPath string) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	serialNumber, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"Bastion Test"},
			CommonName:   "localhost",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(0, 0, 365),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		t.Fatalf("failed to create output directory: %v", err)
	}

	certPath = filepath.Join(outputDir, "test-cert.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		t.Fatalf("failed to write cert: %v", err)
	}

	keyPath = filepath.Join(outputDir, "test-key.pem")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)})
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	return certPath, keyPath
}

func TestCertsGenerate(t *testing.T) {
	outputDir := t.TempDir()

	tests := []struct {
		name     string
		hosts    string
		org      string
		validity int
		keySize  int
		wantErr  bool
	}{
		{
			name:     "valid certificate generation",
			hosts:    "localhost",
			org:      "Bastion",
			validity: 365,
			keySize:  2048,
			wantErr:  false,
		},
		{
			name:     "multiple hosts",
			hosts:    "localhost,127.0.0.1,intake.local",
			org:      "Bastion",
			validity: 365,
			keySize:  2048,
			wantErr:  false,
		},
		{
			name:     "invalid key size",
			hosts:    "localhost",
			org:      "Bastion",
			validity: 365,
			keySize:  1024,
			wantErr:  true,
		},
		{
			name:     "invalid validity",
			hosts:    "localhost",
			org:      "Bastion",
			validity: 0,
			keySize:  2048,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certsGenerateFlags.hosts = tt.hosts
			certsGenerateFlags.org = tt.org
			certsGenerateFlags.validity = tt.validity
			certsGenerateFlags.keySize = tt.keySize
			certsGenerateFlags.output = filepath.Join(outputDir, strings.ReplaceAll(tt.name, " ", "-"))

			err := runCertsGenerate(nil, nil)

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr {
				return
			}

			certPath := filepath.Join(certsGenerateFlags.output, "cert.pem")
			keyPath := filepath.Join(certsGenerateFlags.output, "key.pem")

			cert, err := readCertificate(certPath)
			if err != nil {
				t.Fatalf("generated certificate does not parse: %v", err)
			}

			wantHosts := len(strings.Split(tt.hosts, ","))
			if got := len(cert.DNSNames) + len(cert.IPAddresses); got != wantHosts {
				t.Errorf("SAN count = %d, want %d", got, wantHosts)
			}

			info, err := os.Stat(keyPath)
			if err != nil {
				t.Fatalf("key file not created: %v", err)
			}
			if mode := info.Mode().Perm(); mode != 0600 {
				t.Errorf("incorrect key file permissions: got %o, want 0600", mode)
			}
		})
	}
}

func TestCertsValidate(t *testing.T) {
	outputDir := t.TempDir()
	certPath, keyPath := createTestCertificate(t, outputDir)

	tests := []struct {
		name     string
		certFile string
		keyFile  string
		wantErr  bool
	}{
		{
			name:     "valid certificate and key",
			certFile: certPath,
			keyFile:  keyPath,
			wantErr:  false,
		},
		{
			name:     "certificate only",
			certFile: certPath,
			keyFile:  "",
			wantErr:  false,
		},
		{
			name:     "nonexistent certificate",
			certFile: filepath.Join(outputDir, "nonexistent.pem"),
			keyFile:  "",
			wantErr:  true,
		},
		{
			name:     "mismatched certificate and key",
			certFile: certPath,
			keyFile:  certPath,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certsValidateFlags.certFile = tt.certFile
			certsValidateFlags.keyFile = tt.keyFile
			certsValidateFlags.caFile = ""

			err := runCertsValidate(nil, nil)

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCertsInfo(t *testing.T) {
	outputDir := t.TempDir()
	certPath, _ := createTestCertificate(t, outputDir)

	tests := []struct {
		name     string
		certFile string
		format   string
		wantErr  bool
	}{
		{
			name:     "text format",
			certFile: certPath,
			format:   "text",
			wantErr:  false,
		},
		{
			name:     "json format",
			certFile: certPath,
			format:   "json",
			wantErr:  false,
		},
		{
			name:     "unknown format",
			certFile: certPath,
			format:   "xml",
			wantErr:  true,
		},
		{
			name:     "nonexistent certificate",
			certFile: filepath.Join(outputDir, "nonexistent.pem"),
			format:   "text",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certsInfoFlags.format = tt.format

			err := runCertsInfo(nil, []string{tt.certFile})

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCertInfoReportString(t *testing.T) {
	outputDir := t.TempDir()
	certPath, _ := createTestCertificate(t, outputDir)

	cert, err := readCertificate(certPath)
	if err != nil {
		t.Fatalf("failed to read certificate: %v", err)
	}

	out := buildCertReport(certPath, cert).String()

	if !strings.Contains(out, "Certificate: "+certPath) {
		t.Errorf("output missing file header:\n%s", out)
	}
	if !strings.Contains(out, "✓ valid") {
		t.Errorf("output missing valid status:\n%s", out)
	}
	if !strings.Contains(out, "localhost") {
		t.Errorf("output missing DNS name:\n%s", out)
	}
	if !strings.Contains(out, "Server Authentication") {
		t.Errorf("output missing extended key usage:\n%s", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Errorf("String() should not end with a newline")
	}
}

func TestValidateCertChain(t *testing.T) {
	outputDir := t.TempDir()

	caKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate CA key: %v", err)
	}

	caTemplate := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Bastion Test CA"},
			CommonName:   "Bastion Test CA",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	caDER, err := x509.CreateCertificate(rand.Reader, &caTemplate, &caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("failed to create CA certificate: %v", err)
	}

	caPath := filepath.Join(outputDir, "ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER})
	if err := os.WriteFile(caPath, caPEM, 0644); err != nil {
		t.Fatalf("failed to write CA cert: %v", err)
	}

	leafKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate leaf key: %v", err)
	}

	leafTemplate := x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			Organization: []string{"Bastion Test"},
			CommonName:   "localhost",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(0, 0, 365),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}

	leafDER, err := x509.CreateCertificate(rand.Reader, &leafTemplate, &caTemplate, &leafKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("failed to create leaf certificate: %v", err)
	}

	leafCert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		t.Fatalf("failed to parse leaf certificate: %v", err)
	}

	tests := []struct {
		name    string
		caFile  string
		wantErr bool
	}{
		{
			name:    "valid chain",
			caFile:  caPath,
			wantErr: false,
		},
		{
			name:    "missing CA file",
			caFile:  filepath.Join(outputDir, "nonexistent.pem"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCertChain(leafCert, tt.caFile)

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
