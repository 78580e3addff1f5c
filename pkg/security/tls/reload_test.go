package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestKeyPair generates a self-signed pair for the given common name and
// writes it to dir, returning the file paths.
func writeTestKeyPair(t *testing.T, dir, commonName string, notBefore, notAfter time.Time) (certFile, keyFile string) {
	t.Helper()

	certPEM, keyPEM, _ := generateTestCert(t, commonName, notBefore, notAfter)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("failed to write cert file: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	return certFile, keyFile
}

// leafCommonName parses the leaf of the currently loaded certificate.
func leafCommonName(t *testing.T, cert *tls.Certificate) string {
	t.Helper()

	if cert == nil || len(cert.Certificate) == 0 {
		return ""
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse leaf certificate: %v", err)
	}
	return leaf.Subject.CommonName
}

// TestNewCertificateReloader tests the constructor and its fallbacks.
func TestNewCertificateReloader(t *testing.T) {
	reloader := NewCertificateReloader("cert.pem", "key.pem", 10*time.Minute, testLogger())

	if reloader == nil {
		t.Fatal("NewCertificateReloader returned nil")
	}
	if reloader.certFile != "cert.pem" {
		t.Errorf("certFile = %q, want %q", reloader.certFile, "cert.pem")
	}
	if reloader.keyFile != "key.pem" {
		t.Errorf("keyFile = %q, want %q", reloader.keyFile, "key.pem")
	}
	if reloader.interval != 10*time.Minute {
		t.Errorf("interval = %v, want %v", reloader.interval, 10*time.Minute)
	}

	fallback := NewCertificateReloader("cert.pem", "key.pem", 0, nil)
	if fallback.interval != DefaultReloadInterval {
		t.Errorf("interval = %v, want default %v", fallback.interval, DefaultReloadInterval)
	}
	if fallback.logger == nil {
		t.Error("logger should fall back to a non-nil default")
	}
}

// TestCertificateReloader_Start tests starting the reloader and initial load.
func TestCertificateReloader_Start(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeTestKeyPair(t, t.TempDir(), "start.palisade.test", now.Add(-time.Hour), now.Add(90*24*time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cert := reloader.GetCertificate()
	if cert == nil {
		t.Fatal("GetCertificate() returned nil after Start()")
	}
	if len(cert.Certificate) == 0 {
		t.Fatal("certificate chain is empty")
	}
}

// TestCertificateReloader_Start_MissingFiles tests starting with nonexistent files.
func TestCertificateReloader_Start_MissingFiles(t *testing.T) {
	reloader := NewCertificateReloader("nonexistent.crt", "nonexistent.key", time.Second, testLogger())

	if err := reloader.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail with nonexistent files")
	}
}

// TestCertificateReloader_Start_ExpiredCert tests that an expired pair is
// rejected at startup instead of being served.
func TestCertificateReloader_Start_ExpiredCert(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeTestKeyPair(t, t.TempDir(), "expired.palisade.test", now.Add(-90*24*time.Hour), now.Add(-time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, time.Second, testLogger())

	if err := reloader.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail with an expired certificate")
	}
}

// TestCertificateReloader_Start_InvalidContent tests starting with garbage PEM.
func TestCertificateReloader_Start_InvalidContent(t *testing.T) {
	tmpDir := t.TempDir()
	certFile := filepath.Join(tmpDir, "invalid.crt")
	keyFile := filepath.Join(tmpDir, "invalid.key")

	if err := os.WriteFile(certFile, []byte("invalid certificate data"), 0644); err != nil {
		t.Fatalf("failed to create invalid cert file: %v", err)
	}
	if err := os.WriteFile(keyFile, []byte("invalid key data"), 0600); err != nil {
		t.Fatalf("failed to create invalid key file: %v", err)
	}

	reloader := NewCertificateReloader(certFile, keyFile, time.Second, testLogger())

	if err := reloader.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail with invalid certificate content")
	}
}

// TestCertificateReloader_ReloadOnFileChange tests that a renewed pair is
// picked up and served without a restart.
func TestCertificateReloader_ReloadOnFileChange(t *testing.T) {
	now := time.Now()
	tmpDir := t.TempDir()
	certFile, keyFile := writeTestKeyPair(t, tmpDir, "first.palisade.test", now.Add(-time.Hour), now.Add(90*24*time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, 50*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if cn := leafCommonName(t, reloader.GetCertificate()); cn != "first.palisade.test" {
		t.Fatalf("initial common name = %q, want %q", cn, "first.palisade.test")
	}

	// Overwrite with a renewed pair and push the mtimes forward so the
	// change is detected regardless of filesystem timestamp granularity.
	writeTestKeyPair(t, tmpDir, "second.palisade.test", now.Add(-time.Hour), now.Add(180*24*time.Hour))
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(certFile, future, future); err != nil {
		t.Fatalf("failed to update cert mtime: %v", err)
	}
	if err := os.Chtimes(keyFile, future, future); err != nil {
		t.Fatalf("failed to update key mtime: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if leafCommonName(t, reloader.GetCertificate()) == "second.palisade.test" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("renewed certificate was not picked up")
}

// TestCertificateReloader_KeepsPreviousOnInvalidSwap tests that a bad
// overwrite leaves the previously loaded certificate in service.
func TestCertificateReloader_KeepsPreviousOnInvalidSwap(t *testing.T) {
	now := time.Now()
	tmpDir := t.TempDir()
	certFile, keyFile := writeTestKeyPair(t, tmpDir, "stable.palisade.test", now.Add(-time.Hour), now.Add(90*24*time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, 50*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := os.WriteFile(certFile, []byte("not a certificate"), 0644); err != nil {
		t.Fatalf("failed to overwrite cert file: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(certFile, future, future); err != nil {
		t.Fatalf("failed to update cert mtime: %v", err)
	}

	// Give the loop several ticks to attempt (and reject) the reload.
	time.Sleep(300 * time.Millisecond)

	if cn := leafCommonName(t, reloader.GetCertificate()); cn != "stable.palisade.test" {
		t.Fatalf("served common name = %q, want previous %q", cn, "stable.palisade.test")
	}
}

// TestCertificateReloader_GetCertificateFunc tests the tls.Config compatible function.
func TestCertificateReloader_GetCertificateFunc(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeTestKeyPair(t, t.TempDir(), "func.palisade.test", now.Add(-time.Hour), now.Add(90*24*time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, time.Minute, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	getCert := reloader.GetCertificateFunc()
	if getCert == nil {
		t.Fatal("GetCertificateFunc() returned nil")
	}

	cert, err := getCert(nil)
	if err != nil {
		t.Fatalf("GetCertificateFunc()() failed: %v", err)
	}
	if cert == nil {
		t.Fatal("GetCertificateFunc()() returned nil certificate")
	}

	tlsConfig := &tls.Config{GetCertificate: getCert}
	if tlsConfig.GetCertificate == nil {
		t.Fatal("failed to assign to tls.Config.GetCertificate")
	}
}

// TestCertificateReloader_needsReload tests file change detection.
func TestCertificateReloader_needsReload(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeTestKeyPair(t, t.TempDir(), "detect.palisade.test", now.Add(-time.Hour), now.Add(90*24*time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, time.Minute, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if reloader.needsReload() {
		t.Error("needsReload() returned true immediately after load")
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(certFile, future, future); err != nil {
		t.Fatalf("failed to update cert mtime: %v", err)
	}

	if !reloader.needsReload() {
		t.Error("needsReload() returned false after file was modified")
	}
}

// TestCertificateReloader_GetCertificateBeforeStart tests getting certificate before starting.
func TestCertificateReloader_GetCertificateBeforeStart(t *testing.T) {
	reloader := NewCertificateReloader("cert.pem", "key.pem", time.Minute, testLogger())

	if cert := reloader.GetCertificate(); cert != nil {
		t.Error("GetCertificate() should return nil before Start() is called")
	}
}

// TestCertificateReloader_ContextCancellation tests that the reload loop stops on context cancellation.
func TestCertificateReloader_ContextCancellation(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeTestKeyPair(t, t.TempDir(), "cancel.palisade.test", now.Add(-time.Hour), now.Add(90*24*time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, 50*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()
	time.Sleep(150 * time.Millisecond)

	if cert := reloader.GetCertificate(); cert == nil {
		t.Error("certificate should remain available after cancellation")
	}
}

// TestCertificateReloader_ConcurrentAccess tests concurrent access to GetCertificate.
func TestCertificateReloader_ConcurrentAccess(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeTestKeyPair(t, t.TempDir(), "concurrent.palisade.test", now.Add(-time.Hour), now.Add(90*24*time.Hour))

	reloader := NewCertificateReloader(certFile, keyFile, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				if cert := reloader.GetCertificate(); cert == nil {
					t.Error("GetCertificate() returned nil during concurrent access")
				}
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
