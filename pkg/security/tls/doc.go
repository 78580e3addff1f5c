/*
Package tls provides certificate utilities for the Palisade intake server:
validation and inspection helpers used by the certs CLI commands, and a
reloader that picks up renewed certificates without a restart.

# Certificate Auto-Reload

The intake server installs a CertificateReloader when TLS is enabled, so a
renewed key pair written over the configured files is served on the next
handshake:

	reloader := tls.NewCertificateReloader(certFile, keyFile, interval, logger)
	if err := reloader.Start(ctx); err != nil {
		return err
	}

	tlsConfig.GetCertificate = reloader.GetCertificateFunc()

A certificate that fails to load or validate during a reload is rejected
and the previous certificate stays active.

# Inspection

The validation helpers back `palisade certs info` and `palisade certs
validate`:

	info := tls.ExtractCertificateInfo(x509Cert)
	days, warning := tls.CheckCertificateExpiration(x509Cert)
	err := tls.ValidateCertificateChain(x509Cert, caPool)
*/
package tls
