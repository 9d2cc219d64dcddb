package app

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"storeroom/pkg/sl"
)

// serveTLS serves HTTPS with an ephemeral certificate and, when configured, a plain HTTP redirect.
func serveTLS(ctx context.Context, cfg HTTPConfig, app *fiber.App, logger *slog.Logger) error {
	_, keyFile, certFile, err := generateCertificate(cfg.TLSHost)
	if err != nil {
		return fmt.Errorf("unable to generate certificate: %w", err)
	}
	defer os.Remove(keyFile)
	defer os.Remove(certFile)

	if cfg.RedirectPort > 0 {
		redirect := redirectApp(cfg.TLSHost, cfg.Port)
		redirectAddr := ":" + strconv.Itoa(cfg.RedirectPort)
		go func() {
			logger.Info("HTTP redirect server listening", slog.String("addr", redirectAddr))
			if err := redirect.Listen(redirectAddr); err != nil {
				logger.Error("redirect server stopped", sl.Err(err))
			}
		}()
		defer redirect.ShutdownWithTimeout(shutdownTimeout)
	}

	addr := address(cfg.Port)
	logger.Info("HTTPS server is starting with an ephemeral certificate",
		slog.String("host", cfg.TLSHost),
		slog.String("addr", addr),
	)
	return serve(ctx, app, func() error { return app.ListenTLS(addr, certFile, keyFile) }, logger)
}

// redirectApp points plain HTTP clients at the HTTPS listener.
func redirectApp(host string, tlsPort int) *fiber.App {
	target := "https://" + host
	if tlsPort != 443 {
		target += ":" + strconv.Itoa(tlsPort)
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(func(c *fiber.Ctx) error {
		return c.Redirect(target+c.OriginalURL(), fiber.StatusPermanentRedirect)
	})
	return app
}

// generateCertificate produces a short-lived self-signed certificate for host.
func generateCertificate(host string) (tls.Certificate, string, string, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, "", "", err
	}

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return tls.Certificate{}, "", "", err
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName: host,
		},
		NotBefore: time.Now().Add(-time.Hour),
		NotAfter:  time.Now().Add(90 * 24 * time.Hour),
		DNSNames:  []string{host},
		KeyUsage:  x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
		},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, "", "", err
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	keyBytes, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return tls.Certificate{}, "", "", err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, "", "", err
	}

	certFile, err := writeTempFile("cert", certPEM)
	if err != nil {
		return tls.Certificate{}, "", "", err
	}
	keyFile, err := writeTempFile("key", keyPEM)
	if err != nil {
		os.Remove(certFile)
		return tls.Certificate{}, "", "", err
	}
	return tlsCert, keyFile, certFile, nil
}

// writeTempFile persists PEM data because ListenTLS expects file paths.
func writeTempFile(prefix string, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "storeroom-"+prefix)
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
