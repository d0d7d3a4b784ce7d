package challenge

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/wangdaliu/payauth/internal/config"
	"github.com/wangdaliu/payauth/internal/model"
)

// DirectoryServerFingerprint is the parsed, immutable trust and routing
// material needed to start a 3DS2 transaction, derived once from an intent's
// 3DS2 next-action data.
type DirectoryServerFingerprint struct {
	DirectoryServerID string
	NetworkName       string
	RootCerts         []*x509.Certificate
	ServerPublicKey   crypto.PublicKey
	KeyID             string
	SourceID          string
	MessageVersion    string
}

// ParseFingerprint validates and parses the raw 3DS2 next-action data.
// Malformed certificate material returns a CertificateError; callers must
// short-circuit the attempt to an error outcome, never proceed.
func ParseFingerprint(data *model.ThreeDS2Data) (*DirectoryServerFingerprint, error) {
	if data == nil {
		return nil, &model.CertificateError{Reason: "missing 3ds2 data"}
	}
	if data.DirectoryServerID == "" {
		return nil, &model.CertificateError{Reason: "missing directory server id"}
	}
	if len(data.RootCertsPEM) == 0 {
		return nil, &model.CertificateError{Reason: "missing root certificates"}
	}

	roots := make([]*x509.Certificate, 0, len(data.RootCertsPEM))
	for i, raw := range data.RootCertsPEM {
		cert, err := parseCertPEM(raw)
		if err != nil {
			return nil, &model.CertificateError{
				Reason: fmt.Sprintf("root certificate %d", i),
				Err:    err,
			}
		}
		roots = append(roots, cert)
	}

	dsCert, err := parseCertPEM(data.DirectoryServerCertPEM)
	if err != nil {
		return nil, &model.CertificateError{Reason: "directory server certificate", Err: err}
	}

	version := data.MessageVersion
	if version == "" {
		version = config.DefaultMessageVersion
	}

	return &DirectoryServerFingerprint{
		DirectoryServerID: data.DirectoryServerID,
		NetworkName:       data.NetworkName,
		RootCerts:         roots,
		ServerPublicKey:   dsCert.PublicKey,
		KeyID:             data.KeyID,
		SourceID:          data.Source,
		MessageVersion:    version,
	}, nil
}

func parseCertPEM(raw string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("not a PEM certificate block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return cert, nil
}
