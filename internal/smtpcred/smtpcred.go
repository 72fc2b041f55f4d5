// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package smtpcred

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Fixed inputs of the SES SMTP password derivation. These must match the
// values used by the SES SMTP endpoint bit-for-bit or authentication fails.
const (
	date     = "11111111"
	service  = "ses"
	terminal = "aws4_request"
	message  = "SendRawEmail"
	version  = byte(0x04)
)

// regions is the set of regions with an SES SMTP endpoint.
var regions = map[string]struct{}{
	"us-east-2":      {},
	"us-east-1":      {},
	"us-west-2":      {},
	"ap-south-1":     {},
	"ap-northeast-2": {},
	"ap-southeast-1": {},
	"ap-southeast-2": {},
	"ap-northeast-1": {},
	"ca-central-1":   {},
	"eu-central-1":   {},
	"eu-west-1":      {},
	"eu-west-2":      {},
	"sa-east-1":      {},
	"us-gov-west-1":  {},
}

// UnsupportedRegionError is returned when the requested region has no SES
// SMTP endpoint.
type UnsupportedRegionError struct {
	Region string
}

func (e *UnsupportedRegionError) Error() string {
	return fmt.Sprintf("region %q does not have an SES SMTP endpoint", e.Region)
}

// Credential is a ready-to-use SES SMTP login. Username is the IAM access key
// ID, Password the derived SMTP password, and Host the regional endpoint.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
}

// Derive converts an IAM secret access key into the SMTP password for the
// given region's SES endpoint. The derivation is the fixed five-round
// HMAC-SHA256 chain documented by AWS: a SigV4 signing key scoped to
// date/region/ses, used to sign the literal "SendRawEmail", prefixed with a
// version byte and base64-encoded.
//
// Derive is a pure function of its inputs. The secret key is not validated;
// a wrong key simply yields a password the endpoint will reject.
func Derive(secretAccessKey, region string) (string, error) {
	if _, ok := regions[region]; !ok {
		return "", &UnsupportedRegionError{Region: region}
	}

	sig := []byte("AWS4" + secretAccessKey)
	for _, msg := range []string{date, region, service, terminal, message} {
		sig = sign(sig, msg)
	}

	buf := make([]byte, 0, 1+sha256.Size)
	buf = append(buf, version)
	buf = append(buf, sig...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Credentials bundles the derived password with the SMTP username (the access
// key ID verbatim) and the regional endpoint hostname.
func Credentials(accessKeyID, secretAccessKey, region string) (Credential, error) {
	password, err := Derive(secretAccessKey, region)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		Username: accessKeyID,
		Password: password,
		Host:     Endpoint(region),
	}, nil
}

// Endpoint returns the SES SMTP hostname for a region. It does not check the
// region against the supported set; use Derive or Supported for that.
func Endpoint(region string) string {
	return fmt.Sprintf("email-smtp.%s.amazonaws.com", region)
}

// Supported reports whether the region has an SES SMTP endpoint.
func Supported(region string) bool {
	_, ok := regions[region]
	return ok
}

func sign(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}
