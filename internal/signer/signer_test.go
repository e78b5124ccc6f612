package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates scheme dispatch on the SignatureVersion parameter.
// Scope: Unit Test
// Expected: Versions 0, 1 and 2 produce deterministic, distinct signatures;
// an unknown version is an error.
// Test Case ID: SGN-01
func TestSign_VersionDispatch(t *testing.T) {
	base := map[string]string{
		"Action":    "DescribeInstances",
		"Timestamp": "2026-08-25T12:00:00Z",
	}
	req := func(version string) Request {
		params := map[string]string{"SignatureVersion": version}
		for k, v := range base {
			params[k] = v
		}
		return Request{Verb: "GET", Host: "ec2.example.com", Path: "/", Params: params}
	}

	sigs := map[string]string{}
	for _, version := range []string{"0", "1", "2"} {
		first, err := Sign("secret", req(version))
		require.NoError(t, err)
		second, err := Sign("secret", req(version))
		require.NoError(t, err)
		assert.Equal(t, first, second, "signing is deterministic for version %s", version)

		other, err := Sign("other-secret", req(version))
		require.NoError(t, err)
		assert.NotEqual(t, first, other, "the secret must participate in version %s", version)
		sigs[version] = first
	}
	assert.NotEqual(t, sigs["0"], sigs["1"])
	assert.NotEqual(t, sigs["1"], sigs["2"])

	_, err := Sign("secret", Request{Params: map[string]string{"SignatureVersion": "3"}})
	require.Error(t, err)
	_, err = Sign("secret", Request{Params: map[string]string{}})
	require.Error(t, err, "a missing version never falls back to a default scheme")
}

// TestPurpose: Validates which request fields each scheme canonicalizes.
// Scope: Unit Test
// Security: Signature Verification (CWE-347)
// Expected: Version 0 signs only Action and Timestamp; version 1 signs all
// parameters but not verb, host or path; version 2 binds verb, host and path.
// Test Case ID: SGN-02
func TestSign_CanonicalizedFields(t *testing.T) {
	params := func(version string, extra map[string]string) map[string]string {
		p := map[string]string{
			"SignatureVersion": version,
			"Action":           "RunInstances",
			"Timestamp":        "2026-08-25T12:00:00Z",
		}
		for k, v := range extra {
			p[k] = v
		}
		return p
	}

	v0a, err := Sign("secret", Request{Params: params("0", nil)})
	require.NoError(t, err)
	v0b, err := Sign("secret", Request{Verb: "POST", Host: "elsewhere", Path: "/x",
		Params: params("0", map[string]string{"InstanceType": "m1.small"})})
	require.NoError(t, err)
	assert.Equal(t, v0a, v0b, "version 0 signs only Action and Timestamp")

	v1a, err := Sign("secret", Request{Verb: "GET", Host: "a", Params: params("1", nil)})
	require.NoError(t, err)
	v1b, err := Sign("secret", Request{Verb: "POST", Host: "b", Path: "/x", Params: params("1", nil)})
	require.NoError(t, err)
	assert.Equal(t, v1a, v1b, "version 1 ignores verb, host and path")
	v1c, err := Sign("secret", Request{Params: params("1", map[string]string{"InstanceType": "m1.small"})})
	require.NoError(t, err)
	assert.NotEqual(t, v1a, v1c, "version 1 signs every parameter")

	v2 := func(verb, host, path string) string {
		sig, err := Sign("secret", Request{Verb: verb, Host: host, Path: path, Params: params("2", nil)})
		require.NoError(t, err)
		return sig
	}
	baseline := v2("GET", "ec2.example.com", "/")
	assert.NotEqual(t, baseline, v2("POST", "ec2.example.com", "/"), "version 2 binds the verb")
	assert.NotEqual(t, baseline, v2("GET", "other.example.com", "/"), "version 2 binds the host")
	assert.NotEqual(t, baseline, v2("GET", "ec2.example.com", "/other"), "version 2 binds the path")

	// The canonical string pins SignatureMethod to the method in use, so a
	// client-supplied value cannot shift the signature.
	pinned, err := Sign("secret", Request{Verb: "GET", Host: "ec2.example.com", Path: "/",
		Params: params("2", map[string]string{"SignatureMethod": "HmacSHA1"})})
	require.NoError(t, err)
	assert.Equal(t, baseline, pinned)
}

// TestPurpose: Validates signature verification, including the port-strip retry
// for clients that sign the bare hostname but transmit host:port.
// Scope: Unit Test
// Security: Signature Verification (CWE-347)
// Expected: A round-tripped signature verifies; any altered field or signature
// fails; stripping the port recovers bare-hostname signatures.
// Test Case ID: SGN-03
func TestVerify(t *testing.T) {
	params := map[string]string{
		"SignatureVersion": "2",
		"Action":           "DescribeVolumes",
		"Timestamp":        "2026-08-25T12:00:00Z",
		"Filter.1.Name":    "attachment.status",
		"Filter.1.Value":   "attached to host~1",
	}
	req := Request{Verb: "GET", Host: "ec2.example.com", Path: "/services/Cloud", Params: params}

	sig, err := Sign("secret", req)
	require.NoError(t, err)
	assert.True(t, Verify("secret", sig, req, false))
	assert.False(t, Verify("wrong-secret", sig, req, false))
	assert.False(t, Verify("secret", sig[:len(sig)-4]+"AAAA", req, false))

	withPort := req
	withPort.Host = "ec2.example.com:8773"
	assert.False(t, Verify("secret", sig, withPort, false))
	assert.True(t, Verify("secret", sig, withPort, true),
		"stripping the port recovers a bare-hostname signature")

	bare := req
	assert.True(t, Verify("secret", sig, bare, true),
		"stripping a port that is not there changes nothing")

	unknown := Request{Params: map[string]string{"SignatureVersion": "9"}}
	assert.False(t, Verify("secret", "anything", unknown, false),
		"an unverifiable scheme never verifies")
}
