package wire

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/fault"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/role"
	"github.com/keygate/keygate/internal/tenant"
	"github.com/keygate/keygate/internal/token"
)

// TestPurpose: Validates content negotiation: JSON is the default, an explicit XML Accept switches, and JSON wins when both appear.
// Scope: Unit Test
// Expected: Accept without XML yields JSON; application/xml or text/xml yields XML; mixed headers yield JSON.
// Test Case ID: WIR-01
func TestWire_NegotiateAccept(t *testing.T) {
	tests := []struct {
		accept string
		want   Format
	}{
		{"", JSON},
		{"*/*", JSON},
		{"application/json", JSON},
		{"application/xml", XML},
		{"text/xml", XML},
		{"application/xml, application/json", JSON},
		{"application/json, application/xml", JSON},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/v2.0/tenants", nil)
		if tt.accept != "" {
			r.Header.Set("Accept", tt.accept)
		}
		assert.Equal(t, tt.want, NegotiateAccept(r), "Accept: %q", tt.accept)
	}
}

// TestPurpose: Validates request-body format selection and rejection of unsupported media types.
// Scope: Unit Test
// Expected: JSON and XML media types parse; an unknown type is a badRequest fault; a missing header defaults to JSON.
// Test Case ID: WIR-02
func TestWire_NegotiateContentType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v2.0/tokens", nil)
	f, err := NegotiateContentType(r)
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	r.Header.Set("Content-Type", "application/xml; charset=utf-8")
	f, err = NegotiateContentType(r)
	require.NoError(t, err)
	assert.Equal(t, XML, f)

	r.Header.Set("Content-Type", "text/plain")
	_, err = NegotiateContentType(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.BadRequest(""))
}

// TestPurpose: Validates the enabled-attribute coercion table shared by all entity parsers.
// Scope: Unit Test
// Expected: Booleans, "true"/"false" in any case, and 1/0 coerce; anything else is a badRequest fault.
// Test Case ID: WIR-03
func TestWire_BoolCoercion(t *testing.T) {
	for _, v := range []any{true, "true", "TRUE", "True", float64(1), "1"} {
		b, err := asBool(v)
		require.NoError(t, err, "value %v", v)
		assert.True(t, b, "value %v", v)
	}
	for _, v := range []any{false, "false", "FALSE", float64(0), "0"} {
		b, err := asBool(v)
		require.NoError(t, err, "value %v", v)
		assert.False(t, b, "value %v", v)
	}
	for _, v := range []any{"yes", "enabled", float64(2), []any{}} {
		_, err := asBool(v)
		assert.Error(t, err, "value %v", v)
	}
}

// TestPurpose: Validates tenant document round-trips in both formats, including integer id coercion and Extra passthrough.
// Scope: Unit Test
// Expected: JSON numeric ids become strings, unknown attributes survive a round-trip, XML renders description as a child element.
// Test Case ID: WIR-04
func TestWire_TenantRoundTrip(t *testing.T) {
	in := []byte(`{"tenant": {"id": 1234, "name": "acme", "enabled": "true", "description": "the acme tenant", "custom": "kept"}}`)
	parsed, err := UnmarshalTenant(in, JSON)
	require.NoError(t, err)
	assert.Equal(t, "1234", parsed.ID)
	assert.Equal(t, "acme", parsed.Name)
	assert.True(t, parsed.Enabled)
	assert.Equal(t, "kept", parsed.Extra["custom"])

	out, err := MarshalTenant(parsed, JSON)
	require.NoError(t, err)
	var doc struct {
		Tenant map[string]any `json:"tenant"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "1234", doc.Tenant["id"])
	assert.Equal(t, true, doc.Tenant["enabled"])
	assert.Equal(t, "kept", doc.Tenant["custom"])

	xout, err := MarshalTenant(parsed, XML)
	require.NoError(t, err)
	s := string(xout)
	assert.Contains(t, s, `xmlns="`+NSIdentity+`"`)
	assert.Contains(t, s, `id="1234"`)
	assert.Contains(t, s, "<description>the acme tenant</description>")

	reparsed, err := UnmarshalTenant(xout, XML)
	require.NoError(t, err)
	assert.Equal(t, parsed.Name, reparsed.Name)
	assert.Equal(t, parsed.Description, reparsed.Description)
}

// TestPurpose: Validates that the user parser separates the write-only password and the renderer never emits it.
// Scope: Unit Test
// Security: Credential exposure prevention (CWE-522)
// Expected: The parsed password is returned out of band; serialized output contains no password attribute.
// Test Case ID: WIR-05
func TestWire_UserPasswordWriteOnly(t *testing.T) {
	in := []byte(`{"user": {"name": "joe", "password": "s3cret", "email": "joe@example.com", "enabled": true}}`)
	p, err := UnmarshalUser(in, JSON)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", p.Password)
	assert.NotContains(t, p.User.Extra, "password")

	for _, f := range []Format{JSON, XML} {
		out, err := MarshalUser(p.User, f)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "s3cret")
		assert.NotContains(t, string(out), "password")
	}
}

// TestPurpose: Validates whitelist enforcement on role and service documents.
// Scope: Unit Test
// Expected: An attribute outside the whitelist is a badRequest fault naming the attribute; whitelisted documents parse.
// Test Case ID: WIR-06
func TestWire_WhitelistValidation(t *testing.T) {
	_, err := UnmarshalRole([]byte(`{"role": {"name": "Admin", "color": "red"}}`), JSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color")
	assert.ErrorIs(t, err, fault.BadRequest(""))

	r, err := UnmarshalRole([]byte(`{"role": {"name": "Admin", "serviceId": "svc-1"}}`), JSON)
	require.NoError(t, err)
	assert.Equal(t, "svc-1", r.ServiceID)

	_, err = UnmarshalService([]byte(`{"OS-KSADM:service": {"name": "nova", "region": "east"}}`), JSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")

	s, err := UnmarshalService([]byte(`{"service": {"name": "nova", "type": "compute"}}`), JSON)
	require.NoError(t, err)
	assert.Equal(t, "compute", s.Type)
}

// TestPurpose: Validates paging-link construction ordering and href shape.
// Scope: Unit Test
// Expected: prev precedes next, absent markers emit no link, hrefs carry exactly marker and limit.
// Test Case ID: WIR-07
func TestWire_PageLinks(t *testing.T) {
	links := PageLinks("/v2.0/tenants", "aaa", "zzz", 10)
	require.Len(t, links, 2)
	assert.Equal(t, "prev", links[0].Rel)
	assert.Equal(t, "next", links[1].Rel)
	assert.Contains(t, links[0].Href, "marker=aaa")
	assert.Contains(t, links[0].Href, "limit=10")

	links = PageLinks("/v2.0/tenants", "", "zzz", 10)
	require.Len(t, links, 1)
	assert.Equal(t, "next", links[0].Rel)

	assert.Empty(t, PageLinks("/v2.0/tenants", "", "", 10))
}

// TestPurpose: Validates that collection documents always carry the plural root and its _links sibling.
// Scope: Unit Test
// Expected: An empty page renders an empty array and an empty links list, never null-free omissions.
// Test Case ID: WIR-08
func TestWire_CollectionRoots(t *testing.T) {
	out, err := MarshalTenants(nil, PageLinks("/v2.0/tenants", "", "", 10), JSON)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Contains(t, doc, "tenants")
	assert.Contains(t, doc, "tenants_links")

	out, err = MarshalTenants([]*tenant.Tenant{{ID: "t1", Name: "one", Enabled: true}}, nil, XML)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "<tenants"))
}

// TestPurpose: Validates auth request parsing for all three credential kinds and the legacy unwrapped shape.
// Scope: Unit Test
// Expected: passwordCredentials, token, and ec2Credentials each populate exactly one credential field; the bare legacy shape still parses.
// Test Case ID: WIR-09
func TestWire_UnmarshalAuthRequest(t *testing.T) {
	req, err := UnmarshalAuthRequest([]byte(`{"auth": {"passwordCredentials": {"username": "joe", "password": "pw"}, "tenantName": "acme"}}`), JSON)
	require.NoError(t, err)
	require.NotNil(t, req.Password)
	assert.Equal(t, "joe", req.Password.Username)
	assert.Equal(t, "acme", req.TenantName)
	assert.Nil(t, req.Token)
	assert.Nil(t, req.EC2)

	req, err = UnmarshalAuthRequest([]byte(`{"auth": {"token": {"id": "tok-1"}, "tenantId": "t1"}}`), JSON)
	require.NoError(t, err)
	require.NotNil(t, req.Token)
	assert.Equal(t, "tok-1", req.Token.ID)
	assert.Equal(t, "t1", req.TenantID)

	req, err = UnmarshalAuthRequest([]byte(`{"auth": {"ec2Credentials": {"access": "ak", "signature": "sig", "verb": "GET", "host": "svc:8080", "path": "/", "params": {"k": "v"}}}}`), JSON)
	require.NoError(t, err)
	require.NotNil(t, req.EC2)
	assert.Equal(t, "ak", req.EC2.Access)
	assert.Equal(t, "v", req.EC2.Params["k"])

	req, err = UnmarshalAuthRequest([]byte(`{"passwordCredentials": {"username": "joe", "password": "pw", "tenantId": "t1"}}`), JSON)
	require.NoError(t, err)
	require.NotNil(t, req.Password)
	assert.Equal(t, "t1", req.TenantID)

	req, err = UnmarshalAuthRequest([]byte(`<auth xmlns="`+NSIdentity+`" tenantId="t1"><passwordCredentials username="joe" password="pw"/></auth>`), XML)
	require.NoError(t, err)
	require.NotNil(t, req.Password)
	assert.Equal(t, "t1", req.TenantID)

	_, err = UnmarshalAuthRequest([]byte(`{"auth": {}}`), JSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.BadRequest(""))
}

// TestPurpose: Validates access document rendering: token scope, roles in effect, and the grouped service catalog.
// Scope: Unit Test
// Expected: The scoped tenant nests under the token, grants render with tenantId only when scoped, and endpoints group by service.
// Test Case ID: WIR-10
func TestWire_MarshalAccess(t *testing.T) {
	tid := "t1"
	expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	a := &Access{
		Token:      &token.Token{ID: "tok-1", TenantID: &tid, Expires: expires},
		TenantName: "acme",
		User:       &identity.User{ID: "u1", Name: "joe"},
		Roles: []*role.Grant{
			{RoleID: "r1", RoleName: "Admin"},
			{RoleID: "r2", RoleName: "member", TenantID: &tid},
		},
		Catalog: []*catalog.TenantEndpoint{
			{ServiceName: "nova", ServiceType: "compute", Region: "east", PublicURL: "https://compute.east/v2/t1"},
			{ServiceName: "nova", ServiceType: "compute", Region: "west", PublicURL: "https://compute.west/v2/t1"},
			{ServiceName: "swift", ServiceType: "object-store", PublicURL: "https://store/v1/t1"},
		},
	}

	out, err := MarshalAccess(a, JSON)
	require.NoError(t, err)
	var doc struct {
		Access struct {
			Token struct {
				ID      string         `json:"id"`
				Expires string         `json:"expires"`
				Tenant  map[string]any `json:"tenant"`
			} `json:"token"`
			User struct {
				Roles []map[string]any `json:"roles"`
			} `json:"user"`
			Catalog []struct {
				Name      string           `json:"name"`
				Endpoints []map[string]any `json:"endpoints"`
			} `json:"serviceCatalog"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "tok-1", doc.Access.Token.ID)
	assert.Equal(t, "2026-09-01T12:00:00Z", doc.Access.Token.Expires)
	assert.Equal(t, "t1", doc.Access.Token.Tenant["id"])
	assert.Equal(t, "acme", doc.Access.Token.Tenant["name"])
	require.Len(t, doc.Access.User.Roles, 2)
	assert.NotContains(t, doc.Access.User.Roles[0], "tenantId")
	assert.Equal(t, "t1", doc.Access.User.Roles[1]["tenantId"])
	require.Len(t, doc.Access.Catalog, 2)
	assert.Equal(t, "nova", doc.Access.Catalog[0].Name)
	assert.Len(t, doc.Access.Catalog[0].Endpoints, 2)

	xout, err := MarshalAccess(a, XML)
	require.NoError(t, err)
	s := string(xout)
	assert.Contains(t, s, `<access xmlns="`+NSIdentity+`"`)
	assert.Contains(t, s, `<tenant id="t1" name="acme"`)
	assert.Contains(t, s, `<service name="nova" type="compute">`)
}

// TestPurpose: Validates that an unscoped token omits the tenant element and the catalog key entirely.
// Scope: Unit Test
// Expected: No tenant under the token and no serviceCatalog key when the catalog is empty.
// Test Case ID: WIR-11
func TestWire_MarshalAccessUnscoped(t *testing.T) {
	a := &Access{
		Token: &token.Token{ID: "tok-2", Expires: time.Now().Add(time.Hour)},
		User:  &identity.User{ID: "u1", Name: "joe"},
	}
	out, err := MarshalAccess(a, JSON)
	require.NoError(t, err)
	var doc map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.NotContains(t, doc["access"], "serviceCatalog")
	var tok map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["access"]["token"], &tok))
	assert.NotContains(t, tok, "tenant")
}

// TestPurpose: Validates endpoint template documents under the OS-KSCATALOG roots and the bind-reference parser.
// Scope: Unit Test
// Expected: Templates render under the prefixed root with service name/type; the bind body yields the template id, numeric or string.
// Test Case ID: WIR-12
func TestWire_EndpointTemplates(t *testing.T) {
	v := TemplateView{
		Template: &catalog.EndpointTemplate{
			ID: "et1", Region: "east", PublicURL: "https://compute.east/v2/%tenant_id%",
			Enabled: true, IsGlobal: true,
		},
		ServiceName: "nova",
		ServiceType: "compute",
	}
	out, err := MarshalEndpointTemplate(v, JSON)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	tpl := doc["OS-KSCATALOG:endpointTemplate"]
	require.NotNil(t, tpl)
	assert.Equal(t, "nova", tpl["name"])
	assert.Equal(t, true, tpl["global"])

	p, err := UnmarshalEndpointTemplate([]byte(`{"OS-KSCATALOG:endpointTemplate": {"region": "east", "name": "nova", "type": "compute", "enabled": 1}}`), JSON)
	require.NoError(t, err)
	assert.Equal(t, "nova", p.ServiceName)
	assert.True(t, p.Template.Enabled)

	id, err := UnmarshalEndpointRef([]byte(`{"OS-KSCATALOG:endpointTemplate": {"id": 42}}`), JSON)
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = UnmarshalEndpointRef([]byte(`{"endpoint": {"id": "42"}}`), JSON)
	assert.Error(t, err)
}

// TestPurpose: Validates fault document rendering for typed faults and arbitrary errors.
// Scope: Unit Test
// Expected: The fault kind is the document root, the code matches the HTTP status, and unknown errors render as identityFault without leaking their text.
// Test Case ID: WIR-13
func TestWire_MarshalFault(t *testing.T) {
	body, code, err := MarshalFault(fault.NotFound("the tenant could not be found"), JSON)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, code)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Contains(t, doc, "itemNotFound")
	assert.Equal(t, float64(404), doc["itemNotFound"]["code"])
	assert.Equal(t, "the tenant could not be found", doc["itemNotFound"]["message"])

	body, code, err = MarshalFault(assert.AnError, JSON)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, string(body), "identityFault")
	assert.NotContains(t, string(body), assert.AnError.Error())

	body, code, err = MarshalFault(fault.UserDisabled("the user has been disabled"), XML)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, code)
	assert.True(t, strings.HasPrefix(string(body), "<userDisabled"))
	assert.Contains(t, string(body), `code="403"`)
}
