package oauth

// DiscoveryDocument is the static server metadata document published at
// /.well-known/openid-configuration. It has no
// capability dependencies — it is a pure function of server configuration.
type DiscoveryDocument struct {
	Issuer                         string   `json:"issuer"`
	AuthorizationEndpoint          string   `json:"authorization_endpoint"`
	TokenEndpoint                  string   `json:"token_endpoint"`
	JWKSURI                        string   `json:"jwks_uri,omitempty"`
	ScopesSupported                []string `json:"scopes_supported"`
	ResponseTypesSupported         []string `json:"response_types_supported"`
	GrantTypesSupported            []string `json:"grant_types_supported"`
	TokenEndpointAuthMethods       []string `json:"token_endpoint_auth_methods_supported"`
	SubjectTypesSupported          []string `json:"subject_types_supported,omitempty"`
	IDTokenSigningAlgValues        []string `json:"id_token_signing_alg_values_supported,omitempty"`
}

// MetadataConfig is the static configuration Metadata builds a
// DiscoveryDocument from.
type MetadataConfig struct {
	Issuer                string
	AuthorizationEndpoint string
	TokenEndpoint         string
	JWKSURI               string
	ScopesSupported       []string
	SigningAlg            string
}

// Metadata builds the discovery document advertised for this deployment.
// response_types_supported is fixed at ["code"] — the implicit response
// type is refused by the authorization endpoint, so it is never
// advertised as supported.
func Metadata(cfg MetadataConfig) DiscoveryDocument {
	doc := DiscoveryDocument{
		Issuer:                 cfg.Issuer,
		AuthorizationEndpoint:  cfg.AuthorizationEndpoint,
		TokenEndpoint:          cfg.TokenEndpoint,
		JWKSURI:                cfg.JWKSURI,
		ScopesSupported:        cfg.ScopesSupported,
		ResponseTypesSupported: []string{"code"},
		GrantTypesSupported: []string{
			string(GrantAuthorizationCode),
			string(GrantResourceOwner),
			string(GrantClientCredentials),
			string(GrantRefreshToken),
		},
		TokenEndpointAuthMethods: []string{
			string(AuthMethodClientSecretBasic),
			string(AuthMethodClientSecretPost),
			string(AuthMethodClientSecretJWT),
			string(AuthMethodPrivateKeyJWT),
			string(AuthMethodNone),
		},
		SubjectTypesSupported: []string{"public"},
	}
	if cfg.SigningAlg != "" {
		doc.IDTokenSigningAlgValues = []string{cfg.SigningAlg}
	}
	return doc
}
