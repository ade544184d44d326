package common

// AuthorizationHeaderName carries the bearer credential on authenticated
// HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the auth scheme prefix used in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// CredentialMetadataKey is the metadata key under which the client keeps its
// bearer credential.
const CredentialMetadataKey = "auth_token"
