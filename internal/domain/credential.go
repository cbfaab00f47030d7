package domain

// Service identifica o serviço externo ao qual uma credencial pertence
type Service string

const (
	ServiceMetaAds   Service = "meta_ads"
	ServiceGoogleAds Service = "google_ads"
)

// Chaves conhecidas do campo extra (jsonb) de client_credentials
const (
	ExtraDeveloperToken  = "developer_token"
	ExtraClientID        = "client_id"
	ExtraClientSecret    = "client_secret"
	ExtraLoginCustomerID = "login_customer_id"
	ExtraAPIVersion      = "api_version"
)

// Platform retorna a plataforma de métricas associada ao serviço
func (s Service) Platform() Platform {
	switch s {
	case ServiceMetaAds:
		return PlatformMeta
	case ServiceGoogleAds:
		return PlatformGoogle
	}
	return ""
}

func (s Service) Valid() bool {
	return s == ServiceMetaAds || s == ServiceGoogleAds
}

// TenantCredential é a linha de client_credentials de um tenant para um serviço.
// Criada pelo onboarding; este serviço só lê.
type TenantCredential struct {
	TenantID     string            `json:"tenant_id"`
	Service      Service           `json:"service"`
	AccountID    string            `json:"account_id"`
	AccessToken  string            `json:"-"`
	RefreshToken string            `json:"-"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// ExtraValue retorna o valor de extra ou vazio
func (c *TenantCredential) ExtraValue(key string) string {
	if c == nil || c.Extra == nil {
		return ""
	}
	return c.Extra[key]
}

// FetchTarget é um par (tenant, serviço) elegível para ingestão
type FetchTarget struct {
	TenantID string  `json:"tenant_id"`
	Service  Service `json:"service"`
}
