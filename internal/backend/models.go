package backend

// Agent is a stored agent record.
type Agent struct {
	OrgID             string         `json:"org_id"`
	AgentType         string         `json:"agent_type"`
	AgentID           string         `json:"agent_id"`
	AgentConfig       map[string]any `json:"agent_config"`
	AgentCategory     string         `json:"agent_category,omitempty"`
	PhoneNumber       string         `json:"phone_number,omitempty"`
	GreetingMessage   string         `json:"greeting_message,omitempty"`
	TelephonyProvider string         `json:"telephony_provider,omitempty"`
	VobizAppID        string         `json:"vobiz_app_id,omitempty"`
	VobizAnswerURL    string         `json:"vobiz_answer_url,omitempty"`
	UpdatedAt         string         `json:"updated_at,omitempty"`
}

// AgentUpdate is the PUT body for an existing agent.
type AgentUpdate struct {
	AgentConfig       map[string]any `json:"agent_config"`
	AgentCategory     string         `json:"agent_category,omitempty"`
	PhoneNumber       string         `json:"phone_number,omitempty"`
	GreetingMessage   string         `json:"greeting_message,omitempty"`
	TelephonyProvider string         `json:"telephony_provider,omitempty"`
	VobizAppID        string         `json:"vobiz_app_id,omitempty"`
	VobizAnswerURL    string         `json:"vobiz_answer_url,omitempty"`
}

type PhoneNumber struct {
	PhoneNumber string `json:"phone_number"`
	Provider    string `json:"provider"`
	AgentType   string `json:"agent_type,omitempty"`
	OrgID       string `json:"org_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Attached reports whether the number currently serves an agent.
func (p PhoneNumber) Attached() bool { return p.AgentType != "" }

type Campaign struct {
	ID                  string         `json:"id,omitempty"`
	CampaignName        string         `json:"campaign_name"`
	OrgID               string         `json:"org_id,omitempty"`
	AgentType           string         `json:"agent_type,omitempty"`
	Status              string         `json:"status,omitempty"`
	CampaignInformation map[string]any `json:"campaign_information,omitempty"`
}

type Audience struct {
	ID           string         `json:"id,omitempty"`
	AudienceName string         `json:"audience_name"`
	PhoneNumber  string         `json:"phone_number"`
	Parameters   map[string]any `json:"parameters,omitempty"`
}

type Member struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	OrgID       string `json:"org_id"`
	CompanyName string `json:"company_name"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type NewMember struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	OrgID       string `json:"org_id"`
}

type Integration struct {
	OrgID     string `json:"org_id"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// MaskedKey shows only the last four characters of the key.
func (i Integration) MaskedKey() string {
	const visible = 4
	if len(i.APIKey) <= visible {
		return "****"
	}
	return "****" + i.APIKey[len(i.APIKey)-visible:]
}

type User struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	OrgID       string `json:"org_id"`
	CompanyName string `json:"company_name"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	OrgID       string `json:"org_id,omitempty"`
}

type LoginResult struct {
	Status
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	OrgID       string `json:"org_id,omitempty"`
}

// AnalyticsFilter narrows the analytics query. Empty fields are omitted.
type AnalyticsFilter struct {
	AgentType   string
	PhoneNumber string
	StartDate   string
	EndDate     string
}
