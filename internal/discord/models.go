// internal/discord/models.go
package discord

// User is the identity-provider profile returned by /users/@me.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// Identity bundles the exchanged tokens with the fetched profile.
type Identity struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse is the raw oauth2/token payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// ==========================
// Message payloads
// ==========================

type Embed struct {
	Title     string       `json:"title,omitempty"`
	Color     int          `json:"color,omitempty"`
	Fields    []EmbedField `json:"fields,omitempty"`
	Footer    *EmbedFooter `json:"footer,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Component types and button styles from the message-components API.
const (
	componentTypeActionRow = 1
	componentTypeButton    = 2

	buttonStyleSuccess = 3
	buttonStyleDanger  = 4
)

type ActionRow struct {
	Type       int      `json:"type"`
	Components []Button `json:"components"`
}

type Button struct {
	Type     int    `json:"type"`
	Style    int    `json:"style"`
	Label    string `json:"label"`
	CustomID string `json:"custom_id"`
}

type messagePayload struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []ActionRow `json:"components,omitempty"`
}

// ==========================
// Interaction payloads
// ==========================

// Interaction types and response types from the interactions API.
const (
	InteractionTypePing      = 1
	InteractionTypeComponent = 3

	ResponseTypePong           = 1
	ResponseTypeChannelMessage = 4
	ResponseTypeUpdateMessage  = 7

	MessageFlagEphemeral = 64
)

// Interaction is the inbound callback posted by the platform.
type Interaction struct {
	ID    string          `json:"id"`
	Type  int             `json:"type"`
	Token string          `json:"token"`
	Data  InteractionData `json:"data"`
}

type InteractionData struct {
	CustomID      string `json:"custom_id"`
	ComponentType int    `json:"component_type"`
}

// InteractionResponse is the synchronous answer to an interaction.
type InteractionResponse struct {
	Type int                      `json:"type"`
	Data *InteractionResponseData `json:"data,omitempty"`
}

type InteractionResponseData struct {
	Content    string      `json:"content,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	Embeds     []Embed     `json:"embeds"`
	Components []ActionRow `json:"components"`
}
