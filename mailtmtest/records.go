package mailtmtest

import (
	"time"
)

const timestampLayout = "2006-01-02T15:04:05+00:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

type domainRecord struct {
	id        string
	name      string
	active    bool
	private   bool
	createdAt time.Time
	updatedAt time.Time
}

type accountRecord struct {
	id           string
	address      string
	passwordHash []byte
	disabled     bool
	createdAt    time.Time
	updatedAt    time.Time
	// messageIDs holds the account's messages, oldest first.
	messageIDs []string
}

type messageRecord struct {
	id             string
	accountID      string
	msgID          string
	from           addressJSON
	to             []addressJSON
	subject        string
	intro          string
	seen           bool
	hasAttachments bool
	raw            []byte
	createdAt      time.Time
	updatedAt      time.Time
}

type domainJSON struct {
	Context   string `json:"@context,omitempty"`
	IRI       string `json:"@id"`
	Type      string `json:"@type"`
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	IsActive  bool   `json:"isActive"`
	IsPrivate bool   `json:"isPrivate"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (d *domainRecord) view(withContext bool) domainJSON {
	out := domainJSON{
		IRI:       "/domains/" + d.id,
		Type:      "Domain",
		ID:        d.id,
		Domain:    d.name,
		IsActive:  d.active,
		IsPrivate: d.private,
		CreatedAt: formatTime(d.createdAt),
		UpdatedAt: formatTime(d.updatedAt),
	}
	if withContext {
		out.Context = "/contexts/Domain"
	}
	return out
}

type accountJSON struct {
	Context    string `json:"@context"`
	IRI        string `json:"@id"`
	Type       string `json:"@type"`
	ID         string `json:"id"`
	Address    string `json:"address"`
	Quota      int64  `json:"quota"`
	Used       int64  `json:"used"`
	IsDisabled bool   `json:"isDisabled"`
	IsDeleted  bool   `json:"isDeleted"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type addressJSON struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type messageJSON struct {
	Context        string        `json:"@context,omitempty"`
	IRI            string        `json:"@id"`
	Type           string        `json:"@type"`
	ID             string        `json:"id"`
	AccountID      string        `json:"accountId"`
	MsgID          string        `json:"msgid"`
	From           addressJSON   `json:"from"`
	To             []addressJSON `json:"to"`
	Subject        string        `json:"subject"`
	Intro          string        `json:"intro"`
	Seen           bool          `json:"seen"`
	IsDeleted      bool          `json:"isDeleted"`
	HasAttachments bool          `json:"hasAttachments"`
	Size           int64         `json:"size"`
	DownloadURL    string        `json:"downloadUrl"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

func (m *messageRecord) view(withContext bool) messageJSON {
	to := m.to
	if to == nil {
		to = []addressJSON{}
	}
	out := messageJSON{
		IRI:            "/messages/" + m.id,
		Type:           "Message",
		ID:             m.id,
		AccountID:      "/accounts/" + m.accountID,
		MsgID:          m.msgID,
		From:           m.from,
		To:             to,
		Subject:        m.subject,
		Intro:          m.intro,
		Seen:           m.seen,
		HasAttachments: m.hasAttachments,
		Size:           int64(len(m.raw)),
		DownloadURL:    "/messages/" + m.id + "/download",
		CreatedAt:      formatTime(m.createdAt),
		UpdatedAt:      formatTime(m.updatedAt),
	}
	if withContext {
		out.Context = "/contexts/Message"
	}
	return out
}

type sourceJSON struct {
	Context     string `json:"@context"`
	IRI         string `json:"@id"`
	Type        string `json:"@type"`
	ID          string `json:"id"`
	DownloadURL string `json:"downloadUrl"`
	Data        string `json:"data"`
}

type tokenJSON struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type collectionJSON struct {
	Context    string     `json:"@context"`
	IRI        string     `json:"@id"`
	Type       string     `json:"@type"`
	Member     any        `json:"hydra:member"`
	TotalItems int        `json:"hydra:totalItems"`
	View       viewJSON   `json:"hydra:view"`
	Search     searchJSON `json:"hydra:search"`
}

type viewJSON struct {
	IRI      string `json:"@id"`
	Type     string `json:"@type"`
	First    string `json:"hydra:first,omitempty"`
	Last     string `json:"hydra:last,omitempty"`
	Previous string `json:"hydra:previous,omitempty"`
	Next     string `json:"hydra:next,omitempty"`
}

type searchJSON struct {
	Type                   string        `json:"@type"`
	Template               string        `json:"hydra:template"`
	VariableRepresentation string        `json:"hydra:variableRepresentation"`
	Mapping                []mappingJSON `json:"hydra:mapping"`
}

type mappingJSON struct {
	Type     string `json:"@type"`
	Variable string `json:"variable"`
	Property string `json:"property"`
	Required bool   `json:"required"`
}

type errorJSON struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Title       string `json:"hydra:title"`
	Description string `json:"hydra:description"`
}

type violationsJSON struct {
	errorJSON
	Violations []violationJSON `json:"violations"`
}

type violationJSON struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}
