package leads

import (
	"strings"
	"time"
)

// FormType identifies which site form produced a submission.
type FormType string

const (
	// FormDemo is the "agendar demonstração" form with module checkboxes.
	FormDemo FormType = "demo"
	// FormPresentation is the "solicitar apresentação" form with an interest select.
	FormPresentation FormType = "presentation"
)

// UTM carries campaign attribution captured from the landing page URL.
type UTM struct {
	Source   *string `json:"source" validate:"omitempty,max=120,nonul"`
	Medium   *string `json:"medium" validate:"omitempty,max=120,nonul"`
	Campaign *string `json:"campaign" validate:"omitempty,max=120,nonul"`
	Term     *string `json:"term" validate:"omitempty,max=120,nonul"`
	Content  *string `json:"content" validate:"omitempty,max=120,nonul"`
}

// Submission is the wire shape of POST /api/public/leads. Optional fields are
// pointers so that an omitted key and an explicit null both decode to nil.
type Submission struct {
	Product        string   `json:"product" validate:"required,min=2,max=30,nonul"`
	FormType       string   `json:"form_type" validate:"required,oneof=demo presentation"`
	Name           string   `json:"name" validate:"required,min=2,max=120,nonul"`
	Role           *string  `json:"role" validate:"omitempty,max=120,nonul"`
	MunicipalityUF *string  `json:"municipality_uf" validate:"omitempty,max=120,nonul"`
	Email          string   `json:"email" validate:"required,max=190,email,nonul"`
	Whatsapp       *string  `json:"whatsapp" validate:"omitempty,max=30,nonul"`
	Modules        []string `json:"modules" validate:"omitempty,dive,max=50,nonul"`
	Observations   *string  `json:"observations" validate:"omitempty,max=5000,nonul"`
	Interest       *string  `json:"interest" validate:"omitempty,max=50,nonul"`
	Message        *string  `json:"message" validate:"omitempty,max=5000,nonul"`
	UTM            *UTM     `json:"utm"`
	PageURL        *string  `json:"page_url" validate:"omitempty,max=500,nonul"`
	Honeypot       *string  `json:"hp" validate:"omitempty,max=200,nonul"`
}

// Form is the form-specific part of a validated lead. It is either DemoForm
// or PresentationForm.
type Form interface {
	Type() FormType
	isForm()
}

// DemoForm holds the fields only the demo form uses.
type DemoForm struct {
	Modules      []string
	Observations *string
}

func (DemoForm) Type() FormType { return FormDemo }
func (DemoForm) isForm()        {}

// PresentationForm holds the fields only the presentation form uses.
type PresentationForm struct {
	Interest *string
	Message  *string
}

func (PresentationForm) Type() FormType { return FormPresentation }
func (PresentationForm) isForm()        {}

// Lead is a submission that passed validation.
type Lead struct {
	Product        string
	Name           string
	Role           *string
	MunicipalityUF *string
	Email          string
	Whatsapp       *string
	UTM            UTM
	PageURL        *string
	Honeypot       string
	Form           Form
}

// IsSpam reports whether the hidden honeypot field was filled in.
func (l *Lead) IsSpam() bool {
	return strings.TrimSpace(l.Honeypot) != ""
}

// RequestMeta is what the endpoint captures about the caller.
type RequestMeta struct {
	IP        *string
	UserAgent string
}

// ContactRequest is one persisted row of contact_requests.
type ContactRequest struct {
	ID           int64
	Product      string
	FormType     FormType
	Name         string
	Role         *string
	Municipality *string
	UF           *string
	Email        string
	Whatsapp     *string
	InterestCode *string
	InterestID   *int64
	Message      *string
	Observations *string
	PageURL      *string
	UTM          UTM
	ModuleCodes  []string
	IP           *string
	UserAgent    string
	CreatedAt    time.Time
}

// NewContactRequest flattens a validated lead into the row that will be
// written. Fields of the other form type stay nil.
func NewContactRequest(lead *Lead, meta RequestMeta) *ContactRequest {
	municipality, uf := SplitMunicipalityUF(lead.MunicipalityUF)
	req := &ContactRequest{
		Product:      lead.Product,
		FormType:     lead.Form.Type(),
		Name:         lead.Name,
		Role:         lead.Role,
		Municipality: municipality,
		UF:           uf,
		Email:        lead.Email,
		Whatsapp:     lead.Whatsapp,
		PageURL:      lead.PageURL,
		UTM:          lead.UTM,
		IP:           meta.IP,
		UserAgent:    meta.UserAgent,
	}
	switch form := lead.Form.(type) {
	case DemoForm:
		req.Observations = form.Observations
		req.ModuleCodes = uniqueCodes(form.Modules)
	case PresentationForm:
		req.Message = form.Message
		if form.Interest != nil && *form.Interest != "" {
			req.InterestCode = form.Interest
		}
	}
	return req
}

// uniqueCodes drops repeated module codes while keeping submission order.
func uniqueCodes(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// CatalogEntry is an active interest or module offered by the site forms.
type CatalogEntry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}
