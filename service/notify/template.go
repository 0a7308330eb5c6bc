package notify

import "fmt"

// DefaultOrganization signs every notification
const DefaultOrganization = "YOUth"

// Templates renders notifications with portal links
type Templates struct {
	Domain       string
	Organization string
}

// ViewURL returns the portal link of a request
func (t *Templates) ViewURL(requestID string) string {
	return t.link("view", requestID)
}

// EvaluateURL returns the portal link of a request evaluation form
func (t *Templates) EvaluateURL(requestID string) string {
	return t.link("evaluate", requestID)
}

func (t *Templates) link(view, requestID string) string {
	return fmt.Sprintf("https://portal.%s/datarequest/%s/%s", t.Domain, view, requestID)
}

func (t *Templates) organization() string {
	if t.Organization == "" {
		return DefaultOrganization
	}
	return t.Organization
}

// ResearcherReviewed notifies the researcher that all reviews are in
func (t *Templates) ResearcherReviewed(to, name, requestID string) *Message {
	org := t.organization()
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("[researcher] %s data request %s: reviewed", org, requestID),
		Body: fmt.Sprintf("Dear %s,\n\nYour data request been reviewed by the %s data management committee and is awaiting final evaluation by the %s Board of Directors.\n\nThe following link will take you directly to your data request: %s.\n\nWith kind regards,\n%s",
			name, org, org, t.ViewURL(requestID), org),
	}
}

// BoardReviewed asks a board member to evaluate a reviewed request
func (t *Templates) BoardReviewed(to, requestID string) *Message {
	org := t.organization()
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("[bod member] %s data request %s: reviewed", org, requestID),
		Body: fmt.Sprintf("Dear Board of Directors member,\n\nData request %s has been reviewed by the %s data management committee and is awaiting your final evaluation.\n\nPlease log into Yoda to evaluate the data request.\n\nThe following link will take you directly to the evaluation form: %s.\n\nWith kind regards,\n%s",
			requestID, org, t.EvaluateURL(requestID), org),
	}
}

// ResearcherApproved notifies the researcher of approval
func (t *Templates) ResearcherApproved(to, name, requestID string) *Message {
	org := t.organization()
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("[researcher] %s data request %s: approved", org, requestID),
		Body: fmt.Sprintf("Dear %s,\n\nCongratulations! Your data request has been approved. The %s data manager will now create a Data Transfer Agreement for you to sign. You will be notified when it is ready.\n\nThe following link will take you directly to your data request: %s.\n\nWith kind regards,\n%s",
			name, org, t.ViewURL(requestID), org),
	}
}

// DataManagerApproved asks a data manager to prepare the transfer agreement
func (t *Templates) DataManagerApproved(to, requestID string) *Message {
	org := t.organization()
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("[data manager] %s data request %s: approved", org, requestID),
		Body: fmt.Sprintf("Dear data manager,\n\nData request %s has been approved by the Board of Directors. Please sign in to Yoda to upload a Data Transfer Agreement for the researcher.\n\nThe following link will take you directly to the data request: %s.\n\nWith kind regards,\n%s",
			requestID, t.ViewURL(requestID), org),
	}
}

// ResearcherRejected notifies the researcher of rejection; contact is the data manager to object to
func (t *Templates) ResearcherRejected(to, name, requestID, contact string) *Message {
	org := t.organization()
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("[researcher] %s data request %s: rejected", org, requestID),
		Body: fmt.Sprintf("Dear %s,\n\nYour data request has been rejected. Please log in to Yoda to view additional details.\n\nThe following link will take you directly to your data request: %s.\n\nIf you wish to object against this rejection, please contact the %s data manager (%s).\n\nWith kind regards,\n%s",
			name, t.ViewURL(requestID), org, contact, org),
	}
}

// NewTemplates creates templates linking to portal.<domain>
func NewTemplates(domain string) *Templates {
	return &Templates{Domain: domain, Organization: DefaultOrganization}
}
