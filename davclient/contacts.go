package davclient

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/tmaehler/davbox/internal/davxml"
	"github.com/tmaehler/davbox/vobject"
)

// Contact is the typed view of one vCard.
type Contact struct {
	UID      string
	FullName string
	Org      string
	Title    string
	Note     string
	Emails   []string
	Phones   []string
	Href     string
	ETag     string
}

// ContactDraft carries the caller input for a new contact. At least one
// of GivenName and FamilyName is required.
type ContactDraft struct {
	Book       string
	GivenName  string
	FamilyName string
	Org        string
	Title      string
	Note       string
	Emails     []string
	Phones     []string
}

// ContactChanges names the single-occurrence fields an edit may rewrite.
// Emails and phones are append-only at creation time and not editable
// here.
type ContactChanges struct {
	FullName mo.Option[string]
	Org      mo.Option[string]
	Title    mo.Option[string]
	Note     mo.Option[string]
}

// SearchContacts lists the contacts of one address book whose name,
// email or organization contains the query, case-insensitively. An empty
// query lists everything. Matching happens locally; the server only
// supplies the card data.
func (c *Client) SearchContacts(ctx context.Context, book, query string) ([]Contact, error) {
	ref, err := c.ResolveCollection(ctx, CapContacts, book)
	if err != nil {
		return nil, err
	}
	objects, err := c.queryAddressObjects(ctx, ref.Href, davxml.CardListQuery())
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var contacts []Contact
	for _, obj := range objects {
		view := contactView(obj)
		if needle != "" && !contactMatches(view, needle) {
			continue
		}
		contacts = append(contacts, view)
	}
	sort.Slice(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].FullName) < strings.ToLower(contacts[j].FullName)
	})
	return contacts, nil
}

// AddContact stores a new vCard and returns its view. The formatted name
// derives from the given and family names; emails and phones become
// repeated EMAIL/TEL lines.
func (c *Client) AddContact(ctx context.Context, draft ContactDraft) (Contact, error) {
	fullName := strings.TrimSpace(strings.TrimSpace(draft.GivenName) + " " + strings.TrimSpace(draft.FamilyName))
	if fullName == "" {
		return Contact{}, fmt.Errorf("%w: contact needs a given or family name", ErrInvalidInput)
	}
	ref, err := c.ResolveCollection(ctx, CapContacts, draft.Book)
	if err != nil {
		return Contact{}, err
	}

	rec, comp := vobject.NewCard()
	uid := uuid.New().String()
	comp.Append("UID", uid)
	comp.Append("FN", vobject.Escape(fullName))
	comp.Append("N", vobject.Escape(strings.TrimSpace(draft.FamilyName))+";"+vobject.Escape(strings.TrimSpace(draft.GivenName))+";;;")
	for _, email := range draft.Emails {
		if email = strings.TrimSpace(email); email != "" {
			comp.Append("EMAIL", vobject.Escape(email))
		}
	}
	for _, phone := range draft.Phones {
		if phone = strings.TrimSpace(phone); phone != "" {
			comp.Append("TEL", vobject.Escape(phone))
		}
	}
	if draft.Org != "" {
		comp.Append("ORG", vobject.Escape(draft.Org))
	}
	if draft.Title != "" {
		comp.Append("TITLE", vobject.Escape(draft.Title))
	}
	if draft.Note != "" {
		comp.Append("NOTE", vobject.Escape(draft.Note))
	}

	href, etag, err := c.CreateResource(ctx, ref, uid+".vcf", ContentTypeVCard, []byte(rec.String()))
	if err != nil {
		return Contact{}, err
	}
	return Contact{
		UID:      uid,
		FullName: fullName,
		Org:      draft.Org,
		Title:    draft.Title,
		Note:     draft.Note,
		Emails:   draft.Emails,
		Phones:   draft.Phones,
		Href:     href,
		ETag:     etag,
	}, nil
}

// EditContact rewrites the named single-occurrence fields of the contact
// carrying the UID and returns the new etag.
func (c *Client) EditContact(ctx context.Context, book, uid string, ch ContactChanges) (string, error) {
	located, failures, err := c.LocateByUID(ctx, CapContacts, book, uid)
	if err != nil {
		return "", err
	}
	c.reportScanFailures(failures)
	if located == nil {
		return "", notFoundWithFailures(fmt.Sprintf("no contact with UID %q", uid), failures)
	}

	mut, err := c.NewMutation(*located, ContentTypeVCard)
	if err != nil {
		return "", err
	}
	var edits []vobject.FieldEdit
	if v, ok := ch.FullName.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "FN", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Org.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "ORG", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Title.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "TITLE", Value: vobject.Escape(v), Set: true})
	}
	if v, ok := ch.Note.Get(); ok {
		edits = append(edits, vobject.FieldEdit{Name: "NOTE", Value: vobject.Escape(v), Set: true})
	}
	if len(edits) == 0 {
		return "", fmt.Errorf("%w: no changes given", ErrInvalidInput)
	}
	if err := mut.Apply(edits...); err != nil {
		return "", err
	}
	return mut.Commit(ctx)
}

// DeleteContact removes the contact carrying the UID.
func (c *Client) DeleteContact(ctx context.Context, book, uid string) error {
	return c.deleteByUID(ctx, CapContacts, book, uid, "contact")
}

// addressObject pairs one parsed vCard with its address and version
// metadata.
type addressObject struct {
	card vcard.Card
	href string
	etag mo.Option[string]
}

func (c *Client) queryAddressObjects(ctx context.Context, colHref string, query any) ([]addressObject, error) {
	doc, err := c.http.DoREPORT(ctx, colHref, 1, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute addressbook query: %w", err)
	}
	entries, err := davxml.DecodeMultistatus(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var objects []addressObject
	for _, e := range entries {
		body := e.PropText("address-data")
		if body == "" {
			continue
		}
		card, err := vcard.NewDecoder(strings.NewReader(body)).Decode()
		if err != nil {
			c.logger.Warn("skipping unparsable vcard", "href", e.Href, "error", err)
			continue
		}
		objects = append(objects, addressObject{card: card, href: e.Href, etag: e.ETag})
	}
	return objects, nil
}

func contactView(obj addressObject) Contact {
	card := obj.card
	view := Contact{
		UID:      card.Value(vcard.FieldUID),
		FullName: vobject.Unescape(card.PreferredValue(vcard.FieldFormattedName)),
		Org:      vobject.Unescape(card.Value(vcard.FieldOrganization)),
		Title:    vobject.Unescape(card.Value(vcard.FieldTitle)),
		Note:     vobject.Unescape(card.Value(vcard.FieldNote)),
		Href:     obj.href,
		ETag:     obj.etag.OrElse(""),
	}
	for _, email := range card.Values(vcard.FieldEmail) {
		view.Emails = append(view.Emails, vobject.Unescape(email))
	}
	for _, phone := range card.Values(vcard.FieldTelephone) {
		view.Phones = append(view.Phones, vobject.Unescape(phone))
	}
	return view
}

func contactMatches(view Contact, needle string) bool {
	if strings.Contains(strings.ToLower(view.FullName), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(view.Org), needle) {
		return true
	}
	for _, email := range view.Emails {
		if strings.Contains(strings.ToLower(email), needle) {
			return true
		}
	}
	return false
}
