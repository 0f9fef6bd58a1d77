package notion

import (
	"strings"
	"unicode/utf8"

	"ghledger/internal/reconcile"
	"ghledger/internal/status"
)

// bodyExcerptLimit caps the body text carried into the page content.
// Notion rejects rich-text segments over 2000 characters.
const bodyExcerptLimit = 2000

// richText builds a single-segment rich-text value.
func richText(content string) []map[string]interface{} {
	return []map[string]interface{}{
		{"type": "text", "text": map[string]interface{}{"content": content}},
	}
}

// stateName maps the source lifecycle state onto the ledger's State select.
func stateName(state string) string {
	switch strings.ToLower(state) {
	case "open":
		return "Open"
	case "closed":
		return "Closed"
	default:
		return "Open"
	}
}

// kindName maps the item subtype onto the ledger's Kind select.
func kindName(kind reconcile.ItemKind) string {
	if kind == reconcile.KindPull {
		return "PR"
	}
	return "Issue"
}

// baseProperties builds the fields shared by the create and update shapes:
// title, number, state, labels, URL, and kind, plus the PR attributes for
// pull requests.
func baseProperties(item reconcile.Item) map[string]interface{} {
	labels := make([]map[string]interface{}, len(item.Labels))
	for i, l := range item.Labels {
		labels[i] = map[string]interface{}{"name": l}
	}

	props := map[string]interface{}{
		PropTitle:  map[string]interface{}{"title": richText(item.Title)},
		PropNumber: map[string]interface{}{"number": item.Number},
		PropState:  map[string]interface{}{"select": map[string]interface{}{"name": stateName(item.State)}},
		PropLabels: map[string]interface{}{"multi_select": labels},
		PropURL:    map[string]interface{}{"url": item.URL},
		PropKind:   map[string]interface{}{"select": map[string]interface{}{"name": kindName(item.Kind)}},
	}

	if item.Kind == reconcile.KindPull {
		props[PropMerged] = map[string]interface{}{"checkbox": item.Merged}
		props[PropDraft] = map[string]interface{}{"checkbox": item.Draft}
		props[PropDiffSize] = map[string]interface{}{"number": item.Additions + item.Deletions}
	}

	return props
}

// BuildCreateProperties builds the create shape: the base fields plus the
// one-time initial status. The identity property is deliberately absent; it
// is written by a follow-up patch because the destination cannot accept it
// atomically at creation time.
func BuildCreateProperties(item reconcile.Item) map[string]interface{} {
	props := baseProperties(item)
	props[PropStatus] = map[string]interface{}{"status": map[string]interface{}{"name": status.Default}}
	return props
}

// BuildUpdateProperties builds the update shape: base fields only. Status,
// body content, and the identity property are excluded so a resync never
// resets fields edited in the ledger or managed by other writes.
func BuildUpdateProperties(item reconcile.Item) map[string]interface{} {
	return baseProperties(item)
}

// BuildNodeIDPatch builds the identity-property patch shape.
func BuildNodeIDPatch(nodeID string) map[string]interface{} {
	return map[string]interface{}{
		PropNodeID: map[string]interface{}{"rich_text": richText(nodeID)},
	}
}

// BuildStatusPatch builds the status patch shape.
func BuildStatusPatch(statusName string) map[string]interface{} {
	return map[string]interface{}{
		PropStatus: map[string]interface{}{"status": map[string]interface{}{"name": statusName}},
	}
}

// BuildBodyBlocks converts the item body into page content blocks for the
// create shape. Empty bodies produce no blocks.
func BuildBodyBlocks(body string) []map[string]interface{} {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if utf8.RuneCountInString(body) > bodyExcerptLimit {
		runes := []rune(body)
		body = string(runes[:bodyExcerptLimit])
	}
	return []map[string]interface{}{
		{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]interface{}{
				"rich_text": richText(body),
			},
		},
	}
}

// recordFromPage decodes a ledger page into the engine's Record shape.
func recordFromPage(p *Page) reconcile.Record {
	rec := reconcile.Record{
		PageID:     p.ID,
		LastEdited: p.LastEditedTime,
	}

	if v, ok := p.Properties[PropTitle]; ok {
		rec.Title = plainText(v.Title)
	}
	if v, ok := p.Properties[PropNumber]; ok && v.Number != nil {
		rec.Number = int(*v.Number)
	}
	if v, ok := p.Properties[PropStatus]; ok && v.Status != nil {
		rec.Status = v.Status.Name
	}
	if v, ok := p.Properties[PropState]; ok && v.Select != nil {
		rec.State = v.Select.Name
	}
	if v, ok := p.Properties[PropLabels]; ok {
		for _, opt := range v.MultiSelect {
			rec.Labels = append(rec.Labels, opt.Name)
		}
	}
	if v, ok := p.Properties[PropURL]; ok {
		rec.URL = v.URL
	}
	if v, ok := p.Properties[PropKind]; ok && v.Select != nil {
		rec.Kind = v.Select.Name
	}
	if v, ok := p.Properties[PropNodeID]; ok {
		rec.NodeID = plainText(v.RichText)
	}

	return rec
}
