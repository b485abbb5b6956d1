package db

import (
	"context"
	"time"
)

// UsageCounts composes the repository count queries behind the interface the
// billing enforcer consumes.
type UsageCounts struct {
	Quotes  *QuoteRepository
	Clients *ClientRepository
	Items   *ItemRepository
}

// NewUsageCounts bundles the repositories used for plan limit checks.
func NewUsageCounts(quotes *QuoteRepository, clients *ClientRepository, items *ItemRepository) *UsageCounts {
	return &UsageCounts{Quotes: quotes, Clients: clients, Items: items}
}

func (u *UsageCounts) CountQuotesSince(ctx context.Context, orgID string, since time.Time) (int, error) {
	return u.Quotes.CountCreatedSince(ctx, orgID, since)
}

func (u *UsageCounts) CountClients(ctx context.Context, orgID string) (int, error) {
	return u.Clients.CountByOrg(ctx, orgID)
}

func (u *UsageCounts) CountItems(ctx context.Context, orgID string) (int, error) {
	return u.Items.CountByOrg(ctx, orgID)
}
